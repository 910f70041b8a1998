package replay

import (
	"fmt"
	"io"
	"text/tabwriter"
)

// Variable states as shown in reports.
const (
	StateEmpty    = "empty"
	StateBound    = "bound"
	StateDetached = "detached"
	StateReleased = "released"
)

// StepResult is the outcome of one step.
type StepResult struct {
	Index  int
	Op     Op
	Detail string
	// Result is a short rendering of what the step returned or left behind.
	Result string
	// Error and ErrorKind describe the error the step returned, if any.
	Error     string
	ErrorKind string
	// OK reports whether the step matched every expectation the script set.
	OK       bool
	Mismatch string
}

// DomainReport is the state of one domain after the last step.
type DomainReport struct {
	Name        string
	Order       string
	MissPolicy  string
	Values      []string
	Subscribers int
	Closed      bool
}

// VariableReport is the state of one variable after the last step.
type VariableReport struct {
	Name   string
	Domain string
	State  string
	Value  string
}

// Report records a replay: per-step outcomes and the final state captured
// before teardown.
type Report struct {
	Script    string
	Steps     []StepResult
	Domains   []DomainReport
	Variables []VariableReport
	// Teardown holds the teardown error, if any.
	Teardown string
}

// Failed counts the steps that did not match their expectations.
func (r *Report) Failed() int {
	n := 0
	for _, s := range r.Steps {
		if !s.OK {
			n++
		}
	}

	return n
}

func (r *Report) capture(run *Runner) {
	r.Domains = r.Domains[:0]
	for _, e := range run.domains {
		r.Domains = append(r.Domains, DomainReport{
			Name:        e.spec.Name,
			Order:       e.order,
			MissPolicy:  e.d.MissPolicy().String(),
			Values:      e.d.Values(),
			Subscribers: e.d.Subscribers(),
			Closed:      e.d.Closed(),
		})
	}

	r.Variables = r.Variables[:0]
	for _, name := range run.names {
		v := run.vars[name]
		vr := VariableReport{Name: name, State: variableState(v)}
		if d := v.Domain(); d != nil {
			vr.Domain = d.Name()
		}
		if val, ok := v.Get(); ok {
			vr.Value = val
		}
		r.Variables = append(r.Variables, vr)
	}
}

func variableState(v *variable) string {
	switch {
	case v.Released():
		return StateReleased
	case !v.Subscribed():
		return StateDetached
	case v.HasValue():
		return StateBound
	default:
		return StateEmpty
	}
}

// WriteText renders the report as aligned plain text.
func (r *Report) WriteText(w io.Writer) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)

	fmt.Fprintf(tw, "script: %s\n\n", r.Script)
	fmt.Fprintln(tw, "#\tOP\tARGS\tRESULT\tSTATUS")
	for _, s := range r.Steps {
		status := "ok"
		if !s.OK {
			status = "FAIL: " + s.Mismatch
		}
		result := s.Result
		if s.ErrorKind != "" {
			result = s.ErrorKind
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n", s.Index, s.Op, s.Detail, result, status)
	}

	fmt.Fprintln(tw, "\nDOMAIN\tORDER\tSUBSCRIBERS\tCLOSED\tVALUES")
	for _, d := range r.Domains {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%t\t%v\n", d.Name, d.Order, d.Subscribers, d.Closed, d.Values)
	}

	if len(r.Variables) > 0 {
		fmt.Fprintln(tw, "\nVARIABLE\tDOMAIN\tSTATE\tVALUE")
		for _, v := range r.Variables {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", v.Name, v.Domain, v.State, v.Value)
		}
	}

	fmt.Fprintf(tw, "\n%d step(s), %d failed\n", len(r.Steps), r.Failed())
	if r.Teardown != "" {
		fmt.Fprintf(tw, "teardown: %s\n", r.Teardown)
	}

	if err := tw.Flush(); err != nil {
		return fmt.Errorf("could not write report: %w", err)
	}

	return nil
}
