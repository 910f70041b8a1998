package replay

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"domainvar/internal/ordering"
	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"

	"gopkg.in/yaml.v3"
)

// Op names a script step operation.
type Op string

const (
	OpInsert   Op = "insert"
	OpRemove   Op = "remove"
	OpReplace  Op = "replace"
	OpContains Op = "contains"
	OpBind     Op = "bind"
	OpCopy     Op = "copy"
	OpMove     Op = "move"
	OpAssign   Op = "assign"
	OpMoveFrom Op = "moveFrom"
	OpSet      Op = "set"
	OpClear    Op = "clear"
	OpRelease  Op = "release"
	OpCompare  Op = "compare"
	OpClose    Op = "close"
	OpExpect   Op = "expect"
)

var knownOps = []Op{ //nolint: gochecknoglobals
	OpInsert, OpRemove, OpReplace, OpContains,
	OpBind, OpCopy, OpMove, OpAssign, OpMoveFrom, OpSet, OpClear, OpRelease,
	OpCompare, OpClose, OpExpect,
}

// Script is a replayable sequence of domain and variable operations.
type Script struct {
	// Name labels the script in logs and reports.
	Name string `yaml:"name"`
	// Domains declares the domains the steps operate on. The first one is
	// the default target of steps that name no domain.
	Domains []DomainSpec `yaml:"domains"`
	// Steps run in order.
	Steps []Step `yaml:"steps"`
}

// DomainSpec declares one domain of a script.
type DomainSpec struct {
	Name string `yaml:"name"`
	// Order is an ordering.Parse name; empty selects the runner default.
	Order string `yaml:"order"`
	// MissPolicy is "report" or "ignore"; empty selects the runner default.
	MissPolicy string `yaml:"missPolicy"`
	// Seed holds the initial contents. Duplicates collapse.
	Seed []string `yaml:"seed"`
}

// Step is one operation of a script. Which fields apply depends on Op:
//
//	insert, remove     Values (or Value)
//	replace            Old, New
//	contains           Value, Want
//	bind               Var, Value (omit for an empty variable)
//	copy, move         Var (new), From
//	assign, moveFrom   Var (target), From (source)
//	set                Var, Value
//	clear, release     Var
//	compare            Var, From (right operand), Cmp, Want
//	close              Domain
//	expect             Var with Value or Empty, or Domain with Values
//
// Domain selects the target domain of domain-level ops and of bind. Want, when
// set, is checked against the boolean result of insert, remove, replace,
// contains and compare. ExpectError names the serrors kind the step must fail
// with, e.g. "LOOKUP_MISS".
type Step struct {
	Op          Op       `yaml:"op"`
	Domain      string   `yaml:"domain,omitempty"`
	Var         string   `yaml:"var,omitempty"`
	From        string   `yaml:"from,omitempty"`
	Value       *string  `yaml:"value,omitempty"`
	Values      []string `yaml:"values,omitempty"`
	Old         string   `yaml:"old,omitempty"`
	New         string   `yaml:"new,omitempty"`
	Cmp         string   `yaml:"cmp,omitempty"`
	Want        *bool    `yaml:"want,omitempty"`
	Empty       bool     `yaml:"empty,omitempty"`
	ExpectError string   `yaml:"expectError,omitempty"`
}

// LoadScript decodes a YAML script and validates it. Unknown fields are
// rejected.
func LoadScript(r io.Reader) (*Script, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var s Script
	if err := dec.Decode(&s); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, serrors.With(serrors.ErrBadRequest, "script is empty")
		}

		return nil, serrors.Wrap(serrors.ErrBadRequest, err, "could not decode script")
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}

	return &s, nil
}

// LoadScriptFile reads and decodes the script at path.
func LoadScriptFile(path string) (*Script, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read script: %w", err)
	}

	s, err := LoadScript(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	if s.Name == "" {
		s.Name = path
	}

	return s, nil
}

// Validate checks the script's structure. It does not check that steps would
// succeed.
func (s *Script) Validate() error {
	if len(s.Domains) == 0 {
		return serrors.With(serrors.ErrBadRequest, "script declares no domains")
	}

	names := make([]string, 0, len(s.Domains))
	for i, d := range s.Domains {
		if d.Name == "" {
			return serrors.With(serrors.ErrBadRequest, "domain #%d has no name", i)
		}
		if slices.Contains(names, d.Name) {
			return serrors.With(serrors.ErrBadRequest, "domain %q declared twice", d.Name)
		}
		if _, err := ordering.Parse(d.Order); err != nil {
			return serrors.Wrap(serrors.ErrBadRequest, err, "domain %q", d.Name)
		}
		if _, ok := restricted.ParseMissPolicy(d.MissPolicy); !ok {
			return serrors.With(serrors.ErrBadRequest, "domain %q: unknown miss policy %q", d.Name, d.MissPolicy)
		}
		names = append(names, d.Name)
	}

	for i, st := range s.Steps {
		if err := st.validate(names); err != nil {
			return serrors.Wrap(serrors.ErrBadRequest, err, "step %d (%s)", i, st.Op)
		}
	}

	return nil
}

var (
	errVarRequired   = errors.New("var is required")
	errFromRequired  = errors.New("from is required")
	errValueRequired = errors.New("value is required")
)

func (st Step) validate(domains []string) error {
	if !slices.Contains(knownOps, st.Op) {
		return fmt.Errorf("unknown op %q", st.Op)
	}
	if st.Domain != "" && !slices.Contains(domains, st.Domain) {
		return fmt.Errorf("unknown domain %q", st.Domain)
	}
	if st.ExpectError != "" {
		if _, ok := serrors.KindByName(st.ExpectError); !ok {
			return fmt.Errorf("unknown error kind %q", st.ExpectError)
		}
	}

	switch st.Op {
	case OpInsert, OpRemove:
		if st.Value == nil && len(st.Values) == 0 {
			return errValueRequired
		}
	case OpContains:
		if st.Value == nil {
			return errValueRequired
		}
	case OpBind, OpClear, OpRelease:
		if st.Var == "" {
			return errVarRequired
		}
	case OpSet:
		if st.Var == "" {
			return errVarRequired
		}
		if st.Value == nil {
			return errValueRequired
		}
	case OpCopy, OpMove, OpAssign, OpMoveFrom:
		if st.Var == "" {
			return errVarRequired
		}
		if st.From == "" {
			return errFromRequired
		}
	case OpCompare:
		if st.Var == "" {
			return errVarRequired
		}
		if st.From == "" {
			return errFromRequired
		}
		if _, ok := comparisons[st.Cmp]; !ok {
			return fmt.Errorf("unknown comparison %q", st.Cmp)
		}
	case OpExpect:
		if st.Var == "" && st.Values == nil {
			return errors.New("expect needs var or values")
		}
		if st.Var != "" && st.Value == nil && !st.Empty {
			return errors.New("expect on a var needs value or empty")
		}
	case OpReplace, OpClose:
	}

	return nil
}

// values returns the step's value list, folding Value into it.
func (st Step) values() []string {
	if st.Value != nil {
		return append([]string{*st.Value}, st.Values...)
	}

	return st.Values
}
