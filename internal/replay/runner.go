// Package replay drives string domains and their variables from a YAML
// script and records what happened. It is the command-line harness around
// pkg/restricted: every step is logged, traced and checked against the
// expectations the script declares.
package replay

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"domainvar/internal/ordering"
	"domainvar/pkg/logger"
	"domainvar/pkg/restricted"
	"domainvar/pkg/serrors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// TracerName is the instrumentation scope of step spans.
const TracerName = "domainvar/internal/replay"

type variable = restricted.Variable[string]

var comparisons = map[string]func(a, b *variable) (bool, error){ //nolint: gochecknoglobals
	"eq": (*variable).Equal,
	"ne": (*variable).NotEqual,
	"lt": (*variable).Less,
	"gt": (*variable).Greater,
	"le": (*variable).LessOrEqual,
	"ge": (*variable).GreaterOrEqual,
}

// errExpectation marks a step whose outcome differs from what the script
// declared.
var errExpectation = errors.New("expectation failed")

// RecorderFactory creates the recorder attached to the named domain.
type RecorderFactory func(domainName string) (restricted.Recorder, error)

// Options configure a Runner.
type Options struct {
	// DefaultOrder applies to domains that name no order.
	DefaultOrder string
	// DefaultMissPolicy applies to domains that name no miss policy.
	DefaultMissPolicy restricted.MissPolicy
	// Tracer receives one span per step. Defaults to the global provider.
	Tracer trace.Tracer
	// Recorders, when set, attaches a recorder to every domain.
	Recorders RecorderFactory
}

type domainEntry struct {
	spec  DomainSpec
	order string
	d     *restricted.Domain[string]
}

// Runner executes one Script. It is not safe for concurrent use.
type Runner struct {
	script  *Script
	opts    Options
	domains []*domainEntry
	vars    map[string]*variable
	names   []string
	report  Report
}

// NewRunner builds the script's domains. A domain whose spec names no order
// or miss policy gets the defaults from opts.
func NewRunner(ctx context.Context, script *Script, opts Options) (*Runner, error) {
	if err := script.Validate(); err != nil {
		return nil, err
	}
	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(TracerName)
	}

	r := &Runner{
		script: script,
		opts:   opts,
		vars:   map[string]*variable{},
		report: Report{Script: script.Name},
	}

	for _, spec := range script.Domains {
		e, err := r.buildDomain(ctx, spec)
		if err != nil {
			return nil, err
		}
		r.domains = append(r.domains, e)
	}

	return r, nil
}

func (r *Runner) buildDomain(ctx context.Context, spec DomainSpec) (*domainEntry, error) {
	orderName := spec.Order
	if orderName == "" {
		orderName = r.opts.DefaultOrder
	}
	order, err := ordering.Parse(orderName)
	if err != nil {
		return nil, fmt.Errorf("could not build domain %q: %w", spec.Name, err)
	}

	policy := r.opts.DefaultMissPolicy
	if spec.MissPolicy != "" {
		policy, _ = restricted.ParseMissPolicy(spec.MissPolicy)
	}

	domainOpts := []restricted.Option{
		restricted.WithName(spec.Name),
		restricted.WithMissPolicy(policy),
		restricted.WithLogger(logger.Named(ctx, "domain").With(zap.String("domain", spec.Name))),
	}
	if r.opts.Recorders != nil {
		rec, err := r.opts.Recorders(spec.Name)
		if err != nil {
			return nil, fmt.Errorf("could not create recorder for domain %q: %w", spec.Name, err)
		}
		domainOpts = append(domainOpts, restricted.WithRecorder(rec))
	}

	return &domainEntry{
		spec:  spec,
		order: ordering.Canonical(orderName),
		d:     restricted.NewWithOrder(order, spec.Seed, domainOpts...),
	}, nil
}

// Domain returns the named domain and the canonical name of its order.
func (r *Runner) Domain(name string) (*restricted.Domain[string], string, bool) {
	for _, e := range r.domains {
		if e.spec.Name == name {
			return e.d, e.order, true
		}
	}

	return nil, "", false
}

// Run executes every step, then tears down: all variables are released
// before any domain is closed. The report is returned even when steps fail;
// the error is non-nil when at least one expectation failed or teardown
// failed.
func (r *Runner) Run(ctx context.Context) (*Report, error) {
	ctx = logger.WithFields(ctx, zap.String("script", r.script.Name))
	logger.Info(ctx, "replaying script", zap.Int("steps", len(r.script.Steps)))

	for i, st := range r.script.Steps {
		r.report.Steps = append(r.report.Steps, r.runStep(ctx, i, st))
	}

	r.report.capture(r)

	teardownErr := r.Finish(ctx)
	if teardownErr != nil {
		r.report.Teardown = teardownErr.Error()
	}

	failed := r.report.Failed()
	logger.Info(ctx, "replay finished", zap.Int("failed", failed), zap.Bool("teardownOK", teardownErr == nil))

	switch {
	case failed > 0:
		return &r.report, serrors.With(serrors.ErrConflict, "%d of %d step(s) failed", failed, len(r.report.Steps))
	case teardownErr != nil:
		return &r.report, teardownErr
	default:
		return &r.report, nil
	}
}

// Finish releases every live variable and then closes every domain. Closing
// a domain that a script already closed is a no-op.
func (r *Runner) Finish(ctx context.Context) error {
	for _, name := range r.names {
		r.vars[name].Release()
	}

	var errs []error
	for _, e := range r.domains {
		if err := e.d.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		logger.Error(ctx, "teardown failed", zap.Errors("errors", errs))
	}

	return errors.Join(errs...)
}

func (r *Runner) runStep(ctx context.Context, i int, st Step) StepResult {
	ctx, span := r.opts.Tracer.Start(ctx, "replay.step", trace.WithAttributes(
		attribute.Int("step.index", i),
		attribute.String("step.op", string(st.Op)),
	))
	defer span.End()

	res := StepResult{Index: i, Op: st.Op, Detail: st.describe()}
	out, err := r.apply(st)
	res.Result = out

	if err != nil {
		if k := serrors.KindOf(err); k != nil {
			res.ErrorKind = k.Error()
		}
		res.Error = err.Error()
		span.RecordError(err)
	}

	res.OK = true
	switch {
	case st.ExpectError != "":
		if res.ErrorKind != st.ExpectError {
			res.OK = false
			res.Mismatch = fmt.Sprintf("expected error %s, got %s", st.ExpectError, orNone(res.ErrorKind))
		}
	case err != nil:
		res.OK = false
		if errors.Is(err, errExpectation) {
			res.Mismatch = strings.TrimPrefix(err.Error(), errExpectation.Error()+": ")
		} else {
			res.Mismatch = "unexpected error"
		}
	}

	if res.OK {
		span.SetStatus(codes.Ok, "")
		logger.Debug(ctx, "step ok", zap.Int("step", i), zap.String("op", string(st.Op)), zap.String("result", out))
	} else {
		span.SetStatus(codes.Error, res.Mismatch)
		logger.Warn(ctx, "step failed",
			zap.Int("step", i),
			zap.String("op", string(st.Op)),
			zap.String("mismatch", res.Mismatch),
			zap.String("error", res.Error))
	}

	return res
}

func orNone(s string) string {
	if s == "" {
		return "none"
	}

	return s
}

func (r *Runner) target(st Step) *domainEntry {
	if st.Domain == "" {
		return r.domains[0]
	}
	for _, e := range r.domains {
		if e.spec.Name == st.Domain {
			return e
		}
	}

	return r.domains[0]
}

func (r *Runner) lookup(name string) (*variable, error) {
	v, ok := r.vars[name]
	if !ok {
		return nil, serrors.With(serrors.ErrNotFound, "variable %q is not declared", name)
	}

	return v, nil
}

func (r *Runner) declare(name string, v *variable) {
	if old, ok := r.vars[name]; ok {
		old.Release()
	} else {
		r.names = append(r.names, name)
	}
	r.vars[name] = v
}

func checkWant(st Step, got bool) error {
	if st.Want != nil && *st.Want != got {
		return fmt.Errorf("%w: want %t, got %t", errExpectation, *st.Want, got)
	}

	return nil
}

// apply runs st and returns a short rendering of its result.
func (r *Runner) apply(st Step) (string, error) {
	e := r.target(st)

	switch st.Op {
	case OpInsert:
		n := e.d.InsertMany(st.values()...)

		return fmt.Sprintf("added %d", n), checkWant(st, n > 0)
	case OpRemove:
		n := e.d.RemoveMany(st.values()...)

		return fmt.Sprintf("removed %d", n), checkWant(st, n > 0)
	case OpReplace:
		ok := e.d.Replace(st.Old, st.New)

		return fmt.Sprintf("%t", ok), checkWant(st, ok)
	case OpContains:
		ok := e.d.Contains(*st.Value)

		return fmt.Sprintf("%t", ok), checkWant(st, ok)
	case OpClose:
		if err := e.d.Close(); err != nil {
			return "", err
		}

		return "closed", nil
	case OpBind:
		return r.bind(e, st)
	case OpCopy, OpMove:
		return r.derive(st)
	case OpAssign, OpMoveFrom, OpCompare:
		return r.binary(st)
	case OpSet, OpClear, OpRelease:
		return r.unary(st)
	case OpExpect:
		return r.expect(e, st)
	}

	return "", serrors.With(serrors.ErrBadRequest, "unknown op %q", st.Op)
}

func (r *Runner) bind(e *domainEntry, st Step) (string, error) {
	var (
		v   *variable
		err error
	)
	if st.Value == nil {
		v, err = restricted.NewVariable(e.d)
	} else {
		v, err = restricted.NewVariableOf(e.d, *st.Value)
	}
	if err != nil {
		return "", err
	}
	r.declare(st.Var, v)

	return v.String(), nil
}

func (r *Runner) derive(st Step) (string, error) {
	src, err := r.lookup(st.From)
	if err != nil {
		return "", err
	}

	var v *variable
	if st.Op == OpCopy {
		v, err = src.Clone()
	} else {
		v, err = src.Move()
	}
	if err != nil {
		return "", err
	}
	r.declare(st.Var, v)

	return v.String(), nil
}

func (r *Runner) binary(st Step) (string, error) {
	dst, err := r.lookup(st.Var)
	if err != nil {
		return "", err
	}
	src, err := r.lookup(st.From)
	if err != nil {
		return "", err
	}

	switch st.Op {
	case OpAssign:
		err = dst.Assign(src)
	case OpMoveFrom:
		err = dst.MoveFrom(src)
	default:
		ok, cmpErr := comparisons[st.Cmp](dst, src)
		if cmpErr != nil {
			return "", cmpErr
		}

		return fmt.Sprintf("%t", ok), checkWant(st, ok)
	}
	if err != nil {
		return "", err
	}

	return dst.String(), nil
}

func (r *Runner) unary(st Step) (string, error) {
	v, err := r.lookup(st.Var)
	if err != nil {
		return "", err
	}

	switch st.Op {
	case OpSet:
		err = v.Set(*st.Value)
	case OpClear:
		v.Clear()
	default:
		v.Release()
	}
	if err != nil {
		return "", err
	}

	return v.String(), nil
}

func (r *Runner) expect(e *domainEntry, st Step) (string, error) {
	if st.Var == "" {
		got := e.d.Values()
		if !slices.Equal(got, st.Values) {
			return fmt.Sprint(got), fmt.Errorf("%w: want values %v, got %v", errExpectation, st.Values, got)
		}

		return fmt.Sprint(got), nil
	}

	v, err := r.lookup(st.Var)
	if err != nil {
		return "", err
	}

	got, ok := v.Get()
	switch {
	case st.Empty && ok:
		return v.String(), fmt.Errorf("%w: want %s empty, got %q", errExpectation, st.Var, got)
	case st.Empty:
		return v.String(), nil
	case !ok:
		return v.String(), fmt.Errorf("%w: want %s = %q, got empty", errExpectation, st.Var, *st.Value)
	case got != *st.Value:
		return v.String(), fmt.Errorf("%w: want %s = %q, got %q", errExpectation, st.Var, *st.Value, got)
	}

	return v.String(), nil
}

// describe renders the step's arguments for reports.
func (st Step) describe() string {
	var b strings.Builder
	add := func(k, v string) {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(v)
	}

	if st.Domain != "" {
		add("domain", st.Domain)
	}
	if st.Var != "" {
		add("var", st.Var)
	}
	if st.From != "" {
		add("from", st.From)
	}
	if vs := st.values(); len(vs) > 0 && st.Op != OpExpect {
		add("values", strings.Join(vs, ","))
	}
	if st.Op == OpReplace {
		add("old", st.Old)
		add("new", st.New)
	}
	if st.Cmp != "" {
		add("cmp", st.Cmp)
	}

	return b.String()
}
