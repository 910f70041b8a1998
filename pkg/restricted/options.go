package restricted

import "go.uber.org/zap"

// MissPolicy decides what happens when a variable is bound to a value that is
// not in its domain.
type MissPolicy int

const (
	// MissReport fails the binding with serrors.ErrLookupMiss. NewVariableOf
	// returns no handle and Set leaves the handle unchanged.
	MissReport MissPolicy = iota
	// MissIgnore treats an unknown value as "no current value": the handle
	// becomes empty and no error is returned.
	MissIgnore
)

// String implements fmt.Stringer.
func (p MissPolicy) String() string {
	switch p {
	case MissReport:
		return "report"
	case MissIgnore:
		return "ignore"
	default:
		return "unknown"
	}
}

// ParseMissPolicy parses the String form of a MissPolicy.
func ParseMissPolicy(s string) (MissPolicy, bool) {
	switch s {
	case "", "report":
		return MissReport, true
	case "ignore":
		return MissIgnore, true
	default:
		return MissReport, false
	}
}

// Option configures a Domain.
type Option func(*options)

type options struct {
	name       string
	logger     *zap.Logger
	recorder   Recorder
	missPolicy MissPolicy
}

func defaultOptions() options {
	return options{
		logger:     zap.NewNop(),
		recorder:   nopRecorder{},
		missPolicy: MissReport,
	}
}

// WithName labels the domain in logs.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithLogger sets the logger used for debug output of mutations and notices.
func WithLogger(logger *zap.Logger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithRecorder sets the recorder that receives mutation and notice activity.
func WithRecorder(r Recorder) Option {
	return func(o *options) {
		if r != nil {
			o.recorder = r
		}
	}
}

// WithMissPolicy sets how variables bound to this domain handle lookup misses.
func WithMissPolicy(p MissPolicy) Option {
	return func(o *options) { o.missPolicy = p }
}
