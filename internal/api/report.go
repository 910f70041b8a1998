package api

import (
	"net/http"
	"sync"

	"domainvar/internal/replay"
	"domainvar/pkg/controller"
	"domainvar/pkg/serrors"

	"github.com/go-faster/jx"
)

// ReportStore holds the most recent replay report. It is written by the
// replay command and read by HTTP handlers.
type ReportStore struct {
	mu     sync.RWMutex
	report *replay.Report
}

// Set replaces the stored report.
func (s *ReportStore) Set(r *replay.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.report = r
}

// Last returns the stored report, if any.
func (s *ReportStore) Last() (*replay.Report, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.report, s.report != nil
}

func reportHandler(store *ReportStore) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		report, ok := store.Last()
		if !ok {
			controller.WriteError(r.Context(), w, serrors.With(serrors.ErrNotFound, "no replay has finished yet"))

			return
		}

		controller.WriteJSON(w, http.StatusOK, func(e *jx.Encoder) {
			EncodeReport(e, report)
		})
	})
}

// EncodeReport writes r as a JSON object.
func EncodeReport(e *jx.Encoder, r *replay.Report) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("script", func(e *jx.Encoder) { e.Str(r.Script) })
		e.Field("failed", func(e *jx.Encoder) { e.Int(r.Failed()) })
		if r.Teardown != "" {
			e.Field("teardown", func(e *jx.Encoder) { e.Str(r.Teardown) })
		}

		e.Field("steps", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, s := range r.Steps {
					encodeStep(e, s)
				}
			})
		})
		e.Field("domains", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, d := range r.Domains {
					encodeDomain(e, d)
				}
			})
		})
		e.Field("variables", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range r.Variables {
					e.Obj(func(e *jx.Encoder) {
						e.Field("name", func(e *jx.Encoder) { e.Str(v.Name) })
						e.Field("domain", func(e *jx.Encoder) { e.Str(v.Domain) })
						e.Field("state", func(e *jx.Encoder) { e.Str(v.State) })
						if v.State == replay.StateBound {
							e.Field("value", func(e *jx.Encoder) { e.Str(v.Value) })
						}
					})
				}
			})
		})
	})
}

func encodeStep(e *jx.Encoder, s replay.StepResult) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("index", func(e *jx.Encoder) { e.Int(s.Index) })
		e.Field("op", func(e *jx.Encoder) { e.Str(string(s.Op)) })
		e.Field("ok", func(e *jx.Encoder) { e.Bool(s.OK) })
		if s.Detail != "" {
			e.Field("args", func(e *jx.Encoder) { e.Str(s.Detail) })
		}
		if s.Result != "" {
			e.Field("result", func(e *jx.Encoder) { e.Str(s.Result) })
		}
		if s.ErrorKind != "" {
			e.Field("errorKind", func(e *jx.Encoder) { e.Str(s.ErrorKind) })
		}
		if s.Error != "" {
			e.Field("error", func(e *jx.Encoder) { e.Str(s.Error) })
		}
		if s.Mismatch != "" {
			e.Field("mismatch", func(e *jx.Encoder) { e.Str(s.Mismatch) })
		}
	})
}

func encodeDomain(e *jx.Encoder, d replay.DomainReport) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(d.Name) })
		e.Field("order", func(e *jx.Encoder) { e.Str(d.Order) })
		e.Field("missPolicy", func(e *jx.Encoder) { e.Str(d.MissPolicy) })
		e.Field("subscribers", func(e *jx.Encoder) { e.Int(d.Subscribers) })
		e.Field("closed", func(e *jx.Encoder) { e.Bool(d.Closed) })
		e.Field("values", func(e *jx.Encoder) {
			e.Arr(func(e *jx.Encoder) {
				for _, v := range d.Values {
					e.Str(v)
				}
			})
		})
	})
}
