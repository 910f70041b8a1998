package controller

import (
	"context"
	"net/http"

	"domainvar/pkg/logger"
	"domainvar/pkg/serrors"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// WriteJSON encodes a response body with fn and writes it with status.
func WriteJSON(w http.ResponseWriter, status int, fn func(e *jx.Encoder)) {
	e := jx.GetEncoder()
	defer jx.PutEncoder(e)

	fn(e)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(e.Bytes())
}

// StatusOf maps an error to an HTTP status code by its outermost serrors kind.
func StatusOf(err error) int {
	switch serrors.KindOf(err) {
	case serrors.ErrNotFound:
		return http.StatusNotFound
	case serrors.ErrBadRequest, serrors.ErrLookupMiss, serrors.ErrUnboundAccess:
		return http.StatusBadRequest
	case serrors.ErrConflict, serrors.ErrLifecycleViolation, serrors.ErrReleased:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError writes err as {"error":{"kind":...,"message":...}}. Internal
// errors are logged and their message is not exposed.
func WriteError(ctx context.Context, w http.ResponseWriter, err error) {
	status := StatusOf(err)

	kind := serrors.ErrInternal.Error()
	if k := serrors.KindOf(err); k != nil {
		kind = k.Error()
	}
	msg := err.Error()
	if status == http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
		msg = http.StatusText(status)
	}

	WriteJSON(w, status, func(e *jx.Encoder) {
		e.Obj(func(e *jx.Encoder) {
			e.Field("error", func(e *jx.Encoder) {
				e.Obj(func(e *jx.Encoder) {
					e.Field("kind", func(e *jx.Encoder) { e.Str(kind) })
					e.Field("message", func(e *jx.Encoder) { e.Str(msg) })
					if id := RequestID(ctx); id != "" {
						e.Field("requestId", func(e *jx.Encoder) { e.Str(id) })
					}
				})
			})
		})
	})
}
