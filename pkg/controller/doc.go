// Package controller contains HTTP middlewares and helper handlers used by the
// observation server.
//
// Provided middlewares:
//   - WithLogger: Attaches a request-scoped logger and request ID to the context and logs access info.
//
// Provided helpers:
//   - PprofMux: Returns a ServeMux exposing net/http/pprof handlers under a prefix.
//   - WriteJSON, WriteError: Encode responses with go-faster/jx; errors map serrors kinds to status codes.
package controller
