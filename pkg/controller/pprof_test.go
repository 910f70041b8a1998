package controller_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"domainvar/pkg/controller"

	"github.com/stretchr/testify/require"
)

func TestPprofMux(t *testing.T) {
	tests := []struct {
		name   string
		prefix string
		path   string
	}{
		{name: "index", prefix: "/debug/pprof/", path: "/debug/pprof/"},
		{name: "cmdline", prefix: "/debug/pprof/", path: "/debug/pprof/cmdline"},
		{name: "named profile", prefix: "/debug/pprof/", path: "/debug/pprof/goroutine?debug=1"},
		{name: "prefix without slash", prefix: "/pprof", path: "/pprof/cmdline"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			controller.PprofMux(tt.prefix).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			require.Equal(t, http.StatusOK, rec.Code)
			require.NotEmpty(t, rec.Header().Get("Content-Type"))
		})
	}
}
