package api_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"domainvar/internal/api"
	"domainvar/internal/replay"
	"domainvar/pkg/metrics"
	"domainvar/pkg/restricted"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) (*httptest.Server, *prometheus.Registry, *api.ReportStore) {
	t.Helper()

	reg := prometheus.NewRegistry()
	store := &api.ReportStore{}
	srv := api.NewServer(api.Deps{Gatherer: reg, Reports: store}, api.Options{
		MetricsPath: "/metrics",
		ReportPath:  "/v1/report",
	})

	ts := httptest.NewServer(srv.Handler)
	t.Cleanup(ts.Close)

	return ts, reg, store
}

func get(t *testing.T, url string) (int, string) {
	t.Helper()

	res, err := http.Get(url) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	require.NoError(t, err)

	return res.StatusCode, string(body)
}

func TestServer_Metrics(t *testing.T) {
	ts, reg, _ := newTestServer(t)

	mp, err := api.NewMeterProvider(reg)
	require.NoError(t, err)

	rec, err := metrics.NewRecorder(mp.Meter(metrics.MeterName), "served")
	require.NoError(t, err)

	d := restricted.New([]int{1, 2}, restricted.WithRecorder(rec))
	d.Insert(3)
	d.Remove(1)

	status, body := get(t, ts.URL+"/metrics")
	require.Equal(t, http.StatusOK, status)
	require.Contains(t, body, "domain_mutations")
	require.Contains(t, body, `domain="served"`)
}

func TestServer_Report(t *testing.T) {
	ts, _, store := newTestServer(t)

	status, body := get(t, ts.URL+"/v1/report")
	require.Equal(t, http.StatusNotFound, status)
	require.Contains(t, body, `"kind":"NOT_FOUND"`)

	store.Set(&replay.Report{
		Script: "demo",
		Steps: []replay.StepResult{
			{Index: 0, Op: replay.OpBind, Detail: "var=x values=a", Result: "a", OK: true},
			{Index: 1, Op: replay.OpSet, Detail: "var=x values=q", Error: "value not in domain", ErrorKind: "LOOKUP_MISS", Mismatch: "unexpected error"},
		},
		Domains: []replay.DomainReport{
			{Name: "d", Order: "lexical", MissPolicy: "report", Values: []string{"a", "b"}, Subscribers: 1},
		},
		Variables: []replay.VariableReport{
			{Name: "x", Domain: "d", State: replay.StateBound, Value: "a"},
		},
	})

	status, body = get(t, ts.URL+"/v1/report")
	require.Equal(t, http.StatusOK, status)
	require.JSONEq(t, `{
		"script": "demo",
		"failed": 1,
		"steps": [
			{"index": 0, "op": "bind", "ok": true, "args": "var=x values=a", "result": "a"},
			{"index": 1, "op": "set", "ok": false, "args": "var=x values=q", "errorKind": "LOOKUP_MISS",
			 "error": "value not in domain", "mismatch": "unexpected error"}
		],
		"domains": [
			{"name": "d", "order": "lexical", "missPolicy": "report", "subscribers": 1, "closed": false, "values": ["a", "b"]}
		],
		"variables": [
			{"name": "x", "domain": "d", "state": "bound", "value": "a"}
		]
	}`, body)
}

func TestServer_ReportRejectsOtherMethods(t *testing.T) {
	ts, _, _ := newTestServer(t)

	res, err := http.Post(ts.URL+"/v1/report", "application/json", nil) //nolint: noctx
	require.NoError(t, err)
	defer res.Body.Close()
	require.Equal(t, http.StatusMethodNotAllowed, res.StatusCode)
}

func TestServer_Pprof(t *testing.T) {
	ts, _, _ := newTestServer(t)

	status, _ := get(t, ts.URL+api.PprofPrefix+"cmdline")
	require.Equal(t, http.StatusOK, status)
}
