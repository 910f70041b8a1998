// Package api configures and exposes the observation HTTP server: Prometheus
// metrics, the last replay report and pprof endpoints.
package api

import (
	"fmt"
	"net/http"
	"time"

	"domainvar/internal/config"
	"domainvar/pkg/controller"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// PprofPrefix is where the pprof handlers are mounted.
const PprofPrefix = "/debug/pprof/"

// Options holds configuration for the HTTP server.
// It is typically created from a config.Config via NewOptions.
type Options struct {
	// Addr is the TCP address the server listens on, e.g. ":8080".
	Addr string
	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration
	// ReadHeaderTimeout is the amount of time allowed to read request headers.
	ReadHeaderTimeout time.Duration
	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration
	// IdleTimeout is the maximum amount of time to wait for the next request when keep-alives are enabled.
	IdleTimeout time.Duration
	// RequestTimeout is the global timeout applied via http.TimeoutHandler for handling requests.
	RequestTimeout time.Duration
	// MaxHeaderBytes controls the maximum number of bytes the server
	// will read parsing the request header's keys and values, including the request line.
	MaxHeaderBytes int
	// MetricsPath is the HTTP path at which Prometheus metrics are served.
	MetricsPath string
	// ReportPath is the HTTP path at which the last replay report is served.
	ReportPath string
}

// NewOptions constructs an Options value from the provided application configuration.
func NewOptions(cfg *config.Config) Options {
	return Options{
		Addr:              cfg.HTTP.Addr,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
		IdleTimeout:       cfg.HTTP.IdleTimeout,
		RequestTimeout:    cfg.HTTP.RequestTimeout,
		MaxHeaderBytes:    cfg.HTTP.MaxHeaderBytes,
		MetricsPath:       cfg.HTTP.MetricsPath,
		ReportPath:        cfg.HTTP.ReportPath,
	}
}

// Deps are the data sources the server exposes.
type Deps struct {
	// Gatherer backs the metrics endpoint. Defaults to prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer
	// Reports backs the report endpoint.
	Reports *ReportStore
}

// NewMeterProvider returns an OpenTelemetry MeterProvider whose instruments
// are exported through reg, so they appear on the metrics endpoint.
func NewMeterProvider(reg prometheus.Registerer) (*sdkmetric.MeterProvider, error) {
	exp, err := otelprom.New(otelprom.WithRegisterer(reg))
	if err != nil {
		return nil, fmt.Errorf("could not create otel exporter: %w", err)
	}

	return sdkmetric.NewMeterProvider(sdkmetric.WithReader(exp)), nil
}

// NewServer wires up and returns a configured *http.Server using the provided Options.
// It sets up:
// - Prometheus metrics endpoint (MetricsPath)
// - the last replay report as JSON (ReportPath)
// - pprof endpoints for profiling
// It also wraps the mux with the logging middleware and applies a request timeout.
func NewServer(deps Deps, opts Options) *http.Server {
	gatherer := deps.Gatherer
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}
	reports := deps.Reports
	if reports == nil {
		reports = &ReportStore{}
	}
	if opts.MetricsPath == "" {
		opts.MetricsPath = "/metrics"
	}
	if opts.ReportPath == "" {
		opts.ReportPath = "/v1/report"
	}

	mux := http.NewServeMux()

	// prometheus metrics server
	mux.Handle(opts.MetricsPath, promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))

	// replay report
	mux.Handle("GET "+opts.ReportPath, reportHandler(reports))

	// pprof
	mux.Handle(PprofPrefix, controller.PprofMux(PprofPrefix))

	// logger
	handler := controller.WithLogger(mux, opts.MetricsPath)

	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = opts.ReadTimeout
	}
	if timeout > 0 {
		handler = http.TimeoutHandler(handler, timeout, `{"error":{"kind":"INTERNAL","message":"request timed out"}}`)
	}

	return &http.Server{
		Addr:              opts.Addr,
		Handler:           handler,
		ReadTimeout:       opts.ReadTimeout,
		ReadHeaderTimeout: opts.ReadHeaderTimeout,
		WriteTimeout:      opts.WriteTimeout,
		IdleTimeout:       opts.IdleTimeout,
		MaxHeaderBytes:    opts.MaxHeaderBytes,
	}
}
