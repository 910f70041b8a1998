package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"domainvar/internal/api"
	"domainvar/internal/config"
	"domainvar/internal/replay"
	"domainvar/internal/snapshot"
	"domainvar/pkg/logger"
	"domainvar/pkg/metrics"
	"domainvar/pkg/restricted"

	"github.com/go-faster/jx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

type replayFlags struct {
	script       string
	fromSnapshot string
	save         string
	format       string
	trace        string
	serve        bool
}

func setupServer(ctx context.Context, cfg *config.Config, deps api.Deps) func(ctx context.Context) {
	server := api.NewServer(deps, api.NewOptions(cfg))

	go func() {
		logger.Info(ctx, "starting webserver...", zap.String("addr", cfg.HTTP.Addr))
		if err := server.ListenAndServe(); err != nil {
			if !errors.Is(err, http.ErrServerClosed) {
				logger.Error(ctx, "could not start webserver", zap.Error(err))
			}
		}
	}()

	return func(ctx context.Context) {
		logger.Info(ctx, "stopping webserver...")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error(ctx, "could not stop webserver", zap.Error(err))
		}
	}
}

// recorders returns a factory attaching an OpenTelemetry recorder to every
// replayed domain, exported through reg.
func recorders(reg prometheus.Registerer) (replay.RecorderFactory, func(context.Context), error) {
	mp, err := api.NewMeterProvider(reg)
	if err != nil {
		return nil, nil, err
	}
	meter := mp.Meter(metrics.MeterName)

	factory := func(domainName string) (restricted.Recorder, error) {
		return metrics.NewRecorder(meter, domainName)
	}
	shutdown := func(ctx context.Context) {
		if err := mp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not shut down meter provider", zap.Error(err))
		}
	}

	return factory, shutdown, nil
}

// seedFromSnapshot replaces the first domain's order and seed with the
// contents of the named snapshot.
func seedFromSnapshot(ctx context.Context, svc snapshot.Service, script *replay.Script, name string) error {
	snap, err := svc.Load(ctx, name)
	if err != nil {
		return fmt.Errorf("could not load snapshot: %w", err)
	}

	script.Domains[0].Order = snap.Order
	script.Domains[0].Seed = snap.Values
	logger.Info(ctx, "seeded domain from snapshot",
		zap.String("domain", script.Domains[0].Name),
		zap.String("snapshot", name),
		zap.Int("values", len(snap.Values)))

	return nil
}

func writeReport(w io.Writer, report *replay.Report, format string) error {
	switch format {
	case "json":
		e := jx.GetEncoder()
		defer jx.PutEncoder(e)
		api.EncodeReport(e, report)
		if _, err := fmt.Fprintln(w, string(e.Bytes())); err != nil {
			return fmt.Errorf("could not write report: %w", err)
		}

		return nil
	default:
		return report.WriteText(w)
	}
}

// tracing builds a tracer provider writing step spans to output ("-" is
// stderr). The returned func shuts the provider down and closes the file.
func tracing(output string) (*sdktrace.TracerProvider, func(context.Context), error) {
	w := io.Writer(os.Stderr)
	closeOutput := func() {}
	if output != "-" {
		f, err := os.Create(output)
		if err != nil {
			return nil, nil, fmt.Errorf("could not create trace output: %w", err)
		}
		w = f
		closeOutput = func() { _ = f.Close() }
	}

	tp, err := replay.NewTracerProvider(w)
	if err != nil {
		closeOutput()

		return nil, nil, err
	}

	return tp, func(ctx context.Context) {
		if err := tp.Shutdown(ctx); err != nil {
			logger.Warn(ctx, "could not shut down tracer provider", zap.Error(err))
		}
		closeOutput()
	}, nil
}

// finishReplay prints the report and, when asked to and only if the replay
// succeeded, saves the final contents of the domain named first. The
// replay error is always part of the returned error.
func finishReplay(ctx context.Context,
	w io.Writer,
	svc snapshot.Service,
	runner *replay.Runner,
	first string,
	report *replay.Report,
	runErr error,
	flags replayFlags) error {
	if err := writeReport(w, report, flags.format); err != nil {
		return errors.Join(runErr, err)
	}
	if flags.save == "" {
		return runErr
	}
	if runErr != nil {
		logger.Warn(ctx, "replay failed, snapshot not saved", zap.String("snapshot", flags.save))

		return runErr
	}

	d, order, _ := runner.Domain(first)
	if _, err := svc.Save(ctx, flags.save, d, order); err != nil {
		return fmt.Errorf("could not save snapshot: %w", err)
	}

	return nil
}

func runReplay(ctx context.Context, cfg *config.Config, flags replayFlags) error {
	script, err := replay.LoadScriptFile(flags.script)
	if err != nil {
		return err
	}

	var svc snapshot.Service
	if flags.fromSnapshot != "" || flags.save != "" {
		strg, closeStrg := getPostgres(ctx, cfg)
		defer closeStrg()
		svc = snapshot.New(strg)
	}
	if flags.fromSnapshot != "" {
		if err := seedFromSnapshot(ctx, svc, script, flags.fromSnapshot); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	opts := replay.Options{
		DefaultOrder:      cfg.Replay.DefaultOrder,
		DefaultMissPolicy: cfg.ReplayMissPolicy(),
	}
	if cfg.Replay.MetricsEnabled {
		factory, shutdown, err := recorders(reg)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
		opts.Recorders = factory
	}
	if flags.trace != "" {
		tp, shutdown, err := tracing(flags.trace)
		if err != nil {
			return err
		}
		defer shutdown(context.Background())
		opts.Tracer = tp.Tracer(replay.TracerName)
	}

	runner, err := replay.NewRunner(ctx, script, opts)
	if err != nil {
		return err
	}

	report, err := runner.Run(ctx)
	err = finishReplay(ctx, os.Stdout, svc, runner, script.Domains[0].Name, report, err, flags)

	if flags.serve {
		store := &api.ReportStore{}
		store.Set(report)

		sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		stopWebserver := setupServer(sigCtx, cfg, api.Deps{Gatherer: reg, Reports: store})

		// wait for interrupt
		<-sigCtx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.GracefulShutdownTimeout)
		defer cancel()

		stopWebserver(shutdownCtx)
	}

	return err
}

func replayCommand(cfg *config.Config) *cobra.Command {
	var flags replayFlags

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Runs a replay script against fresh domains and prints the report",
		Long: `Runs a YAML replay script. Every step is checked against the expectations
the script declares; the command fails when any step does not match.

With --serve the process keeps running after the replay and exposes the
report, Prometheus metrics and pprof over HTTP until interrupted.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd.Context(), cfg, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.script, "script", "s", "", "replay script path")
	cmd.Flags().StringVar(&flags.fromSnapshot, "from-snapshot", "", "seed the first domain from this snapshot")
	cmd.Flags().StringVar(&flags.save, "save", "", "save the first domain's final values under this snapshot name")
	cmd.Flags().StringVarP(&flags.format, "format", "o", "text", "report format: text or json")
	cmd.Flags().StringVar(&flags.trace, "trace", cfg.Replay.TraceOutput,
		`write one JSON span per step to this file ("-" for stderr)`)
	cmd.Flags().BoolVar(&flags.serve, "serve", false, "serve the report and metrics over HTTP until interrupted")
	_ = cmd.MarkFlagRequired("script")

	return cmd
}
