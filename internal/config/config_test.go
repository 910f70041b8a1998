package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"domainvar/internal/config"
	"domainvar/pkg/restricted"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load(filepath.Join(t.TempDir(), "missing.yml"))
	require.NoError(t, err)

	require.Equal(t, "development", cfg.Environment)
	require.Equal(t, ":8080", cfg.HTTP.Addr)
	require.Equal(t, "/metrics", cfg.HTTP.MetricsPath)
	require.Equal(t, "/v1/report", cfg.HTTP.ReportPath)
	require.Equal(t, "domainvar", cfg.Database.DatabaseName)
	require.Equal(t, "lexical", cfg.Replay.DefaultOrder)
	require.Equal(t, restricted.MissReport, cfg.ReplayMissPolicy())
	require.True(t, cfg.Replay.MetricsEnabled)
	require.Empty(t, cfg.Replay.TraceOutput)
	require.Equal(t, 10*time.Second, cfg.GracefulShutdownTimeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := writeConfig(t, `
environment: production
http:
  addr: ":9090"
replay:
  defaultOrder: "collate:de"
  missPolicy: ignore
  traceOutput: "-"
`)
	t.Setenv("DATABASE_HOST", "db.internal")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	require.Equal(t, "production", cfg.Environment)
	require.Equal(t, ":9090", cfg.HTTP.Addr)
	require.Equal(t, "db.internal", cfg.Database.Host)
	require.Equal(t, "collate:de", cfg.Replay.DefaultOrder)
	require.Equal(t, restricted.MissIgnore, cfg.ReplayMissPolicy())
	require.Equal(t, "-", cfg.Replay.TraceOutput)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{name: "order", body: "replay:\n  defaultOrder: sideways\n"},
		{name: "miss policy", body: "replay:\n  missPolicy: shrug\n"},
		{name: "yaml", body: "http: [\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(writeConfig(t, tt.body))
			require.Error(t, err)
		})
	}
}
