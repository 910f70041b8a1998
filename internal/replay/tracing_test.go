package replay_test

import (
	"bytes"
	"context"
	"testing"

	"domainvar/internal/replay"

	"github.com/stretchr/testify/require"
)

func TestNewTracerProvider_ExportsStepSpans(t *testing.T) {
	var out bytes.Buffer
	tp, err := replay.NewTracerProvider(&out)
	require.NoError(t, err)

	script := loadScript(t, `
name: traced
domains:
  - name: letters
    seed: [a, b]
steps:
  - op: remove
    value: a
  - op: expect
    values: [b]
`)
	r, err := replay.NewRunner(context.Background(), script, replay.Options{Tracer: tp.Tracer(replay.TracerName)})
	require.NoError(t, err)

	_, err = r.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, tp.Shutdown(context.Background()))

	got := out.String()
	require.Equal(t, 2, bytes.Count(out.Bytes(), []byte(`"Name":"replay.step"`)))
	require.Contains(t, got, `"step.op"`)
	require.Contains(t, got, replay.ServiceName)
	require.Contains(t, got, replay.TracerName)
}
