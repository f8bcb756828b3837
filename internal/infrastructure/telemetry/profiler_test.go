package telemetry_test

import (
	"context"
	"runtime/pprof"
	"testing"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_Validation(t *testing.T) {
	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ApplicationName: "app"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")

	_, err = telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true, ServerAddress: "http://localhost:4040"}, zaptest.NewLogger(t))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")
}

func TestWithModuleLabel(t *testing.T) {
	var label string
	var found bool

	telemetry.WithModuleLabel(context.Background(), "estoque", func(ctx context.Context) {
		label, found = pprof.Label(ctx, "module")
	})

	assert.True(t, found)
	assert.Equal(t, "estoque", label)
}

func TestWithProfilingLabels(t *testing.T) {
	labels := map[string]string{
		telemetry.ProfilingLabelRoute:  "/api/fiscal/notas-fiscais",
		telemetry.ProfilingLabelMethod: "POST",
		telemetry.ProfilingLabelModule: "",
	}

	var route, method string
	var moduleFound bool
	telemetry.WithProfilingLabels(context.Background(), labels, func(ctx context.Context) {
		route, _ = pprof.Label(ctx, telemetry.ProfilingLabelRoute)
		method, _ = pprof.Label(ctx, telemetry.ProfilingLabelMethod)
		_, moduleFound = pprof.Label(ctx, telemetry.ProfilingLabelModule)
	})

	assert.Equal(t, "/api/fiscal/notas-fiscais", route)
	assert.Equal(t, "POST", method)
	assert.False(t, moduleFound)
}

func TestWithProfilingLabels_Empty(t *testing.T) {
	called := false
	telemetry.WithProfilingLabels(context.Background(), nil, func(ctx context.Context) {
		called = true
	})
	assert.True(t, called)
}
