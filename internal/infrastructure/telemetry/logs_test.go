package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.IsEnabled())
	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel), "disabled provider yields a no-op core")
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestLoggerProvider_NilZapCore(t *testing.T) {
	var lp *telemetry.LoggerProvider

	assert.False(t, lp.ZapCore(zapcore.InfoLevel).Enabled(zapcore.ErrorLevel))
}

func TestLoggerProvider_EnabledFiltersLevel(t *testing.T) {
	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.LogsConfig{
		Enabled:           true,
		CollectorEndpoint: "localhost:14317",
		ServiceName:       "test-service",
		Insecure:          true,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	require.True(t, lp.IsEnabled())

	core := lp.ZapCore(zapcore.WarnLevel)
	assert.False(t, core.Enabled(zapcore.InfoLevel))
	assert.True(t, core.Enabled(zapcore.ErrorLevel))
	assert.False(t, core.With(nil).Enabled(zapcore.DebugLevel))

	shutdownCtx, cancel := context.WithCancel(ctx)
	cancel()
	_ = lp.Shutdown(shutdownCtx)
}
