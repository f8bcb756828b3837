package telemetry_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{Enabled: false}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestNewIngestionMetrics_NilMeter(t *testing.T) {
	m, err := telemetry.NewIngestionMetrics(nil)
	assert.ErrorIs(t, err, telemetry.ErrMeterNil)
	assert.Nil(t, m)
}

func TestIngestionMetrics_NilReceiverIsNoop(t *testing.T) {
	var m *telemetry.IngestionMetrics

	assert.NotPanics(t, func() {
		m.RecordSubmission(context.Background(), "rh", telemetry.OutcomeAccepted, time.Millisecond)
		m.RecordArtifact(context.Background(), "export", nil)
		m.RecordEventFailure(context.Background(), "RecordAccepted")
	})
}

func TestIngestionMetrics_NoopMeter(t *testing.T) {
	m, err := telemetry.NewIngestionMetrics(noop.NewMeterProvider().Meter("test"))
	require.NoError(t, err)

	m.RecordSubmission(context.Background(), "rh", telemetry.OutcomeAccepted, time.Millisecond)
}

func TestIngestionMetrics_Records(t *testing.T) {
	ctx := context.Background()
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(ctx) })

	m, err := telemetry.NewIngestionMetrics(provider.Meter("test"))
	require.NoError(t, err)

	m.RecordSubmission(ctx, "financeiro", telemetry.OutcomeAccepted, 2*time.Millisecond)
	m.RecordSubmission(ctx, "financeiro", telemetry.OutcomeAccepted, time.Millisecond)
	m.RecordSubmission(ctx, "financeiro", telemetry.OutcomeRejected, time.Millisecond)
	m.RecordArtifact(ctx, "fiscal", nil)
	m.RecordArtifact(ctx, "fiscal", errors.New("boom"))

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(ctx, &rm))

	submissions := findSum(t, rm, "backoffice_submissions_total")
	accepted := attribute.NewSet(telemetry.AttrModule.String("financeiro"), telemetry.AttrOutcome.String(telemetry.OutcomeAccepted))
	rejected := attribute.NewSet(telemetry.AttrModule.String("financeiro"), telemetry.AttrOutcome.String(telemetry.OutcomeRejected))
	assert.Equal(t, int64(2), valueFor(submissions, accepted))
	assert.Equal(t, int64(1), valueFor(submissions, rejected))

	kind := attribute.NewSet(telemetry.AttrKind.String("fiscal"))
	assert.Equal(t, int64(1), valueFor(findSum(t, rm, "backoffice_artifact_writes_total"), kind))
	assert.Equal(t, int64(1), valueFor(findSum(t, rm, "backoffice_artifact_failures_total"), kind))
}

func findSum(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "metric %s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not found", name)
	return metricdata.Sum[int64]{}
}

func valueFor(sum metricdata.Sum[int64], attrs attribute.Set) int64 {
	for _, dp := range sum.DataPoints {
		if dp.Attributes.Equals(&attrs) {
			return dp.Value
		}
	}
	return 0
}
