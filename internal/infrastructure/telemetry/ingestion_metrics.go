package telemetry

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel/metric"
)

// Submission outcomes
const (
	OutcomeAccepted = "accepted"
	OutcomeRejected = "rejected"
	OutcomeUnknown  = "unknown_module"
	OutcomeFailed   = "failed"
)

// ErrMeterNil is returned when a metrics set is built without a meter.
var ErrMeterNil = errors.New("telemetry: meter cannot be nil")

// IngestionMetrics counts submissions, artifact writes and report runs.
type IngestionMetrics struct {
	submissions      *Counter
	submitDuration   *Histogram
	artifactWrites   *Counter
	artifactFailures *Counter
	eventFailures    *Counter
}

// NewIngestionMetrics registers the ingestion instruments on meter.
func NewIngestionMetrics(meter metric.Meter) (*IngestionMetrics, error) {
	if meter == nil {
		return nil, ErrMeterNil
	}

	var (
		m   IngestionMetrics
		err error
	)

	if m.submissions, err = NewCounter(meter,
		"backoffice_submissions_total",
		"Record submissions by module and outcome",
		"{submissions}",
	); err != nil {
		return nil, err
	}

	if m.submitDuration, err = NewHistogram(meter, HistogramOpts{
		Name:        "backoffice_submission_duration_seconds",
		Description: "Time spent validating and storing a submission",
		Unit:        "s",
		Boundaries:  SmallDurationBuckets,
	}); err != nil {
		return nil, err
	}

	if m.artifactWrites, err = NewCounter(meter,
		"backoffice_artifact_writes_total",
		"Artifacts written by kind",
		"{artifacts}",
	); err != nil {
		return nil, err
	}

	if m.artifactFailures, err = NewCounter(meter,
		"backoffice_artifact_failures_total",
		"Artifact writes that failed by kind",
		"{artifacts}",
	); err != nil {
		return nil, err
	}

	if m.eventFailures, err = NewCounter(meter,
		"backoffice_event_handler_failures_total",
		"Event handler invocations that failed",
		"{events}",
	); err != nil {
		return nil, err
	}

	return &m, nil
}

// RecordSubmission counts one submission and its latency.
func (m *IngestionMetrics) RecordSubmission(ctx context.Context, module, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.submissions.Inc(ctx, AttrModule.String(module), AttrOutcome.String(outcome))
	m.submitDuration.RecordDuration(ctx, d, AttrModule.String(module))
}

// RecordArtifact counts one artifact write, successful or not.
func (m *IngestionMetrics) RecordArtifact(ctx context.Context, kind string, err error) {
	if m == nil {
		return
	}
	if err != nil {
		m.artifactFailures.Inc(ctx, AttrKind.String(kind))
		return
	}
	m.artifactWrites.Inc(ctx, AttrKind.String(kind))
}

// RecordEventFailure counts one failed event handler invocation.
func (m *IngestionMetrics) RecordEventFailure(ctx context.Context, eventType string) {
	if m == nil {
		return
	}
	m.eventFailures.Inc(ctx, AttrEvent.String(eventType))
}
