// Package ingestion accepts records submitted to the back-office modules.
package ingestion

import (
	"context"
	"errors"
	"time"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// SubmitResult acknowledges an accepted record
type SubmitResult struct {
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Service validates, stamps and stores records for every registered module
type Service struct {
	registry  *record.Registry
	store     record.Store
	assigner  *record.Assigner
	publisher shared.EventPublisher
	metrics   *telemetry.IngestionMetrics
	logger    *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithAssigner replaces the default identity assigner
func WithAssigner(assigner *record.Assigner) Option {
	return func(s *Service) {
		s.assigner = assigner
	}
}

// WithPublisher publishes a RecordAccepted event for each accepted record
func WithPublisher(publisher shared.EventPublisher) Option {
	return func(s *Service) {
		s.publisher = publisher
	}
}

// WithMetrics records submission counters and latency
func WithMetrics(metrics *telemetry.IngestionMetrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// NewService creates a new ingestion service
func NewService(registry *record.Registry, store record.Store, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		store:    store,
		assigner: record.NewAssigner(),
		logger:   logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Submit validates rec against the module schema and appends it to the module store.
// On a validation failure the store is left untouched.
func (s *Service) Submit(ctx context.Context, module string, rec record.Record) (*SubmitResult, error) {
	start := time.Now()
	ctx, span := telemetry.StartServiceSpan(ctx, "ingestion", "submit",
		attribute.String(telemetry.SpanAttrModule, module))
	defer span.End()

	schema, err := s.registry.Schema(module)
	if err != nil {
		s.metrics.RecordSubmission(ctx, module, telemetry.OutcomeUnknown, time.Since(start))
		telemetry.RecordError(span, err)
		return nil, err
	}

	if err := record.Validate(rec, schema.RequiredFields); err != nil {
		var verr *record.ValidationError
		if errors.As(err, &verr) {
			span.SetAttributes(attribute.String(telemetry.SpanAttrField, verr.Field))
		}
		s.metrics.RecordSubmission(ctx, module, telemetry.OutcomeRejected, time.Since(start))
		telemetry.RecordError(span, err)
		s.logger.Warn("record rejected",
			zap.String("module", module),
			zap.Error(err),
		)
		return nil, err
	}

	accepted := s.assigner.Assign(rec)

	var appendErr error
	telemetry.WithModuleLabel(ctx, module, func(ctx context.Context) {
		appendErr = s.store.Append(ctx, schema.Module, accepted)
	})
	if appendErr != nil {
		s.metrics.RecordSubmission(ctx, module, telemetry.OutcomeFailed, time.Since(start))
		telemetry.RecordError(span, appendErr)
		s.logger.Error("failed to store record",
			zap.String("module", module),
			zap.String("id", accepted.ID()),
			zap.Error(appendErr),
		)
		return nil, appendErr
	}

	s.logger.Info(schema.Message,
		zap.String("module", module),
		zap.String("id", accepted.ID()),
		zap.String(schema.LabelField, accepted.Label(schema.LabelField)),
	)

	if s.publisher != nil {
		// Handlers are best effort; their failures never undo the acceptance
		if err := s.publisher.Publish(ctx, record.NewRecordAcceptedEvent(schema.Module, accepted)); err != nil {
			s.logger.Error("failed to publish record accepted event",
				zap.String("module", module),
				zap.String("id", accepted.ID()),
				zap.Error(err),
			)
		}
	}

	s.metrics.RecordSubmission(ctx, module, telemetry.OutcomeAccepted, time.Since(start))
	span.SetAttributes(attribute.String(telemetry.SpanAttrRecordID, accepted.ID()))
	telemetry.SetOK(span)

	return &SubmitResult{
		Message: schema.Message,
		ID:      accepted.ID(),
	}, nil
}

// List returns a snapshot of every record accepted for the module
func (s *Service) List(ctx context.Context, module string) ([]record.AcceptedRecord, error) {
	schema, err := s.registry.Schema(module)
	if err != nil {
		return nil, err
	}
	return s.store.ListAll(ctx, schema.Module)
}

// Modules returns the registered modules in registry order
func (s *Service) Modules() []record.Module {
	return s.registry.Modules()
}
