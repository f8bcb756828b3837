// Package report computes module statistics and writes report artifacts.
package report

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/backoffice/internal/domain/record"
	domainreport "github.com/erp/backoffice/internal/domain/report"
	"github.com/erp/backoffice/internal/infrastructure/artifact"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// NameLayout formats the creation instant in report artifact names
const NameLayout = "20060102_150405"

// Result is a generated report and the artifact it was written to
type Result struct {
	Report   *domainreport.Report
	Name     string
	Location string
}

// Service generates reports over the module stores
type Service struct {
	registry *record.Registry
	store    record.Store
	sink     artifact.Sink
	metrics  *telemetry.IngestionMetrics
	logger   *zap.Logger
	now      func() time.Time

	mu    sync.Mutex
	names map[string]int
}

// Option configures a Service
type Option func(*Service)

// WithClock overrides the time source
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// WithMetrics counts report artifact writes
func WithMetrics(metrics *telemetry.IngestionMetrics) Option {
	return func(s *Service) {
		s.metrics = metrics
	}
}

// NewService creates a new report service
func NewService(registry *record.Registry, store record.Store, sink artifact.Sink, logger *zap.Logger, opts ...Option) *Service {
	s := &Service{
		registry: registry,
		store:    store,
		sink:     sink,
		logger:   logger,
		now:      func() time.Time { return time.Now().UTC() },
		names:    make(map[string]int),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Build computes the statistics of every module without writing an artifact
func (s *Service) Build(ctx context.Context) (*domainreport.Report, error) {
	return s.build(ctx, s.now().UTC())
}

func (s *Service) build(ctx context.Context, at time.Time) (*domainreport.Report, error) {
	modules := s.registry.Modules()
	r := &domainreport.Report{
		Timestamp:    at.Format(record.TimestampLayout),
		Estatisticas: make(domainreport.Statistics, 0, len(modules)),
	}

	for _, module := range modules {
		records, err := s.store.ListAll(ctx, module)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s records: %w", module, err)
		}

		stats, skipped := domainreport.Summarize(module, records)
		for _, sk := range skipped {
			s.logger.Warn("non-numeric value ignored in report",
				zap.String("module", module.String()),
				zap.String("id", sk.RecordID),
				zap.String("field", sk.Field),
				zap.Any("value", sk.Value),
			)
		}
		r.Estatisticas = append(r.Estatisticas, domainreport.ModuleEntry{Module: module, Stats: stats})
	}
	return r, nil
}

// Generate computes the report and writes it to relatorio_<YYYYMMDD_HHMMSS>.json.
// A name already produced by this service gets a numeric suffix.
func (s *Service) Generate(ctx context.Context) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "report", "generate")
	defer span.End()

	at := s.now().UTC()
	r, err := s.build(ctx, at)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, err
	}

	data, err := artifact.Encode(r)
	if err != nil {
		telemetry.RecordError(span, err)
		return nil, fmt.Errorf("failed to encode report: %w", err)
	}

	name := s.reserveName(at)
	location, err := s.sink.Write(ctx, artifact.KindReport, name, data)
	s.metrics.RecordArtifact(ctx, string(artifact.KindReport), err)
	if err != nil {
		telemetry.RecordError(span, err)
		s.logger.Error("Erro ao gerar relatório",
			zap.String("artifact", name),
			zap.Error(err),
		)
		return nil, fmt.Errorf("failed to write report %s: %w", name, err)
	}

	span.SetAttributes(attribute.String(telemetry.SpanAttrArtifact, name))
	telemetry.SetOK(span)
	s.logger.Info("Relatório gerado",
		zap.String("artifact", location),
	)

	return &Result{
		Report:   r,
		Name:     name,
		Location: location,
	}, nil
}

// reserveName returns a report name unique within this service
func (s *Service) reserveName(at time.Time) string {
	base := "relatorio_" + at.Format(NameLayout)

	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.names[base]
	s.names[base] = n + 1
	if n == 0 {
		return base + ".json"
	}
	return fmt.Sprintf("%s_%d.json", base, n)
}
