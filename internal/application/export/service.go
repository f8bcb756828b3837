// Package export writes each module's accepted records to an artifact.
package export

import (
	"context"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/infrastructure/artifact"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Result lists the modules written and the modules that failed
type Result struct {
	Exported []string `json:"modulos"`
	Failed   []string `json:"falhas"`
}

// Service exports module snapshots to an artifact sink
type Service struct {
	registry *record.Registry
	store    record.Store
	sink     artifact.Sink
	metrics  *telemetry.IngestionMetrics
	logger   *zap.Logger
}

// NewService creates a new export service. metrics may be nil.
func NewService(
	registry *record.Registry,
	store record.Store,
	sink artifact.Sink,
	metrics *telemetry.IngestionMetrics,
	logger *zap.Logger,
) *Service {
	return &Service{
		registry: registry,
		store:    store,
		sink:     sink,
		metrics:  metrics,
		logger:   logger,
	}
}

// ArtifactName returns the export artifact name of a module
func ArtifactName(module record.Module) string {
	return module.String() + ".json"
}

// ExportAll writes one <module>.json artifact per non-empty module.
// A failing module is logged and recorded in Result.Failed; the remaining
// modules are still attempted. Only context cancellation stops the run early.
func (s *Service) ExportAll(ctx context.Context) (*Result, error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "export", "export_all")
	defer span.End()

	result := &Result{
		Exported: []string{},
		Failed:   []string{},
	}

	for _, module := range s.registry.Modules() {
		if err := ctx.Err(); err != nil {
			telemetry.RecordError(span, err)
			return result, err
		}

		records, err := s.store.ListAll(ctx, module)
		if err != nil {
			s.fail(ctx, result, module, err)
			continue
		}
		if len(records) == 0 {
			continue
		}

		data, err := artifact.Encode(records)
		if err != nil {
			s.fail(ctx, result, module, err)
			continue
		}

		location, err := s.sink.Write(ctx, artifact.KindExport, ArtifactName(module), data)
		if err != nil {
			s.fail(ctx, result, module, err)
			continue
		}

		s.metrics.RecordArtifact(ctx, string(artifact.KindExport), nil)
		telemetry.AddEvent(span, "module.exported",
			attribute.String(telemetry.SpanAttrModule, module.String()),
			attribute.Int(telemetry.SpanAttrRecordSize, len(records)),
		)
		s.logger.Info("Dados exportados",
			zap.String("module", module.String()),
			zap.Int("records", len(records)),
			zap.String("artifact", location),
		)
		result.Exported = append(result.Exported, module.String())
	}

	telemetry.SetOK(span)
	return result, nil
}

func (s *Service) fail(ctx context.Context, result *Result, module record.Module, err error) {
	s.metrics.RecordArtifact(ctx, string(artifact.KindExport), err)
	s.logger.Error("Erro ao exportar dados",
		zap.String("module", module.String()),
		zap.Error(err),
	)
	result.Failed = append(result.Failed, module.String())
}
