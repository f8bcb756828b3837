package ingestion

import (
	"context"
	"fmt"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/artifact"
	"github.com/erp/backoffice/internal/infrastructure/telemetry"
	"go.uber.org/zap"
)

// FiscalNumberField names the fiscal record field used in the document name
const FiscalNumberField = "numero"

// FiscalDocumentHandler writes each accepted fiscal record to its own NF_<numero>.json artifact
type FiscalDocumentHandler struct {
	sink    artifact.Sink
	metrics *telemetry.IngestionMetrics
	logger  *zap.Logger
}

// NewFiscalDocumentHandler creates a new handler for accepted fiscal records
func NewFiscalDocumentHandler(sink artifact.Sink, metrics *telemetry.IngestionMetrics, logger *zap.Logger) *FiscalDocumentHandler {
	return &FiscalDocumentHandler{
		sink:    sink,
		metrics: metrics,
		logger:  logger,
	}
}

// EventTypes returns the event types this handler is interested in
func (h *FiscalDocumentHandler) EventTypes() []string {
	return []string{record.EventTypeRecordAccepted}
}

// Handle writes the fiscal document. Records of other modules are ignored.
func (h *FiscalDocumentHandler) Handle(ctx context.Context, event shared.DomainEvent) error {
	accepted, ok := event.(*record.RecordAcceptedEvent)
	if !ok {
		return fmt.Errorf("unexpected event type: expected %s, got %s",
			record.EventTypeRecordAccepted, event.EventType())
	}
	if accepted.Module != record.Fiscal {
		return nil
	}

	name := DocumentName(accepted.Record.Label(FiscalNumberField))

	data, err := artifact.Encode(accepted.Record)
	if err == nil {
		_, err = h.sink.Write(ctx, artifact.KindFiscal, name, data)
	}
	h.metrics.RecordArtifact(ctx, string(artifact.KindFiscal), err)
	if err != nil {
		h.logger.Error("Erro ao salvar nota fiscal",
			zap.String("id", accepted.Record.ID()),
			zap.String("artifact", name),
			zap.Error(err),
		)
		return fmt.Errorf("failed to write fiscal document %s: %w", name, err)
	}

	h.logger.Debug("fiscal document written",
		zap.String("id", accepted.Record.ID()),
		zap.String("artifact", name),
	)
	return nil
}

// DocumentName builds the artifact name for a fiscal document number
func DocumentName(numero string) string {
	return "NF_" + artifact.SanitizeName(numero) + ".json"
}

// Ensure FiscalDocumentHandler implements shared.EventHandler
var _ shared.EventHandler = (*FiscalDocumentHandler)(nil)
