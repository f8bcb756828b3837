package record

import (
	"github.com/erp/backoffice/internal/domain/shared"
)

// EventTypeRecordAccepted is published after a record is appended to its module store
const EventTypeRecordAccepted = "RecordAccepted"

// RecordAcceptedEvent carries an accepted record to downstream handlers
type RecordAcceptedEvent struct {
	shared.BaseDomainEvent
	Module Module         `json:"module"`
	Record AcceptedRecord `json:"record"`
}

// NewRecordAcceptedEvent creates the event for an accepted record
func NewRecordAcceptedEvent(module Module, rec AcceptedRecord) *RecordAcceptedEvent {
	return &RecordAcceptedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeRecordAccepted, module.String(), rec.ID()),
		Module:          module,
		Record:          rec,
	}
}
