package record

import (
	"time"

	"github.com/google/uuid"
)

// Assigner stamps accepted records with an identifier and a creation instant
type Assigner struct {
	now   func() time.Time
	newID func() string
}

// AssignerOption configures an Assigner
type AssignerOption func(*Assigner)

// WithClock overrides the time source
func WithClock(now func() time.Time) AssignerOption {
	return func(a *Assigner) {
		a.now = now
	}
}

// WithIDGenerator overrides the identifier source
func WithIDGenerator(gen func() string) AssignerOption {
	return func(a *Assigner) {
		a.newID = gen
	}
}

// NewAssigner creates an assigner using random UUIDs and the UTC clock
func NewAssigner(opts ...AssignerOption) *Assigner {
	a := &Assigner{
		now:   func() time.Time { return time.Now().UTC() },
		newID: func() string { return uuid.New().String() },
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Assign returns a new accepted record built from a copy of rec.
// Caller-supplied id and timestamp fields are overwritten. Timestamps are
// always rendered in UTC.
func (a *Assigner) Assign(rec Record) AcceptedRecord {
	now := a.now().UTC()
	id := a.newID()

	fields := rec.Clone()
	fields[FieldID] = id
	fields[FieldTimestamp] = now.Format(TimestampLayout)

	return AcceptedRecord{
		fields:     fields,
		id:         id,
		acceptedAt: now,
	}
}
