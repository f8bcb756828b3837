package record

import "context"

// Store is the append-only per-module collection of accepted records
type Store interface {
	// Append adds a record at the end of the module's sequence
	Append(ctx context.Context, module Module, rec AcceptedRecord) error
	// ListAll returns a snapshot of the module's full sequence in insertion order
	ListAll(ctx context.Context, module Module) ([]AcceptedRecord, error)
	// IsEmpty reports whether the module has no records
	IsEmpty(ctx context.Context, module Module) (bool, error)
	// Count returns the number of records held for the module
	Count(ctx context.Context, module Module) (int, error)
}
