package persistence

import (
	"context"
	"fmt"
	"sync"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/domain/shared"
)

// moduleRecords holds one module's sequence behind its own lock
type moduleRecords struct {
	mu      sync.RWMutex
	records []record.AcceptedRecord
}

// MemoryRecordStore implements record.Store in process memory.
// The set of modules is fixed at construction, so lookups need no global lock.
type MemoryRecordStore struct {
	modules map[record.Module]*moduleRecords
}

// NewMemoryRecordStore creates an empty store for the given modules
func NewMemoryRecordStore(modules ...record.Module) *MemoryRecordStore {
	s := &MemoryRecordStore{
		modules: make(map[record.Module]*moduleRecords, len(modules)),
	}
	for _, m := range modules {
		s.modules[m] = &moduleRecords{}
	}
	return s
}

// Append adds a record at the end of the module's sequence
func (s *MemoryRecordStore) Append(ctx context.Context, module record.Module, rec record.AcceptedRecord) error {
	m, err := s.module(module)
	if err != nil {
		return err
	}

	m.mu.Lock()
	m.records = append(m.records, rec)
	m.mu.Unlock()

	return nil
}

// ListAll returns a copy of the module's sequence at the time of the call
func (s *MemoryRecordStore) ListAll(ctx context.Context, module record.Module) ([]record.AcceptedRecord, error) {
	m, err := s.module(module)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	snapshot := make([]record.AcceptedRecord, len(m.records))
	copy(snapshot, m.records)
	return snapshot, nil
}

// IsEmpty reports whether the module has no records
func (s *MemoryRecordStore) IsEmpty(ctx context.Context, module record.Module) (bool, error) {
	n, err := s.Count(ctx, module)
	if err != nil {
		return false, err
	}
	return n == 0, nil
}

// Count returns the number of records held for the module
func (s *MemoryRecordStore) Count(ctx context.Context, module record.Module) (int, error) {
	m, err := s.module(module)
	if err != nil {
		return 0, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records), nil
}

func (s *MemoryRecordStore) module(module record.Module) (*moduleRecords, error) {
	m, ok := s.modules[module]
	if !ok {
		return nil, shared.NewDomainError(record.CodeUnknownModule, fmt.Sprintf("Módulo desconhecido: %s", module))
	}
	return m, nil
}

// Ensure MemoryRecordStore implements record.Store
var _ record.Store = (*MemoryRecordStore)(nil)
