package ingestion

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/erp/backoffice/internal/domain/shared"
	"github.com/erp/backoffice/internal/infrastructure/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// MockEventPublisher is a mock implementation of shared.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	args := m.Called(ctx, events)
	return args.Error(0)
}

// failingStore rejects every append
type failingStore struct {
	record.Store
	err error
}

func (s failingStore) Append(ctx context.Context, module record.Module, rec record.AcceptedRecord) error {
	return s.err
}

func newTestService(t *testing.T, opts ...Option) (*Service, record.Store, *observer.ObservedLogs) {
	t.Helper()
	registry := record.DefaultRegistry()
	store := persistence.NewMemoryRecordStore(registry.Modules()...)
	core, logs := observer.New(zapcore.DebugLevel)
	return NewService(registry, store, zap.New(core), opts...), store, logs
}

func financeiroRecord() record.Record {
	return record.Record{
		"identificador": "LF001",
		"data":          "2025-05-23",
		"valor":         1500.00,
		"tipo":          "RECEITA",
		"conta":         "1.1.1.01",
	}
}

func TestService_Submit_Accepted(t *testing.T) {
	fixed := time.Date(2025, 5, 23, 10, 0, 0, 0, time.UTC)
	svc, store, logs := newTestService(t, WithAssigner(record.NewAssigner(
		record.WithClock(func() time.Time { return fixed }),
		record.WithIDGenerator(func() string { return "id-1" }),
	)))
	ctx := context.Background()

	result, err := svc.Submit(ctx, "financeiro", financeiroRecord())
	require.NoError(t, err)
	assert.Equal(t, "Lançamento financeiro criado com sucesso", result.Message)
	assert.Equal(t, "id-1", result.ID)

	records, err := store.ListAll(ctx, record.Financeiro)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, "id-1", records[0].ID())
	assert.Equal(t, "LF001", records[0].Label("identificador"))
	assert.Equal(t, fixed.Format(record.TimestampLayout), records[0].Label(record.FieldTimestamp))

	entries := logs.FilterMessage("Lançamento financeiro criado com sucesso").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "LF001", entries[0].ContextMap()["identificador"])
}

func TestService_Submit_MissingFieldLeavesStoreUntouched(t *testing.T) {
	svc, store, logs := newTestService(t)
	ctx := context.Background()

	rec := financeiroRecord()
	delete(rec, "tipo")
	delete(rec, "conta")

	result, err := svc.Submit(ctx, "financeiro", rec)
	require.Error(t, err)
	assert.Nil(t, result)

	var verr *record.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "tipo", verr.Field)
	assert.Equal(t, "Campo obrigatório ausente: tipo", err.Error())

	count, err := store.Count(ctx, record.Financeiro)
	require.NoError(t, err)
	assert.Zero(t, count)
	assert.Equal(t, 1, logs.FilterMessage("record rejected").Len())
}

func TestService_Submit_NullValueCountsAsPresent(t *testing.T) {
	svc, _, _ := newTestService(t)

	rec := financeiroRecord()
	rec["conta"] = nil

	_, err := svc.Submit(context.Background(), "financeiro", rec)
	assert.NoError(t, err)
}

func TestService_Submit_UnknownModule(t *testing.T) {
	svc, _, _ := newTestService(t)

	_, err := svc.Submit(context.Background(), "marketing", record.Record{"x": 1})
	require.Error(t, err)
	assert.ErrorIs(t, err, record.ErrUnknownModule)
}

func TestService_Submit_OverwritesCallerSystemFields(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	rec := financeiroRecord()
	rec[record.FieldID] = "caller-id"
	rec[record.FieldTimestamp] = "yesterday"

	result, err := svc.Submit(ctx, "financeiro", rec)
	require.NoError(t, err)
	assert.NotEqual(t, "caller-id", result.ID)
	assert.Equal(t, "caller-id", rec[record.FieldID], "input must not be mutated")

	records, err := store.ListAll(ctx, record.Financeiro)
	require.NoError(t, err)
	assert.Equal(t, result.ID, records[0].Label(record.FieldID))
	assert.NotEqual(t, "yesterday", records[0].Label(record.FieldTimestamp))
}

func TestService_Submit_ConcurrentUniqueIDs(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Submit(ctx, "estoque", record.Record{
				"codigo": "P001", "descricao": "Produto", "unidade": "UN", "preco": 10,
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	records, err := store.ListAll(ctx, record.Estoque)
	require.NoError(t, err)
	require.Len(t, records, n)

	seen := make(map[string]bool, n)
	for _, r := range records {
		assert.NotEmpty(t, r.ID())
		assert.False(t, seen[r.ID()], "duplicate id %s", r.ID())
		seen[r.ID()] = true
	}
}

func TestService_Submit_TimestampsNonDecreasing(t *testing.T) {
	svc, store, _ := newTestService(t)
	ctx := context.Background()

	const n = 100
	for i := 0; i < n; i++ {
		_, err := svc.Submit(ctx, "financeiro", financeiroRecord())
		require.NoError(t, err)
	}

	records, err := store.ListAll(ctx, record.Financeiro)
	require.NoError(t, err)
	require.Len(t, records, n)

	for i := 1; i < n; i++ {
		prev, cur := records[i-1], records[i]
		assert.False(t, prev.AcceptedAt().After(cur.AcceptedAt()),
			"record %d accepted before record %d", i, i-1)
		assert.LessOrEqual(t, prev.Label(record.FieldTimestamp), cur.Label(record.FieldTimestamp))
	}
}

func TestService_Submit_EveryMissingFieldRejected(t *testing.T) {
	registry := record.DefaultRegistry()
	ctx := context.Background()

	for _, module := range registry.Modules() {
		fields, err := registry.RequiredFields(module.String())
		require.NoError(t, err)

		for _, missing := range fields {
			t.Run(module.String()+"/"+missing, func(t *testing.T) {
				svc, store, _ := newTestService(t)

				valid := make(record.Record, len(fields))
				for _, f := range fields {
					valid[f] = "x"
				}
				_, err := svc.Submit(ctx, module.String(), valid)
				require.NoError(t, err)
				before, err := store.Count(ctx, module)
				require.NoError(t, err)

				rec := valid.Clone()
				delete(rec, missing)
				_, err = svc.Submit(ctx, module.String(), rec)

				var verr *record.ValidationError
				require.ErrorAs(t, err, &verr)
				assert.Equal(t, missing, verr.Field)

				after, err := store.Count(ctx, module)
				require.NoError(t, err)
				assert.Equal(t, before, after)
			})
		}
	}
}

func TestService_Submit_PublishesAcceptedEvent(t *testing.T) {
	publisher := new(MockEventPublisher)
	svc, _, _ := newTestService(t, WithPublisher(publisher))

	publisher.On("Publish", mock.Anything, mock.MatchedBy(func(events []shared.DomainEvent) bool {
		if len(events) != 1 {
			return false
		}
		e, ok := events[0].(*record.RecordAcceptedEvent)
		return ok && e.Module == record.Fiscal && e.EventType() == record.EventTypeRecordAccepted
	})).Return(nil).Once()

	_, err := svc.Submit(context.Background(), "fiscal", record.Record{
		"numero": "NF001", "data": "2025-05-23", "valor": 1500, "cliente": "Cliente", "itens": []any{},
	})
	require.NoError(t, err)
	publisher.AssertExpectations(t)
}

func TestService_Submit_PublishFailureDoesNotFail(t *testing.T) {
	publisher := new(MockEventPublisher)
	svc, store, logs := newTestService(t, WithPublisher(publisher))
	publisher.On("Publish", mock.Anything, mock.Anything).Return(errors.New("bus down"))

	_, err := svc.Submit(context.Background(), "financeiro", financeiroRecord())
	require.NoError(t, err)

	count, _ := store.Count(context.Background(), record.Financeiro)
	assert.Equal(t, 1, count)
	assert.Equal(t, 1, logs.FilterMessage("failed to publish record accepted event").Len())
}

func TestService_Submit_StoreFailure(t *testing.T) {
	registry := record.DefaultRegistry()
	storeErr := errors.New("store closed")
	svc := NewService(registry, failingStore{err: storeErr}, zap.NewNop())

	_, err := svc.Submit(context.Background(), "financeiro", financeiroRecord())
	assert.ErrorIs(t, err, storeErr)
}

func TestService_List(t *testing.T) {
	svc, _, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.Submit(ctx, "financeiro", financeiroRecord())
	require.NoError(t, err)

	first, err := svc.List(ctx, "financeiro")
	require.NoError(t, err)
	second, err := svc.List(ctx, "financeiro")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	_, err = svc.List(ctx, "marketing")
	assert.ErrorIs(t, err, record.ErrUnknownModule)
}

func TestService_Modules(t *testing.T) {
	svc, _, _ := newTestService(t)
	assert.Equal(t, record.DefaultRegistry().Modules(), svc.Modules())
}
