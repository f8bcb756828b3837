package record

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssigner_Assign(t *testing.T) {
	fixed := time.Date(2023, 5, 10, 14, 30, 0, 123000000, time.FixedZone("BRT", -3*60*60))
	assigner := NewAssigner(
		WithClock(func() time.Time { return fixed }),
		WithIDGenerator(func() string { return "fixed-id" }),
	)

	input := Record{"identificador": "LF001", "id": "caller-id", "timestamp": "yesterday"}
	accepted := assigner.Assign(input)

	assert.Equal(t, "fixed-id", accepted.ID())
	assert.True(t, fixed.Equal(accepted.AcceptedAt()))
	assert.Equal(t, time.UTC, accepted.AcceptedAt().Location())

	id, _ := accepted.Get(FieldID)
	ts, _ := accepted.Get(FieldTimestamp)
	assert.Equal(t, "fixed-id", id)
	assert.Equal(t, "2023-05-10T17:30:00.123000000Z", ts)

	assert.Equal(t, "caller-id", input["id"], "input record must stay untouched")
	assert.Equal(t, "yesterday", input["timestamp"])
}

func TestAssigner_DefaultsProduceUUIDAndRFC3339(t *testing.T) {
	assigner := NewAssigner()

	accepted := assigner.Assign(Record{"codigo": "P1"})

	_, err := uuid.Parse(accepted.ID())
	require.NoError(t, err)

	ts, ok := accepted.Get(FieldTimestamp)
	require.True(t, ok)
	parsed, err := time.Parse(time.RFC3339Nano, ts.(string))
	require.NoError(t, err)
	assert.True(t, parsed.Equal(accepted.AcceptedAt()))
}

func TestAssigner_UniqueIDs(t *testing.T) {
	assigner := NewAssigner()
	seen := make(map[string]struct{})

	for i := 0; i < 1000; i++ {
		id := assigner.Assign(Record{}).ID()
		_, dup := seen[id]
		require.False(t, dup, "duplicate id %s", id)
		seen[id] = struct{}{}
	}
}

func TestAcceptedRecord_IsolatedFromInput(t *testing.T) {
	assigner := NewAssigner()
	itens := []any{map[string]any{"produto": "A", "quantidade": 1.0}}
	input := Record{"numero": "NF1", "itens": itens}

	accepted := assigner.Assign(input)
	itens[0].(map[string]any)["produto"] = "B"
	input["numero"] = "NF2"

	assert.Equal(t, "NF1", accepted.Label("numero"))
	stored, _ := accepted.Get("itens")
	assert.Equal(t, "A", stored.([]any)[0].(map[string]any)["produto"])

	fields := accepted.Fields()
	fields["numero"] = "NF3"
	assert.Equal(t, "NF1", accepted.Label("numero"))
}

func TestAssigner_TimestampsSortAcrossOffsetChange(t *testing.T) {
	ny, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skip("tz database not available")
	}
	// 01:50 EDT is followed 30 minutes later by 01:20 EST
	earlier := time.Date(2024, 11, 3, 5, 50, 0, 0, time.UTC).In(ny)
	later := earlier.Add(30 * time.Minute)

	clock := []time.Time{earlier, later}
	assigner := NewAssigner(WithClock(func() time.Time {
		now := clock[0]
		clock = clock[1:]
		return now
	}))

	first := assigner.Assign(Record{}).Label(FieldTimestamp)
	second := assigner.Assign(Record{}).Label(FieldTimestamp)

	assert.Equal(t, "2024-11-03T05:50:00.000000000Z", first)
	assert.Equal(t, "2024-11-03T06:20:00.000000000Z", second)
	assert.Less(t, first, second)
}

func TestAssigner_DefaultClockIsUTC(t *testing.T) {
	ts := NewAssigner().Assign(Record{}).Label(FieldTimestamp)

	assert.True(t, strings.HasSuffix(ts, "Z"), "timestamp %s must be UTC", ts)
}
