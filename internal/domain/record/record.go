package record

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"
)

// System fields assigned on acceptance
const (
	FieldID        = "id"
	FieldTimestamp = "timestamp"
)

// TimestampLayout is RFC 3339 with fixed nanosecond precision and an explicit offset
const TimestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Record is an open mapping of field names to values as submitted by a caller
type Record map[string]any

// Clone returns a deep copy of nested maps and slices
func (r Record) Clone() Record {
	if r == nil {
		return Record{}
	}
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = cloneValue(v)
	}
	return out
}

// Has reports whether the field key is present, regardless of its value
func (r Record) Has(field string) bool {
	_, ok := r[field]
	return ok
}

func cloneValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		m := make(map[string]any, len(t))
		for k, inner := range t {
			m[k] = cloneValue(inner)
		}
		return m
	case Record:
		return t.Clone()
	case []any:
		s := make([]any, len(t))
		for i, inner := range t {
			s[i] = cloneValue(inner)
		}
		return s
	default:
		return v
	}
}

// AcceptedRecord is a record after validation and identity assignment.
// It cannot be modified once built.
type AcceptedRecord struct {
	fields     Record
	id         string
	acceptedAt time.Time
}

// ID returns the assigned identifier
func (a AcceptedRecord) ID() string {
	return a.id
}

// AcceptedAt returns the assigned creation instant
func (a AcceptedRecord) AcceptedAt() time.Time {
	return a.acceptedAt
}

// Get returns a field value, including the system fields
func (a AcceptedRecord) Get(field string) (any, bool) {
	v, ok := a.fields[field]
	return v, ok
}

// Label returns the string form of a field, or an empty string when absent
func (a AcceptedRecord) Label(field string) string {
	v, ok := a.fields[field]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Fields returns a copy of all fields, including id and timestamp
func (a AcceptedRecord) Fields() Record {
	return a.fields.Clone()
}

// MarshalJSON encodes the record as a flat object.
// HTML characters are left unescaped.
func (a AcceptedRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(map[string]any(a.fields)); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}
