package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/shopspring/decimal"
)

// Fields read by the module aggregates
const (
	FieldValor = "valor"
	FieldTipo  = "tipo"
)

// Financeiro entry kinds
const (
	TipoReceita = "RECEITA"
	TipoDespesa = "DESPESA"
)

// Amount is a decimal that encodes as a bare JSON number
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps d
func NewAmount(d decimal.Decimal) *Amount {
	return &Amount{Decimal: d}
}

// MarshalJSON implements json.Marshaler
func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON implements json.Unmarshaler
func (a *Amount) UnmarshalJSON(data []byte) error {
	d, err := decimal.NewFromString(strings.Trim(string(data), `"`))
	if err != nil {
		return err
	}
	a.Decimal = d
	return nil
}

// ModuleStats holds the statistics computed for one module
type ModuleStats struct {
	TotalRecords int `json:"total_records"`

	// financeiro
	TotalReceitas *Amount `json:"total_receitas,omitempty"`
	TotalDespesas *Amount `json:"total_despesas,omitempty"`
	Saldo         *Amount `json:"saldo,omitempty"`

	// fiscal
	TotalValorNotas *Amount `json:"total_valor_notas,omitempty"`
	MediaValor      *Amount `json:"media_valor,omitempty"`
}

// ModuleEntry pairs a module with its statistics
type ModuleEntry struct {
	Module record.Module
	Stats  ModuleStats
}

// Statistics is the ordered set of per-module statistics.
// It encodes as a JSON object keyed by module name.
type Statistics []ModuleEntry

// MarshalJSON implements json.Marshaler, preserving module order
func (s Statistics) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, entry := range s {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(entry.Module.String())
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(entry.Stats)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Report is a point-in-time summary of every module store
type Report struct {
	Timestamp    string     `json:"timestamp"`
	Estatisticas Statistics `json:"estatisticas"`
}

// Module returns the statistics of one module
func (r *Report) Module(module record.Module) (ModuleStats, bool) {
	for _, entry := range r.Estatisticas {
		if entry.Module == module {
			return entry.Stats, true
		}
	}
	return ModuleStats{}, false
}

// Skipped identifies a record whose value did not count towards an aggregate
type Skipped struct {
	RecordID string
	Field    string
	Value    any
}

// Summarize computes the statistics of a module snapshot.
// Records whose valor is not numeric contribute zero and are reported as skipped.
func Summarize(module record.Module, records []record.AcceptedRecord) (ModuleStats, []Skipped) {
	stats := ModuleStats{TotalRecords: len(records)}
	if len(records) == 0 {
		return stats, nil
	}

	switch module {
	case record.Financeiro:
		return summarizeFinanceiro(stats, records)
	case record.Fiscal:
		return summarizeFiscal(stats, records)
	default:
		return stats, nil
	}
}

func summarizeFinanceiro(stats ModuleStats, records []record.AcceptedRecord) (ModuleStats, []Skipped) {
	var skipped []Skipped
	receitas, despesas := decimal.Zero, decimal.Zero

	for _, rec := range records {
		tipo := rec.Label(FieldTipo)
		if tipo != TipoReceita && tipo != TipoDespesa {
			continue
		}
		valor, ok := valueOf(rec)
		if !ok {
			raw, _ := rec.Get(FieldValor)
			skipped = append(skipped, Skipped{RecordID: rec.ID(), Field: FieldValor, Value: raw})
			continue
		}
		if tipo == TipoReceita {
			receitas = receitas.Add(valor)
		} else {
			despesas = despesas.Add(valor)
		}
	}

	stats.TotalReceitas = NewAmount(receitas)
	stats.TotalDespesas = NewAmount(despesas)
	stats.Saldo = NewAmount(receitas.Sub(despesas))
	return stats, skipped
}

func summarizeFiscal(stats ModuleStats, records []record.AcceptedRecord) (ModuleStats, []Skipped) {
	var skipped []Skipped
	total := decimal.Zero

	for _, rec := range records {
		valor, ok := valueOf(rec)
		if !ok {
			raw, _ := rec.Get(FieldValor)
			skipped = append(skipped, Skipped{RecordID: rec.ID(), Field: FieldValor, Value: raw})
			continue
		}
		total = total.Add(valor)
	}

	stats.TotalValorNotas = NewAmount(total)
	stats.MediaValor = NewAmount(total.Div(decimal.NewFromInt(int64(len(records)))))
	return stats, skipped
}

func valueOf(rec record.AcceptedRecord) (decimal.Decimal, bool) {
	raw, ok := rec.Get(FieldValor)
	if !ok {
		return decimal.Zero, false
	}
	return ToDecimal(raw)
}

// ToDecimal converts a decoded JSON value to a decimal.
// Numeric strings are accepted; booleans, objects and arrays are not.
func ToDecimal(v any) (decimal.Decimal, bool) {
	switch n := v.(type) {
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int32:
		return decimal.NewFromInt32(n), true
	case int64:
		return decimal.NewFromInt(n), true
	case json.Number:
		d, err := decimal.NewFromString(n.String())
		return d, err == nil
	case decimal.Decimal:
		return n, true
	case string:
		d, err := decimal.NewFromString(strings.TrimSpace(n))
		return d, err == nil
	default:
		return decimal.Zero, false
	}
}

// String implements fmt.Stringer for log output
func (s Skipped) String() string {
	return fmt.Sprintf("%s.%s=%v", s.RecordID, s.Field, s.Value)
}
