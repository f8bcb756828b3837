package report

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/erp/backoffice/internal/domain/record"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func accept(fields record.Record) record.AcceptedRecord {
	return record.NewAssigner().Assign(fields)
}

func TestSummarize_Financeiro(t *testing.T) {
	records := []record.AcceptedRecord{
		accept(record.Record{"identificador": "LF001", "valor": 1500.00, "tipo": "RECEITA"}),
		accept(record.Record{"identificador": "LF002", "valor": 500.00, "tipo": "DESPESA"}),
	}

	stats, skipped := Summarize(record.Financeiro, records)

	assert.Empty(t, skipped)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.True(t, stats.TotalReceitas.Equal(decimal.NewFromInt(1500)))
	assert.True(t, stats.TotalDespesas.Equal(decimal.NewFromInt(500)))
	assert.True(t, stats.Saldo.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, stats.TotalValorNotas)
}

func TestSummarize_FinanceiroIgnoresOtherTipos(t *testing.T) {
	records := []record.AcceptedRecord{
		accept(record.Record{"valor": 100, "tipo": "TRANSFERENCIA"}),
		accept(record.Record{"valor": "abc", "tipo": "OUTRO"}),
	}

	stats, skipped := Summarize(record.Financeiro, records)

	assert.Empty(t, skipped)
	assert.Equal(t, 2, stats.TotalRecords)
	assert.True(t, stats.Saldo.IsZero())
}

func TestSummarize_FinanceiroNonNumericValor(t *testing.T) {
	records := []record.AcceptedRecord{
		accept(record.Record{"valor": 1500, "tipo": "RECEITA"}),
		accept(record.Record{"valor": "mil", "tipo": "RECEITA"}),
		accept(record.Record{"valor": nil, "tipo": "DESPESA"}),
	}

	stats, skipped := Summarize(record.Financeiro, records)

	require.Len(t, skipped, 2)
	assert.Equal(t, records[1].ID(), skipped[0].RecordID)
	assert.Equal(t, "mil", skipped[0].Value)
	assert.True(t, stats.TotalReceitas.Equal(decimal.NewFromInt(1500)))
	assert.True(t, stats.TotalDespesas.IsZero())
}

func TestSummarize_Fiscal(t *testing.T) {
	records := []record.AcceptedRecord{
		accept(record.Record{"numero": "NF001", "valor": 1500}),
		accept(record.Record{"numero": "NF002", "valor": 500.0}),
	}

	stats, skipped := Summarize(record.Fiscal, records)

	assert.Empty(t, skipped)
	assert.True(t, stats.TotalValorNotas.Equal(decimal.NewFromInt(2000)))
	assert.True(t, stats.MediaValor.Equal(decimal.NewFromInt(1000)))
	assert.Nil(t, stats.Saldo)
}

func TestSummarize_EmptyModulesHaveOnlyCount(t *testing.T) {
	for _, module := range []record.Module{record.Financeiro, record.Fiscal, record.RH} {
		stats, skipped := Summarize(module, nil)
		assert.Equal(t, ModuleStats{}, stats, module.String())
		assert.Nil(t, skipped)
	}
}

func TestToDecimal(t *testing.T) {
	tests := []struct {
		name  string
		input any
		want  string
		ok    bool
	}{
		{"float", 10.5, "10.5", true},
		{"int", 3, "3", true},
		{"json number", json.Number("12.25"), "12.25", true},
		{"numeric string", " 99.90 ", "99.9", true},
		{"text", "dez", "0", false},
		{"bool", true, "0", false},
		{"object", map[string]any{"v": 1}, "0", false},
		{"nil", nil, "0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ToDecimal(tt.input)
			assert.Equal(t, tt.ok, ok)
			if ok {
				assert.Equal(t, tt.want, got.String())
			}
		})
	}
}

func TestReport_MarshalJSON(t *testing.T) {
	r := Report{
		Timestamp: "2025-05-23T10:00:00.000000000Z",
		Estatisticas: Statistics{
			{Module: record.Financeiro, Stats: ModuleStats{
				TotalRecords:  2,
				TotalReceitas: NewAmount(decimal.NewFromInt(1500)),
				TotalDespesas: NewAmount(decimal.NewFromInt(500)),
				Saldo:         NewAmount(decimal.NewFromInt(1000)),
			}},
			{Module: record.Contabil, Stats: ModuleStats{}},
		},
	}

	data, err := json.Marshal(r)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"timestamp": "2025-05-23T10:00:00.000000000Z",
		"estatisticas": {
			"financeiro": {"total_records": 2, "total_receitas": 1500, "total_despesas": 500, "saldo": 1000},
			"contabil": {"total_records": 0}
		}
	}`, string(data))

	assert.Less(t, strings.Index(string(data), "financeiro"), strings.Index(string(data), "contabil"), "module order is preserved")
}

func TestReport_Module(t *testing.T) {
	r := Report{Estatisticas: Statistics{{Module: record.RH, Stats: ModuleStats{TotalRecords: 4}}}}

	stats, ok := r.Module(record.RH)
	assert.True(t, ok)
	assert.Equal(t, 4, stats.TotalRecords)

	_, ok = r.Module(record.Vendas)
	assert.False(t, ok)
}
