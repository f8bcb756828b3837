package main

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/erp/backoffice/internal/domain/record"
)

// submission is one record sent to a module during the scenario
type submission struct {
	label  string
	module record.Module
	record record.Record
}

const dateLayout = "2006-01-02"

// sampleSubmissions returns the fixed scenario: a receita and a despesa for
// financeiro and one record for every other module
func sampleSubmissions(today time.Time) []submission {
	date := today.Format(dateLayout)
	cliente := map[string]any{"cnpj": "12345678000100", "nome": "Cliente Exemplo"}
	produtoA := []any{map[string]any{
		"codigo": "001", "descricao": "Produto A", "quantidade": 1, "valorUnitario": 1500.00,
	}}

	return []submission{
		{
			label:  "Financeiro - Criar lançamento (receita)",
			module: record.Financeiro,
			record: record.Record{
				"identificador": "LF001", "data": date, "valor": 1500.00,
				"tipo": "RECEITA", "conta": "1001", "descricao": "Venda à vista",
			},
		},
		{
			label:  "Financeiro - Criar lançamento (despesa)",
			module: record.Financeiro,
			record: record.Record{
				"identificador": "LF002", "data": date, "valor": 500.00,
				"tipo": "DESPESA", "conta": "2001", "descricao": "Pagamento de fornecedor",
			},
		},
		{
			label:  "Contábil - Criar lançamento",
			module: record.Contabil,
			record: record.Record{
				"identificador": "LC001", "data": date, "valor": 1500.00,
				"debito": "1001", "credito": "2001", "historico": "Venda à vista",
			},
		},
		{
			label:  "Fiscal - Emitir nota fiscal",
			module: record.Fiscal,
			record: record.Record{
				"numero": "NF001", "data": date, "valor": 1500.00,
				"cliente": cliente, "itens": produtoA,
			},
		},
		{
			label:  "RH - Cadastrar funcionário",
			module: record.RH,
			record: record.Record{
				"matricula": "F001", "nome": "João Silva", "cpf": "12345678900",
				"cargo": "Analista", "salario": 5000.00, "dataAdmissao": date,
			},
		},
		{
			label:  "Compras - Criar pedido",
			module: record.Compras,
			record: record.Record{
				"numero": "PC001", "data": date,
				"fornecedor": map[string]any{"cnpj": "98765432000100", "nome": "Fornecedor Exemplo"},
				"itens": []any{map[string]any{
					"codigo": "001", "descricao": "Material de escritório", "quantidade": 10, "valorUnitario": 50.00,
				}},
			},
		},
		{
			label:  "Vendas - Criar pedido",
			module: record.Vendas,
			record: record.Record{
				"numero": "PV001", "data": date, "cliente": cliente, "itens": produtoA,
			},
		},
		{
			label:  "Estoque - Cadastrar produto",
			module: record.Estoque,
			record: record.Record{
				"codigo": "P001", "descricao": "Produto Teste", "unidade": "UN", "preco": 100.00,
			},
		},
		{
			label:  "Patrimônio - Cadastrar bem",
			module: record.Patrimonio,
			record: record.Record{
				"codigo": "B001", "descricao": "Computador", "valor": 3000.00, "dataAquisicao": date,
			},
		},
	}
}

// fakeGenerators build a plausible record for each module
var fakeGenerators = map[record.Module]func(f *gofakeit.Faker, seq int) record.Record{
	record.Financeiro: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"identificador": fmt.Sprintf("LF-FAKE-%04d", seq),
			"data":          f.Date().Format(dateLayout),
			"valor":         f.Price(10, 10000),
			"tipo":          f.RandomString([]string{"RECEITA", "DESPESA"}),
			"conta":         f.Numerify("####"),
			"descricao":     f.Sentence(4),
		}
	},
	record.Contabil: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"identificador": fmt.Sprintf("LC-FAKE-%04d", seq),
			"data":          f.Date().Format(dateLayout),
			"valor":         f.Price(10, 10000),
			"debito":        f.Numerify("####"),
			"credito":       f.Numerify("####"),
			"historico":     f.Sentence(4),
		}
	},
	record.Fiscal: func(f *gofakeit.Faker, seq int) record.Record {
		qty := f.Number(1, 10)
		unit := f.Price(5, 2000)
		return record.Record{
			"numero":  fmt.Sprintf("NF-FAKE-%04d", seq),
			"data":    f.Date().Format(dateLayout),
			"valor":   float64(qty) * unit,
			"cliente": fakeParty(f),
			"itens":   []any{fakeItem(f, qty, unit)},
		}
	},
	record.RH: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"matricula":    fmt.Sprintf("F-FAKE-%04d", seq),
			"nome":         f.Name(),
			"cpf":          f.Numerify("###########"),
			"cargo":        f.JobTitle(),
			"salario":      f.Price(1500, 25000),
			"dataAdmissao": f.Date().Format(dateLayout),
		}
	},
	record.Compras: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"numero":     fmt.Sprintf("PC-FAKE-%04d", seq),
			"data":       f.Date().Format(dateLayout),
			"fornecedor": fakeParty(f),
			"itens":      []any{fakeItem(f, f.Number(1, 100), f.Price(1, 500))},
		}
	},
	record.Vendas: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"numero":  fmt.Sprintf("PV-FAKE-%04d", seq),
			"data":    f.Date().Format(dateLayout),
			"cliente": fakeParty(f),
			"itens":   []any{fakeItem(f, f.Number(1, 10), f.Price(5, 2000))},
		}
	},
	record.Estoque: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"codigo":    fmt.Sprintf("P-FAKE-%04d", seq),
			"descricao": f.ProductName(),
			"unidade":   f.RandomString([]string{"UN", "CX", "KG", "LT"}),
			"preco":     f.Price(1, 5000),
		}
	},
	record.Patrimonio: func(f *gofakeit.Faker, seq int) record.Record {
		return record.Record{
			"codigo":        fmt.Sprintf("B-FAKE-%04d", seq),
			"descricao":     f.ProductName(),
			"valor":         f.Price(500, 50000),
			"dataAquisicao": f.Date().Format(dateLayout),
		}
	},
}

func fakeParty(f *gofakeit.Faker) map[string]any {
	return map[string]any{
		"cnpj": f.Numerify("##############"),
		"nome": f.Company(),
	}
}

func fakeItem(f *gofakeit.Faker, qty int, unit float64) map[string]any {
	return map[string]any{
		"codigo":        f.Numerify("###"),
		"descricao":     f.ProductName(),
		"quantidade":    qty,
		"valorUnitario": unit,
	}
}

// fakeSubmissions returns n generated records for every module in modules
func fakeSubmissions(f *gofakeit.Faker, modules []record.Module, n int) []submission {
	subs := make([]submission, 0, n*len(modules))
	for _, module := range modules {
		gen, ok := fakeGenerators[module]
		if !ok {
			continue
		}
		for i := 1; i <= n; i++ {
			subs = append(subs, submission{
				label:  fmt.Sprintf("%s - registro gerado %d", module, i),
				module: module,
				record: gen(f, i),
			})
		}
	}
	return subs
}
