package record

// Schema describes what a module requires from a submitted record
type Schema struct {
	Module Module
	// RequiredFields is ordered; validation reports the first absent one
	RequiredFields []string
	// Message acknowledges a successful submission
	Message string
	// LabelField names the field logged when a record is accepted
	LabelField string
}

// Registry is the read-only mapping from module name to schema.
// It preserves registration order for listings.
type Registry struct {
	order   []Module
	schemas map[Module]Schema
}

// NewRegistry creates a registry from the given schemas.
// A later schema for the same module replaces the earlier one.
func NewRegistry(schemas ...Schema) *Registry {
	r := &Registry{
		order:   make([]Module, 0, len(schemas)),
		schemas: make(map[Module]Schema, len(schemas)),
	}
	for _, s := range schemas {
		if _, exists := r.schemas[s.Module]; !exists {
			r.order = append(r.order, s.Module)
		}
		fields := make([]string, len(s.RequiredFields))
		copy(fields, s.RequiredFields)
		s.RequiredFields = fields
		r.schemas[s.Module] = s
	}
	return r
}

// DefaultRegistry returns the registry of the eight back-office modules
func DefaultRegistry() *Registry {
	return NewRegistry(
		Schema{
			Module:         Financeiro,
			RequiredFields: []string{"identificador", "data", "valor", "tipo", "conta"},
			Message:        "Lançamento financeiro criado com sucesso",
			LabelField:     "identificador",
		},
		Schema{
			Module:         Contabil,
			RequiredFields: []string{"identificador", "data", "valor", "debito", "credito"},
			Message:        "Lançamento contábil criado com sucesso",
			LabelField:     "identificador",
		},
		Schema{
			Module:         Fiscal,
			RequiredFields: []string{"numero", "data", "valor", "cliente", "itens"},
			Message:        "Nota fiscal emitida com sucesso",
			LabelField:     "numero",
		},
		Schema{
			Module:         RH,
			RequiredFields: []string{"matricula", "nome", "cpf", "cargo", "salario"},
			Message:        "Funcionário cadastrado com sucesso",
			LabelField:     "nome",
		},
		Schema{
			Module:         Compras,
			RequiredFields: []string{"numero", "data", "fornecedor", "itens"},
			Message:        "Pedido de compra criado com sucesso",
			LabelField:     "numero",
		},
		Schema{
			Module:         Vendas,
			RequiredFields: []string{"numero", "data", "cliente", "itens"},
			Message:        "Pedido de venda criado com sucesso",
			LabelField:     "numero",
		},
		Schema{
			Module:         Estoque,
			RequiredFields: []string{"codigo", "descricao", "unidade", "preco"},
			Message:        "Produto cadastrado com sucesso",
			LabelField:     "codigo",
		},
		Schema{
			Module:         Patrimonio,
			RequiredFields: []string{"codigo", "descricao", "valor", "dataAquisicao"},
			Message:        "Bem patrimonial cadastrado com sucesso",
			LabelField:     "codigo",
		},
	)
}

// Schema returns the schema registered for a module name
func (r *Registry) Schema(name string) (Schema, error) {
	s, ok := r.schemas[Module(name)]
	if !ok {
		return Schema{}, newUnknownModuleError(name)
	}
	return s, nil
}

// RequiredFields returns the ordered required fields of a module.
// The returned slice is a copy.
func (r *Registry) RequiredFields(name string) ([]string, error) {
	s, err := r.Schema(name)
	if err != nil {
		return nil, err
	}
	fields := make([]string, len(s.RequiredFields))
	copy(fields, s.RequiredFields)
	return fields, nil
}

// Modules returns every registered module in registration order
func (r *Registry) Modules() []Module {
	modules := make([]Module, len(r.order))
	copy(modules, r.order)
	return modules
}

// Has reports whether the module is registered
func (r *Registry) Has(name string) bool {
	_, ok := r.schemas[Module(name)]
	return ok
}
