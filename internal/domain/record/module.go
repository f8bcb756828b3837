package record

// Module identifies one of the fixed back-office business domains
type Module string

// Supported modules
const (
	Financeiro Module = "financeiro"
	Contabil   Module = "contabil"
	Fiscal     Module = "fiscal"
	RH         Module = "rh"
	Compras    Module = "compras"
	Vendas     Module = "vendas"
	Estoque    Module = "estoque"
	Patrimonio Module = "patrimonio"
)

// String returns the module name
func (m Module) String() string {
	return string(m)
}
