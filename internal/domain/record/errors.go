package record

import (
	"fmt"

	"github.com/erp/backoffice/internal/domain/shared"
)

// Error codes raised by the record domain
const (
	CodeMissingField  = "VALIDATION_REQUIRED"
	CodeUnknownModule = "UNKNOWN_MODULE"
)

// ErrUnknownModule matches any error raised for a module name outside the registry
var ErrUnknownModule = shared.NewDomainError(CodeUnknownModule, "Módulo desconhecido")

// ValidationError reports the first required field absent from a record
type ValidationError struct {
	*shared.DomainError
	Field string
}

// NewValidationError creates a validation error for the given field
func NewValidationError(field string) *ValidationError {
	return &ValidationError{
		DomainError: shared.NewDomainError(CodeMissingField, fmt.Sprintf("Campo obrigatório ausente: %s", field)),
		Field:       field,
	}
}

// Unwrap exposes the underlying domain error to errors.As
func (e *ValidationError) Unwrap() error {
	return e.DomainError
}

func newUnknownModuleError(name string) *shared.DomainError {
	return shared.NewDomainError(CodeUnknownModule, fmt.Sprintf("Módulo desconhecido: %s", name))
}
