package services

import (
	"errors"
	"fmt"
	"strings"
)

// Common service errors
var (
	ErrUnauthenticated = errors.New("no autenticado")
	ErrAccessDenied    = errors.New("no tiene acceso a este proyecto")
	ErrForbidden       = errors.New("su rol no permite esta operación")
	ErrProjectNotFound = errors.New("proyecto no encontrado")
	ErrNotFound        = errors.New("registro no encontrado")
	ErrAlreadyClosed   = errors.New("el día ya fue cerrado")
	ErrDayClosed       = errors.New("el día está cerrado; no se pueden agregar ni modificar entradas")
	ErrEntryLocked     = errors.New("la entrada está bloqueada y no puede modificarse")
	ErrValidation      = errors.New("datos inválidos")
	ErrStorage         = errors.New("error de almacenamiento")
	ErrLockIncomplete  = errors.New("el día quedó cerrado pero algunas entradas no pudieron bloquearse; se reintentará automáticamente")
)

// FieldError describes a validation error for a specific field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError contains a list of field-level validation errors
type ValidationError struct {
	Errors []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Errors))
	for _, fe := range e.Errors {
		parts = append(parts, fe.Field+": "+fe.Message)
	}
	return strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error { return ErrValidation }

// Add appends a field error
func (e *ValidationError) Add(field, message string) {
	e.Errors = append(e.Errors, FieldError{Field: field, Message: message})
}

// OrNil returns nil when no field failed
func (e *ValidationError) OrNil() error {
	if e == nil || len(e.Errors) == 0 {
		return nil
	}
	return e
}

// NewValidationError creates a ValidationError for a single field
func NewValidationError(field, message string) *ValidationError {
	return &ValidationError{Errors: []FieldError{{Field: field, Message: message}}}
}

// StorageError wraps a persistence failure. The cause is kept for logs and never
// shown to the client.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() []error { return []error{ErrStorage, e.Err} }

func storageErr(op string, err error) error {
	return &StorageError{Op: op, Err: err}
}
