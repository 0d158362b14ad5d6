package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Err     error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the wrapped cause, if any
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target is a DomainError with the same code.
// This lets errors.Is(err, shared.ErrNotFound) match errors built with NewDomainError("NOT_FOUND", ...).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, err error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Error codes
const (
	CodeNotFound                   = "NOT_FOUND"
	CodeInvalidInput               = "INVALID_INPUT"
	CodeInvalidState               = "INVALID_STATE"
	CodeMissingRequiredAssociation = "MISSING_REQUIRED_ASSOCIATION"
	CodeConcurrencyConflict        = "CONCURRENCY_CONFLICT"
	CodeConcurrentModification     = "CONCURRENT_MODIFICATION"
	CodeInsufficientStock          = "INSUFFICIENT_STOCK"
	CodeAlreadyExists              = "ALREADY_EXISTS"
)

// Common domain errors
var (
	ErrNotFound                   = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists              = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput               = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrConcurrencyConflict        = NewDomainError(CodeConcurrencyConflict, "Resource is being modified by another process")
	ErrConcurrentModification     = NewDomainError(CodeConcurrentModification, "Resource was modified by another process")
	ErrInvalidState               = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrMissingRequiredAssociation = NewDomainError(CodeMissingRequiredAssociation, "Required association is missing")
	ErrInsufficientStock          = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
)

// NotFound builds a NOT_FOUND error naming the missing entity
func NotFound(entity string, id fmt.Stringer) *DomainError {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s %s not found", entity, id))
}
