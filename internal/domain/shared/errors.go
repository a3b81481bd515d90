package shared

import "fmt"

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Is reports whether target carries the same code, so wrapped copies with a
// more specific message still match the sentinel values below.
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

// NewDomainErrorf creates a domain error with a formatted message
func NewDomainErrorf(code, format string, args ...any) *DomainError {
	return NewDomainError(code, fmt.Sprintf(format, args...))
}

// Error codes
const (
	CodeNotFound            = "NOT_FOUND"
	CodeAlreadyExists       = "ALREADY_EXISTS"
	CodeInvalidInput        = "INVALID_INPUT"
	CodeInvalidQuantity     = "INVALID_QUANTITY"
	CodeInsufficientStock   = "INSUFFICIENT_STOCK"
	CodeInvalidState        = "INVALID_STATE"
	CodeIDSetMismatch       = "ID_SET_MISMATCH"
	CodeConcurrencyConflict = "CONCURRENCY_CONFLICT"
	CodeAmbiguousReference  = "AMBIGUOUS_REFERENCE"
	CodeCodeExhausted       = "CODE_EXHAUSTED"
	CodeUnauthorized        = "UNAUTHORIZED"
)

// Common domain errors
var (
	ErrNotFound            = NewDomainError(CodeNotFound, "Resource not found")
	ErrAlreadyExists       = NewDomainError(CodeAlreadyExists, "Resource already exists")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
	ErrInvalidQuantity     = NewDomainError(CodeInvalidQuantity, "Quantity must be a positive integer")
	ErrInsufficientStock   = NewDomainError(CodeInsufficientStock, "Insufficient stock available")
	ErrInvalidState        = NewDomainError(CodeInvalidState, "Operation not allowed in current state")
	ErrConcurrencyConflict = NewDomainError(CodeConcurrencyConflict, "Resource was modified by another process")
	ErrUnauthorized        = NewDomainError(CodeUnauthorized, "Not authorized to perform this action")
)

// NotFound returns a NOT_FOUND error naming the missing resource
func NotFound(resource string, id any) *DomainError {
	return NewDomainErrorf(CodeNotFound, "%s not found: %v", resource, id)
}
