package shared

import (
	"errors"
	"fmt"
)

// DomainError is a business rule violation identified by a stable code.
// The HTTP layer maps codes to statuses; Message is shown to the caller.
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func NewDomainError(code, message string) *DomainError {
	return &DomainError{Code: code, Message: message}
}

// Newf is NewDomainError with a formatted message
func Newf(code, format string, args ...any) *DomainError {
	return &DomainError{Code: code, Message: fmt.Sprintf(format, args...)}
}

func (e *DomainError) Error() string { return e.Message }

// Is compares codes, so errors.Is(err, ErrNotFound) holds for any
// NOT_FOUND error whatever its message.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	return ok && t.Code == e.Code
}

var (
	ErrNotFound            = NewDomainError("NOT_FOUND", "Resource not found")
	ErrAlreadyExists       = NewDomainError("ALREADY_EXISTS", "Resource already exists")
	ErrConcurrencyConflict = NewDomainError("CONCURRENCY_CONFLICT", "Resource was modified by another process")
	ErrForbidden           = NewDomainError("FORBIDDEN", "Access to this resource is forbidden")
	ErrInvalidState        = NewDomainError("INVALID_STATE", "Operation not allowed in current state")
	ErrNegativeAmount      = NewDomainError("NEGATIVE_AMOUNT", "Amount cannot be negative")
	ErrInvalidCurrency     = NewDomainError("INVALID_CURRENCY", "Currency must be a valid ISO 4217 code")
)

// AsDomainError finds the first *DomainError in err's chain
func AsDomainError(err error) (*DomainError, bool) {
	var de *DomainError
	ok := errors.As(err, &de)
	return de, ok
}
