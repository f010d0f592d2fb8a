package shared

import "errors"

// Error codes used across the catalog console
const (
	CodeNetwork             = "NETWORK_ERROR"
	CodeValidation          = "VALIDATION_ERROR"
	CodeInvalidSymbolInput  = "INVALID_SYMBOL_INPUT"
	CodePrintDispatchFailed = "PRINT_DISPATCH_FAILED"
	CodeMissingToken        = "MISSING_TOKEN"
	CodeSuperseded          = "SUPERSEDED"
	CodeCancelled           = "CANCELLED"
	CodeInvalidInput        = "INVALID_INPUT"
)

// DomainError represents a domain-level error
type DomainError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Cause   error  `json:"-"`
}

// Error implements the error interface
func (e *DomainError) Error() string {
	return e.Message
}

// Unwrap returns the underlying cause, if any
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DomainError with the same code.
// This lets callers match with errors.Is(err, shared.ErrNetwork).
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// NewDomainError creates a new domain error
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WrapDomainError creates a domain error carrying an underlying cause
func WrapDomainError(code, message string, cause error) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
		Cause:   cause,
	}
}

// CodeOf returns the code of the first DomainError in err's chain,
// or an empty string.
func CodeOf(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Common domain errors
var (
	ErrNetwork             = NewDomainError(CodeNetwork, "Request failed to complete")
	ErrValidation          = NewDomainError(CodeValidation, "Request was rejected by the server")
	ErrInvalidSymbolInput  = NewDomainError(CodeInvalidSymbolInput, "Value cannot be encoded in the requested barcode format")
	ErrPrintDispatchFailed = NewDomainError(CodePrintDispatchFailed, "Print dispatch failed")
	ErrMissingToken        = NewDomainError(CodeMissingToken, "Anti-forgery token is not available")
	ErrSuperseded          = NewDomainError(CodeSuperseded, "Request was superseded by a newer one")
	ErrCancelled           = NewDomainError(CodeCancelled, "Operation cancelled by the user")
	ErrInvalidInput        = NewDomainError(CodeInvalidInput, "Invalid input provided")
)
