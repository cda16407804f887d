package util

import (
	"errors"
	"fmt"
	"net/http"
)

// Fault classes for errors.Is checks across layers.
var (
	ErrStore    = errors.New("credential store failure")
	ErrDispatch = errors.New("blocking dispatch failure")
	ErrSigning  = errors.New("token signing failure")
)

// Error codes.
const (
	CodeValidation         = "VALIDATION_FAILED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
	CodeStore              = "STORE_ERROR"
	CodeDispatch           = "DISPATCH_ERROR"
	CodeSigning            = "SIGNING_FAULT"
	CodeNotFound           = "NOT_FOUND"
	CodeInternal           = "INTERNAL_ERROR"
)

// InvalidCredentialsMessage is the single body returned for every rejected login.
const InvalidCredentialsMessage = "Invalid credentials"

// DomainError standardizes application errors.
type DomainError struct {
	Code       string
	Message    string
	HTTPStatus int
	Err        error
}

func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *DomainError) Unwrap() error {
	return e.Err
}

// NewDomainError constructs a DomainError.
func NewDomainError(code, message string, status int) *DomainError {
	return &DomainError{Code: code, Message: message, HTTPStatus: status}
}

func NewValidationError(message string) error {
	return NewDomainError(CodeValidation, message, http.StatusBadRequest)
}

func NewNotFound(resource string) error {
	return NewDomainError(CodeNotFound, fmt.Sprintf("%s not found", resource), http.StatusNotFound)
}

// NewInvalidCredentials covers both unknown subjects and wrong secrets.
func NewInvalidCredentials() error {
	return NewDomainError(CodeInvalidCredentials, InvalidCredentialsMessage, http.StatusUnauthorized)
}

func NewStoreError(err error) error {
	return &DomainError{
		Code:       CodeStore,
		Message:    "Database error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        fmt.Errorf("%w: %w", ErrStore, err),
	}
}

func NewDispatchError(err error) error {
	return &DomainError{
		Code:       CodeDispatch,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        fmt.Errorf("%w: %w", ErrDispatch, err),
	}
}

func NewSigningError(err error) error {
	return &DomainError{
		Code:       CodeSigning,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        fmt.Errorf("%w: %w", ErrSigning, err),
	}
}

func NewInternalError(err error) error {
	return &DomainError{
		Code:       CodeInternal,
		Message:    "Internal server error",
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

// ToDomainError converts generic errors to DomainError.
func ToDomainError(err error) *DomainError {
	if err == nil {
		return nil
	}
	var domainErr *DomainError
	if errors.As(err, &domainErr) {
		return domainErr
	}
	switch {
	case errors.Is(err, ErrStore):
		return NewStoreError(err).(*DomainError)
	case errors.Is(err, ErrDispatch):
		return NewDispatchError(err).(*DomainError)
	case errors.Is(err, ErrSigning):
		return NewSigningError(err).(*DomainError)
	}
	return NewInternalError(err).(*DomainError)
}

func MapError(err error) error {
	return ToDomainError(err)
}
