package errors

import (
	stderrors "errors"
	"fmt"
	"time"
)

// ErrorType represents the category of error
type ErrorType string

const (
	// ErrorTypeNotFound represents a missing document, edge or user
	ErrorTypeNotFound ErrorType = "not_found"
	// ErrorTypeConflict represents unique-constraint and revision violations
	ErrorTypeConflict ErrorType = "conflict"
	// ErrorTypeUnauthorized represents failed logins and missing sessions
	ErrorTypeUnauthorized ErrorType = "unauthorized"
	// ErrorTypeInvalid represents malformed requests and invalid edge kinds
	ErrorTypeInvalid ErrorType = "invalid"
	// ErrorTypeStore represents storage backend errors
	ErrorTypeStore ErrorType = "store"
	// ErrorTypeConfig represents configuration errors
	ErrorTypeConfig ErrorType = "config"
)

// BaseError is the base error type with common fields
type BaseError struct {
	Type      ErrorType
	Message   string
	Timestamp time.Time
	Err       error // Wrapped error
}

// Error implements the error interface
func (e *BaseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("[%s] %s: %v", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("[%s] %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error for error unwrapping
func (e *BaseError) Unwrap() error {
	return e.Err
}

// NewBaseError creates a new base error
func NewBaseError(errType ErrorType, message string, err error) *BaseError {
	return &BaseError{
		Type:      errType,
		Message:   message,
		Timestamp: time.Now(),
		Err:       err,
	}
}

// Store Errors

// ErrNotFound is returned when a document or edge does not exist
type ErrNotFound struct {
	*BaseError
	Collection string
	Key        string
}

func NewNotFound(collection, key string) *ErrNotFound {
	return &ErrNotFound{
		BaseError:  NewBaseError(ErrorTypeNotFound, fmt.Sprintf("%s not found: %s", collection, key), nil),
		Collection: collection,
		Key:        key,
	}
}

// ErrConflict is returned on unique-constraint or revision mismatch
type ErrConflict struct {
	*BaseError
	Collection string
	Key        string
}

func NewConflict(collection, key, reason string, err error) *ErrConflict {
	return &ErrConflict{
		BaseError:  NewBaseError(ErrorTypeConflict, fmt.Sprintf("%s %s: %s", collection, key, reason), err),
		Collection: collection,
		Key:        key,
	}
}

// ErrStoreConnectionFailed is returned when the backing database cannot be reached
type ErrStoreConnectionFailed struct {
	*BaseError
	Backend string
	URI     string
}

func NewStoreConnectionFailed(backend, uri string, err error) *ErrStoreConnectionFailed {
	return &ErrStoreConnectionFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("failed to connect to %s: %s", backend, uri), err),
		Backend:   backend,
		URI:       uri,
	}
}

// ErrStoreQueryFailed is returned when a statement fails for an unexpected reason
type ErrStoreQueryFailed struct {
	*BaseError
	Operation string
}

func NewStoreQueryFailed(operation string, err error) *ErrStoreQueryFailed {
	return &ErrStoreQueryFailed{
		BaseError: NewBaseError(ErrorTypeStore, fmt.Sprintf("%s failed", operation), err),
		Operation: operation,
	}
}

// Request Errors

// ErrUnauthorized is returned when credentials or a session are rejected
type ErrUnauthorized struct {
	*BaseError
}

func NewUnauthorized(message string) *ErrUnauthorized {
	return &ErrUnauthorized{BaseError: NewBaseError(ErrorTypeUnauthorized, message, nil)}
}

// ErrInvalidArgument is returned for requests that cannot be honoured as given
type ErrInvalidArgument struct {
	*BaseError
	Field string
}

func NewInvalidArgument(field, reason string) *ErrInvalidArgument {
	return &ErrInvalidArgument{
		BaseError: NewBaseError(ErrorTypeInvalid, fmt.Sprintf("invalid %s: %s", field, reason), nil),
		Field:     field,
	}
}

// Config Errors

// ErrConfigMissingRequired is returned when a required config value is missing
type ErrConfigMissingRequired struct {
	*BaseError
	Field string
}

func NewConfigMissingRequired(field string) *ErrConfigMissingRequired {
	return &ErrConfigMissingRequired{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("missing required config: %s", field), nil),
		Field:     field,
	}
}

// ErrConfigValidationFailed is returned when configuration validation fails
type ErrConfigValidationFailed struct {
	*BaseError
	Field  string
	Reason string
}

func NewConfigValidationFailed(field, reason string) *ErrConfigValidationFailed {
	return &ErrConfigValidationFailed{
		BaseError: NewBaseError(ErrorTypeConfig, fmt.Sprintf("config validation failed: %s - %s", field, reason), nil),
		Field:     field,
		Reason:    reason,
	}
}

// Helper functions

// TypeOf returns the ErrorType of the first BaseError in err's chain, or "".
func TypeOf(err error) ErrorType {
	for err != nil {
		switch e := err.(type) {
		case *BaseError:
			return e.Type
		case interface{ base() *BaseError }:
			return e.base().Type
		}
		err = stderrors.Unwrap(err)
	}
	return ""
}

// IsErrorType checks if an error is of a specific type
func IsErrorType(err error, errType ErrorType) bool {
	return TypeOf(err) == errType
}

// IsNotFound reports whether err is a not-found error
func IsNotFound(err error) bool {
	return IsErrorType(err, ErrorTypeNotFound)
}

// IsConflict reports whether err is a conflict error
func IsConflict(err error) bool {
	return IsErrorType(err, ErrorTypeConflict)
}

func (e *ErrNotFound) base() *BaseError { return e.BaseError }

func (e *ErrConflict) base() *BaseError { return e.BaseError }

func (e *ErrStoreConnectionFailed) base() *BaseError { return e.BaseError }

func (e *ErrStoreQueryFailed) base() *BaseError { return e.BaseError }

func (e *ErrUnauthorized) base() *BaseError { return e.BaseError }

func (e *ErrInvalidArgument) base() *BaseError { return e.BaseError }

func (e *ErrConfigMissingRequired) base() *BaseError { return e.BaseError }

func (e *ErrConfigValidationFailed) base() *BaseError { return e.BaseError }
