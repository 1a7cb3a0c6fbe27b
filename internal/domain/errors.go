package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrRecordNotFound signals a missing record in the persistence layer.
	ErrRecordNotFound = errors.New("record not found")
	// ErrTypeNotRegistered signals a record type without an index registration.
	ErrTypeNotRegistered = errors.New("record type not registered")
	// ErrAlreadyRegistered signals a second registration of the same record type.
	ErrAlreadyRegistered = errors.New("record type already registered")
	// ErrInvalidConfig signals an invalid registration or configuration.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrFieldNotFound signals a field the record cannot read.
	ErrFieldNotFound = errors.New("field not found")
	// ErrChangeUnsupported signals a field whose saved-change status cannot be reported.
	ErrChangeUnsupported = errors.New("change tracking not supported")
	// ErrInvalidQuery signals a malformed prefix-match query.
	ErrInvalidQuery = errors.New("invalid query")
)

// FieldError wraps a field-level failure with the record type and field name.
type FieldError struct {
	Type  string
	Field string
	Err   error
}

func (e *FieldError) Error() string {
	return fmt.Sprintf("%s.%s: %s", e.Type, e.Field, e.Err.Error())
}

func (e *FieldError) Unwrap() error { return e.Err }
