package schema

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownField is returned when a value tree contains a key the model does not declare.
	ErrUnknownField = errors.New("unknown field")
	// ErrType is returned when a value does not match the declared field kind.
	ErrType = errors.New("type mismatch")
	// ErrConstraint is returned when a value fails a validator rule or color range.
	ErrConstraint = errors.New("constraint violated")
	// ErrNotAllowed is returned when a value is not one of the literal options of a field.
	ErrNotAllowed = errors.New("value not allowed")
	// ErrOutOfScope is returned when an override sets a field not applicable in the given scope.
	ErrOutOfScope = errors.New("field not applicable in scope")
	// ErrRequired is returned when a record misses a required field.
	ErrRequired = errors.New("field required")
	// ErrInvalidName is returned when a record name can not be normalized.
	ErrInvalidName = errors.New("invalid name")
	// ErrDuplicateName is returned when two records of one list share a normalized name.
	ErrDuplicateName = errors.New("duplicate name")
	// ErrMissingItem is returned when a records list misses one of its required items.
	ErrMissingItem = errors.New("required item missing")
)

// FieldError describes a single validation failure at a dotted path.
type FieldError struct {
	Path   string `json:"path"`
	Name   string `json:"name,omitempty"`
	Detail string `json:"detail"`
	Err    error  `json:"-"`
}

func (e *FieldError) Error() string {
	msg := e.Path + ": " + e.Err.Error()
	if e.Name != "" {
		msg += " " + fmt.Sprintf("%q", e.Name)
	}

	if e.Detail != "" {
		msg += " (" + e.Detail + ")"
	}

	return msg
}

func (e *FieldError) Unwrap() error {
	return e.Err
}

// Errors is the list of failures collected while validating one tree.
type Errors []*FieldError

func (e Errors) Error() string {
	parts := make([]string, len(e))
	for i, fe := range e {
		parts[i] = fe.Error()
	}

	return strings.Join(parts, "; ")
}

// Unwrap exposes every failure to errors.Is and errors.As.
func (e Errors) Unwrap() []error {
	out := make([]error, len(e))
	for i, fe := range e {
		out[i] = fe
	}

	return out
}

func (e Errors) orNil() error {
	if len(e) == 0 {
		return nil
	}

	return e
}
