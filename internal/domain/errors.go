package domain

import (
	"errors"
	"sort"
	"strings"
)

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidInput      = errors.New("invalid input")
	ErrItemReference     = errors.New("exactly one of device or gadget must be referenced")
	ErrItemUnavailable   = errors.New("item is not available")
	ErrInsufficientStock = errors.New("insufficient gadget quantity")
	ErrLoanClosed        = errors.New("loan is no longer active")
	ErrDuplicate         = errors.New("already exists")
)

// ValidationError carries field-scoped messages for a rejected form.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError() *ValidationError {
	return &ValidationError{Fields: make(map[string]string)}
}

// Add records the first message for a field.
func (e *ValidationError) Add(field, message string) {
	if _, exists := e.Fields[field]; !exists {
		e.Fields[field] = message
	}
}

func (e *ValidationError) HasErrors() bool {
	return e != nil && len(e.Fields) > 0
}

// OrNil returns nil when nothing was recorded so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if !e.HasErrors() {
		return nil
	}
	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Unwrap() error {
	return ErrInvalidInput
}
