package domain

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrNotFound covers unknown ids and ownership mismatches alike.
	ErrNotFound = errors.New("not found")

	// ErrValidation marks input the caller must fix.
	ErrValidation = errors.New("validation failed")

	// ErrConflict is returned when a write would break a unique key.
	ErrConflict = errors.New("conflict")
)

// ValidationError carries per-field messages. It matches ErrValidation
// under errors.Is.
type ValidationError struct {
	Fields map[string]string
}

func NewValidationError(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: msg}}
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Is(target error) bool { return target == ErrValidation }

// NotFound wraps ErrNotFound with the kind and key that was looked up.
func NotFound(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrNotFound)
}

// Conflict wraps ErrConflict with the kind and key that already exists.
func Conflict(kind string, key any) error {
	return fmt.Errorf("%s %v: %w", kind, key, ErrConflict)
}
