package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrRecipeNotFound signals a missing recipe.
	ErrRecipeNotFound = errors.New("recipe not found")
	// ErrMalformedRecord signals a recipe record that cannot be ingested (missing id, bad payload).
	ErrMalformedRecord = errors.New("malformed record")
	// ErrInvalidFilter signals a filter with an unsupported key or wrong value type.
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrBackendUnavailable signals that the document+vector backend failed to initialize.
	ErrBackendUnavailable = errors.New("backend unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrSyncCancelled signals a sync run stopped by cooperative cancellation.
	ErrSyncCancelled = errors.New("sync cancelled")
)

// MalformedRecordError wraps ErrMalformedRecord with the offending field.
type MalformedRecordError struct {
	Field  string
	Reason string
}

func (e *MalformedRecordError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrMalformedRecord.Error(), e.Field, e.Reason)
}

func (e *MalformedRecordError) Unwrap() error { return ErrMalformedRecord }

// NewMalformedRecord creates a malformed record error for a specific field.
func NewMalformedRecord(field, reason string) error {
	return &MalformedRecordError{Field: field, Reason: reason}
}
