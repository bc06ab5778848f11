// Package core provides the main SmartMem client and memory management functionality.
package core

import (
	"errors"
	"fmt"

	"github.com/fcrew-ai/smartmem-go/pkg/embedder"
	"github.com/fcrew-ai/smartmem-go/pkg/intelligence"
	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
)

// Predefined errors for common failure scenarios.
//
// The store-level sentinels are re-exported here so callers can match every
// failure mode with errors.Is against a single package.
var (
	// ErrNotFound indicates that a requested memory was not found.
	ErrNotFound = memstore.ErrNotFound

	// ErrInvalidArgument indicates that the provided call parameters are invalid.
	ErrInvalidArgument = memstore.ErrInvalidArgument

	// ErrInvalidConfig indicates that the provided configuration is invalid.
	// Configuration is validated at construction, never deferred to first use.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrCapacityExceeded indicates that the absolute safety ceiling was
	// breached, meaning eviction is falling behind writes.
	ErrCapacityExceeded = memstore.ErrCapacityExceeded

	// ErrEvictionDeadlock indicates that capacity enforcement cannot evict
	// without violating the critical-importance protection guarantee.
	ErrEvictionDeadlock = intelligence.ErrEvictionDeadlock

	// ErrEmbeddingUnavailable indicates that the embedding provider failed.
	// The error is propagated; retry policy is the caller's choice.
	ErrEmbeddingUnavailable = embedder.ErrEmbeddingUnavailable

	// ErrStorageOperation indicates that the storage backend could not be
	// opened or initialized.
	ErrStorageOperation = errors.New("storage operation failed")

	// ErrLLMOperation indicates that the LLM provider could not be
	// constructed.
	ErrLLMOperation = errors.New("llm operation failed")
)

// MemoryError wraps errors with operation context.
//
// It provides additional context about which operation failed,
// making error messages more informative for debugging.
type MemoryError struct {
	// Op is the name of the operation that failed.
	Op string

	// Err is the underlying error.
	Err error
}

// Error returns a formatted error message.
//
// The format is: "smartmem: <Op>: <Err>"
func (e *MemoryError) Error() string {
	return fmt.Sprintf("smartmem: %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error for error unwrapping.
//
// This allows using errors.Is() and errors.As() with MemoryError.
func (e *MemoryError) Unwrap() error {
	return e.Err
}

// NewMemoryError creates a new MemoryError wrapping the given error.
//
// If err is nil, returns nil. This allows safe error wrapping:
//
//	if err != nil {
//	    return NewMemoryError("Remember", err)
//	}
func NewMemoryError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &MemoryError{
		Op:  op,
		Err: err,
	}
}
