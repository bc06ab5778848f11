// Package storage provides interfaces and types for durable memory persistence.
//
// It defines the Backend interface that all persistence implementations must satisfy.
// A backend stores one row per memory record and can reload the full record set on
// process restart.
package storage

import (
	"context"
	"time"
)

// Record is the persisted form of a memory record.
//
// This type is defined in the storage package to avoid circular dependencies
// with the memstore package. It mirrors the memstore.Record structure.
type Record struct {
	// ID is the unique identifier of the record.
	ID int64

	// Content is the remembered text.
	Content string

	// Embedding is the vector embedding for similarity search.
	Embedding []float64

	// Importance is the retention priority in [0.0, 1.0].
	Importance float64

	// Context contains free-form string tags (domain, date, agent role, ...).
	Context map[string]string

	// CreatedAt is when the record was created.
	CreatedAt time.Time

	// LastAccessedAt is when the record was last returned by a retrieval.
	LastAccessedAt time.Time

	// AccessCount is the number of retrieval hits.
	AccessCount int64

	// ConsolidatedFrom lists the ids this record summarizes.
	// Empty for primary records.
	ConsolidatedFrom []int64
}

// Backend defines the interface for durable record storage.
//
// All persistence implementations (SQLite, PostgreSQL, MySQL, in-memory) must
// implement this interface. Backends are dumb row stores: similarity search,
// decay, and eviction policy all live above them.
type Backend interface {
	// Load returns every persisted record. Called once at store construction
	// to rebuild the in-memory table after a restart.
	Load(ctx context.Context) ([]*Record, error)

	// Insert persists a new record.
	Insert(ctx context.Context, rec *Record) error

	// UpdateStats persists the mutable fields of a record: importance,
	// access count, and last-accessed time. All other fields are immutable
	// after creation.
	UpdateStats(ctx context.Context, id int64, importance float64, accessCount int64, lastAccessedAt time.Time) error

	// Delete removes the given ids in a single transaction. Absent ids are
	// ignored.
	Delete(ctx context.Context, ids []int64) error

	// Replace atomically removes oldIDs and inserts rec in one transaction.
	// Used by consolidation; no intermediate state may be durable.
	Replace(ctx context.Context, oldIDs []int64, rec *Record) error

	// Close closes the backend and releases resources.
	Close() error
}
