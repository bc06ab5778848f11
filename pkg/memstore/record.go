// Package memstore implements the long-term memory store.
//
// The store owns the full record set: an in-memory table indexed by id, a flat
// embedding index scanned by retrieval, and a write-through durable backend.
// All mutations are serialized by a single internal lock; reads take copied
// snapshots and never observe a record mid-mutation.
package memstore

import (
	"errors"
	"time"
)

// Predefined errors for common failure scenarios.
var (
	// ErrNotFound indicates that a requested memory record was not found.
	ErrNotFound = errors.New("memory not found")

	// ErrInvalidArgument indicates that the provided call parameters are invalid.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrCapacityExceeded indicates that an insert would breach the hard
	// capacity ceiling. This is a safety bound above the configured maximum;
	// hitting it means eviction is falling behind.
	ErrCapacityExceeded = errors.New("memory capacity exceeded")
)

// Record is one discrete stored memory: content, embedding, importance, and
// contextual metadata.
//
// Content, Embedding, Context, CreatedAt, and ConsolidatedFrom are immutable
// after creation. Importance, AccessCount, and LastAccessedAt are mutated only
// through the store.
type Record struct {
	// ID is the unique identifier of the record, assigned at creation.
	ID int64 `json:"id"`

	// Content is the remembered text.
	Content string `json:"content"`

	// Embedding is the vector embedding for similarity search.
	// Omitted from JSON to reduce payload size.
	Embedding []float64 `json:"embedding,omitempty"`

	// Importance is the retention priority in [0.0, 1.0]. It decays over time
	// and is boosted on every retrieval hit.
	Importance float64 `json:"importance"`

	// Context contains free-form string tags (domain, date, agent role, ...).
	// Retrieval filters use subset matching over these tags.
	Context map[string]string `json:"context,omitempty"`

	// CreatedAt is when the record was created.
	CreatedAt time.Time `json:"created_at"`

	// LastAccessedAt is updated on every retrieval hit.
	LastAccessedAt time.Time `json:"last_accessed_at"`

	// AccessCount is the number of retrieval hits. Monotonically increasing.
	AccessCount int64 `json:"access_count"`

	// ConsolidatedFrom lists the ids this record summarizes. Empty for primary
	// records; consolidation outputs are always leaf merges, never inputs to a
	// further consolidation.
	ConsolidatedFrom []int64 `json:"consolidated_from,omitempty"`
}

// IsConsolidated reports whether the record is the output of a consolidation.
func (r *Record) IsConsolidated() bool {
	return len(r.ConsolidatedFrom) > 0
}

// MatchesContext reports whether every key/value pair in filter is present in
// the record's context tags. An empty filter matches every record.
func (r *Record) MatchesContext(filter map[string]string) bool {
	for k, v := range filter {
		if r.Context[k] != v {
			return false
		}
	}
	return true
}

// ClampImportance clamps v to the valid importance range [0.0, 1.0].
func ClampImportance(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
