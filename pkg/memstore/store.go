package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
)

// Config contains the resolved tunables the store needs. Validation happens in
// the core configuration layer before the store is built.
type Config struct {
	// HardLimit is the absolute record ceiling. Inserting past it fails with
	// ErrCapacityExceeded instead of deferring to eviction.
	HardLimit int

	// AccessBoost determines how much a retrieval hit strengthens importance:
	// importance' = importance + AccessBoost * (1 - importance).
	AccessBoost float64
}

// Store is the single owner of all memory records.
//
// A Store may be shared by any number of agents; its internal lock provides
// the only mutual exclusion required. Mutations write through to the durable
// backend before becoming visible to readers.
type Store struct {
	mu      sync.RWMutex
	records map[int64]*Record
	backend storage.Backend
	cfg     Config
}

// NewStore creates a store backed by the given durable backend and reloads
// the persisted record set, so size and contents are consistent with the
// pre-restart state.
func NewStore(ctx context.Context, backend storage.Backend, cfg Config) (*Store, error) {
	rows, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("memstore: load: %w", err)
	}

	records := make(map[int64]*Record, len(rows))
	for _, row := range rows {
		records[row.ID] = fromStorageRecord(row)
	}

	return &Store{
		records: records,
		backend: backend,
		cfg:     cfg,
	}, nil
}

// Insert adds a fully assembled record to the store.
//
// The caller computes the embedding before calling, so no external call
// happens inside the critical section. Importance is clamped to [0, 1].
// Insert fails with ErrCapacityExceeded only when the hard ceiling would be
// breached; staying merely above the configured maximum is allowed and left
// to the forgetting policy.
func (s *Store) Insert(ctx context.Context, rec *Record) error {
	if rec == nil || rec.ID == 0 {
		return fmt.Errorf("memstore: insert: %w", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.records[rec.ID]; exists {
		return fmt.Errorf("memstore: insert id %d: %w", rec.ID, ErrInvalidArgument)
	}
	if s.cfg.HardLimit > 0 && len(s.records)+1 > s.cfg.HardLimit {
		return fmt.Errorf("memstore: insert: %w", ErrCapacityExceeded)
	}

	cp := *rec
	cp.Importance = ClampImportance(rec.Importance)

	if err := s.backend.Insert(ctx, toStorageRecord(&cp)); err != nil {
		return fmt.Errorf("memstore: insert: %w", err)
	}

	s.records[cp.ID] = &cp
	return nil
}

// Get returns a copy of the record with the given id.
func (s *Store) Get(id int64) (*Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.records[id]
	if !ok {
		return nil, fmt.Errorf("memstore: get id %d: %w", id, ErrNotFound)
	}

	cp := *rec
	return &cp, nil
}

// UpdateImportance sets the record's importance, clamped to [0, 1].
func (s *Store) UpdateImportance(ctx context.Context, id int64, importance float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("memstore: update importance id %d: %w", id, ErrNotFound)
	}

	clamped := ClampImportance(importance)
	if err := s.backend.UpdateStats(ctx, id, clamped, rec.AccessCount, rec.LastAccessedAt); err != nil {
		return fmt.Errorf("memstore: update importance: %w", err)
	}

	rec.Importance = clamped
	return nil
}

// Touch records a retrieval hit: the access count increases, the last-access
// time moves to now, and importance is reinforced by the access boost.
// Retrieval itself strengthens memory; importance never decreases here.
func (s *Store) Touch(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec, ok := s.records[id]
	if !ok {
		return fmt.Errorf("memstore: touch id %d: %w", id, ErrNotFound)
	}

	boosted := ClampImportance(rec.Importance + s.cfg.AccessBoost*(1.0-rec.Importance))
	count := rec.AccessCount + 1
	now := time.Now()

	if err := s.backend.UpdateStats(ctx, id, boosted, count, now); err != nil {
		return fmt.Errorf("memstore: touch: %w", err)
	}

	rec.Importance = boosted
	rec.AccessCount = count
	rec.LastAccessedAt = now
	return nil
}

// Remove deletes a record. Removing an absent id is a no-op.
func (s *Store) Remove(ctx context.Context, id int64) error {
	return s.RemoveMany(ctx, []int64{id})
}

// RemoveMany deletes the given records atomically. Absent ids are ignored.
func (s *Store) RemoveMany(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backend.Delete(ctx, ids); err != nil {
		return fmt.Errorf("memstore: remove: %w", err)
	}

	for _, id := range ids {
		delete(s.records, id)
	}
	return nil
}

// ReplaceWithConsolidated atomically removes oldIDs and inserts rec.
//
// The mutation lock is held for the entire operation, so no reader ever
// observes the originals gone without the consolidated record present, or
// the reverse.
func (s *Store) ReplaceWithConsolidated(ctx context.Context, oldIDs []int64, rec *Record) error {
	if rec == nil || rec.ID == 0 {
		return fmt.Errorf("memstore: replace: %w", ErrInvalidArgument)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	cp.Importance = ClampImportance(rec.Importance)

	if err := s.backend.Replace(ctx, oldIDs, toStorageRecord(&cp)); err != nil {
		return fmt.Errorf("memstore: replace: %w", err)
	}

	for _, id := range oldIDs {
		delete(s.records, id)
	}
	s.records[cp.ID] = &cp
	return nil
}

// All returns a copied snapshot of every record. The snapshot is stable under
// concurrent mutation; order is unspecified.
func (s *Store) All() []*Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]*Record, 0, len(s.records))
	for _, rec := range s.records {
		cp := *rec
		records = append(records, &cp)
	}
	return records
}

// Size returns the current number of records.
func (s *Store) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

// Close closes the durable backend.
func (s *Store) Close() error {
	return s.backend.Close()
}

// toStorageRecord converts a record to its persisted form.
func toStorageRecord(rec *Record) *storage.Record {
	return &storage.Record{
		ID:               rec.ID,
		Content:          rec.Content,
		Embedding:        rec.Embedding,
		Importance:       rec.Importance,
		Context:          rec.Context,
		CreatedAt:        rec.CreatedAt,
		LastAccessedAt:   rec.LastAccessedAt,
		AccessCount:      rec.AccessCount,
		ConsolidatedFrom: rec.ConsolidatedFrom,
	}
}

// fromStorageRecord converts a persisted row back to a record.
func fromStorageRecord(row *storage.Record) *Record {
	return &Record{
		ID:               row.ID,
		Content:          row.Content,
		Embedding:        row.Embedding,
		Importance:       ClampImportance(row.Importance),
		Context:          row.Context,
		CreatedAt:        row.CreatedAt,
		LastAccessedAt:   row.LastAccessedAt,
		AccessCount:      row.AccessCount,
		ConsolidatedFrom: row.ConsolidatedFrom,
	}
}
