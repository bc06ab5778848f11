// Package intelligence provides intelligent memory management: importance
// decay, capacity-bounded eviction, consolidation of related memories, and
// importance evaluation.
package intelligence

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/fcrew-ai/smartmem-go/pkg/memstore"
)

// ErrEvictionDeadlock indicates that the store is over capacity but every
// remaining candidate is protected by the critical importance threshold.
// This signals misconfiguration (ceiling too low relative to protected
// memories) and must be surfaced to an operator.
var ErrEvictionDeadlock = errors.New("eviction deadlock: all over-capacity records are critical")

// ForgettingConfig contains the resolved tunables of the forgetting policy.
type ForgettingConfig struct {
	// MaxMemories is the record count the policy enforces.
	MaxMemories int

	// DecayRate is the per-half-life retention multiplier in (0, 1].
	DecayRate float64

	// HalfLife is the time unit of the decay exponent.
	HalfLife time.Duration

	// ImportanceFloor is the lowest value decay may reach. Keeping it above
	// zero preserves ordering between long-unaccessed records.
	ImportanceFloor float64

	// CriticalThreshold protects records: importance above it is never
	// evicted, even under capacity pressure.
	CriticalThreshold float64
}

// ForgettingManager applies importance decay and keeps the store within its
// configured size bound. It models bounded long-term memory: low-value
// records fade and eventually make room, high-value ones persist.
//
// The manager is driven by an external maintenance trigger; it never
// schedules itself.
type ForgettingManager struct {
	store *memstore.Store
	cfg   ForgettingConfig
}

// NewForgettingManager creates a forgetting manager over the given store.
func NewForgettingManager(store *memstore.Store, cfg ForgettingConfig) *ForgettingManager {
	return &ForgettingManager{
		store: store,
		cfg:   cfg,
	}
}

// DecayTick applies exponential importance decay to every record:
//
//	importance' = importance * decay_rate^(elapsed / half_life)
//
// where elapsed is measured from the record's last access to now. The result
// is clamped at the configured floor so decay never reaches exactly zero.
func (m *ForgettingManager) DecayTick(ctx context.Context, now time.Time) error {
	for _, rec := range m.store.All() {
		elapsed := now.Sub(rec.LastAccessedAt)
		if elapsed <= 0 {
			continue
		}

		decayed := rec.Importance * math.Pow(m.cfg.DecayRate, elapsed.Hours()/m.cfg.HalfLife.Hours())
		if decayed < m.cfg.ImportanceFloor {
			decayed = m.cfg.ImportanceFloor
		}
		if decayed >= rec.Importance {
			continue
		}

		if err := m.store.UpdateImportance(ctx, rec.ID, decayed); err != nil {
			// Records may be removed between the snapshot and the update.
			if errors.Is(err, memstore.ErrNotFound) {
				continue
			}
			return fmt.Errorf("intelligence: decay tick: %w", err)
		}
	}
	return nil
}

// EnforceCapacity evicts the lowest-scoring records one at a time until the
// store holds at most MaxMemories. Records above the critical threshold are
// never evicted; if only critical records remain over capacity the call fails
// with ErrEvictionDeadlock. Returns the number of records evicted.
func (m *ForgettingManager) EnforceCapacity(ctx context.Context) (int, error) {
	evicted := 0
	now := time.Now()

	for m.store.Size() > m.cfg.MaxMemories {
		victim := m.selectVictim(now)
		if victim == nil {
			return evicted, fmt.Errorf("intelligence: enforce capacity: %w", ErrEvictionDeadlock)
		}

		if err := m.store.Remove(ctx, victim.ID); err != nil {
			return evicted, fmt.Errorf("intelligence: enforce capacity: %w", err)
		}
		evicted++
	}

	return evicted, nil
}

// selectVictim picks the next record to evict: the lowest eviction score
// among non-critical records, with deterministic tie-breaks (lower
// importance, then older creation, then smaller id). Returns nil when every
// record is protected.
func (m *ForgettingManager) selectVictim(now time.Time) *memstore.Record {
	var victim *memstore.Record
	var victimScore float64

	for _, rec := range m.store.All() {
		if rec.Importance > m.cfg.CriticalThreshold {
			continue
		}

		score := evictionScore(rec, now)
		if victim == nil || score < victimScore ||
			(score == victimScore && loses(rec, victim)) {
			victim = rec
			victimScore = score
		}
	}

	return victim
}

// evictionScore ranks retention value: importance weighted up by access
// frequency and down by age. Low importance, rarely accessed, old records
// score lowest and go first.
func evictionScore(rec *memstore.Record, now time.Time) float64 {
	ageHours := now.Sub(rec.CreatedAt).Hours()
	if ageHours < 0 {
		ageHours = 0
	}
	accessFactor := 1.0 + math.Log1p(float64(rec.AccessCount))
	return rec.Importance * accessFactor / (1.0 + ageHours/24.0)
}

// loses reports whether a should be evicted before b when their eviction
// scores are equal.
func loses(a, b *memstore.Record) bool {
	if a.Importance != b.Importance {
		return a.Importance < b.Importance
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
