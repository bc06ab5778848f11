// Package inmem provides an in-memory persistence backend.
//
// Nothing survives a restart; the backend exists for tests and for ephemeral
// stores that do not need durability.
package inmem

import (
	"context"
	"sync"
	"time"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
)

// Client implements storage.Backend with a plain map.
type Client struct {
	mu      sync.Mutex
	records map[int64]*storage.Record
}

// NewClient creates a new in-memory backend.
func NewClient() *Client {
	return &Client{
		records: make(map[int64]*storage.Record),
	}
}

// Load returns every stored record.
func (c *Client) Load(ctx context.Context) ([]*storage.Record, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	records := make([]*storage.Record, 0, len(c.records))
	for _, rec := range c.records {
		cp := *rec
		records = append(records, &cp)
	}
	return records, nil
}

// Insert stores a new record.
func (c *Client) Insert(ctx context.Context, rec *storage.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	cp := *rec
	c.records[rec.ID] = &cp
	return nil
}

// UpdateStats updates the mutable fields of a record.
func (c *Client) UpdateStats(ctx context.Context, id int64, importance float64, accessCount int64, lastAccessedAt time.Time) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if rec, ok := c.records[id]; ok {
		rec.Importance = importance
		rec.AccessCount = accessCount
		rec.LastAccessedAt = lastAccessedAt
	}
	return nil
}

// Delete removes the given ids. Absent ids are ignored.
func (c *Client) Delete(ctx context.Context, ids []int64) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range ids {
		delete(c.records, id)
	}
	return nil
}

// Replace removes oldIDs and inserts rec in one step.
func (c *Client) Replace(ctx context.Context, oldIDs []int64, rec *storage.Record) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, id := range oldIDs {
		delete(c.records, id)
	}
	cp := *rec
	c.records[rec.ID] = &cp
	return nil
}

// Close is a no-op for the in-memory backend.
func (c *Client) Close() error {
	return nil
}
