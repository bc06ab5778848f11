// Package sqlite provides the SQLite persistence backend.
//
// SQLite is a lightweight, file-based database suitable for local development
// and the single-process shared-store use case. Vectors and context tags are
// stored as JSON strings in TEXT fields.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
)

// Client implements storage.Backend using SQLite.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains configuration for creating a SQLite backend.
type Config struct {
	// DBPath is the path to the SQLite database file.
	DBPath string

	// TableName is the name of the table to use. Defaults to "memories".
	TableName string
}

// NewClient creates a new SQLite backend.
//
// Parameters:
//   - cfg: Configuration containing database path and table name
//
// Returns:
//   - *Client: The SQLite backend instance
//   - error: Error if database connection or table creation fails
func NewClient(cfg *Config) (*Client, error) {
	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	// Create parent directory if it doesn't exist
	dbDir := filepath.Dir(cfg.DBPath)
	if dbDir != "" && dbDir != "." {
		if err := os.MkdirAll(dbDir, 0755); err != nil {
			return nil, fmt.Errorf("NewSQLiteClient: failed to create directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", cfg.DBPath+"?_foreign_keys=1&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewSQLiteClient: %w", err)
	}

	client := &Client{
		db:        db,
		tableName: tableName,
	}

	if err := client.initTables(context.Background()); err != nil {
		return nil, err
	}

	return client, nil
}

// initTables initializes the database table structure.
func (c *Client) initTables(ctx context.Context) error {
	query := fmt.Sprintf(`
		CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY,
			content TEXT NOT NULL,
			embedding TEXT NOT NULL,
			importance REAL NOT NULL DEFAULT 0.5,
			context TEXT,
			created_at DATETIME NOT NULL,
			last_accessed_at DATETIME NOT NULL,
			access_count INTEGER NOT NULL DEFAULT 0,
			consolidated_from TEXT
		)
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("initTables: %w", err)
	}

	return nil
}

// Load returns every persisted record.
func (c *Client) Load(ctx context.Context) ([]*storage.Record, error) {
	query := fmt.Sprintf(`
		SELECT id, content, embedding, importance, context,
		       created_at, last_accessed_at, access_count, consolidated_from
		FROM %s
		ORDER BY id
	`, c.tableName)

	rows, err := c.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*storage.Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("Load: %w", err)
		}
		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("Load: %w", err)
	}

	return records, nil
}

// Insert persists a new record.
func (c *Client) Insert(ctx context.Context, rec *storage.Record) error {
	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, content, embedding, importance, context, created_at, last_accessed_at, access_count, consolidated_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	args, err := insertArgs(rec)
	if err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("Insert: %w", err)
	}

	return nil
}

// UpdateStats persists the mutable fields of a record.
func (c *Client) UpdateStats(ctx context.Context, id int64, importance float64, accessCount int64, lastAccessedAt time.Time) error {
	query := fmt.Sprintf(`
		UPDATE %s
		SET importance = ?, access_count = ?, last_accessed_at = ?
		WHERE id = ?
	`, c.tableName)

	if _, err := c.db.ExecContext(ctx, query, importance, accessCount, lastAccessedAt, id); err != nil {
		return fmt.Errorf("UpdateStats: %w", err)
	}

	return nil
}

// Delete removes the given ids in a single transaction.
func (c *Client) Delete(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	if err := deleteInTx(ctx, tx, c.tableName, ids); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("Delete: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	return nil
}

// Replace atomically removes oldIDs and inserts rec in one transaction.
func (c *Client) Replace(ctx context.Context, oldIDs []int64, rec *storage.Record) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("Replace: %w", err)
	}

	if err := deleteInTx(ctx, tx, c.tableName, oldIDs); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("Replace: %w", err)
	}

	query := fmt.Sprintf(`
		INSERT INTO %s
		(id, content, embedding, importance, context, created_at, last_accessed_at, access_count, consolidated_from)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, c.tableName)

	args, err := insertArgs(rec)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("Replace: %w", err)
	}

	if _, err := tx.ExecContext(ctx, query, args...); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("Replace: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("Replace: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (c *Client) Close() error {
	if c.db != nil {
		return c.db.Close()
	}
	return nil
}
