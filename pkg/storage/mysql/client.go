// Package mysql provides the MySQL persistence backend.
//
// MySQL suits deployments that already run a MySQL fleet. Vectors and
// context tags are stored as JSON.
package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
)

// Client implements storage.Backend using MySQL.
type Client struct {
	db        *sql.DB
	tableName string
}

// Config contains MySQL configuration.
type Config struct {
	Host      string
	Port      int
	User      string
	Password  string
	DBName    string
	TableName string
}

// NewClient creates a new MySQL backend.
func NewClient(cfg *Config) (*Client, error) {
	tableName := cfg.TableName
	if tableName == "" {
		tableName = "memories"
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true",
		cfg.User, cfg.Password, cfg.Host, cfg.Port, cfg.DBName)

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("NewMySQLClient: %w", err)
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
			id BIGINT PRIMARY KEY,
			content LONGTEXT NOT NULL,
			embedding JSON NOT NULL,
			importance DOUBLE NOT NULL DEFAULT 0.5,
			context JSON,
			created_at DATETIME(6) NOT NULL,
			last_accessed_at DATETIME(6) NOT NULL,
			access_count BIGINT NOT NULL DEFAULT 0,
			consolidated_from JSON
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

// insertArgs builds the ordered argument list for an insert statement.
func insertArgs(rec *storage.Record) ([]interface{}, error) {
	embeddingJSON, err := json.Marshal(rec.Embedding)
	if err != nil {
		return nil, fmt.Errorf("marshal embedding: %w", err)
	}

	contextJSON, err := json.Marshal(rec.Context)
	if err != nil {
		return nil, fmt.Errorf("marshal context: %w", err)
	}

	consolidatedJSON, err := json.Marshal(rec.ConsolidatedFrom)
	if err != nil {
		return nil, fmt.Errorf("marshal consolidated_from: %w", err)
	}

	return []interface{}{
		rec.ID,
		rec.Content,
		string(embeddingJSON),
		rec.Importance,
		string(contextJSON),
		rec.CreatedAt,
		rec.LastAccessedAt,
		rec.AccessCount,
		string(consolidatedJSON),
	}, nil
}

// scanRecord scans a record from a result row.
func scanRecord(rows *sql.Rows) (*storage.Record, error) {
	var rec storage.Record
	var embeddingStr, contextStr, consolidatedStr sql.NullString

	err := rows.Scan(
		&rec.ID,
		&rec.Content,
		&embeddingStr,
		&rec.Importance,
		&contextStr,
		&rec.CreatedAt,
		&rec.LastAccessedAt,
		&rec.AccessCount,
		&consolidatedStr,
	)
	if err != nil {
		return nil, err
	}

	if embeddingStr.Valid && embeddingStr.String != "" {
		if err := json.Unmarshal([]byte(embeddingStr.String), &rec.Embedding); err != nil {
			return nil, fmt.Errorf("parse embedding: %w", err)
		}
	}

	if contextStr.Valid && contextStr.String != "" {
		if err := json.Unmarshal([]byte(contextStr.String), &rec.Context); err != nil {
			return nil, fmt.Errorf("parse context: %w", err)
		}
	}

	if consolidatedStr.Valid && consolidatedStr.String != "" {
		if err := json.Unmarshal([]byte(consolidatedStr.String), &rec.ConsolidatedFrom); err != nil {
			return nil, fmt.Errorf("parse consolidated_from: %w", err)
		}
	}

	return &rec, nil
}

// deleteInTx deletes the given ids inside an open transaction.
func deleteInTx(ctx context.Context, tx *sql.Tx, tableName string, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}

	placeholders := make([]string, len(ids))
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		placeholders[i] = "?"
		args[i] = id
	}

	query := fmt.Sprintf("DELETE FROM %s WHERE id IN (%s)",
		tableName, strings.Join(placeholders, ", "))

	_, err := tx.ExecContext(ctx, query, args...)
	return err
}
