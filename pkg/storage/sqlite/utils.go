package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/fcrew-ai/smartmem-go/pkg/storage"
)

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
