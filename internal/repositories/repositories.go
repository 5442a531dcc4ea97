package repositories

import (
	"database/sql"
	"fmt"
)

// NextSequence advances the named table's counter and returns the new value.
//
// Sequences give nodes and edges a stable insertion order even when rows
// share a created_at timestamp. They never appear in CLI output.
func NextSequence(db *sql.DB, table string) (int, error) {
	query := fmt.Sprintf("UPDATE %s_sequence SET value = value + 1 WHERE id = 1 RETURNING value", table)

	var next int
	if err := db.QueryRow(query).Scan(&next); err != nil {
		return 0, fmt.Errorf("failed to advance %s sequence: %w", table, err)
	}

	return next, nil
}

// affectedOne fails when result touched no rows. The soft-delete queries in
// this package filter on deleted_at IS NULL, so a zero count means the target
// is missing or already deleted.
func affectedOne(result sql.Result, entity, id string) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("%s not found or already deleted: %s", entity, id)
	}

	return nil
}
