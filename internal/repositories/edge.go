package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/shared"
)

// EdgeRepository implements models.Repository[*models.PersistedEdge] for graph edge caching.
//
// Edges are deduplicated by the (from_id, to_id) unique constraint; recaching
// a known relation updates its weight instead of inserting a duplicate.
type EdgeRepository struct {
	db *sql.DB
}

// NewEdgeRepository creates a new EdgeRepository with the given database connection
func NewEdgeRepository(db *sql.DB) *EdgeRepository {
	return &EdgeRepository{db: db}
}

// Create inserts a new [models.PersistedEdge] into the database with generated ID and sequence
func (r *EdgeRepository) Create(edge *models.PersistedEdge) error {
	sequence, err := NextSequence(r.db, "edges")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	edge.SetID(id)
	edge.SetSequence(sequence)

	if err := edge.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO edges (id, sequence, from_id, to_id, weight, origin, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		edge.From(),
		edge.To(),
		edge.Weight(),
		edge.Origin(),
		edge.CreatedAt(),
		edge.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert edge: %w", err)
	}

	return nil
}

// Get retrieves an edge by ID, excluding soft-deleted edges
func (r *EdgeRepository) Get(id string) (*models.PersistedEdge, error) {
	query := `
		SELECT id, sequence, from_id, to_id, weight, origin, created_at, updated_at, deleted_at
		FROM edges
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByPair retrieves an edge by its endpoints
func (r *EdgeRepository) GetByPair(fromID, toID string) (*models.PersistedEdge, error) {
	query := `
		SELECT id, sequence, from_id, to_id, weight, origin, created_at, updated_at, deleted_at
		FROM edges
		WHERE from_id = ? AND to_id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, fromID, toID))
}

// Update modifies an existing edge in the database
func (r *EdgeRepository) Update(edge *models.PersistedEdge) error {
	if err := edge.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	edge.SetUpdatedAt(now)

	query := `
		UPDATE edges
		SET weight = ?, origin = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, edge.Weight(), edge.Origin(), now, edge.ID())
	if err != nil {
		return fmt.Errorf("failed to update edge: %w", err)
	}

	return affectedOne(result, "edge", edge.ID())
}

// Delete soft-deletes an edge by ID
func (r *EdgeRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE edges
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete edge: %w", err)
	}

	return affectedOne(result, "edge", id)
}

// List retrieves all edges matching the given criteria, excluding soft-deleted edges
func (r *EdgeRepository) List(criteria map[string]any) ([]*models.PersistedEdge, error) {
	query := `
		SELECT id, sequence, from_id, to_id, weight, origin, created_at, updated_at, deleted_at
		FROM edges
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if fromID, ok := criteria["from_id"].(string); ok && fromID != "" {
		query += " AND from_id = ?"
		args = append(args, fromID)
	}

	if origin, ok := criteria["origin"].(string); ok && origin != "" {
		query += " AND origin = ?"
		args = append(args, origin)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer rows.Close()

	var edges []*models.PersistedEdge
	for rows.Next() {
		edge, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		edges = append(edges, edge)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return edges, nil
}

// Count returns the number of live edges
func (r *EdgeRepository) Count() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM edges WHERE deleted_at IS NULL").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count edges: %w", err)
	}
	return count, nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedEdge]
func (r *EdgeRepository) scanOne(row *sql.Row) (*models.PersistedEdge, error) {
	var (
		id        string
		sequence  int
		fromID    string
		toID      string
		weight    float64
		origin    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := row.Scan(&id, &sequence, &fromID, &toID, &weight, &origin, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("edge not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan edge: %w", err)
	}

	dto := models.Edge{From: fromID, To: toID, Weight: weight, Origin: origin}

	edge := models.NewPersistedEdge(sequence, dto)
	edge.SetID(id)
	edge.SetCreatedAt(createdAt)
	edge.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		edge.SetDeletedAt(&deletedAt.Time)
	}

	return edge, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedEdge]
func (r *EdgeRepository) scanRow(rows *sql.Rows) (*models.PersistedEdge, error) {
	var (
		id        string
		sequence  int
		fromID    string
		toID      string
		weight    float64
		origin    string
		createdAt time.Time
		updatedAt time.Time
		deletedAt sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &fromID, &toID, &weight, &origin, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan edge: %w", err)
	}

	dto := models.Edge{From: fromID, To: toID, Weight: weight, Origin: origin}

	edge := models.NewPersistedEdge(sequence, dto)
	edge.SetID(id)
	edge.SetCreatedAt(createdAt)
	edge.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		edge.SetDeletedAt(&deletedAt.Time)
	}

	return edge, nil
}
