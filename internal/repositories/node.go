package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/mixview/mixview/internal/models"
	"github.com/mixview/mixview/internal/shared"
)

// NodeRepository implements models.Repository[*models.PersistedNode] for graph node caching.
//
// Nodes are deduplicated by the (kind, normalized) unique constraint so the
// same entity discovered through different services collapses into one row.
// The normalized column holds the full identity key, artist included.
type NodeRepository struct {
	db *sql.DB
}

// NewNodeRepository creates a new NodeRepository with the given database connection
func NewNodeRepository(db *sql.DB) *NodeRepository {
	return &NodeRepository{db: db}
}

// Create inserts a new [models.PersistedNode] into the database with generated ID and sequence
func (r *NodeRepository) Create(node *models.PersistedNode) error {
	sequence, err := NextSequence(r.db, "nodes")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	id := shared.GenerateID()
	node.SetID(id)
	node.SetSequence(sequence)

	if err := node.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO nodes (id, sequence, kind, name, normalized, source, artist, album, year, url, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = r.db.Exec(query,
		id,
		sequence,
		node.Kind(),
		node.Name(),
		node.Normalized(),
		node.Source(),
		node.Artist(),
		node.Album(),
		node.Year(),
		node.URL(),
		node.ImageURL(),
		node.CreatedAt(),
		node.UpdatedAt(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert node: %w", err)
	}

	return nil
}

// Get retrieves a node by ID, excluding soft-deleted nodes
func (r *NodeRepository) Get(id string) (*models.PersistedNode, error) {
	query := `
		SELECT id, sequence, kind, name, normalized, source, artist, album, year, url, image_url, created_at, updated_at, deleted_at
		FROM nodes
		WHERE id = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, id))
}

// GetByIdentity retrieves a node by its deduplication key
func (r *NodeRepository) GetByIdentity(kind, normalized string) (*models.PersistedNode, error) {
	query := `
		SELECT id, sequence, kind, name, normalized, source, artist, album, year, url, image_url, created_at, updated_at, deleted_at
		FROM nodes
		WHERE kind = ? AND normalized = ? AND deleted_at IS NULL
	`

	return r.scanOne(r.db.QueryRow(query, kind, normalized))
}

// Update modifies an existing node in the database
func (r *NodeRepository) Update(node *models.PersistedNode) error {
	if err := node.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	now := time.Now()
	node.SetUpdatedAt(now)

	query := `
		UPDATE nodes
		SET name = ?, normalized = ?, source = ?, artist = ?, album = ?, year = ?, url = ?, image_url = ?, updated_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query,
		node.Name(),
		node.Normalized(),
		node.Source(),
		node.Artist(),
		node.Album(),
		node.Year(),
		node.URL(),
		node.ImageURL(),
		now,
		node.ID(),
	)
	if err != nil {
		return fmt.Errorf("failed to update node: %w", err)
	}

	return affectedOne(result, "node", node.ID())
}

// Delete soft-deletes a node by ID
func (r *NodeRepository) Delete(id string) error {
	now := time.Now()

	query := `
		UPDATE nodes
		SET deleted_at = ?
		WHERE id = ? AND deleted_at IS NULL
	`

	result, err := r.db.Exec(query, now, id)
	if err != nil {
		return fmt.Errorf("failed to delete node: %w", err)
	}

	return affectedOne(result, "node", id)
}

// List retrieves all nodes matching the given criteria, excluding soft-deleted nodes
func (r *NodeRepository) List(criteria map[string]any) ([]*models.PersistedNode, error) {
	query := `
		SELECT id, sequence, kind, name, normalized, source, artist, album, year, url, image_url, created_at, updated_at, deleted_at
		FROM nodes
		WHERE deleted_at IS NULL
	`

	args := []any{}

	if kind, ok := criteria["kind"].(string); ok && kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	if source, ok := criteria["source"].(string); ok && source != "" {
		query += " AND source = ?"
		args = append(args, source)
	}

	if artist, ok := criteria["artist"].(string); ok && artist != "" {
		query += " AND artist = ?"
		args = append(args, artist)
	}

	query += " ORDER BY sequence ASC"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	var nodes []*models.PersistedNode
	for rows.Next() {
		node, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return nodes, nil
}

// Count returns the number of live nodes, optionally restricted to one kind
func (r *NodeRepository) Count(kind string) (int, error) {
	query := "SELECT COUNT(*) FROM nodes WHERE deleted_at IS NULL"
	args := []any{}
	if kind != "" {
		query += " AND kind = ?"
		args = append(args, kind)
	}

	var count int
	if err := r.db.QueryRow(query, args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count nodes: %w", err)
	}
	return count, nil
}

// scanOne scans a single [sql.Row] into a [models.PersistedNode]
func (r *NodeRepository) scanOne(row *sql.Row) (*models.PersistedNode, error) {
	var (
		id         string
		sequence   int
		kind       string
		name       string
		normalized string
		source     string
		artist     string
		album      string
		year       int
		url        string
		imageURL   string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := row.Scan(&id, &sequence, &kind, &name, &normalized, &source, &artist, &album, &year, &url, &imageURL, &createdAt, &updatedAt, &deletedAt)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("node not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	dto := models.Node{
		Kind:     kind,
		Name:     name,
		Artist:   artist,
		Album:    album,
		Year:     year,
		URL:      url,
		ImageURL: imageURL,
		Source:   source,
	}

	node := models.NewPersistedNode(sequence, normalized, dto)
	node.SetID(id)
	node.SetCreatedAt(createdAt)
	node.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		node.SetDeletedAt(&deletedAt.Time)
	}

	return node, nil
}

// scanRow scans a row from [sql.Rows] into a [models.PersistedNode]
func (r *NodeRepository) scanRow(rows *sql.Rows) (*models.PersistedNode, error) {
	var (
		id         string
		sequence   int
		kind       string
		name       string
		normalized string
		source     string
		artist     string
		album      string
		year       int
		url        string
		imageURL   string
		createdAt  time.Time
		updatedAt  time.Time
		deletedAt  sql.NullTime
	)

	err := rows.Scan(&id, &sequence, &kind, &name, &normalized, &source, &artist, &album, &year, &url, &imageURL, &createdAt, &updatedAt, &deletedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to scan node: %w", err)
	}

	dto := models.Node{
		Kind:     kind,
		Name:     name,
		Artist:   artist,
		Album:    album,
		Year:     year,
		URL:      url,
		ImageURL: imageURL,
		Source:   source,
	}

	node := models.NewPersistedNode(sequence, normalized, dto)
	node.SetID(id)
	node.SetCreatedAt(createdAt)
	node.SetUpdatedAt(updatedAt)
	if deletedAt.Valid {
		node.SetDeletedAt(&deletedAt.Time)
	}

	return node, nil
}
