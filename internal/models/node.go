package models

import (
	"fmt"
	"time"
)

// Node kinds stored in the graph.
const (
	KindArtist = "artist"
	KindAlbum  = "album"
	KindTrack  = "track"
)

// Node is a graph node as assembled from backend results.
//
// ServiceID is the backend's id for the entity and may be empty for live
// results that were never cached server-side. Artist is the owning artist for
// albums and tracks; Album is set for tracks only.
type Node struct {
	ServiceID string `json:"service_id,omitempty"`
	Kind      string `json:"kind"`
	Name      string `json:"name"`
	Artist    string `json:"artist,omitempty"`
	Album     string `json:"album,omitempty"`
	Year      int    `json:"year,omitempty"`
	URL       string `json:"url,omitempty"`
	ImageURL  string `json:"image_url,omitempty"`
	Source    string `json:"source,omitempty"`
}

// Edge is a directed relation between two graph nodes.
//
// From and To hold node identity keys while the graph is in memory and
// persisted node ids once cached. Origin names the relation that produced
// the edge, e.g. "related" or "tracklist".
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
	Origin string  `json:"origin,omitempty"`
}

// PersistedNode is a database-backed graph node with lifecycle management.
//
// Normalized is the canonical form of the node name used for deduplication
// across services; the (kind, normalized, artist) triple is unique.
type PersistedNode struct {
	id         string
	sequence   int
	normalized string
	node       Node
	createdAt  time.Time
	updatedAt  time.Time
	deletedAt  *time.Time
}

// NewPersistedNode creates a persisted node wrapping the given DTO.
func NewPersistedNode(sequence int, normalized string, node Node) *PersistedNode {
	now := time.Now()
	return &PersistedNode{
		sequence:   sequence,
		normalized: normalized,
		node:       node,
		createdAt:  now,
		updatedAt:  now,
	}
}

func (n *PersistedNode) ID() string { return n.id }
func (n *PersistedNode) Sequence() int { return n.sequence }
func (n *PersistedNode) Normalized() string { return n.normalized }
func (n *PersistedNode) Kind() string { return n.node.Kind }
func (n *PersistedNode) Name() string { return n.node.Name }
func (n *PersistedNode) Artist() string { return n.node.Artist }
func (n *PersistedNode) Album() string { return n.node.Album }
func (n *PersistedNode) Year() int { return n.node.Year }
func (n *PersistedNode) URL() string { return n.node.URL }
func (n *PersistedNode) ImageURL() string { return n.node.ImageURL }
func (n *PersistedNode) Source() string { return n.node.Source }
func (n *PersistedNode) Node() Node { return n.node }
func (n *PersistedNode) CreatedAt() time.Time { return n.createdAt }
func (n *PersistedNode) UpdatedAt() time.Time { return n.updatedAt }
func (n *PersistedNode) DeletedAt() *time.Time { return n.deletedAt }

func (n *PersistedNode) SetID(id string) { n.id = id }
func (n *PersistedNode) SetSequence(sequence int) { n.sequence = sequence }
func (n *PersistedNode) SetUpdatedAt(t time.Time) { n.updatedAt = t }
func (n *PersistedNode) SetDeletedAt(t *time.Time) { n.deletedAt = t }
func (n *PersistedNode) SetCreatedAt(t time.Time) { n.createdAt = t }
func (n *PersistedNode) SetNormalized(normalized string) { n.normalized = normalized }

// Validate checks that the node has a known kind, a name and a normalized form.
func (n *PersistedNode) Validate() error {
	switch n.node.Kind {
	case KindArtist, KindAlbum, KindTrack:
	default:
		return fmt.Errorf("invalid node kind: %q", n.node.Kind)
	}
	if n.node.Name == "" {
		return fmt.Errorf("node name is required")
	}
	if n.normalized == "" {
		return fmt.Errorf("node normalized form is required")
	}
	return nil
}

// PersistedEdge is a database-backed graph edge.
type PersistedEdge struct {
	id        string
	sequence  int
	edge      Edge
	createdAt time.Time
	updatedAt time.Time
	deletedAt *time.Time
}

// NewPersistedEdge creates a persisted edge wrapping the given DTO. A zero
// weight defaults to 1.
func NewPersistedEdge(sequence int, edge Edge) *PersistedEdge {
	if edge.Weight == 0 {
		edge.Weight = 1
	}
	now := time.Now()
	return &PersistedEdge{
		sequence:  sequence,
		edge:      edge,
		createdAt: now,
		updatedAt: now,
	}
}

func (e *PersistedEdge) ID() string { return e.id }
func (e *PersistedEdge) Sequence() int { return e.sequence }
func (e *PersistedEdge) From() string { return e.edge.From }
func (e *PersistedEdge) To() string { return e.edge.To }
func (e *PersistedEdge) Weight() float64 { return e.edge.Weight }
func (e *PersistedEdge) Origin() string { return e.edge.Origin }
func (e *PersistedEdge) Edge() Edge { return e.edge }
func (e *PersistedEdge) CreatedAt() time.Time { return e.createdAt }
func (e *PersistedEdge) UpdatedAt() time.Time { return e.updatedAt }
func (e *PersistedEdge) DeletedAt() *time.Time { return e.deletedAt }

func (e *PersistedEdge) SetID(id string) { e.id = id }
func (e *PersistedEdge) SetSequence(sequence int) { e.sequence = sequence }
func (e *PersistedEdge) SetUpdatedAt(t time.Time) { e.updatedAt = t }
func (e *PersistedEdge) SetDeletedAt(t *time.Time) { e.deletedAt = t }
func (e *PersistedEdge) SetCreatedAt(t time.Time) { e.createdAt = t }
func (e *PersistedEdge) SetWeight(w float64) { e.edge.Weight = w }

// Validate checks that the edge connects two distinct nodes with a positive
// weight.
func (e *PersistedEdge) Validate() error {
	if e.edge.From == "" || e.edge.To == "" {
		return fmt.Errorf("edge endpoints are required")
	}
	if e.edge.From == e.edge.To {
		return fmt.Errorf("edge cannot connect a node to itself")
	}
	if e.edge.Weight <= 0 {
		return fmt.Errorf("edge weight must be positive, got %v", e.edge.Weight)
	}
	return nil
}
