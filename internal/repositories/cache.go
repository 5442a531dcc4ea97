package repositories

import (
	"fmt"
	"strings"

	"github.com/mixview/mixview/internal/graph"
	"github.com/mixview/mixview/internal/models"
)

// GraphCacheAdapter implements graph.Cacher on top of the node and edge
// repositories.
//
// Provides automatic deduplication via the kind+identity constraint on
// nodes and the endpoint-pair constraint on edges. Duplicate rows are
// silently ignored (UNIQUE constraint violations).
type GraphCacheAdapter struct {
	nodes *NodeRepository
	edges *EdgeRepository
}

// NewGraphCacheAdapter creates a new GraphCacheAdapter over the given
// repositories.
func NewGraphCacheAdapter(nodes *NodeRepository, edges *EdgeRepository) *GraphCacheAdapter {
	return &GraphCacheAdapter{nodes: nodes, edges: edges}
}

// CacheNode stores a node, returning the persisted id. An already cached
// node returns the existing id without writing.
func (a *GraphCacheAdapter) CacheNode(node models.Node) (string, error) {
	identity := graph.Identity(node)

	existing, err := a.nodes.GetByIdentity(node.Kind, identity)
	if err == nil && existing != nil {
		return existing.ID(), nil
	}

	persisted := models.NewPersistedNode(0, identity, node)

	if err := a.nodes.Create(persisted); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			if existing, err := a.nodes.GetByIdentity(node.Kind, identity); err == nil {
				return existing.ID(), nil
			}
		}
		return "", fmt.Errorf("failed to cache node: %w", err)
	}

	return persisted.ID(), nil
}

// CacheEdge stores an edge whose endpoints are node keys as produced by
// graph.Key. Both endpoints must already be cached; their keys are resolved
// to persisted ids before writing.
func (a *GraphCacheAdapter) CacheEdge(edge models.Edge) error {
	fromID, err := a.resolveKey(edge.From)
	if err != nil {
		return err
	}
	toID, err := a.resolveKey(edge.To)
	if err != nil {
		return err
	}

	existing, err := a.edges.GetByPair(fromID, toID)
	if err == nil && existing != nil {
		return nil
	}

	edge.From = fromID
	edge.To = toID
	persisted := models.NewPersistedEdge(0, edge)

	if err := a.edges.Create(persisted); err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint") {
			return nil
		}
		return fmt.Errorf("failed to cache edge: %w", err)
	}

	return nil
}

// resolveKey looks a "kind/identity" node key up and returns the persisted
// node id.
func (a *GraphCacheAdapter) resolveKey(key string) (string, error) {
	kind, identity, ok := strings.Cut(key, "/")
	if !ok {
		return "", fmt.Errorf("malformed node key: %q", key)
	}

	node, err := a.nodes.GetByIdentity(kind, identity)
	if err != nil {
		return "", fmt.Errorf("edge endpoint not cached: %w", err)
	}
	return node.ID(), nil
}
