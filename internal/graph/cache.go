package graph

import "github.com/mixview/mixview/internal/models"

// Cacher persists graph nodes and edges. Implementations deduplicate by
// node identity, so caching the same graph twice is safe.
type Cacher interface {
	// CacheNode stores a node and returns its persisted id. An already
	// cached node returns the existing id.
	CacheNode(node models.Node) (string, error)

	// CacheEdge stores an edge whose From/To fields hold node keys as
	// produced by [Key]. Both endpoints must already be cached.
	CacheEdge(edge models.Edge) error
}

// CacheResult summarizes a cache pass over a graph.
type CacheResult struct {
	Nodes int `json:"nodes"`
	Edges int `json:"edges"`
}

// Cache persists every node and then every edge through c. Edges go second
// so their endpoints resolve. The first failure aborts the pass.
func (g *Graph) Cache(c Cacher) (*CacheResult, error) {
	result := &CacheResult{}
	for _, n := range g.Nodes {
		if _, err := c.CacheNode(n); err != nil {
			return result, err
		}
		result.Nodes++
	}
	for _, e := range g.Edges {
		if err := c.CacheEdge(e); err != nil {
			return result, err
		}
		result.Edges++
	}
	return result, nil
}
