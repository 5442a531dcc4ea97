package graph

import "fmt"

// ProgressUpdate represents a progress event during a crawl.
//
// Used to send real-time updates to the CLI or UI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Crawl phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
}

// Crawl phase enumeration
type Phase int

const (
	ExpandSeed Phase = iota
	ExpandLevel
	CacheGraph
)

func (p Phase) String() string {
	switch p {
	case ExpandSeed:
		return "expand_seed"
	case ExpandLevel:
		return "expand_level"
	case CacheGraph:
		return "cache_graph"
	default:
		return ""
	}
}

func seedUpdate(name string) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExpandSeed,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Seeding graph from %s...", name),
	}
}

func expandLevelUpdate(depth, maxDepth, seeds int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExpandLevel,
		Step:    depth,
		Total:   maxDepth,
		Message: fmt.Sprintf("Expanding level %d/%d (%d seeds)...", depth, maxDepth, seeds),
	}
}

func expandedUpdate(step, total int, name string, added int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExpandLevel,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✓ %s (%d new)", step, total, name, added),
	}
}

func expandFailedUpdate(step, total int, name string, err error) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ExpandLevel,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] ✗ %s: %v", step, total, name, err),
	}
}

func cacheStartUpdate(nodes, edges int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheGraph,
		Step:    0,
		Total:   nodes + edges,
		Message: fmt.Sprintf("Caching %d nodes and %d edges...", nodes, edges),
	}
}

func cachedUpdate(nodes, edges int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   CacheGraph,
		Step:    nodes + edges,
		Total:   nodes + edges,
		Message: fmt.Sprintf("✓ Cached %d nodes and %d edges", nodes, edges),
	}
}
