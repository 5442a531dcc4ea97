// Package repositories implements SQLite persistence for the graph cache.
//
// Rows are soft-deleted by stamping deleted_at, and every query filters
// deleted rows out. Inserts draw a per-table sequence number through
// [NextSequence] so nodes and edges keep a stable insertion order that does
// not depend on UUIDs or timestamps.
//
// Key Implementations:
//   - [NodeRepository] : Graph node caching with kind+identity lookups
//   - [EdgeRepository] : Directed relations deduplicated by endpoint pair
//   - [GraphCacheAdapter] : graph.Cacher implementation resolving node keys to persisted ids
package repositories
