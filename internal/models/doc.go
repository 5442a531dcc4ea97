// Package models defines domain entities and persistence interfaces for the MixView graph cache.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): Lightweight structs assembled from backend results
//   - [Node] : A graph node (artist, album or track) with display metadata
//   - [Edge] : A directed relation between two nodes with weight and origin
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [PersistedNode] : Cached nodes deduplicated by (kind, normalized name, artist)
//   - [PersistedEdge] : Cached relations deduplicated by endpoint pair
//
// All persistent entities implement the Model interface providing ID generation, timestamps, validation, and soft delete support.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
