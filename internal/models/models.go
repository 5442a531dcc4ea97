// package models defines the data model for the music graph cache
package models

import (
	"time"
)

// Model is the base interface the persisted graph entities implement.
// PersistedNode and PersistedEdge are the two implementations.
type Model interface {
	ID() string            // ID returns the entity's uuid
	Sequence() int         // Sequence returns the entity's insertion-order number
	CreatedAt() time.Time  // CreatedAt returns when the entity was first cached
	UpdatedAt() time.Time  // UpdatedAt returns when the entity last changed
	DeletedAt() *time.Time // DeletedAt returns the soft-delete time, nil while live
	Validate() error       // Validate checks the entity before it is written
}

// Repository is the data-access surface for one entity type.
type Repository[T Model] interface {
	Create(model T) error                      // Create inserts the entity
	Get(id string) (T, error)                  // Get retrieves an entity by uuid
	Update(model T) error                      // Update rewrites a stored entity
	Delete(id string) error                    // Delete soft-deletes by uuid
	List(criteria map[string]any) ([]T, error) // List retrieves entities matching the criteria
}
