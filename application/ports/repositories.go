package ports

import (
	"context"
	"math"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/events"
	"recipebook/domain/filter"
)

// RecipeRepository defines the interface for recipe persistence
// This is a port in hexagonal architecture - the domain doesn't know about the implementation
type RecipeRepository interface {
	// Create persists a new recipe. A duplicate id is a conflict.
	Create(ctx context.Context, recipe *entities.Recipe) error

	// Replace overwrites an existing recipe. A missing id is not found.
	Replace(ctx context.Context, recipe *entities.Recipe) error

	// Delete removes a recipe and its tags
	Delete(ctx context.Context, id valueobjects.RecipeID) error

	// GetByID retrieves a recipe by its ID
	GetByID(ctx context.Context, id valueobjects.RecipeID) (*entities.Recipe, error)

	// List returns one page of recipes matching the filter in the filter's
	// order, plus the total number of matches
	List(ctx context.Context, f filter.Filter, page Page) ([]*entities.Recipe, int, error)

	// ListTags returns every distinct tag in use, sorted
	ListTags(ctx context.Context) ([]string, error)

	// Ping checks that the store is reachable
	Ping(ctx context.Context) error
}

// Page selects a window of a result list
type Page struct {
	Offset int
	Limit  int
}

// NewPage builds a window from a 1-based page number and a page size.
// Page numbers past the largest representable offset are clamped to it.
func NewPage(number, size int) Page {
	if number < 1 {
		number = 1
	}
	if size < 1 {
		size = 1
	}
	if maxNumber := math.MaxInt/size + 1; number > maxNumber {
		number = maxNumber
	}
	return Page{Offset: (number - 1) * size, Limit: size}
}

// EventPublisher defines the interface for publishing domain events
type EventPublisher interface {
	// Publish sends a single event
	Publish(ctx context.Context, event events.DomainEvent) error

	// PublishBatch sends multiple events
	PublishBatch(ctx context.Context, events []events.DomainEvent) error
}

// Cache defines the interface for caching
type Cache interface {
	// Get retrieves a value from cache
	Get(ctx context.Context, key string) (interface{}, bool)

	// Set stores a value in cache with TTL in seconds
	Set(ctx context.Context, key string, value interface{}, ttl int) error

	// Generation advances whenever entries are deleted or cleared
	Generation() uint64

	// SetIfGeneration stores a value only while the generation is unchanged
	SetIfGeneration(ctx context.Context, generation uint64, key string, value interface{}, ttl int) bool

	// Delete removes a value from cache
	Delete(ctx context.Context, key string) error

	// Clear removes all values from cache
	Clear(ctx context.Context) error
}
