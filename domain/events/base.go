package events

import (
	"time"

	"recipebook/domain/core/valueobjects"
)

// SourceCatalog is the event source name used when publishing externally
const SourceCatalog = "recipebook.catalog"

// Event type names
const (
	TypeRecipeCreated = "recipe.created"
	TypeRecipeUpdated = "recipe.updated"
	TypeRecipeDeleted = "recipe.deleted"
)

// DomainEvent is the base interface for all domain events
// Events represent something that has happened in the past
type DomainEvent interface {
	GetAggregateID() string
	GetEventType() string
	GetTimestamp() time.Time
	GetVersion() int
}

// BaseEvent provides common event fields
type BaseEvent struct {
	AggregateID string    `json:"aggregate_id"`
	EventType   string    `json:"event_type"`
	Timestamp   time.Time `json:"timestamp"`
	Version     int       `json:"version"`
}

func (e BaseEvent) GetAggregateID() string  { return e.AggregateID }
func (e BaseEvent) GetEventType() string    { return e.EventType }
func (e BaseEvent) GetTimestamp() time.Time { return e.Timestamp }
func (e BaseEvent) GetVersion() int         { return e.Version }

// RecipeCreated is raised when a recipe is added to the catalog
type RecipeCreated struct {
	BaseEvent
	RecipeID valueobjects.RecipeID `json:"recipe_id"`
	Name     string                `json:"name"`
	Diet     valueobjects.Diet     `json:"diet"`
	PrepTime valueobjects.PrepTime `json:"prep_time"`
	Tags     []string              `json:"tags"`
}

// NewRecipeCreated creates a RecipeCreated event
func NewRecipeCreated(id valueobjects.RecipeID, name string, diet valueobjects.Diet, prepTime valueobjects.PrepTime, tags []string, timestamp time.Time) RecipeCreated {
	return RecipeCreated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeRecipeCreated,
			Timestamp:   timestamp,
			Version:     1,
		},
		RecipeID: id,
		Name:     name,
		Diet:     diet,
		PrepTime: prepTime,
		Tags:     tags,
	}
}

// RecipeUpdated is raised when every field of a recipe has been replaced
type RecipeUpdated struct {
	BaseEvent
	RecipeID valueobjects.RecipeID `json:"recipe_id"`
	OldName  string                `json:"old_name"`
	NewName  string                `json:"new_name"`
	Tags     []string              `json:"tags"`
}

// NewRecipeUpdated creates a RecipeUpdated event
func NewRecipeUpdated(id valueobjects.RecipeID, oldName, newName string, tags []string, version int, timestamp time.Time) RecipeUpdated {
	return RecipeUpdated{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeRecipeUpdated,
			Timestamp:   timestamp,
			Version:     version,
		},
		RecipeID: id,
		OldName:  oldName,
		NewName:  newName,
		Tags:     tags,
	}
}

// RecipeDeleted is raised when a recipe is removed from the catalog
type RecipeDeleted struct {
	BaseEvent
	RecipeID valueobjects.RecipeID `json:"recipe_id"`
	Name     string                `json:"name"`
}

// NewRecipeDeleted creates a RecipeDeleted event
func NewRecipeDeleted(id valueobjects.RecipeID, name string, version int, timestamp time.Time) RecipeDeleted {
	return RecipeDeleted{
		BaseEvent: BaseEvent{
			AggregateID: id.String(),
			EventType:   TypeRecipeDeleted,
			Timestamp:   timestamp,
			Version:     version,
		},
		RecipeID: id,
		Name:     name,
	}
}
