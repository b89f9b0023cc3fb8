package entities

import (
	"strings"
	"time"
	"unicode/utf8"

	"recipebook/domain/config"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/events"
	pkgerrors "recipebook/pkg/errors"
)

// RecipeDetails carries every user-editable field of a recipe.
// Creation and replacement both take the full set.
type RecipeDetails struct {
	Name     string
	Source   valueobjects.Source
	Diet     valueobjects.Diet
	PrepTime valueobjects.PrepTime
	Seasons  valueobjects.Seasons
	Tags     valueobjects.Tags
	Notes    string
}

// Recipe is a single catalog entry.
// Fields are private; the only mutation after creation is Replace.
type Recipe struct {
	id        valueobjects.RecipeID
	name      string
	source    valueobjects.Source
	diet      valueobjects.Diet
	prepTime  valueobjects.PrepTime
	seasons   valueobjects.Seasons
	tags      valueobjects.Tags
	notes     string
	createdAt time.Time
	updatedAt time.Time
	version   int

	// Domain events that occurred during this aggregate's lifetime
	events []events.DomainEvent
}

// NewRecipe creates a new recipe with full business rule validation.
// A zero id is replaced with a freshly generated one.
func NewRecipe(id valueobjects.RecipeID, details RecipeDetails) (*Recipe, error) {
	return NewRecipeWithConfig(id, details, config.DefaultDomainConfig())
}

// NewRecipeWithConfig creates a new recipe using explicit domain limits
func NewRecipeWithConfig(id valueobjects.RecipeID, details RecipeDetails, cfg *config.DomainConfig) (*Recipe, error) {
	details, err := validateDetails(details, cfg)
	if err != nil {
		return nil, err
	}

	if id.IsZero() {
		id = valueobjects.NewRecipeID()
	}

	now := time.Now().UTC()
	recipe := &Recipe{
		id:        id,
		createdAt: now,
		updatedAt: now,
		version:   1,
		events:    []events.DomainEvent{},
	}
	recipe.apply(details)

	recipe.addEvent(events.NewRecipeCreated(
		recipe.id,
		recipe.name,
		recipe.diet,
		recipe.prepTime,
		recipe.tags.Values(),
		now,
	))

	return recipe, nil
}

// ReconstructRecipe rebuilds a recipe from repository data with preserved timestamps
func ReconstructRecipe(
	id valueobjects.RecipeID,
	details RecipeDetails,
	createdAt, updatedAt time.Time,
	version int,
) (*Recipe, error) {
	if id.IsZero() {
		return nil, pkgerrors.NewValidationError("recipe ID cannot be empty")
	}
	if details.Source.IsZero() {
		return nil, pkgerrors.NewValidationError("recipe source cannot be empty")
	}
	if version < 1 {
		version = 1
	}

	recipe := &Recipe{
		id:        id,
		createdAt: createdAt,
		updatedAt: updatedAt,
		version:   version,
		events:    []events.DomainEvent{},
	}
	recipe.apply(details)

	return recipe, nil
}

// Replace overwrites every editable field. There is no partial update.
func (r *Recipe) Replace(details RecipeDetails) error {
	return r.ReplaceWithConfig(details, config.DefaultDomainConfig())
}

// ReplaceWithConfig overwrites every editable field using explicit domain limits
func (r *Recipe) ReplaceWithConfig(details RecipeDetails, cfg *config.DomainConfig) error {
	details, err := validateDetails(details, cfg)
	if err != nil {
		return err
	}

	oldName := r.name
	r.apply(details)
	r.version++
	r.updatedAt = time.Now().UTC()

	r.addEvent(events.NewRecipeUpdated(r.id, oldName, r.name, r.tags.Values(), r.version, r.updatedAt))
	return nil
}

// MarkDeleted records that the recipe has been removed
func (r *Recipe) MarkDeleted() {
	r.addEvent(events.NewRecipeDeleted(r.id, r.name, r.version+1, time.Now().UTC()))
}

// ID returns the recipe's unique identifier
func (r *Recipe) ID() valueobjects.RecipeID {
	return r.id
}

// Name returns the recipe name
func (r *Recipe) Name() string {
	return r.name
}

// Source returns where the recipe comes from
func (r *Recipe) Source() valueobjects.Source {
	return r.source
}

// Diet returns the diet classification
func (r *Recipe) Diet() valueobjects.Diet {
	return r.diet
}

// PrepTime returns the preparation time bucket
func (r *Recipe) PrepTime() valueobjects.PrepTime {
	return r.prepTime
}

// Seasons returns the season flags
func (r *Recipe) Seasons() valueobjects.Seasons {
	return r.seasons
}

// Tags returns the recipe tags
func (r *Recipe) Tags() valueobjects.Tags {
	return r.tags
}

// Notes returns the markdown notes, possibly empty
func (r *Recipe) Notes() string {
	return r.notes
}

// Details returns the editable fields as a single value
func (r *Recipe) Details() RecipeDetails {
	return RecipeDetails{
		Name:     r.name,
		Source:   r.source,
		Diet:     r.diet,
		PrepTime: r.prepTime,
		Seasons:  r.seasons,
		Tags:     r.tags,
		Notes:    r.notes,
	}
}

// CreatedAt returns when the recipe was created
func (r *Recipe) CreatedAt() time.Time {
	return r.createdAt
}

// UpdatedAt returns when the recipe was last replaced
func (r *Recipe) UpdatedAt() time.Time {
	return r.updatedAt
}

// Version returns the number of times the recipe has been written
func (r *Recipe) Version() int {
	return r.version
}

// GetUncommittedEvents returns events that haven't been persisted
func (r *Recipe) GetUncommittedEvents() []events.DomainEvent {
	return r.events
}

// MarkEventsAsCommitted clears the uncommitted events
func (r *Recipe) MarkEventsAsCommitted() {
	r.events = []events.DomainEvent{}
}

func (r *Recipe) addEvent(event events.DomainEvent) {
	r.events = append(r.events, event)
}

func (r *Recipe) apply(d RecipeDetails) {
	r.name = d.Name
	r.source = d.Source
	r.diet = d.Diet
	r.prepTime = d.PrepTime
	r.seasons = d.Seasons
	r.tags = d.Tags
	r.notes = d.Notes
}

// validateDetails normalizes and checks the editable fields, reporting every problem at once
func validateDetails(d RecipeDetails, cfg *config.DomainConfig) (RecipeDetails, error) {
	if cfg == nil {
		cfg = config.DefaultDomainConfig()
	}

	verrs := pkgerrors.NewValidationErrors()

	d.Name = strings.TrimSpace(d.Name)
	nameLength := utf8.RuneCountInString(d.Name)
	switch {
	case nameLength == 0:
		verrs.Add("name", "name cannot be empty")
	case nameLength < cfg.MinNameLength:
		verrs.Addf("name", "name too short: minimum %d characters required", cfg.MinNameLength)
	case nameLength > cfg.MaxNameLength:
		verrs.Addf("name", "name exceeds maximum length of %d characters", cfg.MaxNameLength)
	}

	if d.Source.IsZero() {
		verrs.Add("source", "source is required")
	}
	if !d.Diet.IsValid() {
		verrs.Addf("diet", "invalid diet %q", d.Diet)
	}
	if !d.PrepTime.IsValid() {
		verrs.Addf("prepTime", "invalid prep time %q", d.PrepTime)
	}
	if d.Tags.Len() > cfg.MaxTagsPerRecipe {
		verrs.Addf("tags", "a recipe can have at most %d tags", cfg.MaxTagsPerRecipe)
	}

	d.Notes = strings.TrimRight(d.Notes, " \t\r\n")
	if utf8.RuneCountInString(d.Notes) > cfg.MaxNotesLength {
		verrs.Addf("notes", "notes exceed maximum length of %d characters", cfg.MaxNotesLength)
	}

	if err := verrs.ErrOrNil(); err != nil {
		return RecipeDetails{}, err
	}
	return d, nil
}
