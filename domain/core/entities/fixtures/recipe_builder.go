// Package fixtures builds domain objects for tests.
package fixtures

import (
	"time"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

// RecipeBuilder assembles a valid recipe with overridable fields
type RecipeBuilder struct {
	id       valueobjects.RecipeID
	name     string
	url      string
	title    string
	page     int
	diet     valueobjects.Diet
	prepTime valueobjects.PrepTime
	seasons  valueobjects.Seasons
	tags     []string
	notes    string
	created  time.Time
	updated  time.Time
	version  int
}

// NewRecipeBuilder starts from an online omnivore recipe under 15 minutes
func NewRecipeBuilder() *RecipeBuilder {
	created := time.Date(2024, 1, 15, 12, 0, 0, 0, time.UTC)
	return &RecipeBuilder{
		id:       valueobjects.NewRecipeID(),
		name:     "Test Recipe",
		url:      "https://example.com/recipes/test",
		diet:     valueobjects.DietOmnivore,
		prepTime: valueobjects.PrepTimeUnder15,
		created:  created,
		updated:  created,
		version:  1,
	}
}

func (b *RecipeBuilder) WithID(id valueobjects.RecipeID) *RecipeBuilder {
	b.id = id
	return b
}

func (b *RecipeBuilder) WithName(name string) *RecipeBuilder {
	b.name = name
	return b
}

func (b *RecipeBuilder) WithURL(url string) *RecipeBuilder {
	b.url, b.title, b.page = url, "", 0
	return b
}

func (b *RecipeBuilder) WithBook(title string, page int) *RecipeBuilder {
	b.url, b.title, b.page = "", title, page
	return b
}

func (b *RecipeBuilder) WithDiet(diet valueobjects.Diet) *RecipeBuilder {
	b.diet = diet
	return b
}

func (b *RecipeBuilder) WithPrepTime(prepTime valueobjects.PrepTime) *RecipeBuilder {
	b.prepTime = prepTime
	return b
}

func (b *RecipeBuilder) WithSeasons(seasons ...valueobjects.Season) *RecipeBuilder {
	b.seasons = valueobjects.SeasonsOf(seasons...)
	return b
}

func (b *RecipeBuilder) WithTags(tags ...string) *RecipeBuilder {
	b.tags = tags
	return b
}

func (b *RecipeBuilder) WithNotes(notes string) *RecipeBuilder {
	b.notes = notes
	return b
}

// CreatedAt sets both timestamps
func (b *RecipeBuilder) CreatedAt(t time.Time) *RecipeBuilder {
	b.created, b.updated = t, t
	return b
}

func (b *RecipeBuilder) WithVersion(version int) *RecipeBuilder {
	b.version = version
	return b
}

// Details returns the editable fields the builder would produce
func (b *RecipeBuilder) Details() (entities.RecipeDetails, error) {
	var source valueobjects.Source
	var err error
	if b.url != "" {
		source, err = valueobjects.NewOnlineSource(b.url)
	} else {
		source, err = valueobjects.NewOfflineSource(b.title, b.page)
	}
	if err != nil {
		return entities.RecipeDetails{}, err
	}

	tags, err := valueobjects.NewTags(b.tags)
	if err != nil {
		return entities.RecipeDetails{}, err
	}

	return entities.RecipeDetails{
		Name:     b.name,
		Source:   source,
		Diet:     b.diet,
		PrepTime: b.prepTime,
		Seasons:  b.seasons,
		Tags:     tags,
		Notes:    b.notes,
	}, nil
}

// Build reconstructs the recipe with the configured timestamps
func (b *RecipeBuilder) Build() (*entities.Recipe, error) {
	details, err := b.Details()
	if err != nil {
		return nil, err
	}
	return entities.ReconstructRecipe(b.id, details, b.created, b.updated, b.version)
}

// MustBuild is Build that panics on invalid input
func (b *RecipeBuilder) MustBuild() *entities.Recipe {
	recipe, err := b.Build()
	if err != nil {
		panic(err)
	}
	return recipe
}
