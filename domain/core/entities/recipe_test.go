package entities

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"recipebook/domain/config"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/events"
	pkgerrors "recipebook/pkg/errors"
)

func validDetails(t *testing.T) RecipeDetails {
	t.Helper()

	source, err := valueobjects.NewOfflineSource("The Joy of Cooking", 212)
	require.NoError(t, err)
	tags, err := valueobjects.NewTags([]string{"stew", "winter"})
	require.NoError(t, err)

	return RecipeDetails{
		Name:     "  Beef Stew ",
		Source:   source,
		Diet:     valueobjects.DietOmnivore,
		PrepTime: valueobjects.PrepTimeOver60,
		Seasons:  valueobjects.SeasonsOf(valueobjects.SeasonWinter),
		Tags:     tags,
		Notes:    "Brown the meat first.\n\n",
	}
}

func TestNewRecipe(t *testing.T) {
	// Arrange
	details := validDetails(t)

	// Act
	recipe, err := NewRecipe(valueobjects.RecipeID{}, details)

	// Assert
	require.NoError(t, err)
	assert.False(t, recipe.ID().IsZero())
	assert.Equal(t, "Beef Stew", recipe.Name())
	assert.Equal(t, "Brown the meat first.", recipe.Notes())
	assert.Equal(t, 1, recipe.Version())
	assert.Equal(t, recipe.CreatedAt(), recipe.UpdatedAt())

	evts := recipe.GetUncommittedEvents()
	require.Len(t, evts, 1)
	created, ok := evts[0].(events.RecipeCreated)
	require.True(t, ok)
	assert.Equal(t, events.TypeRecipeCreated, created.GetEventType())
	assert.Equal(t, recipe.ID().String(), created.GetAggregateID())
	assert.Equal(t, []string{"stew", "winter"}, created.Tags)
}

func TestNewRecipe_KeepsGivenID(t *testing.T) {
	id := valueobjects.NewRecipeID()

	recipe, err := NewRecipe(id, validDetails(t))

	require.NoError(t, err)
	assert.True(t, id.Equals(recipe.ID()))
}

func TestNewRecipe_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*RecipeDetails)
		field  string
	}{
		{"blank name", func(d *RecipeDetails) { d.Name = "   " }, "name"},
		{"name too long", func(d *RecipeDetails) { d.Name = strings.Repeat("x", 201) }, "name"},
		{"missing source", func(d *RecipeDetails) { d.Source = valueobjects.Source{} }, "source"},
		{"unknown diet", func(d *RecipeDetails) { d.Diet = "carnivore" }, "diet"},
		{"unknown prep time", func(d *RecipeDetails) { d.PrepTime = "" }, "prepTime"},
		{"notes too long", func(d *RecipeDetails) { d.Notes = strings.Repeat("n", 20001) }, "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			details := validDetails(t)
			tt.mutate(&details)

			recipe, err := NewRecipe(valueobjects.RecipeID{}, details)

			assert.Nil(t, recipe)
			require.Error(t, err)
			assert.True(t, pkgerrors.IsValidation(err))
			fields := pkgerrors.GetAppError(err).Details["fields"].(map[string][]string)
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestNewRecipeWithConfig_UsesLimits(t *testing.T) {
	cfg := config.DefaultDomainConfig()
	cfg.MaxNameLength = 5

	_, err := NewRecipeWithConfig(valueobjects.RecipeID{}, validDetails(t), cfg)

	assert.True(t, pkgerrors.IsValidation(err))
}

func TestRecipe_Replace(t *testing.T) {
	recipe, err := NewRecipe(valueobjects.RecipeID{}, validDetails(t))
	require.NoError(t, err)
	recipe.MarkEventsAsCommitted()
	createdAt := recipe.CreatedAt()

	online, err := valueobjects.NewOnlineSource("https://example.com/stew")
	require.NoError(t, err)

	replacement := RecipeDetails{
		Name:     "Vegan Stew",
		Source:   online,
		Diet:     valueobjects.DietVegan,
		PrepTime: valueobjects.PrepTime30To60,
	}

	err = recipe.Replace(replacement)

	require.NoError(t, err)
	assert.Equal(t, "Vegan Stew", recipe.Name())
	assert.True(t, recipe.Source().IsOnline())
	assert.Equal(t, 0, recipe.Tags().Len())
	assert.True(t, recipe.Seasons().IsEmpty())
	assert.Empty(t, recipe.Notes())
	assert.Equal(t, 2, recipe.Version())
	assert.Equal(t, createdAt, recipe.CreatedAt())
	assert.False(t, recipe.UpdatedAt().Before(createdAt))

	evts := recipe.GetUncommittedEvents()
	require.Len(t, evts, 1)
	updated := evts[0].(events.RecipeUpdated)
	assert.Equal(t, "Beef Stew", updated.OldName)
	assert.Equal(t, "Vegan Stew", updated.NewName)
	assert.Equal(t, 2, updated.GetVersion())
}

func TestRecipe_ReplaceInvalidLeavesRecipeUntouched(t *testing.T) {
	recipe, err := NewRecipe(valueobjects.RecipeID{}, validDetails(t))
	require.NoError(t, err)

	bad := validDetails(t)
	bad.Name = ""

	err = recipe.Replace(bad)

	require.Error(t, err)
	assert.Equal(t, "Beef Stew", recipe.Name())
	assert.Equal(t, 1, recipe.Version())
}

func TestRecipe_MarkDeleted(t *testing.T) {
	recipe, err := NewRecipe(valueobjects.RecipeID{}, validDetails(t))
	require.NoError(t, err)
	recipe.MarkEventsAsCommitted()

	recipe.MarkDeleted()

	evts := recipe.GetUncommittedEvents()
	require.Len(t, evts, 1)
	assert.Equal(t, events.TypeRecipeDeleted, evts[0].GetEventType())
}

func TestReconstructRecipe(t *testing.T) {
	id := valueobjects.NewRecipeID()
	created := time.Date(2023, 5, 1, 10, 0, 0, 0, time.UTC)
	updated := created.Add(48 * time.Hour)

	recipe, err := ReconstructRecipe(id, validDetails(t), created, updated, 4)

	require.NoError(t, err)
	assert.Equal(t, created, recipe.CreatedAt())
	assert.Equal(t, updated, recipe.UpdatedAt())
	assert.Equal(t, 4, recipe.Version())
	assert.Empty(t, recipe.GetUncommittedEvents())

	_, err = ReconstructRecipe(valueobjects.RecipeID{}, validDetails(t), created, updated, 1)
	assert.Error(t, err)
}
