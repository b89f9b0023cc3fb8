package queries

import (
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
)

// GetRecipeQuery represents a query to get a single recipe
type GetRecipeQuery struct {
	RecipeID string
}

// Validate validates the GetRecipeQuery
func (q GetRecipeQuery) Validate() error {
	if _, err := valueobjects.NewRecipeIDFromString(q.RecipeID); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return nil
}

// CacheKey identifies the recipe the query reads
func (q GetRecipeQuery) CacheKey() string {
	return q.RecipeID
}
