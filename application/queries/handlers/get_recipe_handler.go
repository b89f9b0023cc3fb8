package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/application/queries"
	"recipebook/application/queries/bus"
	"recipebook/domain/core/valueobjects"
)

// GetRecipeHandler handles single recipe lookups
type GetRecipeHandler struct {
	recipeRepo ports.RecipeRepository
	logger     *zap.Logger
}

// NewGetRecipeHandler creates a new get recipe handler
func NewGetRecipeHandler(recipeRepo ports.RecipeRepository, logger *zap.Logger) *GetRecipeHandler {
	return &GetRecipeHandler{
		recipeRepo: recipeRepo,
		logger:     logger,
	}
}

// Handle executes the get recipe query and returns a queries.RecipeView
func (h *GetRecipeHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.GetRecipeQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	recipeID, err := valueobjects.NewRecipeIDFromString(q.RecipeID)
	if err != nil {
		return nil, fmt.Errorf("invalid recipe ID: %w", err)
	}

	recipe, err := h.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}

	return queries.NewRecipeView(recipe), nil
}
