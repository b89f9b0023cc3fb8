package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/application/queries"
	"recipebook/application/queries/bus"
	"recipebook/pkg/common"
)

// ListRecipesHandler handles filtered, paged recipe listings
type ListRecipesHandler struct {
	recipeRepo ports.RecipeRepository
	logger     *zap.Logger
}

// NewListRecipesHandler creates a new list recipes handler
func NewListRecipesHandler(recipeRepo ports.RecipeRepository, logger *zap.Logger) *ListRecipesHandler {
	return &ListRecipesHandler{
		recipeRepo: recipeRepo,
		logger:     logger,
	}
}

// Handle executes the list query and returns a *queries.ListRecipesResult
func (h *ListRecipesHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	q, ok := query.(queries.ListRecipesQuery)
	if !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	f := q.Filter.Normalize()
	page := ports.NewPage(q.Page, q.PageSize)

	recipes, total, err := h.recipeRepo.List(ctx, f, page)
	if err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}

	items := make([]queries.RecipeView, 0, len(recipes))
	for _, r := range recipes {
		items = append(items, queries.NewRecipeView(r))
	}

	h.logger.Debug("Listed recipes",
		zap.Int("returned", len(items)),
		zap.Int("total", total),
		zap.String("sort", f.Sort.String()),
	)

	return &queries.ListRecipesResult{
		Items:      items,
		Pagination: common.BuildPaginationMeta(q.Page, q.PageSize, total),
	}, nil
}
