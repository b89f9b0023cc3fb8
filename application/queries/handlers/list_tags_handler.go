package handlers

import (
	"context"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/application/queries"
	"recipebook/application/queries/bus"
)

// ListTagsHandler returns the distinct tags in use
type ListTagsHandler struct {
	recipeRepo ports.RecipeRepository
	logger     *zap.Logger
}

// NewListTagsHandler creates a new list tags handler
func NewListTagsHandler(recipeRepo ports.RecipeRepository, logger *zap.Logger) *ListTagsHandler {
	return &ListTagsHandler{
		recipeRepo: recipeRepo,
		logger:     logger,
	}
}

// Handle executes the list tags query and returns a *queries.ListTagsResult
func (h *ListTagsHandler) Handle(ctx context.Context, query bus.Query) (interface{}, error) {
	if _, ok := query.(queries.ListTagsQuery); !ok {
		return nil, fmt.Errorf("unexpected query type %T", query)
	}

	tags, err := h.recipeRepo.ListTags(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	sort.Strings(tags)

	return &queries.ListTagsResult{Tags: tags}, nil
}
