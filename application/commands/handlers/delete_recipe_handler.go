package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/domain/core/valueobjects"
)

// DeleteRecipeHandler handles recipe deletion commands
type DeleteRecipeHandler struct {
	recipeRepo ports.RecipeRepository
	publisher  ports.EventPublisher
	logger     *zap.Logger
}

// NewDeleteRecipeHandler creates a new delete recipe handler
func NewDeleteRecipeHandler(
	recipeRepo ports.RecipeRepository,
	publisher ports.EventPublisher,
	logger *zap.Logger,
) *DeleteRecipeHandler {
	return &DeleteRecipeHandler{
		recipeRepo: recipeRepo,
		publisher:  publisher,
		logger:     logger,
	}
}

// Handle executes the delete recipe command
func (h *DeleteRecipeHandler) Handle(ctx context.Context, command bus.Command) error {
	cmd, ok := command.(commands.DeleteRecipeCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", command)
	}

	recipeID, err := valueobjects.NewRecipeIDFromString(cmd.RecipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID: %w", err)
	}

	// Load first so the deletion event carries the name
	recipe, err := h.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := h.recipeRepo.Delete(ctx, recipeID); err != nil {
		return fmt.Errorf("failed to delete recipe: %w", err)
	}

	recipe.MarkDeleted()
	publishEvents(ctx, h.publisher, recipe, h.logger)

	h.logger.Info("Recipe deleted", zap.String("recipeID", cmd.RecipeID))

	return nil
}
