package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/domain/config"
	"recipebook/domain/core/valueobjects"
)

// ReplaceRecipeHandler handles full recipe replacement commands
type ReplaceRecipeHandler struct {
	recipeRepo   ports.RecipeRepository
	publisher    ports.EventPublisher
	domainConfig *config.DomainConfig
	logger       *zap.Logger
}

// NewReplaceRecipeHandler creates a new replace recipe handler
func NewReplaceRecipeHandler(
	recipeRepo ports.RecipeRepository,
	publisher ports.EventPublisher,
	domainConfig *config.DomainConfig,
	logger *zap.Logger,
) *ReplaceRecipeHandler {
	return &ReplaceRecipeHandler{
		recipeRepo:   recipeRepo,
		publisher:    publisher,
		domainConfig: domainConfig,
		logger:       logger,
	}
}

// Handle executes the replace recipe command
func (h *ReplaceRecipeHandler) Handle(ctx context.Context, command bus.Command) error {
	cmd, ok := command.(commands.ReplaceRecipeCommand)
	if !ok {
		return fmt.Errorf("unexpected command type %T", command)
	}

	recipeID, err := valueobjects.NewRecipeIDFromString(cmd.RecipeID)
	if err != nil {
		return fmt.Errorf("invalid recipe ID: %w", err)
	}

	details, err := cmd.Details(h.domainConfig)
	if err != nil {
		return err
	}

	// Fetch existing recipe
	recipe, err := h.recipeRepo.GetByID(ctx, recipeID)
	if err != nil {
		return fmt.Errorf("failed to get recipe: %w", err)
	}

	if err := recipe.ReplaceWithConfig(details, h.domainConfig); err != nil {
		return err
	}

	if err := h.recipeRepo.Replace(ctx, recipe); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	publishEvents(ctx, h.publisher, recipe, h.logger)

	h.logger.Info("Recipe replaced",
		zap.String("recipeID", cmd.RecipeID),
		zap.Int("version", recipe.Version()),
	)

	return nil
}
