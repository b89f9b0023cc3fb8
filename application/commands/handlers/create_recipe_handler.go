package handlers

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	"recipebook/domain/config"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

// CreateRecipeHandler handles recipe creation commands
type CreateRecipeHandler struct {
	recipeRepo   ports.RecipeRepository
	publisher    ports.EventPublisher
	domainConfig *config.DomainConfig
	logger       *zap.Logger
}

// NewCreateRecipeHandler creates a new create recipe handler
func NewCreateRecipeHandler(
	recipeRepo ports.RecipeRepository,
	publisher ports.EventPublisher,
	domainConfig *config.DomainConfig,
	logger *zap.Logger,
) *CreateRecipeHandler {
	return &CreateRecipeHandler{
		recipeRepo:   recipeRepo,
		publisher:    publisher,
		domainConfig: domainConfig,
		logger:       logger,
	}
}

// Handle executes the create recipe command
func (h *CreateRecipeHandler) Handle(ctx context.Context, command bus.Command) error {
	cmd, ok := command.(commands.CreateRecipeCommand)
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

	recipe, err := entities.NewRecipeWithConfig(recipeID, details, h.domainConfig)
	if err != nil {
		return err
	}

	if err := h.recipeRepo.Create(ctx, recipe); err != nil {
		return fmt.Errorf("failed to save recipe: %w", err)
	}

	publishEvents(ctx, h.publisher, recipe, h.logger)

	h.logger.Info("Recipe created",
		zap.String("recipeID", recipe.ID().String()),
		zap.String("name", recipe.Name()),
	)

	return nil
}
