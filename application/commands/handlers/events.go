package handlers

import (
	"context"

	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
)

// publishEvents sends the recipe's uncommitted events and marks them committed.
// Publishing is best effort: the write has already succeeded.
func publishEvents(ctx context.Context, publisher ports.EventPublisher, recipe *entities.Recipe, logger *zap.Logger) {
	pending := recipe.GetUncommittedEvents()
	if len(pending) == 0 {
		return
	}

	if err := publisher.PublishBatch(ctx, pending); err != nil {
		logger.Warn("Failed to publish events",
			zap.String("recipeID", recipe.ID().String()),
			zap.Int("count", len(pending)),
			zap.Error(err),
		)
	}

	recipe.MarkEventsAsCommitted()
}
