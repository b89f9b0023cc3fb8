package di

import (
	"net/http"

	"go.uber.org/zap"

	"recipebook/application/commands/bus"
	"recipebook/application/ports"
	querybus "recipebook/application/queries/bus"
	"recipebook/infrastructure/config"
	"recipebook/interfaces/http/rest"
	"recipebook/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Repository ports.RecipeRepository
	Publisher  ports.EventPublisher
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Metrics    *observability.Metrics
	Tracing    *observability.TracerProvider
	Router     *rest.Router
}

// Handler returns the fully configured HTTP handler
func (c *Container) Handler() http.Handler {
	return c.Router.Setup()
}
