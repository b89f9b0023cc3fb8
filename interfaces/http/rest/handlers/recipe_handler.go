package handlers

import (
	"net/http"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"recipebook/application/commands"
	"recipebook/application/commands/bus"
	"recipebook/application/queries"
	querybus "recipebook/application/queries/bus"
	"recipebook/domain/config"
	"recipebook/domain/filter"
	"recipebook/interfaces/http/openapi"
	"recipebook/pkg/common"
	pkgerrors "recipebook/pkg/errors"
)

// RecipeHandler handles recipe-related HTTP requests
type RecipeHandler struct {
	commandBus   *bus.CommandBus
	queryBus     *querybus.QueryBus
	domainConfig *config.DomainConfig
	errors       *pkgerrors.ErrorHandler
	maxBodyBytes int64
	logger       *zap.Logger
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	domainConfig *config.DomainConfig,
	errHandler *pkgerrors.ErrorHandler,
	maxBodyBytes int64,
	logger *zap.Logger,
) *RecipeHandler {
	return &RecipeHandler{
		commandBus:   commandBus,
		queryBus:     queryBus,
		domainConfig: domainConfig,
		errors:       errHandler,
		maxBodyBytes: maxBodyBytes,
		logger:       logger,
	}
}

// Register binds every recipe operation on the dispatcher
func (h *RecipeHandler) Register(d *openapi.Dispatcher) error {
	routes := map[string]http.HandlerFunc{
		openapi.OpListRecipes:   h.ListRecipes,
		openapi.OpCreateRecipe:  h.CreateRecipe,
		openapi.OpGetRecipe:     h.GetRecipe,
		openapi.OpReplaceRecipe: h.ReplaceRecipe,
		openapi.OpDeleteRecipe:  h.DeleteRecipe,
		openapi.OpListTags:      h.ListTags,
	}
	for operationID, fn := range routes {
		if err := d.RegisterFunc(operationID, fn); err != nil {
			return err
		}
	}
	return nil
}

// ListRecipes handles listRecipes
func (h *RecipeHandler) ListRecipes(w http.ResponseWriter, r *http.Request) {
	values := r.URL.Query()

	f, err := filter.Decode(values)
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}
	paging := common.ExtractPaginationParams(values, h.domainConfig.DefaultPageSize, h.domainConfig.MaxPageSize)

	result, err := h.queryBus.Ask(r.Context(), queries.ListRecipesQuery{
		Filter:   f,
		Page:     paging.Page,
		PageSize: paging.PageSize,
	})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

// CreateRecipe handles createRecipe
func (h *RecipeHandler) CreateRecipe(w http.ResponseWriter, r *http.Request) {
	var input commands.RecipeInput
	if err := common.DecodeJSONBody(w, r, &input, h.maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	recipeID := uuid.New().String()
	cmd := commands.CreateRecipeCommand{
		RecipeID:    recipeID,
		RecipeInput: input,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.queryBus.Ask(r.Context(), queries.GetRecipeQuery{RecipeID: recipeID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Recipe created",
		zap.String("recipeID", recipeID),
		zap.String("name", input.Name),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
	)

	w.Header().Set("Location", "/api/recipes/"+recipeID)
	h.respond(w, r, http.StatusCreated, view)
}

// GetRecipe handles getRecipe
func (h *RecipeHandler) GetRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := common.GetPathParam(r.Context(), "id")

	view, err := h.queryBus.Ask(r.Context(), queries.GetRecipeQuery{RecipeID: recipeID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, view)
}

// ReplaceRecipe handles replaceRecipe
func (h *RecipeHandler) ReplaceRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := common.GetPathParam(r.Context(), "id")

	var input commands.RecipeInput
	if err := common.DecodeJSONBody(w, r, &input, h.maxBodyBytes); err != nil {
		h.errors.Handle(w, r, pkgerrors.NewValidationError(err.Error()))
		return
	}

	cmd := commands.ReplaceRecipeCommand{
		RecipeID:    recipeID,
		RecipeInput: input,
	}
	if err := h.commandBus.Send(r.Context(), cmd); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	view, err := h.queryBus.Ask(r.Context(), queries.GetRecipeQuery{RecipeID: recipeID})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, view)
}

// DeleteRecipe handles deleteRecipe
func (h *RecipeHandler) DeleteRecipe(w http.ResponseWriter, r *http.Request) {
	recipeID := common.GetPathParam(r.Context(), "id")

	if err := h.commandBus.Send(r.Context(), commands.DeleteRecipeCommand{RecipeID: recipeID}); err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.logger.Info("Recipe deleted",
		zap.String("recipeID", recipeID),
		zap.String("requestID", chimiddleware.GetReqID(r.Context())),
	)

	common.RespondNoContent(w)
}

// ListTags handles listTags
func (h *RecipeHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	result, err := h.queryBus.Ask(r.Context(), queries.ListTagsQuery{})
	if err != nil {
		h.errors.Handle(w, r, err)
		return
	}

	h.respond(w, r, http.StatusOK, result)
}

func (h *RecipeHandler) respond(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	if err := common.RespondJSON(w, status, data); err != nil {
		h.logger.Error("Failed to encode response",
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
}
