// Package persistence holds store-independent decorators for the recipe repository.
package persistence

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
)

// TraceRepository wraps a repository so every call runs in its own span
func TraceRepository(repo ports.RecipeRepository, tracer trace.Tracer, store string) ports.RecipeRepository {
	return &tracedRecipeRepository{
		inner:  repo,
		tracer: tracer,
		store:  attribute.String("db.system", store),
	}
}

type tracedRecipeRepository struct {
	inner  ports.RecipeRepository
	tracer trace.Tracer
	store  attribute.KeyValue
}

var _ ports.RecipeRepository = (*tracedRecipeRepository)(nil)

func (r *tracedRecipeRepository) start(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, r.store)
	return r.tracer.Start(ctx, "repository."+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

func finish(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func (r *tracedRecipeRepository) Create(ctx context.Context, recipe *entities.Recipe) (err error) {
	ctx, span := r.start(ctx, "Create", attribute.String("recipe.id", recipe.ID().String()))
	defer func() { finish(span, err) }()

	return r.inner.Create(ctx, recipe)
}

func (r *tracedRecipeRepository) Replace(ctx context.Context, recipe *entities.Recipe) (err error) {
	ctx, span := r.start(ctx, "Replace",
		attribute.String("recipe.id", recipe.ID().String()),
		attribute.Int("recipe.version", recipe.Version()),
	)
	defer func() { finish(span, err) }()

	return r.inner.Replace(ctx, recipe)
}

func (r *tracedRecipeRepository) Delete(ctx context.Context, id valueobjects.RecipeID) (err error) {
	ctx, span := r.start(ctx, "Delete", attribute.String("recipe.id", id.String()))
	defer func() { finish(span, err) }()

	return r.inner.Delete(ctx, id)
}

func (r *tracedRecipeRepository) GetByID(ctx context.Context, id valueobjects.RecipeID) (_ *entities.Recipe, err error) {
	ctx, span := r.start(ctx, "GetByID", attribute.String("recipe.id", id.String()))
	defer func() { finish(span, err) }()

	return r.inner.GetByID(ctx, id)
}

func (r *tracedRecipeRepository) List(ctx context.Context, f filter.Filter, page ports.Page) (_ []*entities.Recipe, _ int, err error) {
	ctx, span := r.start(ctx, "List",
		attribute.String("filter.query", filter.QueryString(f)),
		attribute.Int("page.offset", page.Offset),
		attribute.Int("page.limit", page.Limit),
	)
	defer func() { finish(span, err) }()

	recipes, total, err := r.inner.List(ctx, f, page)
	span.SetAttributes(attribute.Int("result.total", total), attribute.Int("result.count", len(recipes)))
	return recipes, total, err
}

func (r *tracedRecipeRepository) ListTags(ctx context.Context) (_ []string, err error) {
	ctx, span := r.start(ctx, "ListTags")
	defer func() { finish(span, err) }()

	return r.inner.ListTags(ctx)
}

func (r *tracedRecipeRepository) Ping(ctx context.Context) (err error) {
	ctx, span := r.start(ctx, "Ping")
	defer func() { finish(span, err) }()

	return r.inner.Ping(ctx)
}
