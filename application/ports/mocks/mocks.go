// Package mocks provides testify mocks for the application ports.
package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/events"
	"recipebook/domain/filter"
)

// MockRecipeRepository is a mock of ports.RecipeRepository
type MockRecipeRepository struct {
	mock.Mock
}

var _ ports.RecipeRepository = (*MockRecipeRepository)(nil)

func (m *MockRecipeRepository) Create(ctx context.Context, recipe *entities.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) Replace(ctx context.Context, recipe *entities.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, id valueobjects.RecipeID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, id valueobjects.RecipeID) (*entities.Recipe, error) {
	args := m.Called(ctx, id)
	if recipe, ok := args.Get(0).(*entities.Recipe); ok {
		return recipe, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, f filter.Filter, page ports.Page) ([]*entities.Recipe, int, error) {
	args := m.Called(ctx, f, page)
	recipes, _ := args.Get(0).([]*entities.Recipe)
	return recipes, args.Int(1), args.Error(2)
}

func (m *MockRecipeRepository) ListTags(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	tags, _ := args.Get(0).([]string)
	return tags, args.Error(1)
}

func (m *MockRecipeRepository) Ping(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// MockEventPublisher is a mock of ports.EventPublisher
type MockEventPublisher struct {
	mock.Mock
}

var _ ports.EventPublisher = (*MockEventPublisher)(nil)

func (m *MockEventPublisher) Publish(ctx context.Context, event events.DomainEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func (m *MockEventPublisher) PublishBatch(ctx context.Context, evts []events.DomainEvent) error {
	args := m.Called(ctx, evts)
	return args.Error(0)
}
