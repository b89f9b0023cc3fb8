package dynamodb

import (
	"context"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/entities/fixtures"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
	pkgerrors "recipebook/pkg/errors"
)

// fakeClient keeps items in memory. It honours the existence and version
// conditions used by the repository and ignores scan filters, which List
// re-applies.
type fakeClient struct {
	mu       sync.Mutex
	items    map[string]map[string]types.AttributeValue
	pageSize int
}

func newFakeClient() *fakeClient {
	return &fakeClient{items: make(map[string]map[string]types.AttributeValue), pageSize: 2}
}

func pkOf(item map[string]types.AttributeValue) string {
	return item["PK"].(*types.AttributeValueMemberS).Value
}

func (c *fakeClient) checkCondition(cond *string, names map[string]string, values map[string]types.AttributeValue, pk string) error {
	if cond == nil {
		return nil
	}
	failed := &types.ConditionalCheckFailedException{Message: cond}

	stored, exists := c.items[pk]
	switch {
	case strings.Contains(*cond, "attribute_not_exists") && exists,
		strings.Contains(*cond, "attribute_exists") && !strings.Contains(*cond, "attribute_not_exists") && !exists:
		return failed
	}

	for _, name := range names {
		if name != "Version" {
			continue
		}
		// the version comparison is the only valued condition
		for _, want := range values {
			got, ok := stored["Version"].(*types.AttributeValueMemberN)
			if !ok || got.Value != want.(*types.AttributeValueMemberN).Value {
				return failed
			}
		}
	}
	return nil
}

func (c *fakeClient) PutItem(ctx context.Context, in *dynamodb.PutItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.PutItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pk := pkOf(in.Item)
	if err := c.checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues, pk); err != nil {
		return nil, err
	}
	c.items[pk] = in.Item
	return &dynamodb.PutItemOutput{}, nil
}

func (c *fakeClient) GetItem(ctx context.Context, in *dynamodb.GetItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.GetItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return &dynamodb.GetItemOutput{Item: c.items[pkOf(in.Key)]}, nil
}

func (c *fakeClient) DeleteItem(ctx context.Context, in *dynamodb.DeleteItemInput, _ ...func(*dynamodb.Options)) (*dynamodb.DeleteItemOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	pk := pkOf(in.Key)
	if err := c.checkCondition(in.ConditionExpression, in.ExpressionAttributeNames, in.ExpressionAttributeValues, pk); err != nil {
		return nil, err
	}
	delete(c.items, pk)
	return &dynamodb.DeleteItemOutput{}, nil
}

func (c *fakeClient) Scan(ctx context.Context, in *dynamodb.ScanInput, _ ...func(*dynamodb.Options)) (*dynamodb.ScanOutput, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	keys := make([]string, 0, len(c.items))
	for pk := range c.items {
		keys = append(keys, pk)
	}
	sort.Strings(keys)

	start := 0
	if in.ExclusiveStartKey != nil {
		after := pkOf(in.ExclusiveStartKey)
		start = sort.SearchStrings(keys, after) + 1
	}
	end := min(start+c.pageSize, len(keys))

	out := &dynamodb.ScanOutput{}
	for _, pk := range keys[start:end] {
		out.Items = append(out.Items, c.items[pk])
	}
	if end < len(keys) {
		out.LastEvaluatedKey = map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: keys[end-1]},
			"SK": &types.AttributeValueMemberS{Value: metadataSortKey},
		}
	}
	return out, nil
}

func (c *fakeClient) DescribeTable(ctx context.Context, in *dynamodb.DescribeTableInput, _ ...func(*dynamodb.Options)) (*dynamodb.DescribeTableOutput, error) {
	return &dynamodb.DescribeTableOutput{Table: &types.TableDescription{TableName: in.TableName}}, nil
}

func newTestRepository() *RecipeRepository {
	return NewRecipeRepository(newFakeClient(), "recipes-test", zap.NewNop())
}

func TestRecipeRepository_CreateGetReplaceDelete(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	recipe := fixtures.NewRecipeBuilder().
		WithName("Ratatouille").
		WithDiet(valueobjects.DietVegan).
		WithTags("stew", "provence").
		WithSeasons(valueobjects.SeasonSummer).
		WithNotes("Slow cook.").
		MustBuild()

	require.NoError(t, repo.Create(ctx, recipe))

	err := repo.Create(ctx, recipe)
	assert.True(t, pkgerrors.IsConflict(err))

	got, err := repo.GetByID(ctx, recipe.ID())
	require.NoError(t, err)
	assert.Equal(t, recipe.Name(), got.Name())
	assert.Equal(t, recipe.Tags().Values(), got.Tags().Values())
	assert.Equal(t, recipe.Seasons(), got.Seasons())
	assert.Equal(t, recipe.Notes(), got.Notes())
	assert.True(t, recipe.CreatedAt().Equal(got.CreatedAt()))

	details, err := fixtures.NewRecipeBuilder().WithName("Tian").WithBook("Provence", 12).Details()
	require.NoError(t, err)
	require.NoError(t, recipe.Replace(details))
	require.NoError(t, repo.Replace(ctx, recipe))

	got, err = repo.GetByID(ctx, recipe.ID())
	require.NoError(t, err)
	assert.Equal(t, "Tian", got.Name())
	assert.Equal(t, "Provence", got.Source().Title())
	assert.Equal(t, 12, got.Source().Page())
	assert.Equal(t, 2, got.Version())

	require.NoError(t, repo.Delete(ctx, recipe.ID()))
	_, err = repo.GetByID(ctx, recipe.ID())
	assert.True(t, pkgerrors.IsNotFound(err))

	assert.True(t, pkgerrors.IsNotFound(repo.Delete(ctx, recipe.ID())))
	assert.True(t, pkgerrors.IsNotFound(repo.Replace(ctx, recipe)))
}

func TestRecipeRepository_ReplaceRejectsStaleVersion(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	recipe := fixtures.NewRecipeBuilder().WithName("Gazpacho").MustBuild()
	require.NoError(t, repo.Create(ctx, recipe))

	first, err := repo.GetByID(ctx, recipe.ID())
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, recipe.ID())
	require.NoError(t, err)

	details, err := fixtures.NewRecipeBuilder().WithName("Writer A").Details()
	require.NoError(t, err)
	require.NoError(t, first.Replace(details))
	require.NoError(t, repo.Replace(ctx, first))

	details, err = fixtures.NewRecipeBuilder().WithName("Writer B").Details()
	require.NoError(t, err)
	require.NoError(t, second.Replace(details))
	err = repo.Replace(ctx, second)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsConflict(err))
	assert.Equal(t, "VERSION_CONFLICT", pkgerrors.GetAppError(err).Code)

	got, err := repo.GetByID(ctx, recipe.ID())
	require.NoError(t, err)
	assert.Equal(t, "Writer A", got.Name())
	assert.Equal(t, 2, got.Version())
}

func TestRecipeRepository_ListAndTags(t *testing.T) {
	repo := newTestRepository()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	all := []*entities.Recipe{
		fixtures.NewRecipeBuilder().WithName("Omelette").WithDiet(valueobjects.DietVegetarian).
			WithTags("eggs", "quick").CreatedAt(base).MustBuild(),
		fixtures.NewRecipeBuilder().WithName("Lentil Soup").WithDiet(valueobjects.DietVegan).
			WithPrepTime(valueobjects.PrepTime30To60).WithTags("soup").
			WithSeasons(valueobjects.SeasonWinter).CreatedAt(base.Add(time.Hour)).MustBuild(),
		fixtures.NewRecipeBuilder().WithName("Roast Chicken").
			WithPrepTime(valueobjects.PrepTimeOver60).WithTags("sunday").CreatedAt(base.Add(2 * time.Hour)).MustBuild(),
		fixtures.NewRecipeBuilder().WithName("Fruit Salad").WithDiet(valueobjects.DietVegan).
			WithTags("quick").WithSeasons(valueobjects.SeasonSummer).CreatedAt(base.Add(3 * time.Hour)).MustBuild(),
		fixtures.NewRecipeBuilder().WithName("Minestrone").WithDiet(valueobjects.DietVegan).
			WithTags("soup", "quick").WithSeasons(valueobjects.SeasonFall, valueobjects.SeasonWinter).
			CreatedAt(base.Add(4 * time.Hour)).MustBuild(),
	}
	for _, r := range all {
		require.NoError(t, repo.Create(ctx, r))
	}

	f := filter.Filter{MaxDiet: valueobjects.DietVegan, Sort: filter.SortCreatedDesc}
	got, total, err := repo.List(ctx, f, ports.NewPage(1, 2))
	require.NoError(t, err)
	assert.Equal(t, 3, total)
	require.Len(t, got, 2)
	assert.Equal(t, "Minestrone", got[0].Name())
	assert.Equal(t, "Fruit Salad", got[1].Name())

	got, _, err = repo.List(ctx, f, ports.NewPage(2, 2))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Lentil Soup", got[0].Name())

	got, total, err = repo.List(ctx, filter.Filter{Tags: []string{"quick", "soup"}}, ports.NewPage(1, 10))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Minestrone", got[0].Name())

	got, _, err = repo.List(ctx, filter.Filter{}, ports.NewPage(1, 10))
	require.NoError(t, err)
	assert.Len(t, got, len(all))
	assert.Equal(t, "Fruit Salad", got[0].Name())

	tags, err := repo.ListTags(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"eggs", "quick", "soup", "sunday"}, tags)

	assert.NoError(t, repo.Ping(ctx))
}

func TestFilterCondition(t *testing.T) {
	f := filter.Filter{
		Name:        "Soup",
		MaxDiet:     valueobjects.DietVegetarian,
		MaxPrepTime: valueobjects.PrepTime15To30,
		Tags:        []string{"quick", "cheap"},
		Seasons:     []valueobjects.Season{valueobjects.SeasonSpring, valueobjects.SeasonWinter},
	}.Normalize()

	expr, err := buildScanExpression(f)
	require.NoError(t, err)
	require.NotNil(t, expr.Filter())

	names := make([]string, 0, len(expr.Names()))
	for _, name := range expr.Names() {
		names = append(names, name)
	}
	assert.ElementsMatch(t,
		[]string{"EntityType", "NameLower", "DietRank", "PrepRank", "Tags", "Spring", "Winter"},
		names)

	values := expr.Values()
	var lowered bool
	for _, v := range values {
		if s, ok := v.(*types.AttributeValueMemberS); ok && s.Value == "soup" {
			lowered = true
		}
	}
	assert.True(t, lowered, "name filter should compare against the lowercased name")

	assert.Contains(t, *expr.Filter(), "OR")
	assert.Contains(t, *expr.Filter(), "contains")
}

func TestFilterCondition_ZeroFilterSelectsRecipes(t *testing.T) {
	expr, err := buildScanExpression(filter.Filter{})
	require.NoError(t, err)

	require.Len(t, expr.Names(), 1)
	for _, name := range expr.Names() {
		assert.Equal(t, "EntityType", name)
	}
}
