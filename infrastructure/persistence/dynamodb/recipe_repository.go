package dynamodb

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/expression"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"go.uber.org/zap"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
	pkgerrors "recipebook/pkg/errors"
)

// RecipeRepository implements the RecipeRepository interface using DynamoDB.
// DynamoDB cannot order a scan, so List sorts and pages in memory.
type RecipeRepository struct {
	client    Client
	tableName string
	logger    *zap.Logger
}

// NewRecipeRepository creates a new RecipeRepository
func NewRecipeRepository(client Client, tableName string, logger *zap.Logger) *RecipeRepository {
	return &RecipeRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

var _ ports.RecipeRepository = (*RecipeRepository)(nil)

// Create stores a new recipe; an existing item with the same id is a conflict
func (r *RecipeRepository) Create(ctx context.Context, recipe *entities.Recipe) error {
	err := r.put(ctx, recipe, expression.Name("PK").AttributeNotExists())
	if isConditionFailed(err) {
		return pkgerrors.NewConflictError(fmt.Sprintf("recipe %s already exists", recipe.ID())).WithCode("RECIPE_EXISTS")
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("create recipe", err)
	}

	r.logger.Debug("Recipe created", zap.String("recipeID", recipe.ID().String()))
	return nil
}

// Replace overwrites an existing recipe item. The stored item must still be
// at the version the replacement was derived from.
func (r *RecipeRepository) Replace(ctx context.Context, recipe *entities.Recipe) error {
	expected := recipe.Version() - 1
	condition := expression.Name("PK").AttributeExists().
		And(expression.Name("Version").Equal(expression.Value(expected)))

	err := r.put(ctx, recipe, condition)
	if isConditionFailed(err) {
		if _, getErr := r.GetByID(ctx, recipe.ID()); getErr != nil {
			return getErr
		}
		return pkgerrors.NewVersionConflictError("recipe", recipe.ID().String(), expected)
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("replace recipe", err)
	}

	r.logger.Debug("Recipe replaced",
		zap.String("recipeID", recipe.ID().String()),
		zap.Int("version", recipe.Version()),
	)
	return nil
}

func (r *RecipeRepository) put(ctx context.Context, recipe *entities.Recipe, condition expression.ConditionBuilder) error {
	item, err := attributevalue.MarshalMap(newRecipeItem(recipe))
	if err != nil {
		return fmt.Errorf("failed to marshal recipe: %w", err)
	}

	expr, err := expression.NewBuilder().WithCondition(condition).Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName:                 aws.String(r.tableName),
		Item:                      item,
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	return err
}

// Delete removes a recipe item
func (r *RecipeRepository) Delete(ctx context.Context, id valueobjects.RecipeID) error {
	expr, err := expression.NewBuilder().
		WithCondition(expression.Name("PK").AttributeExists()).
		Build()
	if err != nil {
		return fmt.Errorf("failed to build expression: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName:                 aws.String(r.tableName),
		Key:                       recipeKey(id.String()),
		ConditionExpression:       expr.Condition(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})
	if isConditionFailed(err) {
		return pkgerrors.NewNotFoundError("recipe")
	}
	if err != nil {
		return pkgerrors.NewDatabaseError("delete recipe", err)
	}

	r.logger.Debug("Recipe deleted", zap.String("recipeID", id.String()))
	return nil
}

// GetByID retrieves a recipe by its ID
func (r *RecipeRepository) GetByID(ctx context.Context, id valueobjects.RecipeID) (*entities.Recipe, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName:      aws.String(r.tableName),
		Key:            recipeKey(id.String()),
		ConsistentRead: aws.Bool(true),
	})
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get recipe", err)
	}
	if result.Item == nil {
		return nil, pkgerrors.NewNotFoundError("recipe")
	}

	var item recipeItem
	if err := attributevalue.UnmarshalMap(result.Item, &item); err != nil {
		return nil, fmt.Errorf("failed to unmarshal recipe: %w", err)
	}
	return item.toEntity()
}

// List scans for matching recipes, then orders and pages them in memory
func (r *RecipeRepository) List(ctx context.Context, f filter.Filter, page ports.Page) ([]*entities.Recipe, int, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}

	expr, err := buildScanExpression(f)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	var recipes []*entities.Recipe
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, 0, pkgerrors.NewDatabaseError("list recipes", err)
		}

		var items []recipeItem
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, 0, fmt.Errorf("failed to unmarshal recipes: %w", err)
		}
		for _, item := range items {
			recipe, err := item.toEntity()
			if err != nil {
				r.logger.Warn("Skipping unreadable recipe item",
					zap.String("pk", item.PK),
					zap.Error(err),
				)
				continue
			}
			recipes = append(recipes, recipe)
		}
	}

	matched := f.Apply(recipes)
	total := len(matched)

	start := min(max(page.Offset, 0), total)
	end := total
	if page.Limit > 0 {
		end = start + min(page.Limit, total-start)
	}

	return matched[start:end], total, nil
}

// ListTags scans the tag lists of all recipes and returns the distinct values, sorted
func (r *RecipeRepository) ListTags(ctx context.Context) ([]string, error) {
	expr, err := expression.NewBuilder().
		WithFilter(expression.Name("EntityType").Equal(expression.Value(recipeEntityType))).
		WithProjection(expression.NamesList(expression.Name("Tags"))).
		Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build expression: %w", err)
	}

	paginator := dynamodb.NewScanPaginator(r.client, &dynamodb.ScanInput{
		TableName:                 aws.String(r.tableName),
		FilterExpression:          expr.Filter(),
		ProjectionExpression:      expr.Projection(),
		ExpressionAttributeNames:  expr.Names(),
		ExpressionAttributeValues: expr.Values(),
	})

	seen := make(map[string]struct{})
	for paginator.HasMorePages() {
		out, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, pkgerrors.NewDatabaseError("list tags", err)
		}

		var items []struct {
			Tags []string `dynamodbav:"Tags"`
		}
		if err := attributevalue.UnmarshalListOfMaps(out.Items, &items); err != nil {
			return nil, fmt.Errorf("failed to unmarshal tags: %w", err)
		}
		for _, item := range items {
			for _, tag := range item.Tags {
				seen[tag] = struct{}{}
			}
		}
	}

	tags := make([]string, 0, len(seen))
	for tag := range seen {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags, nil
}

// Ping checks that the table exists and is reachable
func (r *RecipeRepository) Ping(ctx context.Context) error {
	_, err := r.client.DescribeTable(ctx, &dynamodb.DescribeTableInput{
		TableName: aws.String(r.tableName),
	})
	if err != nil {
		return pkgerrors.NewDatabaseError("describe table", err)
	}
	return nil
}

func recipeKey(id string) map[string]types.AttributeValue {
	return map[string]types.AttributeValue{
		"PK": &types.AttributeValueMemberS{Value: recipePK(id)},
		"SK": &types.AttributeValueMemberS{Value: metadataSortKey},
	}
}

func isConditionFailed(err error) bool {
	var ccf *types.ConditionalCheckFailedException
	return errors.As(err, &ccf)
}
