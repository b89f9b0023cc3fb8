package dynamodb

import (
	"fmt"
	"strings"
	"time"

	"recipebook/domain/config"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

const (
	recipeKeyPrefix  = "RECIPE#"
	metadataSortKey  = "METADATA"
	recipeEntityType = "Recipe"
)

// recipeItem is the single-table layout of a recipe
type recipeItem struct {
	PK          string   `dynamodbav:"PK"`
	SK          string   `dynamodbav:"SK"`
	EntityType  string   `dynamodbav:"EntityType"`
	RecipeID    string   `dynamodbav:"RecipeID"`
	Name        string   `dynamodbav:"Name"`
	NameLower   string   `dynamodbav:"NameLower"`
	SourceType  string   `dynamodbav:"SourceType"`
	SourceURL   string   `dynamodbav:"SourceURL,omitempty"`
	SourceTitle string   `dynamodbav:"SourceTitle,omitempty"`
	SourcePage  int      `dynamodbav:"SourcePage,omitempty"`
	Diet        string   `dynamodbav:"Diet"`
	DietRank    int      `dynamodbav:"DietRank"`
	PrepTime    string   `dynamodbav:"PrepTime"`
	PrepRank    int      `dynamodbav:"PrepRank"`
	Spring      bool     `dynamodbav:"Spring"`
	Summer      bool     `dynamodbav:"Summer"`
	Fall        bool     `dynamodbav:"Fall"`
	Winter      bool     `dynamodbav:"Winter"`
	Tags        []string `dynamodbav:"Tags"`
	Notes       string   `dynamodbav:"Notes,omitempty"`
	Version     int      `dynamodbav:"Version"`
	CreatedAt   string   `dynamodbav:"CreatedAt"`
	UpdatedAt   string   `dynamodbav:"UpdatedAt"`
}

// rebuild stored items without length limits so tightened rules never hide data
var lenientConfig = &config.DomainConfig{
	MinNameLength:        0,
	MaxNameLength:        1 << 20,
	MaxNotesLength:       1 << 30,
	MaxTagsPerRecipe:     1 << 20,
	MaxTagLength:         1 << 20,
	MaxSourceTitleLength: 1 << 20,
	MaxSourceURLLength:   1 << 20,
}

func recipePK(id string) string {
	return recipeKeyPrefix + id
}

func newRecipeItem(r *entities.Recipe) recipeItem {
	src := r.Source()
	seasons := r.Seasons()
	id := r.ID().String()

	return recipeItem{
		PK:          recipePK(id),
		SK:          metadataSortKey,
		EntityType:  recipeEntityType,
		RecipeID:    id,
		Name:        r.Name(),
		NameLower:   strings.ToLower(r.Name()),
		SourceType:  string(src.Type()),
		SourceURL:   src.URL(),
		SourceTitle: src.Title(),
		SourcePage:  src.Page(),
		Diet:        r.Diet().String(),
		DietRank:    r.Diet().Rank(),
		PrepTime:    r.PrepTime().String(),
		PrepRank:    r.PrepTime().Rank(),
		Spring:      seasons.Spring,
		Summer:      seasons.Summer,
		Fall:        seasons.Fall,
		Winter:      seasons.Winter,
		Tags:        r.Tags().Values(),
		Notes:       r.Notes(),
		Version:     r.Version(),
		CreatedAt:   r.CreatedAt().UTC().Format(time.RFC3339Nano),
		UpdatedAt:   r.UpdatedAt().UTC().Format(time.RFC3339Nano),
	}
}

func (item recipeItem) toEntity() (*entities.Recipe, error) {
	id, err := valueobjects.NewRecipeIDFromString(item.RecipeID)
	if err != nil {
		return nil, err
	}

	var source valueobjects.Source
	if valueobjects.SourceType(item.SourceType) == valueobjects.SourceOffline {
		source, err = valueobjects.NewOfflineSourceWithConfig(item.SourceTitle, item.SourcePage, lenientConfig)
	} else {
		source, err = valueobjects.NewOnlineSourceWithConfig(item.SourceURL, lenientConfig)
	}
	if err != nil {
		return nil, err
	}

	tags, err := valueobjects.NewTagsWithConfig(item.Tags, lenientConfig)
	if err != nil {
		return nil, err
	}

	createdAt, err := time.Parse(time.RFC3339Nano, item.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid CreatedAt: %w", err)
	}
	updatedAt, err := time.Parse(time.RFC3339Nano, item.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("invalid UpdatedAt: %w", err)
	}

	return entities.ReconstructRecipe(id, entities.RecipeDetails{
		Name:     item.Name,
		Source:   source,
		Diet:     valueobjects.Diet(item.Diet),
		PrepTime: valueobjects.PrepTime(item.PrepTime),
		Seasons: valueobjects.Seasons{
			Spring: item.Spring,
			Summer: item.Summer,
			Fall:   item.Fall,
			Winter: item.Winter,
		},
		Tags:  tags,
		Notes: item.Notes,
	}, createdAt.UTC(), updatedAt.UTC(), item.Version)
}
