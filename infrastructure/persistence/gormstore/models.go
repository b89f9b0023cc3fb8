package gormstore

import (
	"time"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

// recipeModel is the row layout of the recipes table. Diet and prep time
// ranks are stored next to their names so "at most" filters and sorts stay
// in SQL.
type recipeModel struct {
	ID          string    `gorm:"primaryKey;size:36"`
	Name        string    `gorm:"size:200;not null;index"`
	SourceType  string    `gorm:"size:16;not null"`
	SourceURL   string    `gorm:"size:2048"`
	SourceTitle string    `gorm:"size:200"`
	SourcePage  int       `gorm:"not null"`
	Diet        string    `gorm:"size:16;not null"`
	DietRank    int       `gorm:"not null;index"`
	PrepTime    string    `gorm:"size:16;not null"`
	PrepRank    int       `gorm:"not null;index"`
	Spring      bool      `gorm:"not null"`
	Summer      bool      `gorm:"not null"`
	Fall        bool      `gorm:"not null"`
	Winter      bool      `gorm:"not null"`
	Notes       string    `gorm:"type:text"`
	Version     int       `gorm:"not null"`
	CreatedAt   time.Time `gorm:"not null;index;autoCreateTime:false"`
	UpdatedAt   time.Time `gorm:"not null;autoUpdateTime:false"`

	Tags []tagModel `gorm:"foreignKey:RecipeID;constraint:OnDelete:CASCADE"`
}

func (recipeModel) TableName() string { return "recipes" }

// tagModel is one tag of one recipe; Position keeps the submitted order
type tagModel struct {
	RecipeID string `gorm:"primaryKey;size:36"`
	Tag      string `gorm:"primaryKey;size:50;index"`
	Position int    `gorm:"not null"`
}

func (tagModel) TableName() string { return "recipe_tags" }

func toModel(r *entities.Recipe) recipeModel {
	src := r.Source()
	seasons := r.Seasons()

	m := recipeModel{
		ID:          r.ID().String(),
		Name:        r.Name(),
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
		Notes:       r.Notes(),
		Version:     r.Version(),
		CreatedAt:   r.CreatedAt().UTC(),
		UpdatedAt:   r.UpdatedAt().UTC(),
	}
	m.Tags = toTagModels(m.ID, r.Tags().Values())
	return m
}

func toTagModels(recipeID string, tags []string) []tagModel {
	if len(tags) == 0 {
		return nil
	}
	out := make([]tagModel, len(tags))
	for i, tag := range tags {
		out[i] = tagModel{RecipeID: recipeID, Tag: tag, Position: i}
	}
	return out
}

func (m recipeModel) toEntity() (*entities.Recipe, error) {
	id, err := valueobjects.NewRecipeIDFromString(m.ID)
	if err != nil {
		return nil, err
	}

	// Rows were validated on the way in; rebuild without the length limits
	var source valueobjects.Source
	switch valueobjects.SourceType(m.SourceType) {
	case valueobjects.SourceOffline:
		source, err = valueobjects.NewOfflineSourceWithConfig(m.SourceTitle, m.SourcePage, lenientConfig)
	default:
		source, err = valueobjects.NewOnlineSourceWithConfig(m.SourceURL, lenientConfig)
	}
	if err != nil {
		return nil, err
	}

	values := make([]string, len(m.Tags))
	for i, t := range m.Tags {
		values[i] = t.Tag
	}
	tags, err := valueobjects.NewTagsWithConfig(values, lenientConfig)
	if err != nil {
		return nil, err
	}

	return entities.ReconstructRecipe(id, entities.RecipeDetails{
		Name:     m.Name,
		Source:   source,
		Diet:     valueobjects.Diet(m.Diet),
		PrepTime: valueobjects.PrepTime(m.PrepTime),
		Seasons: valueobjects.Seasons{
			Spring: m.Spring,
			Summer: m.Summer,
			Fall:   m.Fall,
			Winter: m.Winter,
		},
		Tags:  tags,
		Notes: m.Notes,
	}, m.CreatedAt.UTC(), m.UpdatedAt.UTC(), m.Version)
}
