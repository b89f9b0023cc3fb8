package queries

import (
	"time"

	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
)

// SourceView is the serialized form of a recipe source
type SourceView struct {
	Type  string `json:"type" yaml:"type"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty"`
	Title string `json:"title,omitempty" yaml:"title,omitempty"`
	Page  int    `json:"page,omitempty" yaml:"page,omitempty"`
}

// RecipeView is the read model returned for a recipe
type RecipeView struct {
	ID        string               `json:"id" yaml:"id"`
	Name      string               `json:"name" yaml:"name"`
	Source    SourceView           `json:"source" yaml:"source"`
	Diet      string               `json:"diet" yaml:"diet"`
	PrepTime  string               `json:"prepTime" yaml:"prepTime"`
	Seasons   valueobjects.Seasons `json:"seasons" yaml:"seasons"`
	Tags      []string             `json:"tags" yaml:"tags"`
	Notes     string               `json:"notes,omitempty" yaml:"notes,omitempty"`
	Version   int                  `json:"version" yaml:"version"`
	CreatedAt time.Time            `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time            `json:"updatedAt" yaml:"updatedAt"`
}

// NewRecipeView maps a recipe entity to its read model
func NewRecipeView(r *entities.Recipe) RecipeView {
	src := r.Source()
	return RecipeView{
		ID:   r.ID().String(),
		Name: r.Name(),
		Source: SourceView{
			Type:  string(src.Type()),
			URL:   src.URL(),
			Title: src.Title(),
			Page:  src.Page(),
		},
		Diet:      r.Diet().String(),
		PrepTime:  r.PrepTime().String(),
		Seasons:   r.Seasons(),
		Tags:      r.Tags().Values(),
		Notes:     r.Notes(),
		Version:   r.Version(),
		CreatedAt: r.CreatedAt().UTC(),
		UpdatedAt: r.UpdatedAt().UTC(),
	}
}
