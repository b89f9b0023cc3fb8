package commands

import (
	"recipebook/domain/config"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	pkgerrors "recipebook/pkg/errors"
	"recipebook/pkg/utils"
)

// SourceInput is the raw form of a recipe source
type SourceInput struct {
	Type  string `json:"type" yaml:"type" validate:"required,oneof=online offline"`
	URL   string `json:"url,omitempty" yaml:"url,omitempty" validate:"omitempty,max=2048"`
	Title string `json:"title,omitempty" yaml:"title,omitempty" validate:"omitempty,max=200"`
	Page  int    `json:"page,omitempty" yaml:"page,omitempty" validate:"gte=0"`
}

// RecipeInput carries every editable recipe field as submitted by a client
type RecipeInput struct {
	Name     string               `json:"name" yaml:"name" validate:"required,max=200"`
	Source   SourceInput          `json:"source" yaml:"source"`
	Diet     string               `json:"diet" yaml:"diet" validate:"required,oneof=vegan vegetarian omnivore"`
	PrepTime string               `json:"prepTime" yaml:"prepTime" validate:"required,oneof=under15 15to30 30to60 over60"`
	Seasons  valueobjects.Seasons `json:"seasons" yaml:"seasons"`
	Tags     []string             `json:"tags,omitempty" yaml:"tags,omitempty" validate:"max=100,dive,max=50"`
	Notes    string               `json:"notes,omitempty" yaml:"notes,omitempty" validate:"max=20000"`
}

// Details converts the input into validated domain values
func (in RecipeInput) Details(cfg *config.DomainConfig) (entities.RecipeDetails, error) {
	verrs := pkgerrors.NewValidationErrors()

	source, err := valueobjects.NewSource(
		valueobjects.SourceType(in.Source.Type),
		in.Source.URL,
		in.Source.Title,
		in.Source.Page,
		cfg,
	)
	if err != nil {
		verrs.Add("source", messageOf(err))
	}

	diet, err := valueobjects.ParseDiet(in.Diet)
	if err != nil {
		verrs.Add("diet", err.Error())
	}

	prepTime, err := valueobjects.ParsePrepTime(in.PrepTime)
	if err != nil {
		verrs.Add("prepTime", err.Error())
	}

	tags, err := valueobjects.NewTagsWithConfig(in.Tags, cfg)
	if err != nil {
		verrs.Add("tags", messageOf(err))
	}

	if err := verrs.ErrOrNil(); err != nil {
		return entities.RecipeDetails{}, err
	}

	return entities.RecipeDetails{
		Name:     in.Name,
		Source:   source,
		Diet:     diet,
		PrepTime: prepTime,
		Seasons:  in.Seasons,
		Tags:     tags,
		Notes:    in.Notes,
	}, nil
}

// CreateRecipeCommand adds a recipe under a caller-chosen id
type CreateRecipeCommand struct {
	RecipeID string `json:"recipe_id"`
	RecipeInput
}

// Validate checks the command shape before it reaches a handler
func (c CreateRecipeCommand) Validate() error {
	if _, err := valueobjects.NewRecipeIDFromString(c.RecipeID); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return utils.ValidateStruct(c.RecipeInput)
}

// ReplaceRecipeCommand overwrites every field of an existing recipe
type ReplaceRecipeCommand struct {
	RecipeID string `json:"recipe_id"`
	RecipeInput
}

// Validate checks the command shape before it reaches a handler
func (c ReplaceRecipeCommand) Validate() error {
	if _, err := valueobjects.NewRecipeIDFromString(c.RecipeID); err != nil {
		return pkgerrors.NewValidationError(err.Error())
	}
	return utils.ValidateStruct(c.RecipeInput)
}

// DeleteRecipeCommand removes a recipe
type DeleteRecipeCommand struct {
	RecipeID string `json:"recipe_id" validate:"required,uuid"`
}

// Validate checks the command shape before it reaches a handler
func (c DeleteRecipeCommand) Validate() error {
	return utils.ValidateStruct(c)
}

func messageOf(err error) string {
	if appErr := pkgerrors.GetAppError(err); appErr != nil {
		return appErr.Message
	}
	return err.Error()
}
