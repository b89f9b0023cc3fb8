package gormstore

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"recipebook/application/ports"
	"recipebook/domain/core/entities"
	"recipebook/domain/core/valueobjects"
	"recipebook/domain/filter"
	pkgerrors "recipebook/pkg/errors"
)

// RecipeRepository stores recipes in a relational database through GORM
type RecipeRepository struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewRecipeRepository creates a GORM backed recipe repository
func NewRecipeRepository(db *gorm.DB, logger *zap.Logger) *RecipeRepository {
	return &RecipeRepository{
		db:     db,
		logger: logger,
	}
}

var _ ports.RecipeRepository = (*RecipeRepository)(nil)

// Create inserts a recipe and its tags
func (r *RecipeRepository) Create(ctx context.Context, recipe *entities.Recipe) error {
	m := toModel(recipe)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&recipeModel{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			return recipeExists(m.ID)
		}
		return tx.Create(&m).Error
	})

	switch {
	case err == nil:
		r.logger.Debug("Recipe created", zap.String("recipeID", m.ID))
		return nil
	case pkgerrors.IsConflict(err):
		return err
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return recipeExists(m.ID)
	default:
		return pkgerrors.NewDatabaseError("create recipe", err)
	}
}

// Replace overwrites every stored field of an existing recipe and its tag list
func (r *RecipeRepository) Replace(ctx context.Context, recipe *entities.Recipe) error {
	m := toModel(recipe)

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&recipeModel{}).
			Where("id = ? AND version = ?", m.ID, m.Version-1).
			Select("*").
			Omit("id", "created_at", clause.Associations).
			Updates(&m)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			var count int64
			if err := tx.Model(&recipeModel{}).Where("id = ?", m.ID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return pkgerrors.NewNotFoundError("recipe")
			}
			return pkgerrors.NewVersionConflictError("recipe", m.ID, m.Version-1)
		}

		if err := tx.Where("recipe_id = ?", m.ID).Delete(&tagModel{}).Error; err != nil {
			return err
		}
		if len(m.Tags) > 0 {
			if err := tx.Create(&m.Tags).Error; err != nil {
				return err
			}
		}
		return nil
	})

	switch {
	case err == nil:
		r.logger.Debug("Recipe replaced",
			zap.String("recipeID", m.ID),
			zap.Int("version", m.Version),
		)
		return nil
	case pkgerrors.IsNotFound(err), pkgerrors.IsConflict(err):
		return err
	default:
		return pkgerrors.NewDatabaseError("replace recipe", err)
	}
}

// Delete removes a recipe and its tags
func (r *RecipeRepository) Delete(ctx context.Context, id valueobjects.RecipeID) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("recipe_id = ?", id.String()).Delete(&tagModel{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id.String()).Delete(&recipeModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return pkgerrors.NewNotFoundError("recipe")
		}
		return nil
	})

	switch {
	case err == nil:
		r.logger.Debug("Recipe deleted", zap.String("recipeID", id.String()))
		return nil
	case pkgerrors.IsNotFound(err):
		return err
	default:
		return pkgerrors.NewDatabaseError("delete recipe", err)
	}
}

// GetByID loads a recipe with its tags in stored order
func (r *RecipeRepository) GetByID(ctx context.Context, id valueobjects.RecipeID) (*entities.Recipe, error) {
	var m recipeModel
	err := r.db.WithContext(ctx).
		Preload("Tags", orderTags).
		Where("id = ?", id.String()).
		First(&m).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkgerrors.NewNotFoundError("recipe")
	}
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("get recipe", err)
	}

	recipe, err := m.toEntity()
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild recipe %s: %w", m.ID, err)
	}
	return recipe, nil
}

// List returns one page of matching recipes and the number of matches
func (r *RecipeRepository) List(ctx context.Context, f filter.Filter, page ports.Page) ([]*entities.Recipe, int, error) {
	f = f.Normalize()
	if err := f.Validate(); err != nil {
		return nil, 0, err
	}

	base := func() *gorm.DB {
		return applyFilter(r.db.WithContext(ctx).Model(&recipeModel{}), f)
	}

	var total int64
	if err := base().Count(&total).Error; err != nil {
		return nil, 0, pkgerrors.NewDatabaseError("count recipes", err)
	}
	if total == 0 || page.Offset >= int(total) {
		return []*entities.Recipe{}, int(total), nil
	}

	q := applyOrder(base(), f.Sort).Preload("Tags", orderTags).Offset(page.Offset)
	if page.Limit > 0 {
		q = q.Limit(page.Limit)
	}

	var rows []recipeModel
	if err := q.Find(&rows).Error; err != nil {
		return nil, 0, pkgerrors.NewDatabaseError("list recipes", err)
	}

	recipes := make([]*entities.Recipe, 0, len(rows))
	for _, m := range rows {
		recipe, err := m.toEntity()
		if err != nil {
			r.logger.Warn("Skipping unreadable recipe row",
				zap.String("recipeID", m.ID),
				zap.Error(err),
			)
			continue
		}
		recipes = append(recipes, recipe)
	}

	return recipes, int(total), nil
}

// ListTags returns the distinct tags in use, sorted
func (r *RecipeRepository) ListTags(ctx context.Context) ([]string, error) {
	tags := []string{}
	err := r.db.WithContext(ctx).
		Model(&tagModel{}).
		Distinct("tag").
		Order("tag").
		Pluck("tag", &tags).Error
	if err != nil {
		return nil, pkgerrors.NewDatabaseError("list tags", err)
	}
	return tags, nil
}

// Ping checks the database connection
func (r *RecipeRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		return pkgerrors.NewDatabaseError("ping", err)
	}
	return nil
}

func orderTags(db *gorm.DB) *gorm.DB {
	return db.Order("position ASC")
}

func recipeExists(id string) error {
	return pkgerrors.NewConflictError(fmt.Sprintf("recipe %s already exists", id)).WithCode("RECIPE_EXISTS")
}
