package repositories

import (
	"context"
	"errors"
	"fmt"

	"recipeapp/internal/models"

	"gorm.io/gorm"
)

// GORMRecipeRepository is a GORM implementation of RecipeRepository.
type GORMRecipeRepository struct {
	db *gorm.DB
}

// NewGORMRecipeRepository creates a new instance of GORMRecipeRepository.
func NewGORMRecipeRepository(db *gorm.DB) *GORMRecipeRepository {
	return &GORMRecipeRepository{
		db: db,
	}
}

func byID(db *gorm.DB) *gorm.DB {
	return db.Order("id ASC")
}

func withAssociations(db *gorm.DB) *gorm.DB {
	return db.Preload("Tags", byID).Preload("Ingredients", byID)
}

// List returns the owner's recipes ordered by title, optionally filtered
// by associated tag and ingredient ids.
func (r *GORMRecipeRepository) List(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error) {
	db := r.db.WithContext(ctx)
	q := db.Scopes(OwnedBy(userID), withAssociations).Order("title ASC").Order("id ASC")
	if len(filter.TagIDs) > 0 {
		sub := db.Table(models.RecipeTagsTable).Select("recipe_id").Where("tag_id IN ?", filter.TagIDs)
		q = q.Where("id IN (?)", sub)
	}
	if len(filter.IngredientIDs) > 0 {
		sub := db.Table(models.RecipeIngredientsTable).Select("recipe_id").Where("ingredient_id IN ?", filter.IngredientIDs)
		q = q.Where("id IN (?)", sub)
	}

	recipes := []models.Recipe{}
	if err := q.Find(&recipes).Error; err != nil {
		return nil, fmt.Errorf("failed to list recipes: %w", err)
	}
	return recipes, nil
}

// GetByID retrieves one of the owner's recipes with its tags and ingredients.
func (r *GORMRecipeRepository) GetByID(ctx context.Context, userID, id uint) (*models.Recipe, error) {
	var recipe models.Recipe
	err := r.db.WithContext(ctx).Scopes(OwnedBy(userID), withAssociations).First(&recipe, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get recipe by ID %d: %w", id, err)
	}
	return &recipe, nil
}

// Create inserts the recipe and its association rows. Associated tags and
// ingredients must already exist.
func (r *GORMRecipeRepository) Create(ctx context.Context, recipe *models.Recipe) error {
	if err := r.db.WithContext(ctx).Omit("Tags.*", "Ingredients.*").Create(recipe).Error; err != nil {
		return fmt.Errorf("failed to create recipe: %w", err)
	}
	return nil
}

// Replace overwrites every writable column and both associations.
// Empty association slices clear the association.
func (r *GORMRecipeRepository) Replace(ctx context.Context, recipe *models.Recipe) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Recipe{}).
			Scopes(OwnedBy(recipe.UserID)).
			Where("id = ?", recipe.ID).
			Updates(map[string]interface{}{
				"title":       recipe.Title,
				"price":       recipe.Price,
				"time_minute": recipe.TimeMinute,
				"link":        recipe.Link,
			})
		if res.Error != nil {
			return fmt.Errorf("failed to update recipe: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("recipe with ID %d: %w", recipe.ID, ErrNotFound)
		}
		target := &models.Recipe{ID: recipe.ID, UserID: recipe.UserID}
		if err := replaceTags(tx, target, recipe.Tags); err != nil {
			return err
		}
		return replaceIngredients(tx, target, recipe.Ingredients)
	})
}

// Patch applies only the columns and associations present in patch.
func (r *GORMRecipeRepository) Patch(ctx context.Context, userID, id uint, patch RecipePatch) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&models.Recipe{}).Scopes(OwnedBy(userID)).Where("id = ?", id).Count(&count).Error; err != nil {
			return fmt.Errorf("failed to look up recipe %d: %w", id, err)
		}
		if count == 0 {
			return fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
		}
		if len(patch.Fields) > 0 {
			err := tx.Model(&models.Recipe{}).Scopes(OwnedBy(userID)).Where("id = ?", id).Updates(patch.Fields).Error
			if err != nil {
				return fmt.Errorf("failed to patch recipe: %w", err)
			}
		}
		target := &models.Recipe{ID: id, UserID: userID}
		if patch.Tags != nil {
			if err := replaceTags(tx, target, *patch.Tags); err != nil {
				return err
			}
		}
		if patch.Ingredients != nil {
			if err := replaceIngredients(tx, target, *patch.Ingredients); err != nil {
				return err
			}
		}
		return nil
	})
}

// Delete removes the recipe together with its association rows.
func (r *GORMRecipeRepository) Delete(ctx context.Context, userID, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var recipe models.Recipe
		if err := tx.Scopes(OwnedBy(userID)).First(&recipe, id).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
			}
			return fmt.Errorf("failed to look up recipe %d: %w", id, err)
		}
		if err := tx.Select("Tags", "Ingredients").Delete(&recipe).Error; err != nil {
			return fmt.Errorf("failed to delete recipe: %w", err)
		}
		return nil
	})
}

// SetImage stores the media key of the recipe image.
func (r *GORMRecipeRepository) SetImage(ctx context.Context, userID, id uint, key string) error {
	res := r.db.WithContext(ctx).Model(&models.Recipe{}).
		Scopes(OwnedBy(userID)).
		Where("id = ?", id).
		Update("image", key)
	if res.Error != nil {
		return fmt.Errorf("failed to set recipe image: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("recipe with ID %d: %w", id, ErrNotFound)
	}
	return nil
}

func replaceTags(tx *gorm.DB, recipe *models.Recipe, tags []models.Tag) error {
	assoc := tx.Model(recipe).Association("Tags")
	var err error
	if len(tags) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(tags)
	}
	if err != nil {
		return fmt.Errorf("failed to replace recipe tags: %w", err)
	}
	return nil
}

func replaceIngredients(tx *gorm.DB, recipe *models.Recipe, ingredients []models.Ingredient) error {
	assoc := tx.Model(recipe).Association("Ingredients")
	var err error
	if len(ingredients) == 0 {
		err = assoc.Clear()
	} else {
		err = assoc.Replace(ingredients)
	}
	if err != nil {
		return fmt.Errorf("failed to replace recipe ingredients: %w", err)
	}
	return nil
}
