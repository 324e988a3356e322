package repositories

import (
	"context"
	"fmt"

	"recipeapp/internal/models"

	"gorm.io/gorm"
)

// GORMTagRepository is a GORM implementation of TagRepository.
type GORMTagRepository struct {
	db *gorm.DB
}

// NewGORMTagRepository creates a new instance of GORMTagRepository.
func NewGORMTagRepository(db *gorm.DB) *GORMTagRepository {
	return &GORMTagRepository{db: db}
}

// ListByOwner returns the owner's tags ordered by name.
func (r *GORMTagRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := listOwned(r.db.WithContext(ctx), userID, &tags); err != nil {
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}

// Create inserts a new tag.
func (r *GORMTagRepository) Create(ctx context.Context, tag *models.Tag) error {
	if err := r.db.WithContext(ctx).Create(tag).Error; err != nil {
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// FindByIDs returns the tags matching ids, ordered by id.
func (r *GORMTagRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error) {
	tags := []models.Tag{}
	if err := findByIDs(r.db.WithContext(ctx), ids, &tags); err != nil {
		return nil, fmt.Errorf("failed to look up tags: %w", err)
	}
	return tags, nil
}

// GORMIngredientRepository is a GORM implementation of IngredientRepository.
type GORMIngredientRepository struct {
	db *gorm.DB
}

// NewGORMIngredientRepository creates a new instance of GORMIngredientRepository.
func NewGORMIngredientRepository(db *gorm.DB) *GORMIngredientRepository {
	return &GORMIngredientRepository{db: db}
}

// ListByOwner returns the owner's ingredients ordered by name.
func (r *GORMIngredientRepository) ListByOwner(ctx context.Context, userID uint) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := listOwned(r.db.WithContext(ctx), userID, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to list ingredients: %w", err)
	}
	return ingredients, nil
}

// Create inserts a new ingredient.
func (r *GORMIngredientRepository) Create(ctx context.Context, ingredient *models.Ingredient) error {
	if err := r.db.WithContext(ctx).Create(ingredient).Error; err != nil {
		return fmt.Errorf("failed to create ingredient: %w", err)
	}
	return nil
}

// FindByIDs returns the ingredients matching ids, ordered by id.
func (r *GORMIngredientRepository) FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error) {
	ingredients := []models.Ingredient{}
	if err := findByIDs(r.db.WithContext(ctx), ids, &ingredients); err != nil {
		return nil, fmt.Errorf("failed to look up ingredients: %w", err)
	}
	return ingredients, nil
}

func listOwned(db *gorm.DB, userID uint, dest interface{}) error {
	return db.Scopes(OwnedBy(userID), byName).Find(dest).Error
}

func findByIDs(db *gorm.DB, ids []uint, dest interface{}) error {
	if len(ids) == 0 {
		return nil
	}
	return db.Where("id IN ?", ids).Order("id ASC").Find(dest).Error
}
