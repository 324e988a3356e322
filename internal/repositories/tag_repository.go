package repositories

import (
	"context"

	"recipeapp/internal/models"
)

// TagRepository defines the interface for tag data access.
type TagRepository interface {
	ListByOwner(ctx context.Context, userID uint) ([]models.Tag, error)
	Create(ctx context.Context, tag *models.Tag) error
	// FindByIDs looks ids up regardless of owner.
	FindByIDs(ctx context.Context, ids []uint) ([]models.Tag, error)
}

// IngredientRepository defines the interface for ingredient data access.
type IngredientRepository interface {
	ListByOwner(ctx context.Context, userID uint) ([]models.Ingredient, error)
	Create(ctx context.Context, ingredient *models.Ingredient) error
	FindByIDs(ctx context.Context, ids []uint) ([]models.Ingredient, error)
}
