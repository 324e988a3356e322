package repositories

import (
	"context"

	"recipeapp/internal/models"
)

// RecipeFilter narrows a recipe listing. Ids inside one list match any;
// both lists, when set, must match.
type RecipeFilter struct {
	TagIDs        []uint
	IngredientIDs []uint
}

// RecipePatch carries the columns and associations a partial update touches.
// A nil association pointer leaves that association unchanged.
type RecipePatch struct {
	Fields      map[string]interface{}
	Tags        *[]models.Tag
	Ingredients *[]models.Ingredient
}

// RecipeRepository defines the interface for recipe data access.
// Every method is scoped to the owning user.
type RecipeRepository interface {
	List(ctx context.Context, userID uint, filter RecipeFilter) ([]models.Recipe, error)
	GetByID(ctx context.Context, userID, id uint) (*models.Recipe, error)
	Create(ctx context.Context, recipe *models.Recipe) error
	Replace(ctx context.Context, recipe *models.Recipe) error
	Patch(ctx context.Context, userID, id uint, patch RecipePatch) error
	Delete(ctx context.Context, userID, id uint) error
	SetImage(ctx context.Context, userID, id uint, key string) error
}
