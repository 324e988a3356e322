package services

import (
	"context"
	"fmt"
	"strings"

	"recipeapp/internal/models"
	"recipeapp/internal/repositories"
)

// TagService lists and creates the caller's tags.
type TagService struct {
	repo repositories.TagRepository
}

// NewTagService creates a new TagService.
func NewTagService(repo repositories.TagRepository) *TagService {
	return &TagService{repo: repo}
}

// List returns the owner's tags ordered by name.
func (s *TagService) List(ctx context.Context, userID uint) ([]models.Tag, error) {
	return s.repo.ListByOwner(ctx, userID)
}

// Create stores a tag owned by userID.
func (s *TagService) Create(ctx context.Context, userID uint, name string) (*models.Tag, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "This field may not be blank.")
	}
	tag := &models.Tag{Name: name, UserID: userID}
	if err := s.repo.Create(ctx, tag); err != nil {
		return nil, fmt.Errorf("failed to create tag: %w", err)
	}
	return tag, nil
}

// IngredientService lists and creates the caller's ingredients.
type IngredientService struct {
	repo repositories.IngredientRepository
}

// NewIngredientService creates a new IngredientService.
func NewIngredientService(repo repositories.IngredientRepository) *IngredientService {
	return &IngredientService{repo: repo}
}

func (s *IngredientService) List(ctx context.Context, userID uint) ([]models.Ingredient, error) {
	return s.repo.ListByOwner(ctx, userID)
}

func (s *IngredientService) Create(ctx context.Context, userID uint, name string) (*models.Ingredient, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, NewValidationError("name", "This field may not be blank.")
	}
	ingredient := &models.Ingredient{Name: name, UserID: userID}
	if err := s.repo.Create(ctx, ingredient); err != nil {
		return nil, fmt.Errorf("failed to create ingredient: %w", err)
	}
	return ingredient, nil
}
