package dto

import (
	"strings"

	"recipeapp/internal/models"
)

// NamedRequest is the create body shared by tags and ingredients.
type NamedRequest struct {
	Name string `json:"name" validate:"required,max=40"`
}

// Normalize trims the name before it is validated.
func (r *NamedRequest) Normalize() {
	r.Name = strings.TrimSpace(r.Name)
}

// NamedResponse renders a tag or an ingredient.
type NamedResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

func NewTagResponse(t models.Tag) NamedResponse {
	return NamedResponse{ID: t.ID, Name: t.Name}
}

func NewTagResponses(tags []models.Tag) []NamedResponse {
	out := make([]NamedResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, NewTagResponse(t))
	}
	return out
}

func NewIngredientResponse(i models.Ingredient) NamedResponse {
	return NamedResponse{ID: i.ID, Name: i.Name}
}

func NewIngredientResponses(ingredients []models.Ingredient) []NamedResponse {
	out := make([]NamedResponse, 0, len(ingredients))
	for _, i := range ingredients {
		out = append(out, NewIngredientResponse(i))
	}
	return out
}
