package dto

import (
	"strings"

	"recipeapp/internal/models"
	"recipeapp/internal/services"

	"github.com/shopspring/decimal"
)

// RecipeRequest is the body of POST and PUT recipe requests. Omitted tags,
// ingredients and link are treated as empty.
type RecipeRequest struct {
	Title       string           `json:"title" validate:"required,max=20"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	TimeMinute  *int             `json:"time_minute" validate:"required,gte=0"`
	Link        string           `json:"link" validate:"max=255"`
	Tags        []uint           `json:"tags"`
	Ingredients []uint           `json:"ingredients"`
}

func (r *RecipeRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
}

// Input converts a validated request.
func (r RecipeRequest) Input() services.RecipeInput {
	in := services.RecipeInput{
		Title:         r.Title,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
	if r.Price != nil {
		in.Price = *r.Price
	}
	if r.TimeMinute != nil {
		in.TimeMinute = *r.TimeMinute
	}
	return in
}

// RecipePatchRequest is the body of PATCH; only supplied fields change.
type RecipePatchRequest struct {
	Title       *string          `json:"title" validate:"omitempty,max=20"`
	Price       *decimal.Decimal `json:"price"`
	TimeMinute  *int             `json:"time_minute" validate:"omitempty,gte=0"`
	Link        *string          `json:"link" validate:"omitempty,max=255"`
	Tags        *[]uint          `json:"tags"`
	Ingredients *[]uint          `json:"ingredients"`
}

func (r *RecipePatchRequest) Normalize() {
	if r.Title != nil {
		title := strings.TrimSpace(*r.Title)
		r.Title = &title
	}
}

func (r RecipePatchRequest) Input() services.RecipePatchInput {
	return services.RecipePatchInput{
		Title:         r.Title,
		Price:         r.Price,
		TimeMinute:    r.TimeMinute,
		Link:          r.Link,
		TagIDs:        r.Tags,
		IngredientIDs: r.Ingredients,
	}
}

// RecipeResponse is the summary shape used by list, create and update.
type RecipeResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	Price       string  `json:"price"`
	TimeMinute  int     `json:"time_minute"`
	Link        string  `json:"link"`
	Tags        []uint  `json:"tags"`
	Ingredients []uint  `json:"ingredients"`
	Image       *string `json:"image"`
}

// RecipeDetailResponse nests tags and ingredients; used by retrieve.
type RecipeDetailResponse struct {
	ID          uint            `json:"id"`
	Title       string          `json:"title"`
	Price       string          `json:"price"`
	TimeMinute  int             `json:"time_minute"`
	Link        string          `json:"link"`
	Tags        []NamedResponse `json:"tags"`
	Ingredients []NamedResponse `json:"ingredients"`
	Image       *string         `json:"image"`
}

// RecipeImageResponse is returned by the upload endpoint.
type RecipeImageResponse struct {
	ID    uint    `json:"id"`
	Image *string `json:"image"`
}

// MediaURL joins the public media prefix and a stored key, or returns nil
// when there is no key.
func MediaURL(base, key string) *string {
	if key == "" {
		return nil
	}
	url := strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
	return &url
}

func NewRecipeResponse(r models.Recipe, mediaBase string) RecipeResponse {
	return RecipeResponse{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price.StringFixed(2),
		TimeMinute:  r.TimeMinute,
		Link:        r.Link,
		Tags:        r.TagIDs(),
		Ingredients: r.IngredientIDs(),
		Image:       MediaURL(mediaBase, r.Image),
	}
}

func NewRecipeResponses(recipes []models.Recipe, mediaBase string) []RecipeResponse {
	out := make([]RecipeResponse, 0, len(recipes))
	for _, r := range recipes {
		out = append(out, NewRecipeResponse(r, mediaBase))
	}
	return out
}

func NewRecipeDetailResponse(r models.Recipe, mediaBase string) RecipeDetailResponse {
	return RecipeDetailResponse{
		ID:          r.ID,
		Title:       r.Title,
		Price:       r.Price.StringFixed(2),
		TimeMinute:  r.TimeMinute,
		Link:        r.Link,
		Tags:        NewTagResponses(r.Tags),
		Ingredients: NewIngredientResponses(r.Ingredients),
		Image:       MediaURL(mediaBase, r.Image),
	}
}

func NewRecipeImageResponse(r models.Recipe, mediaBase string) RecipeImageResponse {
	return RecipeImageResponse{ID: r.ID, Image: MediaURL(mediaBase, r.Image)}
}
