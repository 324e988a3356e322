package dto

import (
	"testing"

	"recipeapp/internal/models"

	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecipeResponse(t *testing.T) {
	r := models.Recipe{
		ID:          3,
		Title:       "Soup",
		Price:       decimal.NewFromInt(10),
		TimeMinute:  15,
		Tags:        []models.Tag{{ID: 2, Name: "Warm"}},
		Ingredients: []models.Ingredient{},
	}

	resp := NewRecipeResponse(r, "/media/")
	assert.Equal(t, "10.00", resp.Price)
	assert.Equal(t, []uint{2}, resp.Tags)
	assert.Equal(t, []uint{}, resp.Ingredients)
	assert.Nil(t, resp.Image)

	body, err := json.Marshal(resp)
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":3,"title":"Soup","price":"10.00","time_minute":15,"link":"","tags":[2],"ingredients":[],"image":null}`, string(body))
}

func TestNewRecipeDetailResponse(t *testing.T) {
	r := models.Recipe{
		ID:    1,
		Price: decimal.RequireFromString("5.5"),
		Image: "uploads/recipe/a.png",
		Tags:  []models.Tag{{ID: 1, Name: "Vegan"}},
	}
	resp := NewRecipeDetailResponse(r, "https://cdn.example.com/media")
	assert.Equal(t, "5.50", resp.Price)
	assert.Equal(t, []NamedResponse{{ID: 1, Name: "Vegan"}}, resp.Tags)
	assert.Empty(t, resp.Ingredients)
	require.NotNil(t, resp.Image)
	assert.Equal(t, "https://cdn.example.com/media/uploads/recipe/a.png", *resp.Image)
}

func TestRecipeRequestDecoding(t *testing.T) {
	var req RecipeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"Pie","price":"5.25","time_minute":0,"tags":[1,2]}`), &req))
	in := req.Input()
	assert.Equal(t, "5.25", in.Price.StringFixed(2))
	assert.Equal(t, 0, in.TimeMinute)
	assert.Equal(t, []uint{1, 2}, in.TagIDs)
	assert.Nil(t, in.IngredientIDs)

	var numeric RecipeRequest
	require.NoError(t, json.Unmarshal([]byte(`{"price":5.25}`), &numeric))
	assert.Equal(t, "5.25", numeric.Price.StringFixed(2))
	assert.Nil(t, numeric.TimeMinute)
}

func TestRecipePatchRequestKeepsOmittedFieldsNil(t *testing.T) {
	var req RecipePatchRequest
	require.NoError(t, json.Unmarshal([]byte(`{"title":"New","tags":[]}`), &req))
	in := req.Input()
	require.NotNil(t, in.Title)
	assert.Equal(t, "New", *in.Title)
	require.NotNil(t, in.TagIDs)
	assert.Empty(t, *in.TagIDs)
	assert.Nil(t, in.IngredientIDs)
	assert.Nil(t, in.Price)
}

func TestMediaURL(t *testing.T) {
	assert.Nil(t, MediaURL("/media/", ""))
	assert.Equal(t, "/media/uploads/x.png", *MediaURL("/media/", "uploads/x.png"))
	assert.Equal(t, "/media/uploads/x.png", *MediaURL("/media", "/uploads/x.png"))
}

func TestNormalizeTrimsNames(t *testing.T) {
	named := NamedRequest{Name: "  Vegan \t"}
	named.Normalize()
	assert.Equal(t, "Vegan", named.Name)

	recipe := RecipeRequest{Title: " Pie "}
	recipe.Normalize()
	assert.Equal(t, "Pie", recipe.Title)

	title := " Tart "
	patch := RecipePatchRequest{Title: &title}
	patch.Normalize()
	require.NotNil(t, patch.Title)
	assert.Equal(t, "Tart", *patch.Title)

	empty := RecipePatchRequest{}
	empty.Normalize()
	assert.Nil(t, empty.Title)
}
