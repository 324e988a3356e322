package models_test

import (
	"testing"

	"recipeapp/internal/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeEmail(t *testing.T) {
	cases := map[string]string{
		"vinh@TEST.COM":       "vinh@test.com",
		"Vinh@Example.Org":    "Vinh@example.org",
		"  spaced@Host.io  ":  "spaced@host.io",
		"no-at-sign":          "no-at-sign",
		"odd@name@Domain.COM": "odd@name@domain.com",
	}
	for in, want := range cases {
		assert.Equal(t, want, models.NormalizeEmail(in), "input %q", in)
	}
}

func TestRecipeAssociationIDs(t *testing.T) {
	r := models.Recipe{
		Tags:        []models.Tag{{ID: 3}, {ID: 1}},
		Ingredients: []models.Ingredient{{ID: 7}},
	}
	assert.Equal(t, []uint{3, 1}, r.TagIDs())
	assert.Equal(t, []uint{7}, r.IngredientIDs())
	assert.Empty(t, (&models.Recipe{}).TagIDs())
}
