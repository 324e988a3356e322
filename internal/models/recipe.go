package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Join tables linking recipes to their tags and ingredients.
const (
	RecipeTagsTable        = "recipe_tags"
	RecipeIngredientsTable = "recipe_ingredients"
)

// Recipe represents a recipe owned by a single user.
// Title is capped at 20 characters.
type Recipe struct {
	ID          uint            `json:"id" gorm:"primaryKey"`
	Title       string          `json:"title" gorm:"type:varchar(20);not null;index"`
	UserID      uint            `json:"-" gorm:"not null;index"`
	User        *User           `json:"-" gorm:"constraint:OnDelete:CASCADE"`
	Price       decimal.Decimal `json:"price" gorm:"type:decimal(6,2);not null"`
	TimeMinute  int             `json:"time_minute" gorm:"not null"`
	Link        string          `json:"link" gorm:"type:varchar(255)"`
	Image       string          `json:"image" gorm:"type:varchar(255)"` // media store key, empty when unset
	Tags        []Tag           `json:"tags" gorm:"many2many:recipe_tags;constraint:OnDelete:CASCADE"`
	Ingredients []Ingredient    `json:"ingredients" gorm:"many2many:recipe_ingredients;constraint:OnDelete:CASCADE"`
	CreatedAt   time.Time       `json:"-"`
	UpdatedAt   time.Time       `json:"-"`
}

// TagIDs returns the ids of the loaded tags in load order.
func (r *Recipe) TagIDs() []uint {
	ids := make([]uint, 0, len(r.Tags))
	for _, t := range r.Tags {
		ids = append(ids, t.ID)
	}
	return ids
}

// IngredientIDs returns the ids of the loaded ingredients in load order.
func (r *Recipe) IngredientIDs() []uint {
	ids := make([]uint, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ids = append(ids, i.ID)
	}
	return ids
}

// All returns every model that takes part in the schema, in migration order.
func All() []interface{} {
	return []interface{}{&User{}, &Tag{}, &Ingredient{}, &Recipe{}}
}
