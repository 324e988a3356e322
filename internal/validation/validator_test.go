package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type sample struct {
	Name    string  `json:"name" validate:"required,max=5"`
	Email   string  `json:"email,omitempty" validate:"omitempty,email"`
	Minutes *int    `json:"time_minute" validate:"required,gte=0"`
	Note    *string `json:"note" validate:"omitempty,min=2"`
	Hidden  string  `json:"-"`
}

func TestStruct_ReportsJSONFieldNames(t *testing.T) {
	errs := Struct(sample{Name: "toolong", Email: "nope"})

	assert.Equal(t, "Ensure this field has no more than 5 characters.", errs["name"])
	assert.Equal(t, "Enter a valid email address.", errs["email"])
	assert.Equal(t, "This field is required.", errs["time_minute"])
	assert.NotContains(t, errs, "note")
}

func TestStruct_Valid(t *testing.T) {
	minutes := 0
	assert.Nil(t, Struct(sample{Name: "soup", Minutes: &minutes}))
}

func TestStruct_NegativeAndBlank(t *testing.T) {
	minutes := -1
	short := "x"
	errs := Struct(sample{Minutes: &minutes, Note: &short})

	assert.Equal(t, "This field may not be blank.", errs["name"])
	assert.Equal(t, "Ensure this value is greater than or equal to 0.", errs["time_minute"])
	assert.Equal(t, "Ensure this field has at least 2 characters.", errs["note"])
}

func TestValidatorIsShared(t *testing.T) {
	assert.Same(t, Validator(), Validator())
}
