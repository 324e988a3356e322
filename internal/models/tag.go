package models

// Tag is a free-text label owned by a single user.
type Tag struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(40);not null"`
	UserID uint   `json:"-" gorm:"not null;index"`
	User   *User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

// Ingredient has the same shape and lifecycle as Tag.
type Ingredient struct {
	ID     uint   `json:"id" gorm:"primaryKey"`
	Name   string `json:"name" gorm:"type:varchar(40);not null"`
	UserID uint   `json:"-" gorm:"not null;index"`
	User   *User  `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}
