package models

import (
	"strings"
	"time"
)

// User represents an account that owns tags, ingredients and recipes.
type User struct {
	ID          uint       `json:"id" gorm:"primaryKey"`
	Email       string     `json:"email" gorm:"uniqueIndex;type:varchar(255);not null"`
	Password    string     `json:"-" gorm:"type:varchar(255);not null"` // bcrypt hash, never serialized
	Name        string     `json:"name" gorm:"type:varchar(255)"`
	IsActive    bool       `json:"-" gorm:"not null;default:true"`
	IsStaff     bool       `json:"-" gorm:"not null;default:false"`
	IsSuperuser bool       `json:"-" gorm:"not null;default:false"`
	LastLogin   *time.Time `json:"-"`
	CreatedAt   time.Time  `json:"-"`
	UpdatedAt   time.Time  `json:"-"`
}

// NormalizeEmail trims the address and lowercases its domain part.
// The local part is kept as given, some mail servers treat it case-sensitively.
func NormalizeEmail(email string) string {
	email = strings.TrimSpace(email)
	at := strings.LastIndex(email, "@")
	if at < 0 {
		return email
	}
	return email[:at] + "@" + strings.ToLower(email[at+1:])
}
