// Package models contains data structures for the application's domain models.
package models

import (
	"time"
)

// User represents a registered user of the blog. Admins additionally have
// access to the moderation dashboard.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	Name         string    `gorm:"not null" json:"name"`
	Email        string    `gorm:"unique;not null" json:"email"`
	Password     string    `gorm:"not null" json:"-"`
	IsAdmin      bool      `gorm:"default:false" json:"is_admin"`
	CreatedAt    time.Time `json:"created_at"`
	LastLoggedIn time.Time `json:"last_logged_in"`
	Posts        []Post    `gorm:"foreignKey:UserID" json:"posts,omitempty"`
}
