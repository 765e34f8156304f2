package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an authenticated user in the system.
// Every other record is owned by exactly one user.
type User struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
	Email     string         `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Name      string         `gorm:"size:255" json:"name,omitempty"`
	Password  string         `gorm:"size:255;not null" json:"-"` // Hashed, never exposed in JSON
}

// Ownable is implemented by every user-scoped record.
type Ownable interface {
	GetUserID() uint
}
