package models

import (
	"time"

	"gorm.io/gorm"
)

// Company is one of the user's own businesses, the issuer side of invoices.
type Company struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"index;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Name    string `gorm:"size:255;not null" json:"name"`
	Email   string `gorm:"size:255" json:"email,omitempty"`
	Phone   string `gorm:"size:50" json:"phone,omitempty"`
	Website string `gorm:"size:255" json:"website,omitempty"`
	Address string `gorm:"size:500" json:"address,omitempty"`
	TaxID   string `gorm:"size:50" json:"tax_id,omitempty"`
	LogoURL string `gorm:"size:500" json:"logo_url,omitempty"`
}

// GetUserID implements the Ownable interface.
func (c *Company) GetUserID() uint {
	return c.UserID
}
