package models

import (
	"time"

	"gorm.io/gorm"
)

// PaymentProvider names the service used to collect invoice payments.
type PaymentProvider string

const (
	ProviderStripe       PaymentProvider = "stripe"
	ProviderPayPal       PaymentProvider = "paypal"
	ProviderBankTransfer PaymentProvider = "bank_transfer"
)

// PaymentSettings holds a user's payment-provider configuration. One row per user.
type PaymentSettings struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`

	UserID uint `gorm:"uniqueIndex;not null" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Provider  PaymentProvider `gorm:"size:30;not null" json:"provider"`
	PublicKey string          `gorm:"size:255" json:"public_key,omitempty"`
	SecretKey string          `gorm:"size:255" json:"-"` // never exposed in JSON

	// Bank transfer details
	AccountName   string `gorm:"size:255" json:"account_name,omitempty"`
	AccountNumber string `gorm:"size:64" json:"account_number,omitempty"`
	RoutingNumber string `gorm:"size:64" json:"routing_number,omitempty"`

	Enabled bool `gorm:"default:false" json:"enabled"`
}

// GetUserID implements the Ownable interface.
func (p *PaymentSettings) GetUserID() uint {
	return p.UserID
}

// HasSecret reports whether a secret key is stored, without revealing it.
func (p *PaymentSettings) HasSecret() bool {
	return p.SecretKey != ""
}

// ValidProvider reports whether p is a supported provider.
func ValidProvider(p PaymentProvider) bool {
	switch p {
	case ProviderStripe, ProviderPayPal, ProviderBankTransfer:
		return true
	}
	return false
}
