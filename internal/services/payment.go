package services

import (
	"context"
	"errors"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/validation"
	"gorm.io/gorm"
)

// PaymentSettingsInput replaces the user's payment settings. An empty
// SecretKey keeps the stored one.
type PaymentSettingsInput struct {
	Provider      models.PaymentProvider `json:"provider"`
	PublicKey     string                 `json:"public_key"`
	SecretKey     string                 `json:"secret_key"`
	AccountName   string                 `json:"account_name"`
	AccountNumber string                 `json:"account_number"`
	RoutingNumber string                 `json:"routing_number"`
	Enabled       bool                   `json:"enabled"`
}

type PaymentSettingsService struct {
	db    *gorm.DB
	store store[models.PaymentSettings]
}

func NewPaymentSettingsService(db *gorm.DB) *PaymentSettingsService {
	return &PaymentSettingsService{db: db, store: store[models.PaymentSettings]{db: db}}
}

// Get returns the user's settings or ErrNotFound when none were saved.
func (s *PaymentSettingsService) Get(ctx context.Context, userID uint) (*models.PaymentSettings, error) {
	var ps models.PaymentSettings
	err := s.store.scoped(ctx, userID).First(&ps).Error
	return found(&ps, err)
}

// Save creates or replaces the user's settings.
func (s *PaymentSettingsService) Save(ctx context.Context, userID uint, in PaymentSettingsInput) (*models.PaymentSettings, error) {
	ps, err := s.Get(ctx, userID)
	switch {
	case errors.Is(err, ErrNotFound):
		ps = &models.PaymentSettings{UserID: userID}
	case err != nil:
		return nil, err
	}

	secret := ps.SecretKey
	if in.SecretKey != "" {
		secret = in.SecretKey
	}

	v := make(validation.Violations)
	if !models.ValidProvider(in.Provider) {
		v.Add("provider", "invalid_choice")
	}
	if in.Enabled {
		switch in.Provider {
		case models.ProviderStripe, models.ProviderPayPal:
			validation.Required("public_key", in.PublicKey, v)
			validation.Required("secret_key", secret, v)
		case models.ProviderBankTransfer:
			validation.Required("account_name", in.AccountName, v)
			validation.Required("account_number", in.AccountNumber, v)
		}
	}
	if err := invalid(v); err != nil {
		return nil, err
	}

	ps.Provider = in.Provider
	ps.PublicKey = in.PublicKey
	ps.SecretKey = secret
	ps.AccountName = in.AccountName
	ps.AccountNumber = in.AccountNumber
	ps.RoutingNumber = in.RoutingNumber
	ps.Enabled = in.Enabled
	if err := s.db.WithContext(ctx).Save(ps).Error; err != nil {
		return nil, err
	}
	return ps, nil
}
