package services

import (
	"context"
	"strings"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/validation"
	"gorm.io/gorm"
)

type ClientInput struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Company    string `json:"company"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
}

func (in ClientInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	return invalid(v)
}

func (in ClientInput) apply(c *models.Client) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = in.Phone
	c.Company = in.Company
	c.Address = in.Address
	c.City = in.City
	c.PostalCode = in.PostalCode
	c.Country = in.Country
}

type ClientService struct {
	db    *gorm.DB
	store store[models.Client]
}

func NewClientService(db *gorm.DB) *ClientService {
	return &ClientService{db: db, store: store[models.Client]{db: db}}
}

// List returns the user's clients by name; q, when set, filters on name or company.
func (s *ClientService) List(ctx context.Context, userID uint, q string) ([]models.Client, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.store.list(ctx, userID, "name")
	}
	like := "%" + strings.ToLower(q) + "%"
	var out []models.Client
	err := s.store.scoped(ctx, userID).
		Where("LOWER(name) LIKE ? OR LOWER(company) LIKE ?", like, like).
		Order("name").Find(&out).Error
	return out, err
}

func (s *ClientService) Get(ctx context.Context, userID, id uint) (*models.Client, error) {
	return s.store.get(ctx, userID, id)
}

func (s *ClientService) Create(ctx context.Context, userID uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := models.Client{UserID: userID}
	in.apply(&c)
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *ClientService) Update(ctx context.Context, userID, id uint, in ClientInput) (*models.Client, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c, err := s.store.get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	in.apply(c)
	if err := s.db.WithContext(ctx).Save(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

// Delete removes a client that no invoice references.
func (s *ClientService) Delete(ctx context.Context, userID, id uint) error {
	if _, err := s.store.get(ctx, userID, id); err != nil {
		return err
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("user_id = ? AND client_id = ?", userID, id).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrInUse
	}
	return s.store.delete(ctx, userID, id)
}
