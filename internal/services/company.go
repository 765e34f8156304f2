package services

import (
	"context"
	"strings"

	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/validation"
	"gorm.io/gorm"
)

type CompanyInput struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Website string `json:"website"`
	Address string `json:"address"`
	TaxID   string `json:"tax_id"`
	LogoURL string `json:"logo_url"`
}

func (in CompanyInput) validate() error {
	v := make(validation.Violations)
	validation.Required("name", in.Name, v)
	validation.Email("email", in.Email, v)
	return invalid(v)
}

func (in CompanyInput) apply(c *models.Company) {
	c.Name = strings.TrimSpace(in.Name)
	c.Email = strings.TrimSpace(in.Email)
	c.Phone = in.Phone
	c.Website = in.Website
	c.Address = in.Address
	c.TaxID = in.TaxID
	c.LogoURL = in.LogoURL
}

type CompanyService struct {
	db    *gorm.DB
	store store[models.Company]
}

func NewCompanyService(db *gorm.DB) *CompanyService {
	return &CompanyService{db: db, store: store[models.Company]{db: db}}
}

func (s *CompanyService) List(ctx context.Context, userID uint) ([]models.Company, error) {
	return s.store.list(ctx, userID, "name")
}

func (s *CompanyService) Get(ctx context.Context, userID, id uint) (*models.Company, error) {
	return s.store.get(ctx, userID, id)
}

func (s *CompanyService) Create(ctx context.Context, userID uint, in CompanyInput) (*models.Company, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	c := models.Company{UserID: userID}
	in.apply(&c)
	if err := s.db.WithContext(ctx).Create(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

func (s *CompanyService) Update(ctx context.Context, userID, id uint, in CompanyInput) (*models.Company, error) {
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

func (s *CompanyService) Delete(ctx context.Context, userID, id uint) error {
	return s.store.delete(ctx, userID, id)
}
