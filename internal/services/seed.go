package services

import (
	"context"
	"errors"
	"time"

	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const (
	DemoEmail    = "demo@example.com"
	DemoPassword = "demo-password"
)

// SeedDemo creates a demo user with a company, two clients and a few
// invoices in different states. It does nothing when the user already exists.
func SeedDemo(ctx context.Context, db *gorm.DB, now time.Time) (*models.User, error) {
	var existing models.User
	err := db.WithContext(ctx).Where("email = ?", DemoEmail).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	user, err := NewUserService(db).Signup(ctx, DemoEmail, DemoPassword, "Demo")
	if err != nil {
		return nil, err
	}
	if _, err := NewCompanyService(db).Create(ctx, user.ID, CompanyInput{
		Name: "Demo Studio", Email: "billing@demo.example", Address: "1 Market Street",
	}); err != nil {
		return nil, err
	}

	clients := NewClientService(db)
	acme, err := clients.Create(ctx, user.ID, ClientInput{
		Name: "Acme Corp", Email: "ap@acme.example", Address: "42 Industrial Way",
		City: "Springfield", PostalCode: "12345", Country: "USA",
	})
	if err != nil {
		return nil, err
	}
	globex, err := clients.Create(ctx, user.ID, ClientInput{Name: "Globex", Email: "finance@globex.example"})
	if err != nil {
		return nil, err
	}

	day := func(offset int) string { return now.AddDate(0, 0, offset).Format(billing.DateLayout) }
	d := decimal.RequireFromString
	invoices := []InvoiceInput{
		{
			ClientID: acme.ID, IssueDate: day(-40), DueDate: day(-10), Status: string(billing.StatusPaid),
			Items: []ItemInput{{Description: "Discovery workshop", Quantity: d("1"), Rate: d("1200")}},
		},
		{
			ClientID: acme.ID, IssueDate: day(-30), DueDate: day(-5), Status: string(billing.StatusPending),
			Discount: d("10"), Tax: d("5"),
			Items: []ItemInput{
				{Description: "Design", Quantity: d("2"), Rate: d("50")},
				{Description: "Development", Quantity: d("1"), Rate: d("25")},
			},
		},
		{
			ClientID: globex.ID, IssueDate: day(0), DueDate: day(30), Status: string(billing.StatusPending),
			Tax: d("20"),
			Items: []ItemInput{{Description: "Monthly retainer", Quantity: d("1"), Rate: d("800")}},
		},
		{
			ClientID: globex.ID, IssueDate: day(0), DueDate: day(14),
			Items: []ItemInput{{Description: "Hosting", Quantity: d("12"), Rate: d("9.99")}},
		},
	}
	svc := NewInvoiceService(db)
	for _, in := range invoices {
		if _, err := svc.Create(ctx, user.ID, in); err != nil {
			return nil, err
		}
	}
	return user, nil
}
