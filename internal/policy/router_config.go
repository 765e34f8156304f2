package policy

import (
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/handlers"
	"github.com/diewo77/invoice-manager/internal/services"
	"gorm.io/gorm"
)

// RouterConfig holds the configured handlers and services for the
// application. Every service scopes its queries to the session user, so
// ownership is the only access rule.
type RouterConfig struct {
	// Auth handler
	AuthHandler *handlers.AuthHandler

	// Business handlers
	CompanyHandler         *handlers.CompanyHandler
	ClientHandler          *handlers.ClientHandler
	InvoiceHandler         *handlers.InvoiceHandler
	PaymentSettingsHandler *handlers.PaymentSettingsHandler

	// Services
	UserService    *services.UserService
	InvoiceService *services.InvoiceService
}

// NewRouterConfig wires services and handlers over db. layout drives the
// PDF export.
func NewRouterConfig(db *gorm.DB, layout export.Layout) *RouterConfig {
	users := services.NewUserService(db)
	invoices := services.NewInvoiceService(db)

	return &RouterConfig{
		AuthHandler:            handlers.NewAuthHandler(users),
		CompanyHandler:         handlers.NewCompanyHandler(services.NewCompanyService(db)),
		ClientHandler:          handlers.NewClientHandler(services.NewClientService(db)),
		InvoiceHandler:         handlers.NewInvoiceHandler(invoices, layout),
		PaymentSettingsHandler: handlers.NewPaymentSettingsHandler(services.NewPaymentSettingsService(db)),
		UserService:            users,
		InvoiceService:         invoices,
	}
}
