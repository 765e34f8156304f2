package main

import (
	"net/http"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/httpx"
	"github.com/diewo77/invoice-manager/internal/policy"
	"gorm.io/gorm"
)

// App is the main application handler that sets up all routes.
type App struct {
	mux       *http.ServeMux
	db        *gorm.DB
	routerCfg *policy.RouterConfig
}

// NewApp creates a new application with all routes configured.
func NewApp(db *gorm.DB, routerCfg *policy.RouterConfig) *App {
	app := &App{
		mux:       http.NewServeMux(),
		db:        db,
		routerCfg: routerCfg,
	}
	app.setupRoutes()
	return app
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	auth.Middleware(a.mux).ServeHTTP(w, r)
}

// setupRoutes configures all application routes.
func (a *App) setupRoutes() {
	// ─────────────────────────────────────────────────────────────────────────
	// Public routes (no auth required)
	// ─────────────────────────────────────────────────────────────────────────
	ah := a.routerCfg.AuthHandler

	a.mux.HandleFunc("GET /healthz", a.healthz)
	a.mux.HandleFunc("POST /signup", ah.Signup)
	a.mux.HandleFunc("POST /login", ah.Login)
	a.mux.HandleFunc("POST /logout", ah.Logout)

	// ─────────────────────────────────────────────────────────────────────────
	// Resource routes (require logged-in user; services scope to the owner)
	// ─────────────────────────────────────────────────────────────────────────
	coh := a.routerCfg.CompanyHandler
	ch := a.routerCfg.ClientHandler
	ih := a.routerCfg.InvoiceHandler
	ph := a.routerCfg.PaymentSettingsHandler

	a.mux.Handle("GET /companies", a.requireAuth(coh.List))
	a.mux.Handle("POST /companies", a.requireAuth(coh.Create))
	a.mux.Handle("GET /companies/{id}", a.requireAuth(coh.View))
	a.mux.Handle("PUT /companies/{id}", a.requireAuth(coh.Update))
	a.mux.Handle("DELETE /companies/{id}", a.requireAuth(coh.Delete))

	a.mux.Handle("GET /clients", a.requireAuth(ch.List))
	a.mux.Handle("POST /clients", a.requireAuth(ch.Create))
	a.mux.Handle("GET /clients/{id}", a.requireAuth(ch.View))
	a.mux.Handle("PUT /clients/{id}", a.requireAuth(ch.Update))
	a.mux.Handle("DELETE /clients/{id}", a.requireAuth(ch.Delete))

	a.mux.Handle("GET /invoices", a.requireAuth(ih.List))
	a.mux.Handle("POST /invoices", a.requireAuth(ih.Create))
	a.mux.Handle("GET /invoices/stats", a.requireAuth(ih.Stats))
	a.mux.Handle("GET /invoices/{id}", a.requireAuth(ih.View))
	a.mux.Handle("PUT /invoices/{id}", a.requireAuth(ih.Update))
	a.mux.Handle("DELETE /invoices/{id}", a.requireAuth(ih.Delete))
	a.mux.Handle("POST /invoices/{id}/status", a.requireAuth(ih.UpdateStatus))
	a.mux.Handle("GET /invoices/{id}/pdf", a.requireAuth(ih.PDF))
	a.mux.Handle("GET /invoices/{id}/xlsx", a.requireAuth(ih.XLSX))
	a.mux.Handle("POST /totals", a.requireAuth(ih.Totals))

	a.mux.Handle("GET /settings/payment", a.requireAuth(ph.Get))
	a.mux.Handle("PUT /settings/payment", a.requireAuth(ph.Save))
}

// requireAuth wraps a handler to require authentication.
func (a *App) requireAuth(next http.HandlerFunc) http.Handler {
	return auth.RequireAuth(next)
}

func (a *App) healthz(w http.ResponseWriter, r *http.Request) {
	sqlDB, err := a.db.DB()
	if err == nil {
		err = sqlDB.PingContext(r.Context())
	}
	if err != nil {
		httpx.JSONError(w, http.StatusServiceUnavailable, "db_unavailable", nil)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
