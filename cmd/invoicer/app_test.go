package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/invoice-manager/internal/config"
	"github.com/diewo77/invoice-manager/internal/db"
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/policy"
	"github.com/diewo77/invoice-manager/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupApp(t *testing.T) (*App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, _ := conn.DB()
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return NewApp(conn, policy.NewRouterConfig(conn, export.DefaultLayout())), conn
}

func TestHealthz(t *testing.T) {
	app, _ := setupApp(t)
	rec := httptest.NewRecorder()
	app.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 got %d", rec.Code)
	}
	if strings.TrimSpace(rec.Body.String()) != `{"status":"ok"}` {
		t.Fatalf("unexpected body %s", rec.Body.String())
	}
}

func TestProtectedRoutesUnauthorized(t *testing.T) {
	app, _ := setupApp(t)
	routes := []struct{ method, path string }{
		{http.MethodGet, "/companies"},
		{http.MethodGet, "/clients"},
		{http.MethodPost, "/invoices"},
		{http.MethodGet, "/invoices/stats"},
		{http.MethodGet, "/invoices/1/pdf"},
		{http.MethodGet, "/invoices/1/xlsx"},
		{http.MethodPut, "/settings/payment"},
		{http.MethodPost, "/totals"},
	}
	for _, rt := range routes {
		rec := httptest.NewRecorder()
		app.ServeHTTP(rec, httptest.NewRequest(rt.method, rt.path, nil))
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("%s %s: expected 401 got %d", rt.method, rt.path, rec.Code)
		}
	}
}

func TestSignupThenStats(t *testing.T) {
	app, _ := setupApp(t)

	signup := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/signup", strings.NewReader(`{"email":"e2e@example.com","password":"long-enough"}`))
	req.Header.Set("Content-Type", "application/json")
	app.ServeHTTP(signup, req)
	if signup.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", signup.Code, signup.Body.String())
	}
	cookie := signup.Result().Cookies()[0]

	rec := httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/invoices/stats", nil)
	req.AddCookie(cookie)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d", rec.Code)
	}
	var stats map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &stats); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if stats["totalInvoices"] != float64(0) || stats["paidAmount"] != "$0.00" {
		t.Fatalf("unexpected empty stats %v", stats)
	}
}

func TestLayoutFromConfig(t *testing.T) {
	l := layoutFromConfig(config.ExportConfig{PageSize: "Letter", RowHeight: 9})
	if l.PageSize != "Letter" || l.RowHeight != 9 {
		t.Fatalf("overrides not applied: %+v", l)
	}
	def := export.DefaultLayout()
	if got := layoutFromConfig(config.ExportConfig{}); got != def {
		t.Fatalf("empty config should keep defaults")
	}
}

func TestExportAndInspectCommands(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "cli.db")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("DATABASE_DSN", dbPath)
	t.Setenv("MIGRATIONS", "auto")
	t.Setenv("LOG_LEVEL", "error")

	conn, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	user, err := services.SeedDemo(context.Background(), conn, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC))
	if err != nil {
		t.Fatalf("seed: %v", err)
	}
	sqlDB, _ := conn.DB()
	sqlDB.Close()

	out := filepath.Join(dir, "first.xlsx")
	var stdout bytes.Buffer
	root := newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"export", "--user", fmt.Sprint(user.ID), "--invoice", "1", "--format", "xlsx", "--out", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("export: %v (%s)", err, stdout.String())
	}
	if _, err := os.Stat(out); err != nil {
		t.Fatalf("export file missing: %v", err)
	}

	stdout.Reset()
	root = newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"inspect", out})
	if err := root.Execute(); err != nil {
		t.Fatalf("inspect: %v", err)
	}
	if !strings.Contains(stdout.String(), "INV-0001") || !strings.Contains(stdout.String(), "Discovery workshop") {
		t.Fatalf("inspect output missing invoice data:\n%s", stdout.String())
	}

	root = newRootCmd()
	root.SetOut(&stdout)
	root.SetErr(&stdout)
	root.SetArgs([]string{"export", "--user", fmt.Sprint(user.ID), "--invoice", "999"})
	if err := root.Execute(); err == nil {
		t.Fatalf("expected error for unknown invoice")
	}
}
