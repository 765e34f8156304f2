package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/diewo77/invoice-manager/auth"
	"github.com/diewo77/invoice-manager/internal/db"
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/internal/services"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var fixedNow = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// unique in-memory DB per test name to avoid leakage via shared cache
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	conn, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	if err := db.Migrate(conn); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return conn
}

// newTestServer mounts the handlers the way the binary does, behind the
// session middleware.
func newTestServer(t *testing.T, conn *gorm.DB) http.Handler {
	t.Helper()
	protect := func(h http.HandlerFunc) http.Handler { return auth.RequireAuth(h) }

	ah := NewAuthHandler(services.NewUserService(conn))
	ch := NewClientHandler(services.NewClientService(conn))
	coh := NewCompanyHandler(services.NewCompanyService(conn))
	ih := NewInvoiceHandler(services.NewInvoiceService(conn).WithClock(func() time.Time { return fixedNow }), export.DefaultLayout())
	ph := NewPaymentSettingsHandler(services.NewPaymentSettingsService(conn))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /signup", ah.Signup)
	mux.HandleFunc("POST /login", ah.Login)
	mux.HandleFunc("POST /logout", ah.Logout)
	mux.Handle("GET /companies", protect(coh.List))
	mux.Handle("POST /companies", protect(coh.Create))
	mux.Handle("PUT /companies/{id}", protect(coh.Update))
	mux.Handle("GET /clients", protect(ch.List))
	mux.Handle("POST /clients", protect(ch.Create))
	mux.Handle("DELETE /clients/{id}", protect(ch.Delete))
	mux.Handle("GET /invoices", protect(ih.List))
	mux.Handle("POST /invoices", protect(ih.Create))
	mux.Handle("GET /invoices/stats", protect(ih.Stats))
	mux.Handle("GET /invoices/{id}", protect(ih.View))
	mux.Handle("PUT /invoices/{id}", protect(ih.Update))
	mux.Handle("DELETE /invoices/{id}", protect(ih.Delete))
	mux.Handle("POST /invoices/{id}/status", protect(ih.UpdateStatus))
	mux.Handle("GET /invoices/{id}/pdf", protect(ih.PDF))
	mux.Handle("GET /invoices/{id}/xlsx", protect(ih.XLSX))
	mux.Handle("GET /settings/payment", protect(ph.Get))
	mux.Handle("PUT /settings/payment", protect(ph.Save))
	mux.Handle("POST /totals", protect(ih.Totals))
	return auth.Middleware(mux)
}

func sessionCookie(t *testing.T, conn *gorm.DB, email string) *http.Cookie {
	t.Helper()
	user := models.User{Email: email, Password: "hash"}
	if err := conn.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	w := httptest.NewRecorder()
	auth.CreateSession(w, user.ID)
	return w.Result().Cookies()[0]
}

func do(t *testing.T, h http.Handler, cookie *http.Cookie, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if cookie != nil {
		req.AddCookie(cookie)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var m map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &m); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return m
}

func createClient(t *testing.T, h http.Handler, cookie *http.Cookie) uint {
	t.Helper()
	rec := do(t, h, cookie, http.MethodPost, "/clients", `{"name":"Acme","email":"ap@acme.example","city":"Paris"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create client: %d %s", rec.Code, rec.Body.String())
	}
	return uint(decode(t, rec)["id"].(float64))
}

func invoiceBody(clientID uint) string {
	return fmt.Sprintf(`{"client_id":%d,"issue_date":"2024-01-01","due_date":"2024-01-31","status":"pending",
		"discount":"10","tax":5,
		"items":[{"description":"Design","quantity":2,"rate":"50"},{"description":"Development","quantity":"1","rate":25}]}`, clientID)
}

func TestRequiresSession(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	for _, path := range []string{"/invoices", "/clients", "/invoices/stats", "/settings/payment"} {
		rec := do(t, h, nil, http.MethodGet, path, "")
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("GET %s without session: %d, want 401", path, rec.Code)
		}
	}
}

func TestSignupLoginLogout(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)

	rec := do(t, h, nil, http.MethodPost, "/signup", `{"email":"new@example.com","password":"long-enough","name":"New"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("signup: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "long-enough") || strings.Contains(rec.Body.String(), `"password"`) {
		t.Fatalf("signup response leaks password: %s", rec.Body.String())
	}
	if len(rec.Result().Cookies()) == 0 {
		t.Fatalf("signup did not set a session")
	}

	rec = do(t, h, nil, http.MethodPost, "/signup", `{"email":"new@example.com","password":"long-enough"}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("duplicate signup: %d", rec.Code)
	}

	// Form login, as posted by a plain HTML form.
	form := url.Values{"email": {"new@example.com"}, "password": {"long-enough"}}
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	login := httptest.NewRecorder()
	h.ServeHTTP(login, req)
	if login.Code != http.StatusOK {
		t.Fatalf("login: %d %s", login.Code, login.Body.String())
	}
	cookie := login.Result().Cookies()[0]
	if rec := do(t, h, cookie, http.MethodGet, "/invoices", ""); rec.Code != http.StatusOK {
		t.Fatalf("list with session: %d", rec.Code)
	}

	rec = do(t, h, nil, http.MethodPost, "/login", `{"email":"new@example.com","password":"nope"}`)
	if rec.Code != http.StatusUnauthorized || decode(t, rec)["error"] != "invalid_credentials" {
		t.Fatalf("bad login: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, cookie, http.MethodPost, "/logout", "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("logout: %d", rec.Code)
	}
	if c := rec.Result().Cookies(); len(c) == 0 || c[0].Value != "" {
		t.Fatalf("logout did not clear the session cookie")
	}
}

func TestInvoiceJSONFlow(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	cookie := sessionCookie(t, conn, "owner@example.com")
	clientID := createClient(t, h, cookie)

	rec := do(t, h, cookie, http.MethodPost, "/invoices", invoiceBody(clientID))
	if rec.Code != http.StatusCreated {
		t.Fatalf("create invoice: %d %s", rec.Code, rec.Body.String())
	}
	inv := decode(t, rec)
	if inv["subtotal"] != "125" || inv["total"] != "118.13" || inv["total_display"] != "$118.13" {
		t.Fatalf("unexpected totals: %v / %v / %v", inv["subtotal"], inv["total"], inv["total_display"])
	}
	if inv["status"] != "pending" || inv["effective_status"] != "overdue" {
		t.Fatalf("status %v effective %v", inv["status"], inv["effective_status"])
	}
	id := uint(inv["id"].(float64))
	path := fmt.Sprintf("/invoices/%d", id)

	rec = do(t, h, cookie, http.MethodGet, "/invoices/stats", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("stats: %d", rec.Code)
	}
	stats := decode(t, rec)
	if stats["totalInvoices"] != float64(1) || stats["overdueAmount"] != "$118.13" || stats["pendingAmount"] != "$0.00" {
		t.Fatalf("unexpected stats %v", stats)
	}

	rec = do(t, h, cookie, http.MethodGet, "/invoices?status=overdue", "")
	var list []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &list); err != nil || len(list) != 1 {
		t.Fatalf("overdue list: %v %s", err, rec.Body.String())
	}

	rec = do(t, h, cookie, http.MethodPost, path+"/status", `{"status":"paid"}`)
	if rec.Code != http.StatusOK || decode(t, rec)["effective_status"] != "paid" {
		t.Fatalf("status update: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, cookie, http.MethodGet, path+"/pdf", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("pdf: %d %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != export.PDFContentType {
		t.Fatalf("pdf content type %q", ct)
	}
	number := inv["invoice_number"].(string)
	if cd := rec.Header().Get("Content-Disposition"); !strings.Contains(cd, "invoice-"+number+".pdf") {
		t.Fatalf("pdf disposition %q", cd)
	}
	if !bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")) {
		t.Fatalf("body is not a PDF")
	}

	rec = do(t, h, cookie, http.MethodGet, path+"/xlsx", "")
	if rec.Code != http.StatusOK || rec.Header().Get("Content-Type") != export.XLSXContentType {
		t.Fatalf("xlsx: %d %q", rec.Code, rec.Header().Get("Content-Type"))
	}
	rows, err := export.ReadSpreadsheet(bytes.NewReader(rec.Body.Bytes()))
	if err != nil {
		t.Fatalf("read xlsx: %v", err)
	}
	if rows[0][0] != "Invoice Number" || rows[0][1] != number {
		t.Fatalf("unexpected first row %v", rows[0])
	}

	rec = do(t, h, cookie, http.MethodDelete, fmt.Sprintf("/clients/%d", clientID), "")
	if rec.Code != http.StatusConflict {
		t.Fatalf("delete referenced client: %d", rec.Code)
	}

	rec = do(t, h, cookie, http.MethodDelete, path, "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("delete invoice: %d", rec.Code)
	}
	rec = do(t, h, cookie, http.MethodGet, path, "")
	if rec.Code != http.StatusNotFound || decode(t, rec)["error"] != "not_found" {
		t.Fatalf("get deleted invoice: %d %s", rec.Code, rec.Body.String())
	}
}

func TestInvoiceUpdateRecomputesTotals(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	cookie := sessionCookie(t, conn, "owner@example.com")
	clientID := createClient(t, h, cookie)

	rec := do(t, h, cookie, http.MethodPost, "/invoices", invoiceBody(clientID))
	id := uint(decode(t, rec)["id"].(float64))

	body := fmt.Sprintf(`{"client_id":%d,"issue_date":"2024-01-01","due_date":"2024-12-31","tax":"20",
		"items":[{"description":"Audit","quantity":3,"rate":"33.33"}]}`, clientID)
	rec = do(t, h, cookie, http.MethodPut, fmt.Sprintf("/invoices/%d", id), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("update: %d %s", rec.Code, rec.Body.String())
	}
	inv := decode(t, rec)
	if inv["subtotal"] != "99.99" || inv["total"] != "119.99" || inv["status"] != "draft" {
		t.Fatalf("unexpected invoice after update: %v", inv)
	}
	if items := inv["items"].([]any); len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
}

func TestInvoiceValidationErrors(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	cookie := sessionCookie(t, conn, "owner@example.com")
	clientID := createClient(t, h, cookie)

	body := fmt.Sprintf(`{"client_id":%d,"issue_date":"2024-02-01","due_date":"2024-01-01",
		"items":[{"description":"","quantity":1,"rate":1}]}`, clientID)
	rec := do(t, h, cookie, http.MethodPost, "/invoices", body)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", rec.Code)
	}
	resp := decode(t, rec)
	details := resp["details"].(map[string]any)
	if resp["error"] != "validation_failed" || details["due_date"] != "before_issue_date" || details["items[0].description"] != "required" {
		t.Fatalf("unexpected error body %v", resp)
	}

	rec = do(t, h, cookie, http.MethodPost, "/invoices", `{"client_id":`)
	if rec.Code != http.StatusBadRequest || decode(t, rec)["error"] != "invalid_json" {
		t.Fatalf("malformed body: %d %s", rec.Code, rec.Body.String())
	}

	rec = do(t, h, cookie, http.MethodGet, "/invoices/abc", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("non-numeric id: %d", rec.Code)
	}
}

func TestInvoiceIsolationBetweenUsers(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	owner := sessionCookie(t, conn, "owner@example.com")
	intruder := sessionCookie(t, conn, "intruder@example.com")
	clientID := createClient(t, h, owner)

	rec := do(t, h, owner, http.MethodPost, "/invoices", invoiceBody(clientID))
	path := fmt.Sprintf("/invoices/%d", uint(decode(t, rec)["id"].(float64)))

	for _, p := range []string{path, path + "/pdf", path + "/xlsx"} {
		if rec := do(t, h, intruder, http.MethodGet, p, ""); rec.Code != http.StatusNotFound {
			t.Errorf("GET %s as other user: %d, want 404", p, rec.Code)
		}
	}
	if rec := do(t, h, intruder, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("DELETE as other user: %d, want 404", rec.Code)
	}
	// Using someone else's client is a validation failure, not a leak.
	rec = do(t, h, intruder, http.MethodPost, "/invoices", invoiceBody(clientID))
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("create with foreign client: %d", rec.Code)
	}
}

func TestTotalsPreview(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	cookie := sessionCookie(t, conn, "owner@example.com")

	body := `{"items":[{"quantity":"2","rate":50},{"quantity":1,"rate":"25"},{"quantity":"abc","rate":"10"}],"discount":"10","tax":"5"}`
	rec := do(t, h, cookie, http.MethodPost, "/totals", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("totals: %d %s", rec.Code, rec.Body.String())
	}
	resp := decode(t, rec)
	if resp["subtotal"] != "125" || resp["discount_amount"] != "12.5" || resp["tax_amount"] != "5.625" || resp["total"] != "118.125" {
		t.Fatalf("unexpected totals %v", resp)
	}
	if display := resp["display"].(map[string]any); display["total"] != "$118.13" {
		t.Fatalf("unexpected display %v", display)
	}
}

func TestCompanyAndPaymentSettings(t *testing.T) {
	conn := setupTestDB(t)
	h := newTestServer(t, conn)
	cookie := sessionCookie(t, conn, "owner@example.com")

	rec := do(t, h, cookie, http.MethodPost, "/companies", `{"name":"Studio","tax_id":"FR1"}`)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create company: %d %s", rec.Code, rec.Body.String())
	}
	id := uint(decode(t, rec)["id"].(float64))
	rec = do(t, h, cookie, http.MethodPut, fmt.Sprintf("/companies/%d", id), `{"name":""}`)
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("blank company name: %d", rec.Code)
	}

	if rec := do(t, h, cookie, http.MethodGet, "/settings/payment", ""); rec.Code != http.StatusNotFound {
		t.Fatalf("settings before save: %d", rec.Code)
	}
	rec = do(t, h, cookie, http.MethodPut, "/settings/payment", `{"provider":"stripe","public_key":"pk","secret_key":"sk_live","enabled":true}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("save settings: %d %s", rec.Code, rec.Body.String())
	}
	if strings.Contains(rec.Body.String(), "sk_live") {
		t.Fatalf("secret key leaked: %s", rec.Body.String())
	}
	if decode(t, rec)["has_secret"] != true {
		t.Fatalf("expected has_secret")
	}
}
