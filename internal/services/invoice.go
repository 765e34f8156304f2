package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/diewo77/invoice-manager/internal/export"
	"github.com/diewo77/invoice-manager/internal/models"
	"github.com/diewo77/invoice-manager/validation"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NumberPrefix starts every generated invoice number.
const NumberPrefix = "INV-"

type ItemInput struct {
	Description string          `json:"description"`
	Quantity    decimal.Decimal `json:"quantity"`
	Rate        decimal.Decimal `json:"rate"`
}

// InvoiceInput is the writable part of an invoice. Dates are YYYY-MM-DD.
// A blank Number is replaced by the next INV-NNNN for the user; a blank
// Status means draft.
type InvoiceInput struct {
	Number    string          `json:"invoice_number"`
	ClientID  uint            `json:"client_id"`
	IssueDate string          `json:"issue_date"`
	DueDate   string          `json:"due_date"`
	Status    string          `json:"status"`
	Discount  decimal.Decimal `json:"discount"`
	Tax       decimal.Decimal `json:"tax"`
	Notes     string          `json:"notes"`
	Items     []ItemInput     `json:"items"`
}

type InvoiceService struct {
	db  *gorm.DB
	now func() time.Time
}

func NewInvoiceService(db *gorm.DB) *InvoiceService {
	return &InvoiceService{db: db, now: time.Now}
}

// WithClock replaces the time source used for effective statuses.
func (s *InvoiceService) WithClock(now func() time.Time) *InvoiceService {
	s.now = now
	return s
}

// Now is the service's notion of the current time.
func (s *InvoiceService) Now() time.Time { return s.now() }

// applyTotals derives item amounts, subtotal and total from items, discount
// and tax. Every write path goes through it. Item amounts are kept exact; the
// total is taken from the stored subtotal so the persisted pair satisfies
// total = (subtotal - discount) + tax on its own.
func applyTotals(inv *models.Invoice) {
	for i := range inv.Items {
		inv.Items[i].Amount = billing.ItemAmount(inv.Items[i].Quantity, inv.Items[i].Rate)
		inv.Items[i].Position = i
	}
	inv.Subtotal = billing.RoundForStorage(billing.Subtotal(inv.Lines()))
	inv.Total = billing.RoundForStorage(billing.ApplyRates(inv.Subtotal, inv.Discount, inv.Tax).Total)
}

// check validates in against the user's data and fills inv. selfID is the
// invoice being updated, zero on create.
func (s *InvoiceService) check(tx *gorm.DB, userID, selfID uint, in InvoiceInput, inv *models.Invoice) error {
	v := make(validation.Violations)

	if in.ClientID == 0 {
		v.Add("client_id", "required")
	} else {
		var count int64
		if err := tx.Model(&models.Client{}).Where("id = ? AND user_id = ?", in.ClientID, userID).Count(&count).Error; err != nil {
			return err
		}
		if count == 0 {
			v.Add("client_id", "not_found")
		}
	}

	issue, issueOK := billing.ParseDate(in.IssueDate)
	due, dueOK := billing.ParseDate(in.DueDate)
	if in.IssueDate != "" && !issueOK {
		v.Add("issue_date", "invalid_date")
	}
	if in.DueDate != "" && !dueOK {
		v.Add("due_date", "invalid_date")
	}
	validation.DateOrder("issue_date", issue, "due_date", due, v)

	status := billing.StatusDraft
	if strings.TrimSpace(in.Status) != "" {
		st, ok := billing.ParseStatus(in.Status)
		if !ok {
			v.Add("status", "invalid_choice")
		}
		status = st
	}

	validation.Percentage("discount", in.Discount, v)
	validation.Percentage("tax", in.Tax, v)

	if len(in.Items) == 0 {
		v.Add("items", "required")
	}
	items := make([]models.InvoiceItem, 0, len(in.Items))
	for i, it := range in.Items {
		field := fmt.Sprintf("items[%d]", i)
		validation.Required(field+".description", it.Description, v)
		validation.NonNegative(field+".quantity", it.Quantity, v)
		validation.NonNegative(field+".rate", it.Rate, v)
		items = append(items, models.InvoiceItem{
			Description: strings.TrimSpace(it.Description),
			Quantity:    it.Quantity,
			Rate:        it.Rate,
		})
	}

	number := strings.TrimSpace(in.Number)
	if number != "" {
		var count int64
		q := tx.Model(&models.Invoice{}).Where("user_id = ? AND number = ?", userID, number)
		if selfID != 0 {
			q = q.Where("id <> ?", selfID)
		}
		if err := q.Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			v.Add("invoice_number", "taken")
		}
	}

	if err := invalid(v); err != nil {
		return err
	}

	if number == "" && inv.Number == "" {
		n, err := nextNumber(tx, userID)
		if err != nil {
			return err
		}
		number = n
	}
	if number != "" {
		inv.Number = number
	}
	inv.ClientID = in.ClientID
	inv.IssueDate = issue
	inv.DueDate = due
	inv.Status = status
	inv.Discount = in.Discount
	inv.Tax = in.Tax
	inv.Notes = in.Notes
	inv.Items = items
	applyTotals(inv)
	return nil
}

// nextNumber returns INV-NNNN one past the user's invoice count, skipping
// numbers already in use.
func nextNumber(tx *gorm.DB, userID uint) (string, error) {
	var count int64
	if err := tx.Model(&models.Invoice{}).Where("user_id = ?", userID).Count(&count).Error; err != nil {
		return "", err
	}
	for n := count + 1; ; n++ {
		candidate := fmt.Sprintf("%s%04d", NumberPrefix, n)
		var taken int64
		if err := tx.Model(&models.Invoice{}).Where("user_id = ? AND number = ?", userID, candidate).Count(&taken).Error; err != nil {
			return "", err
		}
		if taken == 0 {
			return candidate, nil
		}
	}
}

// Create validates in, computes totals and stores the invoice with its items.
func (s *InvoiceService) Create(ctx context.Context, userID uint, in InvoiceInput) (*models.Invoice, error) {
	inv := models.Invoice{UserID: userID}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.check(tx, userID, 0, in, &inv); err != nil {
			return err
		}
		return tx.Create(&inv).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, inv.ID)
}

// Update replaces every writable field and the whole item list.
func (s *InvoiceService) Update(ctx context.Context, userID, id uint, in InvoiceInput) (*models.Invoice, error) {
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
			_, err = found(&inv, err)
			return err
		}
		if err := s.check(tx, userID, id, in, &inv); err != nil {
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		items := inv.Items
		if err := tx.Omit(clause.Associations).Save(&inv).Error; err != nil {
			return err
		}
		for i := range items {
			items[i].InvoiceID = id
		}
		return tx.Create(&items).Error
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, userID, id)
}

// UpdateStatus changes the persisted status only; totals are untouched.
func (s *InvoiceService) UpdateStatus(ctx context.Context, userID, id uint, status string) (*models.Invoice, error) {
	st, ok := billing.ParseStatus(status)
	if !ok {
		return nil, invalid(validation.Violations{"status": "invalid_choice"})
	}
	res := s.db.WithContext(ctx).Model(&models.Invoice{}).
		Where("id = ? AND user_id = ?", id, userID).
		Update("status", st)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	return s.Get(ctx, userID, id)
}

// Delete removes the items, then the invoice, atomically.
func (s *InvoiceService) Delete(ctx context.Context, userID, id uint) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var inv models.Invoice
		if err := tx.Select("id").Where("id = ? AND user_id = ?", id, userID).First(&inv).Error; err != nil {
			_, err = found(&inv, err)
			return err
		}
		if err := tx.Where("invoice_id = ?", id).Delete(&models.InvoiceItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Invoice{}, id).Error
	})
}

func withDetails(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("position") }).
		Preload("Client", func(db *gorm.DB) *gorm.DB { return db.Unscoped() })
}

func (s *InvoiceService) Get(ctx context.Context, userID, id uint) (*models.Invoice, error) {
	var inv models.Invoice
	err := withDetails(s.db.WithContext(ctx)).Where("id = ? AND user_id = ?", id, userID).First(&inv).Error
	return found(&inv, err)
}

// List returns the user's invoices, newest first. A non-empty status filters
// on the effective status, so "overdue" includes pending invoices past due.
func (s *InvoiceService) List(ctx context.Context, userID uint, status string) ([]models.Invoice, error) {
	var want billing.Status
	if strings.TrimSpace(status) != "" {
		st, ok := billing.ParseStatus(status)
		if !ok {
			return nil, invalid(validation.Violations{"status": "invalid_choice"})
		}
		want = st
	}

	q := s.db.WithContext(ctx).Preload("Client", func(db *gorm.DB) *gorm.DB { return db.Unscoped() }).
		Where("user_id = ?", userID)
	switch want {
	case "":
	case billing.StatusPending, billing.StatusOverdue:
		q = q.Where("status IN ?", []billing.Status{billing.StatusPending, billing.StatusOverdue})
	default:
		q = q.Where("status = ?", want)
	}

	var invoices []models.Invoice
	if err := q.Order("issue_date DESC, id DESC").Find(&invoices).Error; err != nil {
		return nil, err
	}
	if want != billing.StatusPending && want != billing.StatusOverdue {
		return invoices, nil
	}
	now := s.now()
	out := invoices[:0]
	for _, inv := range invoices {
		if inv.EffectiveStatus(now) == want {
			out = append(out, inv)
		}
	}
	return out, nil
}

// FetchInvoiceWithDetails assembles the export aggregate for one invoice.
func (s *InvoiceService) FetchInvoiceWithDetails(ctx context.Context, userID, id uint) (*export.InvoiceDetails, error) {
	inv, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	return Details(inv), nil
}

// Details maps a loaded invoice onto the export aggregate.
func Details(inv *models.Invoice) *export.InvoiceDetails {
	d := &export.InvoiceDetails{
		InvoiceNumber: inv.Number,
		IssueDate:     inv.IssueDate,
		DueDate:       inv.DueDate,
		Status:        inv.Status,
		Subtotal:      inv.Subtotal,
		Discount:      inv.Discount,
		Tax:           inv.Tax,
		Total:         inv.Total,
		Items:         make([]export.Item, 0, len(inv.Items)),
	}
	if inv.Client != nil {
		d.Client = export.ClientInfo{
			Name:    inv.Client.Name,
			Email:   inv.Client.Email,
			Phone:   inv.Client.Phone,
			Address: inv.Client.FullAddress(),
		}
	}
	for _, it := range inv.Items {
		d.Items = append(d.Items, export.Item{
			Description: it.Description,
			Quantity:    it.Quantity,
			Rate:        it.Rate,
			Amount:      it.Amount,
		})
	}
	return d
}

// FetchUserInvoices returns the fields the statistics aggregator needs.
func (s *InvoiceService) FetchUserInvoices(ctx context.Context, userID uint) ([]billing.StatInput, error) {
	var rows []models.Invoice
	err := s.db.WithContext(ctx).Select("status", "total", "due_date").
		Where("user_id = ?", userID).Find(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make([]billing.StatInput, 0, len(rows))
	for _, r := range rows {
		out = append(out, billing.StatInput{Status: r.Status, Total: r.Total, DueDate: r.DueDate})
	}
	return out, nil
}

func (s *InvoiceService) Stats(ctx context.Context, userID uint) (billing.Stats, error) {
	inputs, err := s.FetchUserInvoices(ctx, userID)
	if err != nil {
		return billing.Stats{}, err
	}
	return billing.AggregateStats(inputs, s.now()), nil
}
