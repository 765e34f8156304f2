// Package export turns an invoice with its client and items into
// downloadable documents: a fixed-layout PDF and a single-sheet workbook.
// Both renderers are pure: same input, same bytes, input never modified.
package export

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/shopspring/decimal"
)

var (
	// ErrMissingNumber is returned when the invoice has no number to print.
	ErrMissingNumber = errors.New("export: invoice number is empty")
	// ErrInvalidItem is returned when a line item cannot be rendered.
	ErrInvalidItem = errors.New("export: invalid line item")
)

const (
	PDFContentType  = "application/pdf"
	XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// ClientInfo is the client block printed on the document.
type ClientInfo struct {
	Name    string
	Email   string
	Phone   string
	Address string
}

// Item is one rendered line.
type Item struct {
	Description string
	Quantity    decimal.Decimal
	Rate        decimal.Decimal
	Amount      decimal.Decimal
}

// InvoiceDetails is the invoice-with-details aggregate consumed by exporters.
type InvoiceDetails struct {
	InvoiceNumber string
	IssueDate     time.Time
	DueDate       time.Time
	Status        billing.Status
	Client        ClientInfo
	Items         []Item
	Subtotal      decimal.Decimal
	Discount      decimal.Decimal // percentage
	Tax           decimal.Decimal // percentage
	Total         decimal.Decimal
}

// Validate reports why d cannot be exported, if it cannot.
func Validate(d *InvoiceDetails) error {
	if d == nil || strings.TrimSpace(d.InvoiceNumber) == "" {
		return ErrMissingNumber
	}
	for i, it := range d.Items {
		if strings.TrimSpace(it.Description) == "" {
			return fmt.Errorf("%w: item %d has no description", ErrInvalidItem, i+1)
		}
	}
	return nil
}

// PDFFilename is the suggested download name for the PDF export.
func PDFFilename(number string) string {
	return "invoice-" + number + ".pdf"
}

// XLSXFilename is the suggested download name for the workbook export.
func XLSXFilename(number string) string {
	return "invoice-" + number + ".xlsx"
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return billing.Day(t).Format(billing.DateLayout)
}
