package models

import (
	"time"

	"github.com/diewo77/invoice-manager/internal/billing"
	"github.com/shopspring/decimal"
)

// Invoice represents a billing invoice. Subtotal and Total are stored, not
// derived on read; every write path recomputes them from Items, Discount
// and Tax through services.InvoiceService.
type Invoice struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// UserID is the owner of this invoice (for multi-tenant isolation)
	UserID uint `gorm:"index;not null;uniqueIndex:idx_invoice_user_number,priority:1" json:"user_id"`
	User   User `gorm:"foreignKey:UserID" json:"-"`

	Number string `gorm:"size:50;not null;uniqueIndex:idx_invoice_user_number,priority:2" json:"invoice_number"`

	ClientID uint    `gorm:"index;not null" json:"client_id"`
	Client   *Client `gorm:"foreignKey:ClientID" json:"client,omitempty"`

	IssueDate time.Time `gorm:"not null" json:"issue_date"`
	DueDate   time.Time `gorm:"not null" json:"due_date"`

	Status billing.Status `gorm:"size:20;not null;default:'draft'" json:"status"`

	Subtotal decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"subtotal"`
	Discount decimal.Decimal `gorm:"type:numeric(7,3);not null;default:0" json:"discount"`
	Tax      decimal.Decimal `gorm:"type:numeric(7,3);not null;default:0" json:"tax"`
	Total    decimal.Decimal `gorm:"type:numeric(14,2);not null;default:0" json:"total"`

	Notes string `gorm:"type:text" json:"notes,omitempty"`

	Items []InvoiceItem `gorm:"foreignKey:InvoiceID" json:"items,omitempty"`
}

// GetUserID implements the Ownable interface.
func (i *Invoice) GetUserID() uint {
	return i.UserID
}

// EffectiveStatus is the status shown to users at time now.
func (i *Invoice) EffectiveStatus(now time.Time) billing.Status {
	return billing.EffectiveStatus(i.Status, i.DueDate, now)
}

// Lines returns the numeric part of the items, in order.
func (i *Invoice) Lines() []billing.Line {
	lines := make([]billing.Line, 0, len(i.Items))
	for _, it := range i.Items {
		lines = append(lines, billing.Line{Quantity: it.Quantity, Rate: it.Rate})
	}
	return lines
}

// InvoiceItem represents a line item on an invoice. Items live and die with
// their invoice.
type InvoiceItem struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	InvoiceID uint     `gorm:"index;not null" json:"invoice_id"`
	Invoice   *Invoice `gorm:"foreignKey:InvoiceID" json:"-"`

	Description string          `gorm:"size:500;not null" json:"description"`
	Quantity    decimal.Decimal `gorm:"type:numeric(18,6);not null;default:0" json:"quantity"`
	Rate        decimal.Decimal `gorm:"type:numeric(18,6);not null;default:0" json:"rate"`
	Amount      decimal.Decimal `gorm:"type:numeric(30,12);not null;default:0" json:"amount"`

	// Position for ordering
	Position int `gorm:"default:0" json:"position"`
}
