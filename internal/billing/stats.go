package billing

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatInput is the slice of an invoice the aggregator looks at.
type StatInput struct {
	Status  Status
	Total   decimal.Decimal
	DueDate time.Time
}

// Stats summarises a user's invoices by effective status.
type Stats struct {
	TotalInvoices int    `json:"totalInvoices"`
	PendingAmount string `json:"pendingAmount"`
	PaidAmount    string `json:"paidAmount"`
	OverdueAmount string `json:"overdueAmount"`

	Pending decimal.Decimal `json:"-"`
	Paid    decimal.Decimal `json:"-"`
	Overdue decimal.Decimal `json:"-"`
}

// AggregateStats buckets invoice totals into paid, overdue and pending.
// Paid is decided on the persisted status; overdue on EffectiveStatus.
// Everything else, draft and cancelled included, counts as pending.
func AggregateStats(invoices []StatInput, now time.Time) Stats {
	pending, paid, overdue := decimal.Zero, decimal.Zero, decimal.Zero
	for _, inv := range invoices {
		switch {
		case inv.Status == StatusPaid:
			paid = paid.Add(inv.Total)
		case EffectiveStatus(inv.Status, inv.DueDate, now) == StatusOverdue:
			overdue = overdue.Add(inv.Total)
		default:
			pending = pending.Add(inv.Total)
		}
	}
	return Stats{
		TotalInvoices: len(invoices),
		PendingAmount: FormatCurrency(pending),
		PaidAmount:    FormatCurrency(paid),
		OverdueAmount: FormatCurrency(overdue),
		Pending:       pending,
		Paid:          paid,
		Overdue:       overdue,
	}
}
