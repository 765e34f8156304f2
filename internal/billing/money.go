// Package billing holds the invoice arithmetic, status derivation and
// statistics rules. Everything here is a pure function over already-fetched
// data: no persistence, no clock unless the caller passes one.
package billing

import (
	"strings"

	"github.com/shopspring/decimal"
)

// CurrencySymbol prefixes every formatted amount.
const CurrencySymbol = "$"

var hundred = decimal.NewFromInt(100)

// Line is the numeric part of an invoice item.
type Line struct {
	Quantity decimal.Decimal
	Rate     decimal.Decimal
}

// Totals is the result of ComputeTotals. Values are unrounded.
type Totals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	TaxableAmount  decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// ParseAmount parses a decimal string as typed into a form.
// Empty or unparseable input yields zero instead of an error.
func ParseAmount(s string) decimal.Decimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// ParseLine builds a Line from raw quantity and rate strings.
func ParseLine(quantity, rate string) Line {
	return Line{Quantity: ParseAmount(quantity), Rate: ParseAmount(rate)}
}

// ItemAmount returns quantity × rate.
func ItemAmount(quantity, rate decimal.Decimal) decimal.Decimal {
	return quantity.Mul(rate)
}

// Subtotal sums the item amounts.
func Subtotal(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(ItemAmount(l.Quantity, l.Rate))
	}
	return sum
}

// ComputeTotals applies the discount percentage to the subtotal, then the
// tax percentage to what remains. Tax is never computed on the raw subtotal.
func ComputeTotals(lines []Line, discountPct, taxPct decimal.Decimal) Totals {
	return ApplyRates(Subtotal(lines), discountPct, taxPct)
}

// ApplyRates is ComputeTotals for an already-summed subtotal.
func ApplyRates(subtotal, discountPct, taxPct decimal.Decimal) Totals {
	discount := subtotal.Mul(discountPct).Div(hundred)
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(taxPct).Div(hundred)
	return Totals{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// RoundForStorage rounds to cents, half away from zero. Stored subtotal and
// total go through here and nowhere else.
func RoundForStorage(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FormatAmount renders d with exactly two fraction digits.
func FormatAmount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// FormatCurrency renders d as "$1234.56".
func FormatCurrency(d decimal.Decimal) string {
	return CurrencySymbol + FormatAmount(d)
}
