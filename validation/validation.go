// Package validation collects field-level input problems as codes the
// client can translate.
package validation

import (
	"net/mail"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type Violations map[string]string

func (v Violations) Empty() bool { return len(v) == 0 }

// Add records code for field unless the field already has a violation.
func (v Violations) Add(field, code string) {
	if _, exists := v[field]; !exists {
		v[field] = code
	}
}

// Basic validators
func Required(field, value string, v Violations) {
	if strings.TrimSpace(value) == "" {
		v.Add(field, "required")
	}
}

func Email(field, value string, v Violations) {
	if value == "" {
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		v.Add(field, "invalid_email")
	}
}

func NonNegative(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() {
		v.Add(field, "must_not_be_negative")
	}
}

var hundred = decimal.NewFromInt(100)

// Percentage accepts 0 through 100 inclusive.
func Percentage(field string, val decimal.Decimal, v Violations) {
	if val.IsNegative() || val.GreaterThan(hundred) {
		v.Add(field, "out_of_range")
	}
}

// DateOrder flags due when it falls before issue. Zero dates are reported
// as required instead.
func DateOrder(issueField string, issue time.Time, dueField string, due time.Time, v Violations) {
	if issue.IsZero() {
		v.Add(issueField, "required")
	}
	if due.IsZero() {
		v.Add(dueField, "required")
	}
	if !issue.IsZero() && !due.IsZero() && due.Before(issue) {
		v.Add(dueField, "before_issue_date")
	}
}

func OneOf[T comparable](field string, val T, allowed []T, v Violations) {
	for _, a := range allowed {
		if a == val {
			return
		}
	}
	v.Add(field, "invalid_choice")
}
