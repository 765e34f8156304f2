package billing

import (
	"strings"
	"time"
)

// Status is the persisted lifecycle state of an invoice.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPending   Status = "pending"
	StatusPaid      Status = "paid"
	StatusOverdue   Status = "overdue"
	StatusCancelled Status = "cancelled"
)

// Statuses lists every accepted status in display order.
var Statuses = []Status{StatusDraft, StatusPending, StatusPaid, StatusOverdue, StatusCancelled}

// ParseStatus normalises s and reports whether it is a known status.
func ParseStatus(s string) (Status, bool) {
	st := Status(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Statuses {
		if st == known {
			return st, true
		}
	}
	return st, false
}

// DateLayout is the calendar date format used across the API and exports.
const DateLayout = "2006-01-02"

// EffectiveStatus projects the persisted status for display and statistics.
// Only pending changes: it reads as overdue once now falls on a calendar day
// after the due date. A zero due date is never overdue. The persisted value
// is left alone.
func EffectiveStatus(status Status, due, now time.Time) Status {
	if status != StatusPending {
		return status
	}
	if due.IsZero() {
		return status
	}
	if pastDue(due, now) {
		return StatusOverdue
	}
	return status
}

// EffectiveStatusOf is EffectiveStatus for a due date still in string form.
// Unparseable dates are treated as not overdue.
func EffectiveStatusOf(status Status, due string, now time.Time) Status {
	d, ok := ParseDate(due)
	if !ok {
		return status
	}
	return EffectiveStatus(status, d, now)
}

// ParseDate accepts YYYY-MM-DD or RFC 3339 and returns the written calendar
// day as midnight UTC, the form invoice dates are stored in.
func ParseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	if t, err := time.Parse(DateLayout, s); err == nil {
		return t, true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		y, m, d := t.Date()
		return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true
	}
	return time.Time{}, false
}

// Day returns the calendar day of a stored date. Stored dates are midnight
// UTC but drivers may hand them back in the local zone, so the day is read
// in UTC.
func Day(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// pastDue compares the due day with the calendar day of now in now's own
// zone.
func pastDue(due, now time.Time) bool {
	ny, nm, nd := now.Date()
	return time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC).After(Day(due))
}
