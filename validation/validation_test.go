package validation

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func TestRequired(t *testing.T) {
	v := make(Violations)
	Required("name", "  ", v)
	Required("ok", "x", v)
	if v["name"] != "required" {
		t.Fatalf("expected required violation, got %v", v)
	}
	if _, ok := v["ok"]; ok {
		t.Fatalf("unexpected violation for ok")
	}
}

func TestAddKeepsFirstCode(t *testing.T) {
	v := make(Violations)
	v.Add("f", "first")
	v.Add("f", "second")
	if v["f"] != "first" {
		t.Fatalf("got %q", v["f"])
	}
}

func TestPercentage(t *testing.T) {
	for _, tt := range []struct {
		val string
		ok  bool
	}{{"0", true}, {"100", true}, {"12.5", true}, {"-1", false}, {"100.01", false}} {
		v := make(Violations)
		Percentage("tax", decimal.RequireFromString(tt.val), v)
		if v.Empty() != tt.ok {
			t.Errorf("Percentage(%s) violations=%v, want ok=%v", tt.val, v, tt.ok)
		}
	}
}

func TestNonNegative(t *testing.T) {
	v := make(Violations)
	NonNegative("qty", decimal.NewFromInt(-1), v)
	NonNegative("rate", decimal.Zero, v)
	if v["qty"] != "must_not_be_negative" || len(v) != 1 {
		t.Fatalf("unexpected violations %v", v)
	}
}

func TestDateOrder(t *testing.T) {
	issue := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)

	v := make(Violations)
	DateOrder("issue_date", issue, "due_date", issue.AddDate(0, 0, -1), v)
	if v["due_date"] != "before_issue_date" {
		t.Fatalf("expected before_issue_date, got %v", v)
	}

	v = make(Violations)
	DateOrder("issue_date", issue, "due_date", issue, v)
	if !v.Empty() {
		t.Fatalf("same-day due date should pass, got %v", v)
	}

	v = make(Violations)
	DateOrder("issue_date", time.Time{}, "due_date", time.Time{}, v)
	if v["issue_date"] != "required" || v["due_date"] != "required" {
		t.Fatalf("expected required codes, got %v", v)
	}
}

func TestEmailAndOneOf(t *testing.T) {
	v := make(Violations)
	Email("email", "not-an-email", v)
	Email("blank", "", v)
	OneOf("status", "void", []string{"draft", "paid"}, v)
	if v["email"] != "invalid_email" || v["status"] != "invalid_choice" {
		t.Fatalf("unexpected violations %v", v)
	}
	if _, ok := v["blank"]; ok {
		t.Fatalf("blank email should be allowed")
	}
}
