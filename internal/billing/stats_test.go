package billing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAggregateStats(t *testing.T) {
	now := day("2024-06-01")
	invoices := []StatInput{
		{Status: StatusPaid, Total: d("100"), DueDate: day("2024-01-01")},
		{Status: StatusPending, Total: d("50.25"), DueDate: day("2024-01-01")},
		{Status: StatusPending, Total: d("20"), DueDate: day("2024-12-01")},
		{Status: StatusOverdue, Total: d("7.5"), DueDate: day("2025-01-01")},
		{Status: StatusDraft, Total: d("3"), DueDate: day("2023-01-01")},
		{Status: StatusCancelled, Total: d("1.11"), DueDate: day("2023-01-01")},
	}

	got := AggregateStats(invoices, now)

	assert.Equal(t, 6, got.TotalInvoices)
	assert.Equal(t, "$100.00", got.PaidAmount)
	assert.Equal(t, "$57.75", got.OverdueAmount)
	// draft and cancelled land in pending
	assert.Equal(t, "$24.11", got.PendingAmount)

	sum := d("0")
	for _, inv := range invoices {
		sum = sum.Add(inv.Total)
	}
	require.True(t, got.Pending.Add(got.Paid).Add(got.Overdue).Equal(sum))
}

func TestAggregateStats_Empty(t *testing.T) {
	got := AggregateStats(nil, day("2024-06-01"))
	assert.Equal(t, 0, got.TotalInvoices)
	assert.Equal(t, "$0.00", got.PendingAmount)
	assert.Equal(t, "$0.00", got.PaidAmount)
	assert.Equal(t, "$0.00", got.OverdueAmount)
}
