package pdf

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInvoiceRendersPDF(t *testing.T) {
	out, err := New().Invoice(context.Background(), InvoiceData{
		InvoiceNumber: "3958dc9e",
		IssueDate:     "May 1, 2024",
		Status:        "pending",
		BillToName:    "Amy Burns",
		BillToEmail:   "amy@burns.com",
		Amount:        "$12.50",
	})
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestInvoiceHonoursCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New().Invoice(ctx, InvoiceData{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAmountDue(t *testing.T) {
	assert.Equal(t, "$0.00", amountDue(InvoiceData{Status: "paid", Amount: "$5.00"}))
	assert.Equal(t, "$5.00", amountDue(InvoiceData{Status: "pending", Amount: "$5.00"}))
}
