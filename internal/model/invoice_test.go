package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInvoiceOutstanding(t *testing.T) {
	invoice := Invoice{Total: 125000, Allocated: 50000}
	assert.Equal(t, int64(75000), invoice.Outstanding())
}

func TestInvoiceEligibleForMatching(t *testing.T) {
	tests := []struct {
		name     string
		status   InvoiceStatus
		total    int64
		eligible bool
	}{
		{name: "sent with balance", status: InvoiceSent, total: 125000, eligible: true},
		{name: "partially paid with balance", status: InvoicePartiallyPaid, total: 125000, eligible: true},
		{name: "overdue with balance", status: InvoiceOverdue, total: 125000, eligible: true},
		{name: "draft never matches", status: InvoiceDraft, total: 125000, eligible: false},
		{name: "paid never matches", status: InvoicePaid, total: 125000, eligible: false},
		{name: "voided never matches", status: InvoiceVoided, total: 125000, eligible: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invoice := Invoice{Status: tt.status, Total: tt.total, Allocated: 50000}
			assert.Equal(t, tt.eligible, invoice.EligibleForMatching())
		})
	}

	t.Run("fully allocated is not eligible", func(t *testing.T) {
		invoice := Invoice{Status: InvoiceSent, Total: 125000, Allocated: 125000}
		assert.False(t, invoice.EligibleForMatching())
	})

	t.Run("over-allocated is not eligible", func(t *testing.T) {
		invoice := Invoice{Status: InvoiceOverdue, Total: 125000, Allocated: 130000}
		assert.False(t, invoice.EligibleForMatching())
	})
}
