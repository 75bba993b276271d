package model

import "time"

// InvoiceStatus tracks an invoice through its lifecycle.
type InvoiceStatus string

// Invoice status constants.
const (
	InvoiceDraft         InvoiceStatus = "DRAFT"
	InvoiceSent          InvoiceStatus = "SENT"
	InvoicePartiallyPaid InvoiceStatus = "PARTIALLY_PAID"
	InvoiceOverdue       InvoiceStatus = "OVERDUE"
	InvoicePaid          InvoiceStatus = "PAID"
	InvoiceVoided        InvoiceStatus = "VOIDED"
)

// Invoice represents a customer invoice that a bank credit may settle.
type Invoice struct {
	IssuedAt     time.Time
	DueAt        time.Time
	ID           string
	TenantID     string
	Number       string // Human-facing invoice number, e.g. "INV-00123"
	CustomerName string
	Total        int64 // Minor currency units
	Allocated    int64 // Minor units already allocated to payments
	Status       InvoiceStatus
}

// Outstanding returns the unallocated balance in minor units.
func (i *Invoice) Outstanding() int64 {
	return i.Total - i.Allocated
}

// EligibleForMatching reports whether this invoice can still receive a
// payment allocation: an open lifecycle status and a strictly positive
// outstanding balance.
func (i *Invoice) EligibleForMatching() bool {
	switch i.Status {
	case InvoiceSent, InvoicePartiallyPaid, InvoiceOverdue:
		return i.Outstanding() > 0
	default:
		return false
	}
}
