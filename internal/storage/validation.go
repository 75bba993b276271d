package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Validation errors.
var (
	ErrNilContext         = errors.New("context cannot be nil")
	ErrEmptyString        = errors.New("string parameter cannot be empty")
	ErrNilParameter       = errors.New("parameter cannot be nil")
	ErrEmptySlice         = errors.New("slice cannot be empty")
	ErrInvalidTransaction = errors.New("invalid transaction")
	ErrInvalidInvoice     = errors.New("invalid invoice")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateTransactions validates a slice of transactions.
func validateTransactions(transactions []model.Transaction) error {
	if transactions == nil {
		return fmt.Errorf("%w: transactions", ErrNilParameter)
	}
	if len(transactions) == 0 {
		return fmt.Errorf("%w: transactions", ErrEmptySlice)
	}

	for i, txn := range transactions {
		if err := validateTransaction(&txn); err != nil {
			return fmt.Errorf("transaction at index %d: %w", i, err)
		}
	}
	return nil
}

// validateTransaction validates a single transaction.
func validateTransaction(txn *model.Transaction) error {
	if txn == nil {
		return fmt.Errorf("%w: transaction", ErrNilParameter)
	}
	if txn.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidTransaction)
	}
	if txn.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidTransaction)
	}
	if err := txn.Validate(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTransaction, err)
	}
	return nil
}

// validateInvoice validates an invoice.
func validateInvoice(invoice *model.Invoice) error {
	if invoice == nil {
		return fmt.Errorf("%w: invoice", ErrNilParameter)
	}
	if invoice.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidInvoice)
	}
	if invoice.TenantID == "" {
		return fmt.Errorf("%w: missing tenant ID", ErrInvalidInvoice)
	}
	if invoice.Number == "" {
		return fmt.Errorf("%w: missing invoice number", ErrInvalidInvoice)
	}
	if invoice.Total < 0 {
		return fmt.Errorf("%w: negative total", ErrInvalidInvoice)
	}
	if invoice.Allocated < 0 {
		return fmt.Errorf("%w: negative allocation", ErrInvalidInvoice)
	}
	return nil
}
