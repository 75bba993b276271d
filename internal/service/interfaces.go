// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// TransactionFilter defines filtering options for transaction queries.
type TransactionFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
	Direction *model.Direction
	Limit     int
}

// AccountUsage describes how often a tenant has categorized a payee to an
// account code before.
type AccountUsage struct {
	AccountCode string
	AccountName string
	Count       int
}

// AmountStats summarizes prior transaction amounts categorized to an
// account code.
type AmountStats struct {
	Samples int
	Mean    int64 // Minor currency units
}

// Storage defines the contract for the persistence collaborator. All
// queries are tenant-scoped and exclude soft-deleted records.
type Storage interface {
	// Transaction operations
	SaveTransactions(ctx context.Context, transactions []model.Transaction) error
	GetTransactionByID(ctx context.Context, tenantID, id string) (*model.Transaction, error)
	GetTransactions(ctx context.Context, tenantID string, filter TransactionFilter) ([]model.Transaction, error)

	// Invoice operations
	SaveInvoice(ctx context.Context, invoice *model.Invoice) error
	GetInvoiceByID(ctx context.Context, tenantID, id string) (*model.Invoice, error)
	// FindEligibleInvoiceCandidates returns open invoices with a strictly
	// positive outstanding balance for the transaction's tenant.
	FindEligibleInvoiceCandidates(ctx context.Context, txn model.Transaction) ([]model.InvoiceCandidate, error)

	// Categorization history
	SaveCategorization(ctx context.Context, txn model.Transaction, accountCode, accountName string, autoApplied bool) error
	// MostFrequentAccountCode returns the account most often used for prior
	// transactions whose payee contains the given payee, or nil if the
	// tenant has no matching history.
	MostFrequentAccountCode(ctx context.Context, tenantID, payeeName string) (*AccountUsage, error)
	// AccountAmountStats summarizes observed amounts for an account code.
	AccountAmountStats(ctx context.Context, tenantID, accountCode string) (*AmountStats, error)

	// Database management
	Migrate(ctx context.Context) error
	Close() error
}
