package engine

import (
	"context"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
	"github.com/ledgerkeep/ledgerkeep/internal/service"
)

// CandidateSource supplies the pool of eligible invoice candidates for a
// transaction. Implemented by the storage layer.
type CandidateSource interface {
	FindEligibleInvoiceCandidates(ctx context.Context, txn model.Transaction) ([]model.InvoiceCandidate, error)
}

// History supplies a tenant's prior categorization behavior, the secondary
// signal used when no pattern matches.
type History interface {
	MostFrequentAccountCode(ctx context.Context, tenantID, payeeName string) (*service.AccountUsage, error)
	AccountAmountStats(ctx context.Context, tenantID, accountCode string) (*service.AmountStats, error)
}

// PatternMatcher evaluates a transaction against the configured category
// patterns. Implemented by the pattern package.
type PatternMatcher interface {
	Match(txn model.Transaction) (*model.CategoryPattern, bool)
}

// AuditSink receives the append-only decision and escalation records.
// Implementations must never block the caller or surface write failures.
type AuditSink interface {
	LogDecision(entry model.DecisionLogEntry)
	LogEscalation(entry model.EscalationEntry)
}
