package engine

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Fallback accounts used when neither a pattern nor tenant history can
// categorize a transaction. These always require review.
const (
	fallbackIncomeCode  = "200"
	fallbackIncomeName  = "Sales"
	fallbackExpenseCode = "429"
	fallbackExpenseName = "General Expenses"
)

// fallbackConfidence is the confidence assigned to polarity-based
// fallback categorizations. Deliberately above the candidate threshold so
// the fallback is presented to the reviewer, and far below auto-apply.
const fallbackConfidence = 25

// historicalBaseConfidence scales with how often the tenant has used the
// account for this payee before, capped so history alone rarely clears
// the auto-apply threshold.
const (
	historicalBaseConfidence = 50
	historicalPerUse         = 5
	historicalMaxConfidence  = 70
)

// Aggregate-confidence penalties for weak corroborating signals.
const (
	sparseDescriptionPenalty = 10
	sparseDescriptionFloor   = 30
	amountBandPenalty        = 15
)

// Categorizer assigns a chart-of-accounts code to a bank transaction.
// It is stateless per call apart from the injected pattern matcher's
// compiled-regex cache.
type Categorizer struct {
	patterns PatternMatcher
	history  History
	audit    AuditSink
	config   Config
}

// NewCategorizer creates a categorizer with the given collaborators.
func NewCategorizer(patterns PatternMatcher, history History, audit AuditSink, config Config) (*Categorizer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid categorizer configuration: %w", err)
	}

	return &Categorizer{
		patterns: patterns,
		history:  history,
		audit:    audit,
		config:   config,
	}, nil
}

// Categorize classifies the transaction against the pattern set, falling
// back to tenant history and finally to a polarity-based default account.
// Exactly one decision record is always logged; any outcome other than a
// clean auto-apply is escalated.
func (c *Categorizer) Categorize(ctx context.Context, txn model.Transaction) (*model.Decision, error) {
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	matched, ok := c.patterns.Match(txn)
	if ok {
		decision, escalation := c.classifyPattern(ctx, txn, matched)
		c.record(decision, escalation)
		return decision, nil
	}

	if usage := c.lookupHistory(ctx, txn); usage != nil {
		decision, escalation := c.classifyHistorical(ctx, txn, usage)
		c.record(decision, escalation)
		return decision, nil
	}

	decision, escalation := c.classifyFallback(txn)
	c.record(decision, escalation)
	return decision, nil
}

// classifyPattern builds the decision for a pattern match, applying the
// three auto-apply vetoes on top of the numeric threshold.
func (c *Categorizer) classifyPattern(ctx context.Context, txn model.Transaction, p *model.CategoryPattern) (*model.Decision, *model.EscalationEntry) {
	candidate := model.CategoryCandidate{
		AccountCode: p.AccountCode,
		AccountName: p.AccountName,
		PatternID:   p.ID,
	}

	aggregate := c.aggregateConfidence(ctx, txn, p.Confidence, candidate.AccountCode)

	decision := &model.Decision{
		SubjectID:  txn.ID,
		TenantID:   txn.TenantID,
		Confidence: aggregate,
		Chosen: &model.RankedCandidate{
			Candidate:  candidate,
			Confidence: p.Confidence,
		},
	}

	// Veto checks run even when confidence clears the threshold. The
	// ceiling is re-checked here so a pattern set swapped mid-flight can
	// never auto-apply an amount its author capped.
	switch {
	case p.AmountMax != nil && txn.Amount > *p.AmountMax:
		decision.Action = model.ActionReviewRequired
		decision.Reasoning = fmt.Sprintf("pattern %s matched but amount %d exceeds its ceiling of %d",
			p.Name, txn.Amount, *p.AmountMax)
		return decision, &model.EscalationEntry{
			TenantID:     txn.TenantID,
			SubjectID:    txn.ID,
			Type:         model.EscalationAmountExceeded,
			Reason:       decision.Reasoning,
			CandidateIDs: []string{candidate.CandidateID()},
		}

	case p.RequiresReview:
		decision.Action = model.ActionReviewRequired
		decision.Reasoning = fmt.Sprintf("pattern %s matched with confidence %d but is flagged for review: %s",
			p.Name, p.Confidence, p.ReviewReason)
		return decision, &model.EscalationEntry{
			TenantID:     txn.TenantID,
			SubjectID:    txn.ID,
			Type:         model.EscalationPatternFlagged,
			Reason:       decision.Reasoning,
			CandidateIDs: []string{candidate.CandidateID()},
		}

	case aggregate < c.config.AutoApplyThreshold:
		decision.Action = model.ActionReviewRequired
		decision.Reasoning = fmt.Sprintf("pattern %s matched but aggregate confidence %d is below the auto-apply threshold of %d",
			p.Name, aggregate, c.config.AutoApplyThreshold)
		return decision, &model.EscalationEntry{
			TenantID:     txn.TenantID,
			SubjectID:    txn.ID,
			Type:         model.EscalationLowConfidence,
			Reason:       decision.Reasoning,
			CandidateIDs: []string{candidate.CandidateID()},
		}

	default:
		decision.Action = model.ActionAutoApply
		decision.AutoApplied = true
		decision.Reasoning = fmt.Sprintf("pattern %s matched %s with confidence %d",
			p.Name, candidate.AccountName, p.Confidence)
		return decision, nil
	}
}

// classifyHistorical builds the decision for the history-based secondary
// signal.
func (c *Categorizer) classifyHistorical(ctx context.Context, txn model.Transaction, usage *historicalUsage) (*model.Decision, *model.EscalationEntry) {
	candidate := model.CategoryCandidate{
		AccountCode:         usage.accountCode,
		AccountName:         usage.accountName,
		HistoricalFrequency: usage.count,
	}

	base := historicalBaseConfidence + historicalPerUse*usage.count
	if base > historicalMaxConfidence {
		base = historicalMaxConfidence
	}

	aggregate := c.aggregateConfidence(ctx, txn, base, candidate.AccountCode)

	decision := &model.Decision{
		SubjectID:  txn.ID,
		TenantID:   txn.TenantID,
		Confidence: aggregate,
		Chosen: &model.RankedCandidate{
			Candidate:  candidate,
			Confidence: base,
		},
	}

	if aggregate >= c.config.AutoApplyThreshold {
		decision.Action = model.ActionAutoApply
		decision.AutoApplied = true
		decision.Reasoning = fmt.Sprintf("payee categorized to %s %d times before",
			candidate.AccountName, usage.count)
		return decision, nil
	}

	decision.Action = model.ActionReviewRequired
	decision.Reasoning = fmt.Sprintf("payee categorized to %s %d times before, aggregate confidence %d is below the auto-apply threshold",
		candidate.AccountName, usage.count, aggregate)
	return decision, &model.EscalationEntry{
		TenantID:     txn.TenantID,
		SubjectID:    txn.ID,
		Type:         model.EscalationLowConfidence,
		Reason:       decision.Reasoning,
		CandidateIDs: []string{candidate.CandidateID()},
	}
}

// classifyFallback defaults to a hard-coded account chosen by polarity.
// Fallback categorizations are never auto-applied.
func (c *Categorizer) classifyFallback(txn model.Transaction) (*model.Decision, *model.EscalationEntry) {
	candidate := model.CategoryCandidate{
		AccountCode: fallbackExpenseCode,
		AccountName: fallbackExpenseName,
	}
	if txn.IsCredit() {
		candidate.AccountCode = fallbackIncomeCode
		candidate.AccountName = fallbackIncomeName
	}

	decision := &model.Decision{
		SubjectID:  txn.ID,
		TenantID:   txn.TenantID,
		Action:     model.ActionReviewRequired,
		Confidence: fallbackConfidence,
		Chosen: &model.RankedCandidate{
			Candidate:  candidate,
			Confidence: fallbackConfidence,
		},
		Reasoning: fmt.Sprintf("no pattern or history matched; defaulting to %s by transaction polarity",
			candidate.AccountName),
	}

	return decision, &model.EscalationEntry{
		TenantID:     txn.TenantID,
		SubjectID:    txn.ID,
		Type:         model.EscalationLowConfidence,
		Reason:       decision.Reasoning,
		CandidateIDs: []string{candidate.CandidateID()},
	}
}

// historicalUsage is the engine-local view of a history lookup.
type historicalUsage struct {
	accountCode string
	accountName string
	count       int
}

// lookupHistory fetches the tenant's most frequent account for the payee.
// Storage failures degrade to "no historical match" rather than failing
// the classification.
func (c *Categorizer) lookupHistory(ctx context.Context, txn model.Transaction) *historicalUsage {
	if txn.PayeeName == "" {
		return nil
	}

	usage, err := c.history.MostFrequentAccountCode(ctx, txn.TenantID, txn.PayeeName)
	if err != nil {
		slog.Warn("Historical lookup failed, continuing without history",
			"tenant_id", txn.TenantID,
			"transaction_id", txn.ID,
			"error", err)
		return nil
	}
	if usage == nil || usage.Count == 0 {
		return nil
	}

	return &historicalUsage{
		accountCode: usage.AccountCode,
		accountName: usage.AccountName,
		count:       usage.Count,
	}
}

// aggregateConfidence combines the match confidence with the description
// quality heuristic and the account's typical amount band. Description
// quality is a scoring input, not a hard veto.
func (c *Categorizer) aggregateConfidence(ctx context.Context, txn model.Transaction, matchConfidence int, accountCode string) int {
	aggregate := matchConfidence

	if descriptionQuality(txn.Description) < sparseDescriptionFloor {
		aggregate -= sparseDescriptionPenalty
	}

	if !c.amountWithinBand(ctx, txn, accountCode) {
		aggregate -= amountBandPenalty
	}

	if aggregate < 0 {
		aggregate = 0
	}
	if aggregate > 100 {
		aggregate = 100
	}
	return aggregate
}

// amountWithinBand reports whether the amount sits inside the account's
// typical band of 0.5x to 2x the mean observed amount. With fewer than 3
// samples, or when stats are unavailable, the band does not constrain.
func (c *Categorizer) amountWithinBand(ctx context.Context, txn model.Transaction, accountCode string) bool {
	stats, err := c.history.AccountAmountStats(ctx, txn.TenantID, accountCode)
	if err != nil {
		slog.Warn("Amount stats lookup failed, skipping band check",
			"tenant_id", txn.TenantID,
			"account_code", accountCode,
			"error", err)
		return true
	}
	if stats == nil || stats.Samples < 3 || stats.Mean <= 0 {
		return true
	}

	lower := stats.Mean / 2
	upper := stats.Mean * 2
	return txn.Amount >= lower && txn.Amount <= upper
}

// record writes the audit trail for a categorization outcome.
func (c *Categorizer) record(decision *model.Decision, escalation *model.EscalationEntry) {
	c.audit.LogDecision(decisionLogEntry(decision))
	if escalation != nil {
		c.audit.LogEscalation(*escalation)
	}
}
