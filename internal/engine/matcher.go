package engine

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Matcher matches incoming bank credits against outstanding invoices.
// It is stateless per call and safe for concurrent use across tenants.
type Matcher struct {
	invoices CandidateSource
	audit    AuditSink
	config   Config
}

// NewMatcher creates a payment matcher with the given collaborators.
func NewMatcher(invoices CandidateSource, audit AuditSink, config Config) (*Matcher, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid matcher configuration: %w", err)
	}

	return &Matcher{
		invoices: invoices,
		audit:    audit,
		config:   config,
	}, nil
}

// scoredInvoice pairs an invoice candidate with its aggregate confidence
// and the per-signal breakdown behind it.
type scoredInvoice struct {
	signals    []model.SignalScore
	candidate  model.InvoiceCandidate
	confidence int
}

// Match scores all eligible invoices for the transaction and classifies
// the result. The decision is logged (and escalated when review is
// needed) before being returned; audit failures never fail the call.
//
// A storage failure fetching candidates is surfaced unchanged: not being
// able to determine candidates is a different thing from an empty pool.
func (m *Matcher) Match(ctx context.Context, txn model.Transaction) (*model.Decision, error) {
	if err := txn.Validate(); err != nil {
		return nil, fmt.Errorf("invalid transaction: %w", err)
	}

	candidates, err := m.invoices.FindEligibleInvoiceCandidates(ctx, txn)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch invoice candidates: %w", err)
	}

	scored := make([]scoredInvoice, 0, len(candidates))
	for _, candidate := range candidates {
		confidence, signals := scoreInvoiceCandidate(txn, candidate)
		if confidence < m.config.CandidateThreshold {
			continue
		}
		scored = append(scored, scoredInvoice{
			candidate:  candidate,
			confidence: confidence,
			signals:    signals,
		})
	}

	// Stable sort: equal confidence keeps source order, so the first
	// candidate seen wins ties.
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].confidence > scored[j].confidence
	})

	decision, escalation := m.classify(txn, scored)

	m.audit.LogDecision(decisionLogEntry(decision))
	if escalation != nil {
		m.audit.LogEscalation(*escalation)
	}

	return decision, nil
}

// classify converts the ranked candidates into a decision, plus an
// escalation for any outcome that needs a human.
func (m *Matcher) classify(txn model.Transaction, scored []scoredInvoice) (*model.Decision, *model.EscalationEntry) {
	if len(scored) == 0 {
		return &model.Decision{
			SubjectID:  txn.ID,
			TenantID:   txn.TenantID,
			Action:     model.ActionNoMatch,
			Confidence: 0,
			Reasoning:  "no matching candidates found",
		}, nil
	}

	best := scored[0]
	var atThreshold []scoredInvoice
	for _, s := range scored {
		if s.confidence >= m.config.AutoApplyThreshold {
			atThreshold = append(atThreshold, s)
		}
	}

	decision := &model.Decision{
		SubjectID:  txn.ID,
		TenantID:   txn.TenantID,
		Confidence: best.confidence,
		Chosen: &model.RankedCandidate{
			Candidate:  best.candidate,
			Confidence: best.confidence,
		},
		Alternatives: m.alternatives(scored[1:]),
	}

	switch {
	case len(atThreshold) == 1:
		decision.Action = model.ActionAutoApply
		decision.AutoApplied = true
		decision.Reasoning = signalReasoning(best)
		return decision, nil

	case len(atThreshold) >= 2:
		decision.Action = model.ActionReviewRequired
		decision.Reasoning = fmt.Sprintf(
			"%d candidates at or above the auto-apply threshold; confidence alone cannot disambiguate",
			len(atThreshold))

		ids := make([]string, len(atThreshold))
		for i, s := range atThreshold {
			ids[i] = s.candidate.CandidateID()
		}
		return decision, &model.EscalationEntry{
			TenantID:     txn.TenantID,
			SubjectID:    txn.ID,
			Type:         model.EscalationAmbiguousMatch,
			Reason:       decision.Reasoning,
			CandidateIDs: ids,
		}

	default:
		decision.Action = model.ActionReviewRequired
		decision.Reasoning = fmt.Sprintf(
			"best candidate %s scored %d, below the auto-apply threshold of %d",
			best.candidate.DisplayName(), best.confidence, m.config.AutoApplyThreshold)

		return decision, &model.EscalationEntry{
			TenantID:     txn.TenantID,
			SubjectID:    txn.ID,
			Type:         model.EscalationLowConfidence,
			Reason:       decision.Reasoning,
			CandidateIDs: []string{best.candidate.CandidateID()},
		}
	}
}

// alternatives converts the runner-up candidates, capped by configuration.
func (m *Matcher) alternatives(rest []scoredInvoice) []model.RankedCandidate {
	n := len(rest)
	if n > m.config.MaxAlternatives {
		n = m.config.MaxAlternatives
	}
	if n == 0 {
		return nil
	}

	alternatives := make([]model.RankedCandidate, n)
	for i := 0; i < n; i++ {
		alternatives[i] = model.RankedCandidate{
			Candidate:  rest[i].candidate,
			Confidence: rest[i].confidence,
		}
	}
	return alternatives
}

// signalReasoning renders the per-signal breakdown for a candidate.
func signalReasoning(s scoredInvoice) string {
	reasons := make([]string, 0, len(s.signals))
	for _, signal := range s.signals {
		if signal.Points > 0 {
			reasons = append(reasons, signal.Reason)
		}
	}
	if len(reasons) == 0 {
		return fmt.Sprintf("invoice %s scored %d", s.candidate.DisplayName(), s.confidence)
	}
	return fmt.Sprintf("invoice %s: %s", s.candidate.DisplayName(), strings.Join(reasons, "; "))
}

// decisionLogEntry projects a decision onto its audit record.
func decisionLogEntry(d *model.Decision) model.DecisionLogEntry {
	entry := model.DecisionLogEntry{
		TenantID:    d.TenantID,
		SubjectID:   d.SubjectID,
		Action:      d.Action,
		Confidence:  d.Confidence,
		AutoApplied: d.AutoApplied,
		Reasoning:   d.Reasoning,
	}
	if d.Chosen != nil {
		entry.CandidateID = d.Chosen.Candidate.CandidateID()
	}
	return entry
}
