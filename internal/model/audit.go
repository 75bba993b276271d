package model

import "time"

// EscalationType identifies why an outcome needs a human.
type EscalationType string

// Escalation type constants.
const (
	EscalationAmbiguousMatch EscalationType = "ambiguous_match"
	EscalationLowConfidence  EscalationType = "low_confidence"
	EscalationPatternFlagged EscalationType = "pattern_flagged"
	EscalationAmountExceeded EscalationType = "amount_exceeds_maximum"
)

// EscalationStatus tracks resolution of an escalation. The engine only
// ever writes pending entries; resolution belongs to the review workflow.
type EscalationStatus string

// Escalation status constants.
const (
	EscalationPending  EscalationStatus = "PENDING"
	EscalationResolved EscalationStatus = "RESOLVED"
)

// DecisionLogEntry is the append-only audit record written for every
// decision, whether or not it was applied downstream. Entries are
// write-once; the log is never updated or deleted.
type DecisionLogEntry struct {
	Timestamp   time.Time      `json:"timestamp"`
	ID          string         `json:"id"`
	TenantID    string         `json:"tenant_id"`
	SubjectID   string         `json:"subject_id"`
	CandidateID string         `json:"candidate_id,omitempty"`
	Action      DecisionAction `json:"action"`
	Reasoning   string         `json:"reasoning"`
	Confidence  int            `json:"confidence"`
	AutoApplied bool           `json:"auto_applied"`
}

// EscalationEntry is the append-only record of an outcome that needs
// human review. Status starts PENDING and is resolved by the surrounding
// workflow, not by this engine.
type EscalationEntry struct {
	Timestamp    time.Time        `json:"timestamp"`
	ID           string           `json:"id"`
	TenantID     string           `json:"tenant_id"`
	SubjectID    string           `json:"subject_id"`
	Type         EscalationType   `json:"type"`
	Reason       string           `json:"reason"`
	CandidateIDs []string         `json:"candidate_ids,omitempty"`
	Status       EscalationStatus `json:"status"`
}
