package model

import "fmt"

// DecisionAction is the discrete outcome of a classification pass.
type DecisionAction string

// Decision action constants.
const (
	ActionAutoApply      DecisionAction = "AUTO_APPLY"
	ActionReviewRequired DecisionAction = "REVIEW_REQUIRED"
	ActionNoMatch        DecisionAction = "NO_MATCH"
)

// RankedCandidate pairs a candidate with the confidence it scored, used
// for the chosen candidate and for runner-up alternatives.
type RankedCandidate struct {
	Candidate  Candidate
	Confidence int
}

// Decision is the engine's answer for one transaction. It is created once
// per invocation, returned to the caller and handed to the audit logger,
// and never mutated afterwards.
type Decision struct {
	SubjectID    string // Transaction ID the decision is about
	TenantID     string
	Chosen       *RankedCandidate // Nil for NO_MATCH
	Action       DecisionAction
	Reasoning    string
	Alternatives []RankedCandidate // Runner-ups, highest confidence first
	Confidence   int               // 0-100
	AutoApplied  bool
}

// Validate checks the structural invariants every decision must satisfy.
func (d *Decision) Validate() error {
	if d.Confidence < 0 || d.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100, got %d", d.Confidence)
	}

	switch d.Action {
	case ActionAutoApply:
		if d.Chosen == nil {
			return fmt.Errorf("auto-apply decision must have a chosen candidate")
		}
		if !d.AutoApplied {
			return fmt.Errorf("auto-apply decision must be marked auto-applied")
		}
	case ActionNoMatch:
		if d.Chosen != nil {
			return fmt.Errorf("no-match decision must not have a chosen candidate")
		}
		if len(d.Alternatives) != 0 {
			return fmt.Errorf("no-match decision must not have alternatives")
		}
	case ActionReviewRequired:
		if d.AutoApplied {
			return fmt.Errorf("review-required decision cannot be auto-applied")
		}
	default:
		return fmt.Errorf("unknown action %q", d.Action)
	}

	return nil
}
