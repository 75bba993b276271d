package model

import "fmt"

// CategoryPattern is a precompiled text-matching rule that maps
// transactions to a chart-of-accounts code. Patterns come from a versioned
// file loaded at process start; the engine never recomputes their
// confidence, it trusts the author-assigned value.
type CategoryPattern struct {
	Direction      *Direction // Nil matches both polarities
	AmountMax      *int64     // Ceiling in minor units, nil for no ceiling
	ID             string
	Name           string
	Pattern        string // Regular expression, matched case-insensitively
	AccountCode    string
	AccountName    string
	VATCode        string
	ReviewReason   string
	Confidence     int // 0-100, author-assigned
	RequiresReview bool
}

// AppliesTo reports whether the pattern's polarity and amount-ceiling
// filters admit the transaction. The regex itself is evaluated separately
// by the pattern matcher so compilation stays cached in one place.
func (p *CategoryPattern) AppliesTo(txn Transaction) bool {
	if p.Direction != nil && txn.Direction != *p.Direction {
		return false
	}
	if p.AmountMax != nil && txn.Amount > *p.AmountMax {
		return false
	}
	return true
}

// Validate ensures the pattern has valid data. Regex compilation is
// deliberately not checked here; the matcher handles invalid patterns at
// match time so one bad entry cannot block loading the rest of the file.
func (p *CategoryPattern) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("pattern ID is required")
	}
	if p.Pattern == "" {
		return fmt.Errorf("pattern expression is required")
	}
	if p.AccountCode == "" {
		return fmt.Errorf("account code is required")
	}
	if p.Confidence < 0 || p.Confidence > 100 {
		return fmt.Errorf("confidence must be between 0 and 100, got %d", p.Confidence)
	}
	if p.AmountMax != nil && *p.AmountMax <= 0 {
		return fmt.Errorf("amount ceiling must be positive")
	}
	if p.Direction != nil && *p.Direction != DirectionCredit && *p.Direction != DirectionDebit {
		return fmt.Errorf("invalid direction %q", *p.Direction)
	}
	if p.RequiresReview && p.ReviewReason == "" {
		return fmt.Errorf("patterns flagged for review must give a reason")
	}
	return nil
}
