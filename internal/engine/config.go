// Package engine implements confidence scoring and decision classification
// for payment matching and transaction categorization.
package engine

import "fmt"

// Config holds the classification thresholds. Thresholds are passed
// explicitly so their provenance is always traceable per call; there are
// no ambient defaults inside the classifiers.
type Config struct {
	// AutoApplyThreshold is the confidence at which a single unambiguous
	// candidate is accepted without human review.
	AutoApplyThreshold int
	// CandidateThreshold is the minimum confidence for a candidate to be
	// considered at all.
	CandidateThreshold int
	// MaxAlternatives caps the runner-up candidates recorded on a decision.
	MaxAlternatives int
}

// DefaultConfig returns the hand-tuned production thresholds.
func DefaultConfig() Config {
	return Config{
		AutoApplyThreshold: 80,
		CandidateThreshold: 20,
		MaxAlternatives:    4,
	}
}

// Validate ensures the thresholds are usable.
func (c Config) Validate() error {
	if c.AutoApplyThreshold < 1 || c.AutoApplyThreshold > 100 {
		return fmt.Errorf("auto-apply threshold must be between 1 and 100, got %d", c.AutoApplyThreshold)
	}
	if c.CandidateThreshold < 0 || c.CandidateThreshold > c.AutoApplyThreshold {
		return fmt.Errorf("candidate threshold must be between 0 and the auto-apply threshold, got %d", c.CandidateThreshold)
	}
	if c.MaxAlternatives < 0 {
		return fmt.Errorf("max alternatives must not be negative, got %d", c.MaxAlternatives)
	}
	return nil
}
