package pattern

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// File is the on-disk pattern set. The file is versioned so audit records
// and escalations can be traced back to the rules that produced them.
type File struct {
	Version  string  `yaml:"version"`
	Patterns []entry `yaml:"patterns"`
}

// entry is the YAML shape of a single pattern.
type entry struct {
	AmountMax      *int64 `yaml:"amount_max,omitempty"`
	ID             string `yaml:"id"`
	Name           string `yaml:"name"`
	Pattern        string `yaml:"pattern"`
	AccountCode    string `yaml:"account_code"`
	AccountName    string `yaml:"account_name"`
	VATCode        string `yaml:"vat_code,omitempty"`
	Direction      string `yaml:"direction,omitempty"`
	ReviewReason   string `yaml:"review_reason,omitempty"`
	Confidence     int    `yaml:"confidence"`
	RequiresReview bool   `yaml:"requires_review,omitempty"`
}

// LoadFile reads and validates a pattern file. The whole file is rejected
// on structural errors; invalid regexes are not checked here, the matcher
// quarantines those at match time.
func LoadFile(path string) ([]model.CategoryPattern, string, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path comes from operator config
	if err != nil {
		return nil, "", fmt.Errorf("failed to read pattern file: %w", err)
	}

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, "", fmt.Errorf("failed to parse pattern file: %w", err)
	}

	if file.Version == "" {
		return nil, "", fmt.Errorf("pattern file must declare a version")
	}

	patterns := make([]model.CategoryPattern, 0, len(file.Patterns))
	seen := make(map[string]bool)
	for i, e := range file.Patterns {
		p := model.CategoryPattern{
			ID:             e.ID,
			Name:           e.Name,
			Pattern:        e.Pattern,
			AccountCode:    e.AccountCode,
			AccountName:    e.AccountName,
			VATCode:        e.VATCode,
			Confidence:     e.Confidence,
			AmountMax:      e.AmountMax,
			RequiresReview: e.RequiresReview,
			ReviewReason:   e.ReviewReason,
		}

		if e.Direction != "" {
			direction := model.Direction(e.Direction)
			p.Direction = &direction
		}

		if err := p.Validate(); err != nil {
			return nil, "", fmt.Errorf("invalid pattern at index %d: %w", i, err)
		}
		if seen[p.ID] {
			return nil, "", fmt.Errorf("duplicate pattern ID %q", p.ID)
		}
		seen[p.ID] = true

		patterns = append(patterns, p)
	}

	return patterns, file.Version, nil
}
