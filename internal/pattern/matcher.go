// Package pattern provides the categorization pattern service: loading a
// versioned pattern set and matching transactions against it with cached
// compiled regular expressions.
package pattern

import (
	"log/slog"
	"regexp"
	"strings"
	"sync"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Matcher evaluates transactions against the configured category patterns.
// The compiled-regex cache is built lazily and is safe for concurrent use;
// patterns that fail to compile are recorded once and never retried.
type Matcher struct {
	compiled map[string]*regexp.Regexp
	invalid  map[string]bool
	patterns []model.CategoryPattern
	mu       sync.RWMutex
}

// NewMatcher creates a matcher over the given pattern set. Patterns keep
// their load order; regexes compile on first use.
func NewMatcher(patterns []model.CategoryPattern) *Matcher {
	return &Matcher{
		patterns: patterns,
		compiled: make(map[string]*regexp.Regexp),
		invalid:  make(map[string]bool),
	}
}

// Match returns the best pattern matching the transaction, or false when
// none match. Polarity and amount-ceiling filters exclude patterns before
// their regex runs. When several patterns match, the highest-confidence
// one wins; ties keep load order.
func (m *Matcher) Match(txn model.Transaction) (*model.CategoryPattern, bool) {
	text := strings.TrimSpace(txn.PayeeName + " " + txn.Description)

	m.mu.RLock()
	patterns := m.patterns
	m.mu.RUnlock()

	var best *model.CategoryPattern
	for i := range patterns {
		p := &patterns[i]
		if !p.AppliesTo(txn) {
			continue
		}

		re, ok := m.regexFor(p)
		if !ok {
			continue
		}

		if re.MatchString(text) && (best == nil || p.Confidence > best.Confidence) {
			best = p
		}
	}

	if best == nil {
		return nil, false
	}
	return best, true
}

// Patterns returns the current pattern set in load order.
func (m *Matcher) Patterns() []model.CategoryPattern {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.patterns
}

// Reload replaces the whole pattern set and discards both caches. Invalid
// patterns from the previous set get a fresh chance, since a reload
// implies a new pattern file version.
func (m *Matcher) Reload(patterns []model.CategoryPattern) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.patterns = patterns
	m.compiled = make(map[string]*regexp.Regexp)
	m.invalid = make(map[string]bool)
}

// regexFor returns the compiled regex for a pattern, compiling and caching
// it on first use. Returns false for patterns previously marked invalid.
func (m *Matcher) regexFor(p *model.CategoryPattern) (*regexp.Regexp, bool) {
	m.mu.RLock()
	re, ok := m.compiled[p.ID]
	bad := m.invalid[p.ID]
	m.mu.RUnlock()

	if ok {
		return re, true
	}
	if bad {
		return nil, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	// Another goroutine may have raced us here.
	if re, ok := m.compiled[p.ID]; ok {
		return re, true
	}
	if m.invalid[p.ID] {
		return nil, false
	}

	re, err := regexp.Compile("(?i)" + p.Pattern)
	if err != nil {
		slog.Warn("Skipping pattern with invalid expression",
			"pattern_id", p.ID,
			"pattern", p.Pattern,
			"error", err)
		m.invalid[p.ID] = true
		return nil, false
	}

	m.compiled[p.ID] = re
	return re, true
}
