package model

// Candidate is the closed set of things a transaction can be matched
// against: an open invoice for payment matching, or an account code for
// categorization. The unexported method keeps the set closed so the
// classifier can switch exhaustively over the two variants.
type Candidate interface {
	// CandidateID returns the stable identifier recorded in decisions,
	// alternatives and escalations.
	CandidateID() string
	// DisplayName returns a human-readable label for reasoning strings.
	DisplayName() string

	candidate()
}

// InvoiceCandidate is a read-only snapshot of an open invoice considered
// for payment matching. Outstanding is total minus already-allocated.
type InvoiceCandidate struct {
	InvoiceID        string
	Number           string
	CounterpartyName string
	Outstanding      int64
}

// CandidateID implements Candidate.
func (c InvoiceCandidate) CandidateID() string { return c.InvoiceID }

// DisplayName implements Candidate.
func (c InvoiceCandidate) DisplayName() string { return c.Number }

func (c InvoiceCandidate) candidate() {}

// CategoryCandidate is a chart-of-accounts code considered for
// categorization, either proposed by a pattern or by tenant history.
type CategoryCandidate struct {
	AccountCode         string
	AccountName         string
	PatternID           string // Empty for historical candidates
	HistoricalFrequency int    // Prior categorizations to this code, 0 for pattern candidates
}

// CandidateID implements Candidate.
func (c CategoryCandidate) CandidateID() string { return c.AccountCode }

// DisplayName implements Candidate.
func (c CategoryCandidate) DisplayName() string { return c.AccountName }

func (c CategoryCandidate) candidate() {}

// SignalScore is one scorer's contribution to a candidate's confidence.
type SignalScore struct {
	Reason string
	Points int
}
