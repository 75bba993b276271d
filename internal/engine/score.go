package engine

import (
	"fmt"
	"strings"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Signal maximums. The three payment signals sum to at most 100, so the
// aggregate never needs rescaling, only clamping.
const (
	maxReferenceScore = 40
	maxAmountScore    = 40
	maxNameScore      = 20
)

// normalize lowercases and strips everything except letters and digits.
// Applying it twice is a no-op, which scoring relies on.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// scoreReference compares the bank reference against an invoice number.
func scoreReference(reference, invoiceNumber string) model.SignalScore {
	ref := normalize(reference)
	num := normalize(invoiceNumber)

	if ref == "" || num == "" {
		return model.SignalScore{Points: 0, Reason: "no reference to compare"}
	}

	if ref == num {
		return model.SignalScore{
			Points: maxReferenceScore,
			Reason: fmt.Sprintf("reference exactly matches invoice %s", invoiceNumber),
		}
	}

	if strings.Contains(ref, num) {
		return model.SignalScore{
			Points: 30,
			Reason: fmt.Sprintf("reference contains invoice number %s", invoiceNumber),
		}
	}

	if len(num) >= 4 && strings.HasSuffix(ref, num[len(num)-4:]) {
		return model.SignalScore{
			Points: 15,
			Reason: fmt.Sprintf("reference ends with the last 4 characters of invoice %s", invoiceNumber),
		}
	}

	return model.SignalScore{Points: 0, Reason: "reference does not match invoice number"}
}

// scoreAmount compares the transaction amount against an invoice's
// outstanding balance. Both values are minor currency units.
func scoreAmount(amount, outstanding int64) model.SignalScore {
	if outstanding <= 0 {
		return model.SignalScore{Points: 0, Reason: "no outstanding balance"}
	}

	diff := amount - outstanding
	if diff < 0 {
		diff = -diff
	}

	if diff == 0 {
		return model.SignalScore{Points: maxAmountScore, Reason: "amount exactly matches outstanding balance"}
	}

	pct := float64(diff) / float64(outstanding)
	switch {
	case pct <= 0.01 || diff <= 1:
		return model.SignalScore{Points: 35, Reason: "amount within 1% of outstanding balance"}
	case pct <= 0.05:
		return model.SignalScore{Points: 25, Reason: "amount within 5% of outstanding balance"}
	case pct <= 0.10:
		return model.SignalScore{Points: 15, Reason: "amount within 10% of outstanding balance"}
	case amount < outstanding:
		return model.SignalScore{Points: 10, Reason: "amount could be a partial payment"}
	default:
		return model.SignalScore{Points: 0, Reason: "amount exceeds outstanding balance"}
	}
}

// scoreName fuzzily compares the payee name against an invoice's
// counterparty using normalized edit distance.
func scoreName(payeeName, counterpartyName string) model.SignalScore {
	payee := normalize(payeeName)
	counterparty := normalize(counterpartyName)

	if payee == "" || counterparty == "" {
		return model.SignalScore{Points: 0, Reason: "no payee name to compare"}
	}

	sim := similarity(payee, counterparty)
	switch {
	case sim == 1.0:
		return model.SignalScore{
			Points: maxNameScore,
			Reason: fmt.Sprintf("payee name matches %s", counterpartyName),
		}
	case sim > 0.8:
		return model.SignalScore{
			Points: 15,
			Reason: fmt.Sprintf("payee name closely resembles %s", counterpartyName),
		}
	case sim > 0.6:
		return model.SignalScore{
			Points: 10,
			Reason: fmt.Sprintf("payee name resembles %s", counterpartyName),
		}
	case sim > 0.4:
		return model.SignalScore{
			Points: 5,
			Reason: fmt.Sprintf("payee name loosely resembles %s", counterpartyName),
		}
	default:
		return model.SignalScore{Points: 0, Reason: "payee name does not match counterparty"}
	}
}

// scoreInvoiceCandidate runs the three payment signals and sums them,
// clamped to 100. A candidate with a negative outstanding balance is
// malformed and scores nothing.
func scoreInvoiceCandidate(txn model.Transaction, candidate model.InvoiceCandidate) (int, []model.SignalScore) {
	if candidate.Outstanding < 0 {
		return 0, nil
	}

	signals := []model.SignalScore{
		scoreReference(txn.Reference, candidate.Number),
		scoreAmount(txn.Amount, candidate.Outstanding),
		scoreName(txn.PayeeName, candidate.CounterpartyName),
	}

	total := 0
	for _, s := range signals {
		total += s.Points
	}
	if total > 100 {
		total = 100
	}

	return total, signals
}

// descriptionQuality scores how informative a description is: 10 points
// per word longer than two characters, capped at 100. Sparse descriptions
// drag down categorization confidence.
func descriptionQuality(description string) int {
	score := 0
	for _, word := range strings.Fields(description) {
		if len(word) > 2 {
			score += 10
		}
	}
	if score > 100 {
		score = 100
	}
	return score
}
