package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "lowercases", input: "INV-00123", expected: "inv00123"},
		{name: "strips punctuation and spaces", input: "Acme Corp, Ltd.", expected: "acmecorpltd"},
		{name: "keeps digits", input: "REF 2024/01", expected: "ref202401"},
		{name: "empty", input: "", expected: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalize(tt.input)
			assert.Equal(t, tt.expected, got)

			// Normalizing twice must be a no-op
			assert.Equal(t, got, normalize(got))
		})
	}
}

func TestScoreReference(t *testing.T) {
	tests := []struct {
		name           string
		reference      string
		invoiceNumber  string
		expectedPoints int
	}{
		{name: "exact match", reference: "INV-00123", invoiceNumber: "INV-00123", expectedPoints: 40},
		{name: "exact match ignoring punctuation", reference: "inv 00123", invoiceNumber: "INV-00123", expectedPoints: 40},
		{name: "reference contains invoice number", reference: "PAYMENT INV-00123 THANKS", invoiceNumber: "INV-00123", expectedPoints: 30},
		{name: "last four characters", reference: "PYMT 0123", invoiceNumber: "INV-00123", expectedPoints: 15},
		{name: "no resemblance", reference: "SALARY MARCH", invoiceNumber: "INV-00123", expectedPoints: 0},
		{name: "empty reference", reference: "", invoiceNumber: "INV-00123", expectedPoints: 0},
		{name: "empty invoice number", reference: "INV-00123", invoiceNumber: "", expectedPoints: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreReference(tt.reference, tt.invoiceNumber)
			assert.Equal(t, tt.expectedPoints, got.Points)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestScoreAmount(t *testing.T) {
	tests := []struct {
		name           string
		amount         int64
		outstanding    int64
		expectedPoints int
	}{
		{name: "exact", amount: 125000, outstanding: 125000, expectedPoints: 40},
		{name: "within one percent", amount: 124000, outstanding: 125000, expectedPoints: 35},
		{name: "one minor unit off small balance", amount: 9, outstanding: 10, expectedPoints: 35},
		{name: "within five percent", amount: 120000, outstanding: 125000, expectedPoints: 25},
		{name: "within ten percent", amount: 113000, outstanding: 125000, expectedPoints: 15},
		{name: "partial payment", amount: 50000, outstanding: 125000, expectedPoints: 10},
		{name: "overpayment", amount: 200000, outstanding: 125000, expectedPoints: 0},
		{name: "zero outstanding", amount: 125000, outstanding: 0, expectedPoints: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreAmount(tt.amount, tt.outstanding)
			assert.Equal(t, tt.expectedPoints, got.Points)
		})
	}
}

func TestScoreName(t *testing.T) {
	tests := []struct {
		name           string
		payee          string
		counterparty   string
		expectedPoints int
	}{
		{name: "identical", payee: "Acme Ltd", counterparty: "ACME LTD", expectedPoints: 20},
		{name: "close resemblance", payee: "Acme Limited", counterparty: "Acme Limted", expectedPoints: 15},
		{name: "initials versus full name", payee: "J Smith", counterparty: "John Smith", expectedPoints: 10},
		{name: "nothing alike", payee: "Acme Ltd", counterparty: "Widgets PLC", expectedPoints: 0},
		{name: "empty payee", payee: "", counterparty: "Acme Ltd", expectedPoints: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := scoreName(tt.payee, tt.counterparty)
			assert.Equal(t, tt.expectedPoints, got.Points)
		})
	}
}

func TestScoreInvoiceCandidate(t *testing.T) {
	txn := model.Transaction{
		TenantID:  "tenant-1",
		Reference: "INV-00123",
		PayeeName: "Acme Ltd",
		Amount:    125000,
		Direction: model.DirectionCredit,
	}

	t.Run("all signals align", func(t *testing.T) {
		confidence, signals := scoreInvoiceCandidate(txn, model.InvoiceCandidate{
			InvoiceID:        "inv-1",
			Number:           "INV-00123",
			CounterpartyName: "ACME LTD",
			Outstanding:      125000,
		})

		assert.Equal(t, 100, confidence)
		assert.Len(t, signals, 3)
	})

	t.Run("no signals align", func(t *testing.T) {
		confidence, _ := scoreInvoiceCandidate(txn, model.InvoiceCandidate{
			InvoiceID:        "inv-2",
			Number:           "INV-99999",
			CounterpartyName: "Widgets PLC",
			Outstanding:      900000,
		})

		assert.Equal(t, 10, confidence) // partial-payment points only
	})

	t.Run("negative outstanding scores nothing", func(t *testing.T) {
		confidence, signals := scoreInvoiceCandidate(txn, model.InvoiceCandidate{
			InvoiceID:   "inv-3",
			Number:      "INV-00123",
			Outstanding: -100,
		})

		assert.Equal(t, 0, confidence)
		assert.Nil(t, signals)
	})
}

func TestDescriptionQuality(t *testing.T) {
	tests := []struct {
		name        string
		description string
		expected    int
	}{
		{name: "empty", description: "", expected: 0},
		{name: "short words only", description: "to of at", expected: 0},
		{name: "two informative words", description: "BANK CREDIT", expected: 20},
		{name: "rich description", description: "FASTER PAYMENT RECEIVED ACME LTD INVOICE SETTLEMENT", expected: 70},
		{name: "capped at one hundred", description: "aaa bbb ccc ddd eee fff ggg hhh iii jjj kkk lll", expected: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, descriptionQuality(tt.description))
		})
	}
}
