// Package model defines the core domain models used throughout the application.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Direction indicates whether money moved into or out of the bank account.
type Direction string

// Direction constants.
const (
	DirectionCredit Direction = "CREDIT"
	DirectionDebit  Direction = "DEBIT"
)

// Transaction represents a single bank transaction as seen by the decision
// engine. Amounts are integer minor currency units (pence, cents) and always
// carry a non-negative magnitude; Direction records the sign.
type Transaction struct {
	Date        time.Time
	ID          string
	TenantID    string
	Reference   string // Bank reference line, may be empty
	PayeeName   string // Counterparty name as reported by the bank, may be empty
	Description string // Raw statement description
	Hash        string
	Amount      int64
	Direction   Direction
}

// IsCredit reports whether the transaction is money in.
func (t *Transaction) IsCredit() bool {
	return t.Direction == DirectionCredit
}

// GenerateHash creates a unique hash for duplicate detection on import.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%s:%d:%s:%s",
		t.TenantID,
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Direction,
		t.Description)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}

// Validate ensures the transaction is well-formed input for the engine.
func (t *Transaction) Validate() error {
	if t.TenantID == "" {
		return fmt.Errorf("tenant ID is required")
	}
	if t.Amount < 0 {
		return fmt.Errorf("amount must be a non-negative magnitude, got %d", t.Amount)
	}
	if t.Direction != DirectionCredit && t.Direction != DirectionDebit {
		return fmt.Errorf("invalid direction %q", t.Direction)
	}
	return nil
}
