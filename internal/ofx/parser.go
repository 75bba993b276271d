// Package ofx parses OFX/QFX bank exports into transactions for the
// decision engine.
package ofx

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Parser implements OFX/QFX file parsing.
type Parser struct{}

// NewParser creates a new OFX parser.
func NewParser() *Parser {
	return &Parser{}
}

// preprocessOFX fixes common formatting issues in OFX files.
func (p *Parser) preprocessOFX(content string) string {
	// Trim any leading whitespace or blank lines before the header
	content = strings.TrimLeft(content, " \t\r\n")

	// Fix mixed-case SEVERITY values (should be INFO, WARN, or ERROR)
	severityRegex := regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
	content = severityRegex.ReplaceAllStringFunc(content, func(match string) string {
		return strings.ToUpper(match)
	})

	// Fix missing closing angle brackets in SGML-style OFX files
	tagFixRegex := regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)
	content = tagFixRegex.ReplaceAllString(content, "$1>")

	return content
}

// ParseFile parses an OFX/QFX file and returns transactions scoped to the
// given tenant.
func (p *Parser) ParseFile(_ context.Context, reader io.Reader, tenantID string) ([]model.Transaction, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("tenant ID is required")
	}

	content, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("failed to read OFX file: %w", err)
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(p.preprocessOFX(string(content))))
	if err != nil {
		return nil, fmt.Errorf("failed to parse OFX file: %w", err)
	}

	var transactions []model.Transaction
	statements := 0

	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		statements++
		for _, ofxTx := range stmt.BankTranList.Transactions {
			transactions = append(transactions, p.convertTransaction(ofxTx, tenantID))
		}
	}

	slog.Info("Parsed OFX file",
		"tenant_id", tenantID,
		"statements", statements,
		"transactions", len(transactions))

	return transactions, nil
}

// convertTransaction converts an OFX transaction to our model. OFX amounts
// are signed decimal values; we store a non-negative minor-unit magnitude
// and record the sign as the direction.
func (p *Parser) convertTransaction(ofxTx ofxgo.Transaction, tenantID string) model.Transaction {
	amountFloat, _ := ofxTx.TrnAmt.Float64()

	direction := model.DirectionCredit
	if amountFloat < 0 {
		direction = model.DirectionDebit
		amountFloat = -amountFloat
	}

	txn := model.Transaction{
		ID:          string(ofxTx.FiTID),
		TenantID:    tenantID,
		Date:        ofxTx.DtPosted.Time,
		Amount:      int64(math.Round(amountFloat * 100)),
		Direction:   direction,
		Reference:   p.extractReference(ofxTx),
		PayeeName:   p.extractPayeeName(ofxTx),
		Description: strings.TrimSpace(string(ofxTx.Name) + " " + string(ofxTx.Memo)),
	}

	txn.Hash = txn.GenerateHash()

	return txn
}

// extractReference pulls the bank reference line, preferring the explicit
// reference number over a check number.
func (p *Parser) extractReference(tx ofxgo.Transaction) string {
	if tx.RefNum != "" {
		return string(tx.RefNum)
	}
	if tx.CheckNum != "" {
		return string(tx.CheckNum)
	}
	return ""
}

// extractPayeeName tries to get a clean counterparty name from OFX data.
func (p *Parser) extractPayeeName(tx ofxgo.Transaction) string {
	// Prefer PAYEE if available (cleaner name)
	if tx.Payee != nil && tx.Payee.Name != "" {
		return string(tx.Payee.Name)
	}

	name := strings.TrimSpace(string(tx.Name))

	// Use MEMO field if NAME is generic
	if tx.Memo != "" && isGenericDescription(name) {
		name = strings.TrimSpace(string(tx.Memo))
	}

	// Remove common prefixes
	prefixes := []string{
		"BANK CREDIT ",
		"FASTER PAYMENT ",
		"BACS CREDIT ",
		"ACH CREDIT ",
		"ACH DEBIT ",
		"POS PURCHASE ",
		"DEBIT CARD PURCHASE ",
	}

	for _, prefix := range prefixes {
		if strings.HasPrefix(strings.ToUpper(name), prefix) {
			name = name[len(prefix):]
			break
		}
	}

	return strings.TrimSpace(name)
}

// isGenericDescription checks if a transaction name is too generic.
func isGenericDescription(name string) bool {
	generic := []string{
		"DEBIT",
		"CREDIT",
		"PURCHASE",
		"PAYMENT",
		"TRANSFER",
	}

	upperName := strings.ToUpper(name)
	for _, g := range generic {
		if upperName == g {
			return true
		}
	}
	return false
}
