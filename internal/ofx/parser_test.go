package ofx

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aclindsa/ofxgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// Sample OFX data for testing.
const sampleBankOFX = `OFXHEADER:100
DATA:OFXSGML
VERSION:102
SECURITY:NONE
ENCODING:USASCII
CHARSET:1252
COMPRESSION:NONE
OLDFILEUID:NONE
NEWFILEUID:NONE

<OFX>
<SIGNONMSGSRSV1>
<SONRS>
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<DTSERVER>20240315120000[0:GMT]
<LANGUAGE>ENG
</SONRS>
</SIGNONMSGSRSV1>
<BANKMSGSRSV1>
<STMTTRNRS>
<TRNUID>1
<STATUS>
<CODE>0
<SEVERITY>INFO
</STATUS>
<STMTRS>
<CURDEF>GBP
<BANKACCTFROM>
<BANKID>123456789
<ACCTID>1234567890
<ACCTTYPE>CHECKING
</BANKACCTFROM>
<BANKTRANLIST>
<DTSTART>20240101120000[0:GMT]
<DTEND>20240131120000[0:GMT]
<STMTTRN>
<TRNTYPE>CREDIT
<DTPOSTED>20240115120000[0:GMT]
<TRNAMT>1250.00
<FITID>2024011501
<REFNUM>INV-00123
<NAME>BANK CREDIT ACME LTD
</STMTTRN>
<STMTTRN>
<TRNTYPE>DEBIT
<DTPOSTED>20240120120000[0:GMT]
<TRNAMT>-125.50
<FITID>2024012001
<NAME>POS PURCHASE CITY HARDWARE
</STMTTRN>
<STMTTRN>
<TRNTYPE>CHECK
<DTPOSTED>20240125120000[0:GMT]
<TRNAMT>-500.00
<FITID>2024012501
<CHECKNUM>1234
<NAME>CHECK #1234
</STMTTRN>
</BANKTRANLIST>
<LEDGERBAL>
<BALAMT>1000.00
<DTASOF>20240131120000[0:GMT]
</LEDGERBAL>
</STMTRS>
</STMTTRNRS>
</BANKMSGSRSV1>
</OFX>`

func TestParseFile(t *testing.T) {
	tests := []struct {
		name          string
		ofxData       string
		tenantID      string
		expectedCount int
		expectedError bool
	}{
		{
			name:          "valid bank statement",
			ofxData:       sampleBankOFX,
			tenantID:      "tenant-1",
			expectedCount: 3,
			expectedError: false,
		},
		{
			name:          "missing tenant",
			ofxData:       sampleBankOFX,
			tenantID:      "",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "invalid OFX data",
			ofxData:       "not valid OFX",
			tenantID:      "tenant-1",
			expectedCount: 0,
			expectedError: true,
		},
		{
			name:          "empty OFX",
			ofxData:       "",
			tenantID:      "tenant-1",
			expectedCount: 0,
			expectedError: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := NewParser()
			reader := strings.NewReader(tt.ofxData)

			transactions, err := parser.ParseFile(context.Background(), reader, tt.tenantID)

			if tt.expectedError {
				assert.Error(t, err)
			} else {
				require.NoError(t, err)
				assert.Len(t, transactions, tt.expectedCount)
			}
		})
	}
}

func TestParseBankTransactions(t *testing.T) {
	parser := NewParser()
	reader := strings.NewReader(sampleBankOFX)

	transactions, err := parser.ParseFile(context.Background(), reader, "tenant-1")
	require.NoError(t, err)
	require.Len(t, transactions, 3)

	// Incoming payment: credit, amount in minor units, prefix stripped
	tx1 := transactions[0]
	assert.Equal(t, "2024011501", tx1.ID)
	assert.Equal(t, "tenant-1", tx1.TenantID)
	assert.Equal(t, model.DirectionCredit, tx1.Direction)
	assert.Equal(t, int64(125000), tx1.Amount)
	assert.Equal(t, "INV-00123", tx1.Reference)
	assert.Equal(t, "ACME LTD", tx1.PayeeName)
	assert.NotEmpty(t, tx1.Hash)
	assert.Equal(t, 2024, tx1.Date.Year())
	assert.Equal(t, time.January, tx1.Date.Month())
	assert.Equal(t, 15, tx1.Date.Day())

	// Card purchase: debit magnitude, no reference
	tx2 := transactions[1]
	assert.Equal(t, "2024012001", tx2.ID)
	assert.Equal(t, model.DirectionDebit, tx2.Direction)
	assert.Equal(t, int64(12550), tx2.Amount)
	assert.Empty(t, tx2.Reference)
	assert.Equal(t, "CITY HARDWARE", tx2.PayeeName)

	// Check: falls back to the check number as reference
	tx3 := transactions[2]
	assert.Equal(t, "2024012501", tx3.ID)
	assert.Equal(t, model.DirectionDebit, tx3.Direction)
	assert.Equal(t, int64(50000), tx3.Amount)
	assert.Equal(t, "1234", tx3.Reference)
}

func TestExtractPayeeName(t *testing.T) {
	parser := NewParser()

	tests := []struct {
		name     string
		input    string
		memo     string
		expected string
	}{
		{
			name:     "remove BANK CREDIT prefix",
			input:    "BANK CREDIT ACME LTD",
			expected: "ACME LTD",
		},
		{
			name:     "remove FASTER PAYMENT prefix",
			input:    "FASTER PAYMENT J SMITH",
			expected: "J SMITH",
		},
		{
			name:     "remove POS prefix",
			input:    "POS PURCHASE CITY HARDWARE",
			expected: "CITY HARDWARE",
		},
		{
			name:     "keep clean name",
			input:    "NETFLIX.COM",
			expected: "NETFLIX.COM",
		},
		{
			name:     "generic name falls back to memo",
			input:    "PAYMENT",
			memo:     "BACS CREDIT WIDGETS LTD",
			expected: "WIDGETS LTD",
		},
		{
			name:     "trim whitespace",
			input:    "  AMAZON.CO.UK  ",
			expected: "AMAZON.CO.UK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tx := ofxgo.Transaction{
				Name: ofxgo.String(tt.input),
				Memo: ofxgo.String(tt.memo),
			}
			result := parser.extractPayeeName(tx)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestTransactionDeduplication(t *testing.T) {
	// Identical economic content under different bank IDs hashes the same
	tx1 := model.Transaction{
		ID:          "TX001",
		TenantID:    "tenant-1",
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Description: "BANK CREDIT ACME LTD",
		Amount:      125000,
		Direction:   model.DirectionCredit,
	}
	tx1.Hash = tx1.GenerateHash()

	tx2 := tx1
	tx2.ID = "TX002"
	tx2.Hash = tx2.GenerateHash()
	assert.Equal(t, tx1.Hash, tx2.Hash)

	// Different amount produces a different hash
	tx3 := tx1
	tx3.Amount = 125001
	tx3.Hash = tx3.GenerateHash()
	assert.NotEqual(t, tx1.Hash, tx3.Hash)

	// Different tenant produces a different hash
	tx4 := tx1
	tx4.TenantID = "tenant-2"
	tx4.Hash = tx4.GenerateHash()
	assert.NotEqual(t, tx1.Hash, tx4.Hash)
}

func TestPreprocessOFX(t *testing.T) {
	parser := NewParser()

	input := "\n\nOFXHEADER:100\n<SEVERITY>Info</SEVERITY>\n<DTSERVER\n"
	got := parser.preprocessOFX(input)

	assert.True(t, strings.HasPrefix(got, "OFXHEADER:100"))
	assert.Contains(t, got, "<SEVERITY>INFO</SEVERITY>")
	assert.Contains(t, got, "<DTSERVER>")
}
