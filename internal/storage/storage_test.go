package storage_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ledgerkeep/ledgerkeep/internal/common"
	"github.com/ledgerkeep/ledgerkeep/internal/model"
	"github.com/ledgerkeep/ledgerkeep/internal/service"
	"github.com/ledgerkeep/ledgerkeep/internal/testutil"
)

func testTransaction(id, tenantID string, amount int64, direction model.Direction) model.Transaction {
	txn := model.Transaction{
		ID:          id,
		TenantID:    tenantID,
		Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
		Reference:   "INV-00123",
		PayeeName:   "Acme Ltd",
		Description: "FASTER PAYMENT ACME LTD " + id,
		Amount:      amount,
		Direction:   direction,
	}
	txn.Hash = txn.GenerateHash()
	return txn
}

func TestSaveTransactions_ImportIsIdempotent(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	transactions := []model.Transaction{
		testTransaction("txn-1", "tenant-1", 125000, model.DirectionCredit),
		testTransaction("txn-2", "tenant-1", 4500, model.DirectionDebit),
	}

	require.NoError(t, db.SaveTransactions(ctx, transactions))

	// Re-importing the same statement must not duplicate anything.
	require.NoError(t, db.SaveTransactions(ctx, transactions))

	got, err := db.GetTransactions(ctx, "tenant-1", service.TransactionFilter{})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestSaveTransactions_Validation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	assert.Error(t, db.SaveTransactions(ctx, nil))
	assert.Error(t, db.SaveTransactions(ctx, []model.Transaction{{ID: "txn-1"}}))
}

func TestGetTransactionByID(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	saved := testTransaction("txn-1", "tenant-1", 125000, model.DirectionCredit)
	require.NoError(t, db.SaveTransactions(ctx, []model.Transaction{saved}))

	got, err := db.GetTransactionByID(ctx, "tenant-1", "txn-1")
	require.NoError(t, err)
	assert.Equal(t, saved.ID, got.ID)
	assert.Equal(t, saved.Reference, got.Reference)
	assert.Equal(t, saved.PayeeName, got.PayeeName)
	assert.Equal(t, saved.Amount, got.Amount)
	assert.Equal(t, model.DirectionCredit, got.Direction)

	// Other tenants cannot see it.
	_, err = db.GetTransactionByID(ctx, "tenant-2", "txn-1")
	assert.ErrorIs(t, err, common.ErrNotFound)

	_, err = db.GetTransactionByID(ctx, "tenant-1", "missing")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestGetTransactions_Filters(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	january := testTransaction("txn-1", "tenant-1", 125000, model.DirectionCredit)
	february := testTransaction("txn-2", "tenant-1", 4500, model.DirectionDebit)
	february.Date = time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	february.Hash = february.GenerateHash()
	other := testTransaction("txn-3", "tenant-2", 9900, model.DirectionDebit)

	require.NoError(t, db.SaveTransactions(ctx, []model.Transaction{january, february, other}))

	t.Run("newest first", func(t *testing.T) {
		got, err := db.GetTransactions(ctx, "tenant-1", service.TransactionFilter{})
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "txn-2", got[0].ID)
		assert.Equal(t, "txn-1", got[1].ID)
	})

	t.Run("by direction", func(t *testing.T) {
		credit := model.DirectionCredit
		got, err := db.GetTransactions(ctx, "tenant-1", service.TransactionFilter{Direction: &credit})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-1", got[0].ID)
	})

	t.Run("by date range", func(t *testing.T) {
		start := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
		got, err := db.GetTransactions(ctx, "tenant-1", service.TransactionFilter{StartDate: &start})
		require.NoError(t, err)
		require.Len(t, got, 1)
		assert.Equal(t, "txn-2", got[0].ID)
	})

	t.Run("with limit", func(t *testing.T) {
		got, err := db.GetTransactions(ctx, "tenant-1", service.TransactionFilter{Limit: 1})
		require.NoError(t, err)
		assert.Len(t, got, 1)
	})
}

func testInvoice(id, tenantID string, total, allocated int64, status model.InvoiceStatus) *model.Invoice {
	return &model.Invoice{
		ID:           id,
		TenantID:     tenantID,
		Number:       "INV-" + id,
		CustomerName: "Acme Ltd",
		Total:        total,
		Allocated:    allocated,
		Status:       status,
		IssuedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		DueAt:        time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC),
	}
}

func TestSaveInvoice_Upsert(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	invoice := testInvoice("1", "tenant-1", 125000, 0, model.InvoiceSent)
	require.NoError(t, db.SaveInvoice(ctx, invoice))

	invoice.Allocated = 50000
	invoice.Status = model.InvoicePartiallyPaid
	require.NoError(t, db.SaveInvoice(ctx, invoice))

	got, err := db.GetInvoiceByID(ctx, "tenant-1", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(50000), got.Allocated)
	assert.Equal(t, model.InvoicePartiallyPaid, got.Status)
	assert.Equal(t, int64(75000), got.Outstanding())
}

func TestFindEligibleInvoiceCandidates(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	invoices := []*model.Invoice{
		testInvoice("1", "tenant-1", 125000, 0, model.InvoiceSent),
		testInvoice("2", "tenant-1", 80000, 30000, model.InvoicePartiallyPaid),
		testInvoice("3", "tenant-1", 60000, 0, model.InvoiceOverdue),
		// Excluded: closed, fully allocated, draft, other tenant
		testInvoice("4", "tenant-1", 50000, 50000, model.InvoicePaid),
		testInvoice("5", "tenant-1", 40000, 40000, model.InvoiceSent),
		testInvoice("6", "tenant-1", 30000, 0, model.InvoiceDraft),
		testInvoice("7", "tenant-1", 20000, 0, model.InvoiceVoided),
		testInvoice("8", "tenant-2", 10000, 0, model.InvoiceSent),
	}
	for _, invoice := range invoices {
		require.NoError(t, db.SaveInvoice(ctx, invoice))
	}

	txn := testTransaction("txn-1", "tenant-1", 125000, model.DirectionCredit)
	candidates, err := db.FindEligibleInvoiceCandidates(ctx, txn)
	require.NoError(t, err)
	require.Len(t, candidates, 3)

	// Deterministic order: issue date, then ID.
	assert.Equal(t, "1", candidates[0].InvoiceID)
	assert.Equal(t, "2", candidates[1].InvoiceID)
	assert.Equal(t, "3", candidates[2].InvoiceID)

	// Outstanding reflects prior allocations.
	assert.Equal(t, int64(125000), candidates[0].Outstanding)
	assert.Equal(t, int64(50000), candidates[1].Outstanding)
	assert.Equal(t, "Acme Ltd", candidates[0].CounterpartyName)
}

func TestMostFrequentAccountCode(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	record := func(id, payee, code, name string, amount int64) {
		txn := testTransaction(id, "tenant-1", amount, model.DirectionDebit)
		txn.PayeeName = payee
		require.NoError(t, db.SaveCategorization(ctx, txn, code, name, true))
	}

	record("txn-1", "City Hardware Ltd", "425", "Repairs and Maintenance", 4500)
	record("txn-2", "City Hardware Ltd", "425", "Repairs and Maintenance", 5200)
	record("txn-3", "City Hardware Ltd", "453", "Office Supplies", 1200)

	t.Run("most frequent wins", func(t *testing.T) {
		usage, err := db.MostFrequentAccountCode(ctx, "tenant-1", "City Hardware")
		require.NoError(t, err)
		require.NotNil(t, usage)
		assert.Equal(t, "425", usage.AccountCode)
		assert.Equal(t, "Repairs and Maintenance", usage.AccountName)
		assert.Equal(t, 2, usage.Count)
	})

	t.Run("substring match", func(t *testing.T) {
		usage, err := db.MostFrequentAccountCode(ctx, "tenant-1", "Hardware")
		require.NoError(t, err)
		require.NotNil(t, usage)
		assert.Equal(t, "425", usage.AccountCode)
	})

	t.Run("no history", func(t *testing.T) {
		usage, err := db.MostFrequentAccountCode(ctx, "tenant-1", "Unseen Payee")
		require.NoError(t, err)
		assert.Nil(t, usage)
	})

	t.Run("other tenant sees nothing", func(t *testing.T) {
		usage, err := db.MostFrequentAccountCode(ctx, "tenant-2", "City Hardware")
		require.NoError(t, err)
		assert.Nil(t, usage)
	})

	t.Run("frequency ties resolve to the lowest code", func(t *testing.T) {
		record("txn-4", "Corner Cafe", "420", "Entertainment", 350)
		record("txn-5", "Corner Cafe", "310", "Travel", 350)

		usage, err := db.MostFrequentAccountCode(ctx, "tenant-1", "Corner Cafe")
		require.NoError(t, err)
		require.NotNil(t, usage)
		assert.Equal(t, "310", usage.AccountCode)
	})
}

func TestAccountAmountStats(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	for i, amount := range []int64{4000, 5000, 6000} {
		txn := testTransaction("txn-"+string(rune('a'+i)), "tenant-1", amount, model.DirectionDebit)
		require.NoError(t, db.SaveCategorization(ctx, txn, "425", "Repairs and Maintenance", true))
	}

	stats, err := db.AccountAmountStats(ctx, "tenant-1", "425")
	require.NoError(t, err)
	require.NotNil(t, stats)
	assert.Equal(t, 3, stats.Samples)
	assert.Equal(t, int64(5000), stats.Mean)

	empty, err := db.AccountAmountStats(ctx, "tenant-1", "999")
	require.NoError(t, err)
	require.NotNil(t, empty)
	assert.Equal(t, 0, empty.Samples)
	assert.Equal(t, int64(0), empty.Mean)
}

func TestStorage_InputValidation(t *testing.T) {
	ctx := context.Background()
	db := testutil.SetupTestDB(t)

	_, err := db.GetTransactionByID(ctx, "", "txn-1")
	assert.Error(t, err)

	_, err = db.GetTransactionByID(ctx, "tenant-1", "")
	assert.Error(t, err)

	_, err = db.MostFrequentAccountCode(ctx, "tenant-1", "")
	assert.Error(t, err)

	assert.Error(t, db.SaveInvoice(ctx, nil))

	_, err = db.FindEligibleInvoiceCandidates(ctx, model.Transaction{})
	assert.Error(t, err)
}
