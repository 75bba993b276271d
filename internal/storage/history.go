package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
	"github.com/ledgerkeep/ledgerkeep/internal/service"
)

// SaveCategorization records an applied categorization so it can feed the
// historical signal for future transactions.
func (s *SQLiteStorage) SaveCategorization(ctx context.Context, txn model.Transaction, accountCode, accountName string, autoApplied bool) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransaction(&txn); err != nil {
		return err
	}
	if err := validateString(accountCode, "accountCode"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO categorizations (tenant_id, transaction_id, payee_name, account_code, account_name, amount, auto_applied)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		txn.TenantID,
		txn.ID,
		txn.PayeeName,
		accountCode,
		accountName,
		txn.Amount,
		autoApplied,
	)
	if err != nil {
		return fmt.Errorf("failed to save categorization for %s: %w", txn.ID, err)
	}

	return nil
}

// MostFrequentAccountCode returns the account a tenant has most often
// used for payees containing the given payee name, case-insensitively,
// or nil when there is no matching history. Frequency ties resolve to the
// lowest account code so results are deterministic.
func (s *SQLiteStorage) MostFrequentAccountCode(ctx context.Context, tenantID, payeeName string) (*service.AccountUsage, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(payeeName, "payeeName"); err != nil {
		return nil, err
	}

	var usage service.AccountUsage
	err := s.db.QueryRowContext(ctx, `
		SELECT account_code, COALESCE(account_name, ''), COUNT(*) AS uses
		FROM categorizations
		WHERE tenant_id = ? AND payee_name LIKE '%' || ? || '%'
		GROUP BY account_code
		ORDER BY uses DESC, account_code
		LIMIT 1
	`, tenantID, payeeName).Scan(&usage.AccountCode, &usage.AccountName, &usage.Count)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to query categorization history: %w", err)
	}

	return &usage, nil
}

// AccountAmountStats summarizes the amounts previously categorized to an
// account code for a tenant.
func (s *SQLiteStorage) AccountAmountStats(ctx context.Context, tenantID, accountCode string) (*service.AmountStats, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(accountCode, "accountCode"); err != nil {
		return nil, err
	}

	var (
		stats service.AmountStats
		mean  sql.NullFloat64
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), AVG(amount)
		FROM categorizations
		WHERE tenant_id = ? AND account_code = ?
	`, tenantID, accountCode).Scan(&stats.Samples, &mean)
	if err != nil {
		return nil, fmt.Errorf("failed to query amount statistics: %w", err)
	}

	if mean.Valid {
		stats.Mean = int64(mean.Float64)
	}

	return &stats, nil
}
