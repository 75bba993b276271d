package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ledgerkeep/ledgerkeep/internal/common"
	"github.com/ledgerkeep/ledgerkeep/internal/model"
	"github.com/ledgerkeep/ledgerkeep/internal/service"
)

// SaveTransactions saves multiple transactions, ignoring duplicates by
// hash so the same statement can be imported twice safely.
func (s *SQLiteStorage) SaveTransactions(ctx context.Context, transactions []model.Transaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateTransactions(transactions); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR IGNORE INTO transactions (
			id, tenant_id, hash, date, reference, payee_name, description, amount, direction
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, txn := range transactions {
		if txn.Hash == "" {
			txn.Hash = txn.GenerateHash()
		}

		if _, err := stmt.ExecContext(ctx,
			txn.ID,
			txn.TenantID,
			txn.Hash,
			txn.Date,
			txn.Reference,
			txn.PayeeName,
			txn.Description,
			txn.Amount,
			string(txn.Direction),
		); err != nil {
			return fmt.Errorf("failed to save transaction %s: %w", txn.ID, err)
		}
	}

	return tx.Commit()
}

// GetTransactionByID fetches a single transaction scoped to a tenant.
func (s *SQLiteStorage) GetTransactionByID(ctx context.Context, tenantID, id string) (*model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, hash, date, reference, payee_name, description, amount, direction
		FROM transactions
		WHERE tenant_id = ? AND id = ? AND deleted_at IS NULL
	`, tenantID, id)

	txn, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("transaction %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get transaction %s: %w", id, err)
	}

	return txn, nil
}

// GetTransactions returns a tenant's transactions, newest first, applying
// the optional filter fields.
func (s *SQLiteStorage) GetTransactions(ctx context.Context, tenantID string, filter service.TransactionFilter) ([]model.Transaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}

	query := `
		SELECT id, tenant_id, hash, date, reference, payee_name, description, amount, direction
		FROM transactions
		WHERE tenant_id = ? AND deleted_at IS NULL`
	args := []any{tenantID}

	if filter.StartDate != nil {
		query += " AND date >= ?"
		args = append(args, *filter.StartDate)
	}
	if filter.EndDate != nil {
		query += " AND date <= ?"
		args = append(args, *filter.EndDate)
	}
	if filter.Direction != nil {
		query += " AND direction = ?"
		args = append(args, string(*filter.Direction))
	}

	query += " ORDER BY date DESC, id"

	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.Transaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}

	return transactions, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scanning.
type scanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row scanner) (*model.Transaction, error) {
	var (
		txn       model.Transaction
		date      time.Time
		direction string
		reference sql.NullString
		payee     sql.NullString
	)

	if err := row.Scan(
		&txn.ID,
		&txn.TenantID,
		&txn.Hash,
		&date,
		&reference,
		&payee,
		&txn.Description,
		&txn.Amount,
		&direction,
	); err != nil {
		return nil, err
	}

	txn.Date = date
	txn.Direction = model.Direction(direction)
	txn.Reference = reference.String
	txn.PayeeName = payee.String

	return &txn, nil
}
