package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ledgerkeep/ledgerkeep/internal/common"
	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

// SaveInvoice inserts or replaces an invoice snapshot.
func (s *SQLiteStorage) SaveInvoice(ctx context.Context, invoice *model.Invoice) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateInvoice(invoice); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO invoices (id, tenant_id, number, customer_name, total, allocated, status, issued_at, due_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			number = excluded.number,
			customer_name = excluded.customer_name,
			total = excluded.total,
			allocated = excluded.allocated,
			status = excluded.status,
			issued_at = excluded.issued_at,
			due_at = excluded.due_at
	`,
		invoice.ID,
		invoice.TenantID,
		invoice.Number,
		invoice.CustomerName,
		invoice.Total,
		invoice.Allocated,
		string(invoice.Status),
		invoice.IssuedAt,
		invoice.DueAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save invoice %s: %w", invoice.ID, err)
	}

	return nil
}

// GetInvoiceByID fetches a single invoice scoped to a tenant.
func (s *SQLiteStorage) GetInvoiceByID(ctx context.Context, tenantID, id string) (*model.Invoice, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(tenantID, "tenantID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var (
		invoice  model.Invoice
		status   string
		issuedAt sql.NullTime
		dueAt    sql.NullTime
		customer sql.NullString
	)

	err := s.db.QueryRowContext(ctx, `
		SELECT id, tenant_id, number, customer_name, total, allocated, status, issued_at, due_at
		FROM invoices
		WHERE tenant_id = ? AND id = ? AND deleted_at IS NULL
	`, tenantID, id).Scan(
		&invoice.ID,
		&invoice.TenantID,
		&invoice.Number,
		&customer,
		&invoice.Total,
		&invoice.Allocated,
		&status,
		&issuedAt,
		&dueAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("invoice %s: %w", id, common.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get invoice %s: %w", id, err)
	}

	invoice.Status = model.InvoiceStatus(status)
	invoice.CustomerName = customer.String
	if issuedAt.Valid {
		invoice.IssuedAt = issuedAt.Time
	}
	if dueAt.Valid {
		invoice.DueAt = dueAt.Time
	}

	return &invoice, nil
}

// FindEligibleInvoiceCandidates returns open invoices with a strictly
// positive outstanding balance for the transaction's tenant, oldest
// first. Ordering is deterministic (issue date, then ID) so equal-score
// candidates resolve the same way on every run.
func (s *SQLiteStorage) FindEligibleInvoiceCandidates(ctx context.Context, txn model.Transaction) ([]model.InvoiceCandidate, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(txn.TenantID, "txn.TenantID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, number, customer_name, total - allocated
		FROM invoices
		WHERE tenant_id = ?
		  AND status IN (?, ?, ?)
		  AND total - allocated > 0
		  AND deleted_at IS NULL
		ORDER BY issued_at, id
	`,
		txn.TenantID,
		string(model.InvoiceSent),
		string(model.InvoicePartiallyPaid),
		string(model.InvoiceOverdue),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query eligible invoices: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var candidates []model.InvoiceCandidate
	for rows.Next() {
		var (
			candidate model.InvoiceCandidate
			customer  sql.NullString
		)
		if err := rows.Scan(&candidate.InvoiceID, &candidate.Number, &customer, &candidate.Outstanding); err != nil {
			return nil, fmt.Errorf("failed to scan invoice candidate: %w", err)
		}
		candidate.CounterpartyName = customer.String
		candidates = append(candidates, candidate)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate invoice candidates: %w", err)
	}

	return candidates, nil
}
