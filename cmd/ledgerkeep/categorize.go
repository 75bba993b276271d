package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerkeep/ledgerkeep/internal/engine"
	"github.com/ledgerkeep/ledgerkeep/internal/model"
	"github.com/ledgerkeep/ledgerkeep/internal/service"
)

func categorizeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "categorize",
		Short: "Categorize transactions against the chart of accounts",
		Long: `Categorize a tenant's bank transactions using the configured pattern
file, falling back to the tenant's categorization history.

Auto-applied categorizations are recorded so they feed the historical
signal for future transactions; everything else is escalated for review.

Examples:
  ledgerkeep categorize --tenant acme                       # All transactions
  ledgerkeep categorize --tenant acme --transaction tx-042  # One transaction`,
		RunE: runCategorize,
	}

	cmd.Flags().StringP("tenant", "t", "", "Tenant to categorize transactions for (required)")
	cmd.Flags().String("transaction", "", "Categorize a single transaction by ID")
	cmd.Flags().Bool("dry-run", false, "Classify without recording categorizations")
	_ = cmd.MarkFlagRequired("tenant")

	_ = viper.BindPFlag("categorize.tenant", cmd.Flags().Lookup("tenant"))
	_ = viper.BindPFlag("categorize.transaction", cmd.Flags().Lookup("transaction"))
	_ = viper.BindPFlag("categorize.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runCategorize(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tenantID := viper.GetString("categorize.tenant")
	transactionID := viper.GetString("categorize.transaction")
	dryRun := viper.GetBool("categorize.dry_run")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	matcher, fileVersion, err := loadPatternMatcher()
	if err != nil {
		return err
	}
	slog.Info("Loaded category patterns",
		"version", fileVersion,
		"count", len(matcher.Patterns()))

	auditLog := initAudit()
	defer auditLog.Close()

	categorizer, err := engine.NewCategorizer(matcher, store, auditLog, engineConfig())
	if err != nil {
		return err
	}

	transactions, err := transactionsToCategorize(ctx, store, tenantID, transactionID)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		slog.Info("No transactions to categorize", "tenant_id", tenantID)
		return nil
	}

	applied, review := 0, 0
	for _, txn := range transactions {
		decision, catErr := categorizer.Categorize(ctx, txn)
		if catErr != nil {
			return fmt.Errorf("failed to categorize transaction %s: %w", txn.ID, catErr)
		}

		if decision.Action != model.ActionAutoApply {
			review++
			continue
		}

		applied++
		if dryRun {
			continue
		}

		// Applying the decision is the caller's job: record the
		// categorization so it feeds the historical signal.
		account, ok := decision.Chosen.Candidate.(model.CategoryCandidate)
		if !ok {
			return fmt.Errorf("categorizer chose a non-category candidate for %s", txn.ID)
		}
		if saveErr := store.SaveCategorization(ctx, txn, account.AccountCode, account.AccountName, true); saveErr != nil {
			return fmt.Errorf("failed to record categorization for %s: %w", txn.ID, saveErr)
		}
	}

	slog.Info("Categorization complete",
		"tenant_id", tenantID,
		"total", len(transactions),
		"auto_applied", applied,
		"review_required", review,
		"dry_run", dryRun)

	return nil
}

// transactionsToCategorize loads the requested transaction, or every
// transaction for the tenant when no specific ID was given.
func transactionsToCategorize(ctx context.Context, store service.Storage, tenantID, transactionID string) ([]model.Transaction, error) {
	if transactionID != "" {
		txn, err := store.GetTransactionByID(ctx, tenantID, transactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}
		return []model.Transaction{*txn}, nil
	}

	transactions, err := store.GetTransactions(ctx, tenantID, service.TransactionFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to load transactions: %w", err)
	}
	return transactions, nil
}
