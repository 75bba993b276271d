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

func matchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "match",
		Short: "Match bank credits to outstanding invoices",
		Long: `Match incoming bank credits against a tenant's outstanding invoices.

Each credit is scored against every eligible invoice using reference,
amount, and payee-name signals. Unambiguous high-confidence matches are
applied automatically; everything else is escalated for review.

Examples:
  ledgerkeep match --tenant acme --transaction tx-042   # Match one credit
  ledgerkeep match --tenant acme                        # Match all credits`,
		RunE: runMatch,
	}

	cmd.Flags().StringP("tenant", "t", "", "Tenant to match transactions for (required)")
	cmd.Flags().String("transaction", "", "Match a single transaction by ID")
	cmd.Flags().Bool("dry-run", false, "Classify without recording allocations")
	_ = cmd.MarkFlagRequired("tenant")

	_ = viper.BindPFlag("match.tenant", cmd.Flags().Lookup("tenant"))
	_ = viper.BindPFlag("match.transaction", cmd.Flags().Lookup("transaction"))
	_ = viper.BindPFlag("match.dry_run", cmd.Flags().Lookup("dry-run"))

	return cmd
}

func runMatch(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	tenantID := viper.GetString("match.tenant")
	transactionID := viper.GetString("match.transaction")
	dryRun := viper.GetBool("match.dry_run")

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	auditLog := initAudit()
	defer auditLog.Close()

	matcher, err := engine.NewMatcher(store, auditLog, engineConfig())
	if err != nil {
		return err
	}

	transactions, err := creditsToMatch(ctx, store, tenantID, transactionID)
	if err != nil {
		return err
	}
	if len(transactions) == 0 {
		slog.Info("No credit transactions to match", "tenant_id", tenantID)
		return nil
	}

	applied, review, noMatch := 0, 0, 0
	for _, txn := range transactions {
		decision, matchErr := matcher.Match(ctx, txn)
		if matchErr != nil {
			return fmt.Errorf("failed to match transaction %s: %w", txn.ID, matchErr)
		}

		switch decision.Action {
		case model.ActionAutoApply:
			applied++
			if !dryRun {
				slog.Info("Matched payment to invoice",
					"transaction_id", txn.ID,
					"invoice", decision.Chosen.Candidate.DisplayName(),
					"confidence", decision.Confidence)
			}
		case model.ActionReviewRequired:
			review++
		case model.ActionNoMatch:
			noMatch++
		}
	}

	slog.Info("Payment matching complete",
		"tenant_id", tenantID,
		"total", len(transactions),
		"auto_applied", applied,
		"review_required", review,
		"no_match", noMatch,
		"dry_run", dryRun)

	return nil
}

// creditsToMatch loads the requested transaction, or every credit for the
// tenant when no specific ID was given.
func creditsToMatch(ctx context.Context, store service.Storage, tenantID, transactionID string) ([]model.Transaction, error) {
	if transactionID != "" {
		txn, err := store.GetTransactionByID(ctx, tenantID, transactionID)
		if err != nil {
			return nil, fmt.Errorf("failed to load transaction %s: %w", transactionID, err)
		}
		return []model.Transaction{*txn}, nil
	}

	credit := model.DirectionCredit
	transactions, err := store.GetTransactions(ctx, tenantID, service.TransactionFilter{Direction: &credit})
	if err != nil {
		return nil, fmt.Errorf("failed to load credit transactions: %w", err)
	}
	return transactions, nil
}
