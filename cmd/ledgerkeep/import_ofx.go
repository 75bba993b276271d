package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerkeep/ledgerkeep/internal/ofx"
)

func importCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file.ofx>",
		Short: "Import bank transactions from an OFX/QFX export",
		Long: `Import bank transactions from an OFX or QFX file into a tenant's
ledger. Previously imported transactions are skipped by content hash, so
re-importing the same statement is safe.

Examples:
  ledgerkeep import --tenant acme statement.ofx`,
		Args: cobra.ExactArgs(1),
		RunE: runImport,
	}

	cmd.Flags().StringP("tenant", "t", "", "Tenant to import transactions into (required)")
	_ = cmd.MarkFlagRequired("tenant")

	_ = viper.BindPFlag("import.tenant", cmd.Flags().Lookup("tenant"))

	return cmd
}

func runImport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	tenantID := viper.GetString("import.tenant")
	path := args[0]

	f, err := os.Open(path) // #nosec G304 -- path is an operator-supplied argument
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	transactions, err := ofx.NewParser().ParseFile(ctx, f, tenantID)
	if err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if len(transactions) == 0 {
		slog.Info("No transactions found in file", "file", path)
		return nil
	}

	store, err := initStorage(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := store.Close(); closeErr != nil {
			slog.Error("Failed to close database", "error", closeErr)
		}
	}()

	if err := store.SaveTransactions(ctx, transactions); err != nil {
		return fmt.Errorf("failed to save transactions: %w", err)
	}

	slog.Info("Import complete",
		"tenant_id", tenantID,
		"file", path,
		"transactions", len(transactions))

	return nil
}
