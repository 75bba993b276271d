package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

func patternsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "patterns",
		Short: "Inspect the configured categorization patterns",
	}

	cmd.AddCommand(patternsListCmd())
	cmd.AddCommand(patternsCheckCmd())

	return cmd
}

func patternsListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the loaded categorization patterns",
		RunE: func(_ *cobra.Command, _ []string) error {
			matcher, fileVersion, err := loadPatternMatcher()
			if err != nil {
				return err
			}

			patterns := matcher.Patterns()
			fmt.Printf("Pattern file version %s, %d patterns\n\n", fileVersion, len(patterns))
			for _, p := range patterns {
				flags := ""
				if p.RequiresReview {
					flags = " [requires review]"
				}
				fmt.Printf("%-20s %-40s -> %s %s (confidence %d)%s\n",
					p.ID, p.Pattern, p.AccountCode, p.AccountName, p.Confidence, flags)
			}
			return nil
		},
	}
}

func patternsCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check",
		Short: "Dry-run the pattern set against a sample payee and description",
		Long: `Evaluate the loaded pattern set against a sample transaction without
touching the database or the audit trail.

Examples:
  ledgerkeep patterns check --payee "Acme Hosting" --description "monthly server invoice" --amount 2900`,
		RunE: runPatternsCheck,
	}

	cmd.Flags().String("payee", "", "Sample payee name")
	cmd.Flags().String("description", "", "Sample transaction description")
	cmd.Flags().Int64("amount", 0, "Sample amount in minor currency units")
	cmd.Flags().Bool("credit", false, "Treat the sample as a credit rather than a debit")

	_ = viper.BindPFlag("patterns.check.payee", cmd.Flags().Lookup("payee"))
	_ = viper.BindPFlag("patterns.check.description", cmd.Flags().Lookup("description"))
	_ = viper.BindPFlag("patterns.check.amount", cmd.Flags().Lookup("amount"))
	_ = viper.BindPFlag("patterns.check.credit", cmd.Flags().Lookup("credit"))

	return cmd
}

func runPatternsCheck(_ *cobra.Command, _ []string) error {
	matcher, fileVersion, err := loadPatternMatcher()
	if err != nil {
		return err
	}

	direction := model.DirectionDebit
	if viper.GetBool("patterns.check.credit") {
		direction = model.DirectionCredit
	}

	sample := model.Transaction{
		PayeeName:   viper.GetString("patterns.check.payee"),
		Description: viper.GetString("patterns.check.description"),
		Amount:      viper.GetInt64("patterns.check.amount"),
		Direction:   direction,
	}

	slog.Debug("Checking sample against pattern file", "version", fileVersion)

	matched, ok := matcher.Match(sample)
	if !ok {
		fmt.Println("No pattern matched")
		return nil
	}

	fmt.Printf("Matched pattern %s (%s)\n", matched.ID, matched.Name)
	fmt.Printf("  Account:    %s %s\n", matched.AccountCode, matched.AccountName)
	fmt.Printf("  Confidence: %d\n", matched.Confidence)
	if matched.RequiresReview {
		fmt.Printf("  Flagged for review: %s\n", matched.ReviewReason)
	}

	return nil
}
