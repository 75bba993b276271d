package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/ledgerkeep/ledgerkeep/internal/audit"
	"github.com/ledgerkeep/ledgerkeep/internal/model"
)

func escalationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalations",
		Short: "List escalations awaiting human review",
		Long: `List escalations from the append-only escalation log. By default only
pending escalations are shown.

Examples:
  ledgerkeep escalations                  # Pending escalations, all tenants
  ledgerkeep escalations --tenant acme    # Pending escalations for one tenant
  ledgerkeep escalations --all            # Include resolved escalations`,
		RunE: runEscalations,
	}

	cmd.Flags().StringP("tenant", "t", "", "Only show escalations for this tenant")
	cmd.Flags().Bool("all", false, "Include resolved escalations")

	_ = viper.BindPFlag("escalations.tenant", cmd.Flags().Lookup("tenant"))
	_ = viper.BindPFlag("escalations.all", cmd.Flags().Lookup("all"))

	return cmd
}

func runEscalations(_ *cobra.Command, _ []string) error {
	tenantID := viper.GetString("escalations.tenant")
	includeResolved := viper.GetBool("escalations.all")

	entries, err := audit.ReadEscalations(auditDir())
	if err != nil {
		return err
	}

	shown := 0
	for _, entry := range entries {
		if tenantID != "" && entry.TenantID != tenantID {
			continue
		}
		if !includeResolved && entry.Status != model.EscalationPending {
			continue
		}

		shown++
		fmt.Printf("%s  %-22s  tenant=%s  subject=%s\n    %s\n",
			entry.Timestamp.Format("2006-01-02 15:04:05"),
			entry.Type,
			entry.TenantID,
			entry.SubjectID,
			entry.Reason)
	}

	if shown == 0 {
		fmt.Println("No escalations to review")
	}

	return nil
}
