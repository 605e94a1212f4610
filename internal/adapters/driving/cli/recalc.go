package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var recalcCmd = &cobra.Command{
	Use:   "recalc",
	Short: "Recalculate confidence for pending drafts",
	Long: `Re-runs the confidence scorer over every pending draft without
re-running enrichment. Useful after scorer changes or to refresh
recency-sensitive factors.`,
	RunE: runRecalc,
}

func init() {
	rootCmd.AddCommand(recalcCmd)
}

func runRecalc(cmd *cobra.Command, _ []string) error {
	if triageAdmin == nil {
		return errors.New("triage service not configured")
	}

	count, err := triageAdmin.RecalculateConfidence(context.Background(), orgID)
	if err != nil {
		return fmt.Errorf("recalculating confidence: %w", err)
	}

	cmd.Printf("Rescored %d pending draft(s).\n", count)
	return nil
}
