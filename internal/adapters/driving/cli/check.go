package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

var checkForce bool

var checkCmd = &cobra.Command{
	Use:   "check [source-id]",
	Short: "Run change detection now",
	Long: `Triggers a manual change-detection run.
If a source ID is provided, only that source is checked. Otherwise every
active source whose check is due runs; use --force to bypass the
frequency policy.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().BoolVar(&checkForce, "force", false, "check every active source regardless of schedule")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	if detectionEngine == nil {
		return errors.New("detection engine not configured")
	}

	ctx := context.Background()

	if len(args) > 0 {
		sourceID := args[0]
		cmd.Printf("Checking source: %s...\n", sourceID)

		op, err := detectionEngine.DetectOne(ctx, sourceID, domain.SyncManual)
		if err != nil {
			return fmt.Errorf("check failed: %w", err)
		}

		printOperation(cmd, op)
		return nil
	}

	cmd.Println("Checking sources...")
	ops, err := detectionEngine.DetectAll(ctx, domain.SyncManual, checkForce)
	if err != nil {
		return fmt.Errorf("check failed: %w", err)
	}

	if len(ops) == 0 {
		cmd.Println("No sources due for checking. Use --force to check anyway.")
		return nil
	}
	for i := range ops {
		printOperation(cmd, &ops[i])
	}
	return nil
}

func printOperation(cmd *cobra.Command, op *domain.SyncOperation) {
	cmd.Printf("%s: %s (%d processed, %d new, %d updated, %d failed)\n",
		op.SourceID, op.State,
		op.ItemsProcessed, op.ItemsCreated, op.ItemsUpdated, op.ItemsFailed)
	if op.Error != "" {
		cmd.Printf("  error: %s\n", op.Error)
	}
	for _, itemErr := range op.ItemErrors {
		cmd.Printf("  item: %s\n", itemErr)
	}
}
