package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [source-id]",
	Short: "Show recent sync operations for a source",
	Args:  cobra.ExactArgs(1),
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum number of operations")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	if detectionEngine == nil {
		return errors.New("detection engine not configured")
	}

	ops, err := detectionEngine.History(context.Background(), args[0], historyLimit)
	if err != nil {
		return fmt.Errorf("loading history: %w", err)
	}

	if len(ops) == 0 {
		cmd.Println("No operations recorded for this source.")
		return nil
	}

	for i := range ops {
		op := &ops[i]
		finished := "running"
		if !op.FinishedAt.IsZero() {
			finished = op.FinishedAt.UTC().Format("2006-01-02 15:04:05")
		}
		cmd.Printf("%s  %-9s %-9s %s\n", op.StartedAt.UTC().Format("2006-01-02 15:04:05"),
			op.Kind, op.State, finished)
		cmd.Printf("  %d processed, %d new, %d updated, %d failed\n",
			op.ItemsProcessed, op.ItemsCreated, op.ItemsUpdated, op.ItemsFailed)
		if op.Error != "" {
			cmd.Printf("  error: %s\n", op.Error)
		}
	}
	return nil
}
