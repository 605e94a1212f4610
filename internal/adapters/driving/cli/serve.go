package cli

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/triago-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/triago-cli/internal/core/services"
)

var serveInterval time.Duration

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the background detection daemon",
	Long: `Runs the scheduler in the foreground, periodically checking every
active source on its configured frequency. Stop with Ctrl+C.

The scan interval defaults to the scan_interval_minutes config value.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().DurationVar(&serveInterval, "interval", 0, "scheduler tick interval (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	if detectionEngine == nil {
		return errors.New("detection engine not configured")
	}

	interval := serveInterval
	if interval <= 0 && configStore != nil {
		if minutes := configStore.GetInt(file.KeyScanInterval); minutes > 0 {
			interval = time.Duration(minutes) * time.Minute
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sched := services.NewScheduler(detectionEngine, interval)
	sched.Start(ctx)
	cmd.Println("Detection daemon running. Press Ctrl+C to stop.")

	<-ctx.Done()
	cmd.Println("\nShutting down...")
	sched.Stop()
	return nil
}
