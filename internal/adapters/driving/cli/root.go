// Package cli provides the cobra command tree for the triago binary.
// Services are injected once at startup through SetServices; commands
// fail with a clear error when run before wiring.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
	"github.com/custodia-labs/triago-cli/internal/logger"
)

// version is set at build time via ldflags.
var version = "dev"

// Injected services. Set by SetServices from the composition root,
// swapped for mocks in tests.
var (
	detectionEngine driving.DetectionEngine
	triageAdmin     driving.TriageAdmin
	sourceStore     driven.SourceStore
	configStore     driven.ConfigStore
	orgID           string
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "triago",
	Short: "Content ingestion and review triage",
	Long: `Triago watches connected sources (Teams channels, shared drives) for
changed content, redacts and enriches it into draft documents, and
queues the drafts for human review ordered by machine confidence.`,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Services bundles everything the command tree needs.
type Services struct {
	Detection driving.DetectionEngine
	Triage    driving.TriageAdmin
	Sources   driven.SourceStore
	Config    driven.ConfigStore
	OrgID     string
}

// SetServices wires the injected services into the command tree.
func SetServices(s Services) {
	detectionEngine = s.Detection
	triageAdmin = s.Triage
	sourceStore = s.Sources
	configStore = s.Config
	orgID = s.OrgID
}

// SetVersion overrides the build version string.
func SetVersion(v string) {
	version = v
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
