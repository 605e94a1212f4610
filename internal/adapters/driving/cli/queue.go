package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

var queueJSON bool

var queueCmd = &cobra.Command{
	Use:   "queue",
	Short: "Show the pending review queue",
	Long: `Lists draft documents awaiting human review, newest first.
Each entry shows its confidence level: green drafts need only a light
review, yellow a standard one, red close scrutiny.`,
	RunE: runQueue,
}

func init() {
	queueCmd.Flags().BoolVar(&queueJSON, "json", false, "output the queue as JSON")
	rootCmd.AddCommand(queueCmd)
}

// Level badge styles, keyed by triage level.
var levelStyles = map[domain.ConfidenceLevel]lipgloss.Style{
	domain.LevelGreen:  lipgloss.NewStyle().Foreground(lipgloss.Color("42")),
	domain.LevelYellow: lipgloss.NewStyle().Foreground(lipgloss.Color("220")),
	domain.LevelRed:    lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
}

var mutedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))

func runQueue(cmd *cobra.Command, _ []string) error {
	if triageAdmin == nil {
		return errors.New("triage service not configured")
	}

	drafts, err := triageAdmin.PendingQueue(context.Background(), orgID)
	if err != nil {
		return fmt.Errorf("listing pending drafts: %w", err)
	}

	if queueJSON {
		return outputQueueJSON(cmd, drafts)
	}
	return outputQueueTable(cmd, drafts)
}

func outputQueueJSON(cmd *cobra.Command, drafts []domain.DraftDocument) error {
	data, err := json.MarshalIndent(drafts, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling queue: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueueTable(cmd *cobra.Command, drafts []domain.DraftDocument) error {
	if len(drafts) == 0 {
		cmd.Println("Review queue is empty.")
		return nil
	}

	cmd.Printf("Pending review (%d):\n\n", len(drafts))
	for i := range drafts {
		draft := &drafts[i]

		badge := levelStyles[draft.Confidence.Level].Render(
			fmt.Sprintf("[%s %.2f]", strings.ToUpper(string(draft.Confidence.Level)), draft.Confidence.Score))

		title := draft.Title
		if title == "" {
			title = draft.ID
		}
		marker := ""
		if draft.IsUpdate {
			marker = " (update)"
		}

		cmd.Printf("%s %s%s\n", badge, title, marker)
		cmd.Printf("   %s\n", mutedStyle.Render(fmt.Sprintf("%s · %s", draft.DocType, draft.ID)))
		if draft.Summary != "" {
			cmd.Printf("   %s\n", draft.Summary)
		}
		if len(draft.Topics) > 0 {
			cmd.Printf("   %s\n", mutedStyle.Render("topics: "+strings.Join(draft.Topics, ", ")))
		}
		if draft.PIIEntityCount > 0 {
			cmd.Printf("   %s\n", mutedStyle.Render(
				fmt.Sprintf("%d masked spans (%s)", draft.PIIEntityCount, strings.Join(draft.PIICategories, ", "))))
		}
		cmd.Println()
	}
	return nil
}
