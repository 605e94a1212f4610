package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/triago-cli/internal/connectors"
	"github.com/custodia-labs/triago-cli/internal/connectors/teams"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources",
	Short: "Manage connected sources",
	RunE:  runSourcesList,
}

var sourcesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected sources",
	RunE:  runSourcesList,
}

var sourcesConnectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Connect a new source",
	Long: `Connects a new content source.

The access token is prompted without echo. For teams sources, --team-id
is required; for drive sources, --scope limits ingestion to the given
folder IDs (repeatable, everything visible when omitted).`,
	RunE: runSourcesConnect,
}

var sourcesDisconnectCmd = &cobra.Command{
	Use:   "disconnect [source-id]",
	Short: "Disconnect a source",
	Long: `Deactivates a source. Already-ingested drafts and review history are
kept; only future checks stop.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourcesDisconnect,
}

var sourcesResetCursorCmd = &cobra.Command{
	Use:   "reset-cursor [source-id]",
	Short: "Force a full rescan on the next check",
	Args:  cobra.ExactArgs(1),
	RunE:  runSourcesResetCursor,
}

// Flags for sources connect.
var (
	connectProvider  string
	connectName      string
	connectOwner     string
	connectTeamID    string
	connectScopes    []string
	connectFrequency time.Duration
	connectTenant    string
)

func init() {
	sourcesConnectCmd.Flags().StringVar(
		&connectProvider, "provider", "", "Provider type (teams, drive)")
	sourcesConnectCmd.Flags().StringVar(
		&connectName, "name", "", "Name for the source")
	sourcesConnectCmd.Flags().StringVar(
		&connectOwner, "owner", "", "User who authorised the connection")
	sourcesConnectCmd.Flags().StringVar(
		&connectTeamID, "team-id", "", "Team identifier (teams provider)")
	sourcesConnectCmd.Flags().StringArrayVar(
		&connectScopes, "scope", nil, "Channel or folder ID to ingest (repeatable)")
	sourcesConnectCmd.Flags().DurationVar(
		&connectFrequency, "frequency", 0, "Minimum interval between checks (default 15m)")
	sourcesConnectCmd.Flags().StringVar(
		&connectTenant, "tenant", "", "Azure AD tenant (teams provider)")

	sourcesCmd.AddCommand(sourcesListCmd)
	sourcesCmd.AddCommand(sourcesConnectCmd)
	sourcesCmd.AddCommand(sourcesDisconnectCmd)
	sourcesCmd.AddCommand(sourcesResetCursorCmd)
	rootCmd.AddCommand(sourcesCmd)
}

func runSourcesList(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	sources, err := sourceStore.List(context.Background())
	if err != nil {
		return fmt.Errorf("listing sources: %w", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources connected. Run 'triago sources connect' to add one.")
		return nil
	}

	for _, src := range sources {
		status := "active"
		if !src.Active {
			status = "disconnected"
		}
		lastChecked := "never"
		if !src.LastCheckedAt.IsZero() {
			lastChecked = src.LastCheckedAt.UTC().Format("2006-01-02 15:04")
		}
		cmd.Printf("%s  %-8s %-24s %s (last checked: %s)\n",
			src.ID, src.Provider, src.Name, status, lastChecked)
	}
	return nil
}

func runSourcesConnect(cmd *cobra.Command, _ []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	provider := domain.ProviderType(connectProvider)
	switch provider {
	case domain.ProviderTeams, domain.ProviderDrive:
	default:
		return fmt.Errorf("provider must be one of: teams, drive: %w", domain.ErrUnsupportedProvider)
	}

	if provider == domain.ProviderTeams && connectTeamID == "" {
		return errors.New("--team-id is required for teams sources")
	}

	name := connectName
	if name == "" {
		name = fmt.Sprintf("%s source", provider)
	}

	cmd.Print("Access token: ")
	token := readSecret()
	cmd.Println()
	if token == "" {
		return errors.New("access token is required")
	}

	config := map[string]string{
		connectors.ConfigAccessToken: token,
	}
	if connectTeamID != "" {
		config[teams.ConfigTeamID] = connectTeamID
	}
	if connectTenant != "" {
		config["tenant_id"] = connectTenant
	}

	source := domain.ConnectedSource{
		ID:            uuid.NewString(),
		OrgID:         orgID,
		Provider:      provider,
		Name:          name,
		Owner:         connectOwner,
		ScopeIDs:      connectScopes,
		Config:        config,
		Active:        true,
		SyncFrequency: connectFrequency,
	}

	if err := sourceStore.Save(context.Background(), source); err != nil {
		return fmt.Errorf("saving source: %w", err)
	}

	cmd.Printf("Connected %s source %s (%s)\n", provider, name, source.ID)
	cmd.Println("Run 'triago check' to ingest it now.")
	return nil
}

func runSourcesDisconnect(cmd *cobra.Command, args []string) error {
	if sourceStore == nil {
		return errors.New("source store not configured")
	}

	id := args[0]
	if err := sourceStore.Deactivate(context.Background(), id); err != nil {
		return fmt.Errorf("disconnecting source: %w", err)
	}

	cmd.Printf("Source %s disconnected. Existing drafts are retained.\n", id)
	return nil
}

func runSourcesResetCursor(cmd *cobra.Command, args []string) error {
	if detectionEngine == nil {
		return errors.New("detection engine not configured")
	}

	id := args[0]
	if err := detectionEngine.ResetCursor(context.Background(), id); err != nil {
		return fmt.Errorf("resetting cursor: %w", err)
	}

	cmd.Printf("Cursor for %s cleared; the next check performs a full rescan.\n", id)
	return nil
}

//nolint:errcheck // CLI helper, error ignored for UX
func readSecret() string {
	// Try to read without echo
	if term.IsTerminal(int(os.Stdin.Fd())) {
		secret, err := term.ReadPassword(int(os.Stdin.Fd()))
		if err == nil {
			return string(secret)
		}
	}
	// Fallback to regular input
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}
