package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func TestSourcesCmd_Use(t *testing.T) {
	assert.Equal(t, "sources", sourcesCmd.Use)
}

func TestSourcesCmd_HasSubcommands(t *testing.T) {
	commands := sourcesCmd.Commands()
	commandNames := make([]string, 0, len(commands))
	for _, cmd := range commands {
		commandNames = append(commandNames, cmd.Name())
	}

	assert.Contains(t, commandNames, "list")
	assert.Contains(t, commandNames, "connect")
	assert.Contains(t, commandNames, "disconnect")
	assert.Contains(t, commandNames, "reset-cursor")
}

func TestSourcesListCmd_Empty(t *testing.T) {
	oldStore := sourceStore
	sourceStore = &mockSources{}
	defer func() { sourceStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sources", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No sources connected")
}

func TestSourcesListCmd_ShowsStatus(t *testing.T) {
	oldStore := sourceStore
	sourceStore = &mockSources{sources: []domain.ConnectedSource{
		{
			ID:            "src-1",
			Provider:      domain.ProviderTeams,
			Name:          "Engineering standup",
			Active:        true,
			LastCheckedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		},
		{
			ID:       "src-2",
			Provider: domain.ProviderDrive,
			Name:     "Policy drive",
			Active:   false,
		},
	}}
	defer func() { sourceStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sources", "list"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "Engineering standup")
	assert.Contains(t, out, "last checked: 2026-03-14 09:30")
	assert.Contains(t, out, "disconnected")
	assert.Contains(t, out, "never")
}

func TestSourcesConnectCmd_RejectsUnknownProvider(t *testing.T) {
	oldStore := sourceStore
	sourceStore = &mockSources{}
	defer func() { sourceStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sources", "connect", "--provider", "dropbox"})
	defer func() {
		rootCmd.SetArgs(nil)
		connectProvider = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrUnsupportedProvider)
}

func TestSourcesConnectCmd_RequiresTeamID(t *testing.T) {
	oldStore := sourceStore
	sourceStore = &mockSources{}
	defer func() { sourceStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sources", "connect", "--provider", "teams"})
	defer func() {
		rootCmd.SetArgs(nil)
		connectProvider = ""
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "--team-id is required")
}

func TestSourcesDisconnectCmd_Deactivates(t *testing.T) {
	oldStore := sourceStore
	store := &mockSources{}
	sourceStore = store
	defer func() { sourceStore = oldStore }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sources", "disconnect", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"src-1"}, store.deactivated)
	assert.Contains(t, buf.String(), "Existing drafts are retained")
}

func TestSourcesResetCursorCmd_DelegatesToEngine(t *testing.T) {
	oldEngine := detectionEngine
	engine := &mockEngine{}
	detectionEngine = engine
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sources", "reset-cursor", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, []string{"src-1"}, engine.resets)
	assert.Contains(t, buf.String(), "full rescan")
}
