package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func TestCheckCmd_Use(t *testing.T) {
	assert.Equal(t, "check [source-id]", checkCmd.Use)
}

func TestCheckCmd_ErrorsWithoutEngine(t *testing.T) {
	oldEngine := detectionEngine
	detectionEngine = nil
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"check"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestCheckCmd_SingleSource(t *testing.T) {
	oldEngine := detectionEngine
	engine := &mockEngine{op: &domain.SyncOperation{
		SourceID:       "src-1",
		State:          domain.SyncCompleted,
		ItemsProcessed: 4,
		ItemsCreated:   2,
		ItemsUpdated:   1,
	}}
	detectionEngine = engine
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"check", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "src-1", engine.lastSource)
	assert.Equal(t, domain.SyncManual, engine.lastKind)
	assert.Contains(t, buf.String(), "4 processed, 2 new, 1 updated, 0 failed")
}

func TestCheckCmd_AllSources(t *testing.T) {
	oldEngine := detectionEngine
	engine := &mockEngine{ops: []domain.SyncOperation{
		{SourceID: "src-1", State: domain.SyncCompleted, ItemsProcessed: 1},
		{SourceID: "src-2", State: domain.SyncFailed, Error: "token expired"},
	}}
	detectionEngine = engine
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"check", "--force"})
	defer func() {
		rootCmd.SetArgs(nil)
		checkForce = false
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.True(t, engine.lastForce)
	assert.Contains(t, buf.String(), "src-1")
	assert.Contains(t, buf.String(), "error: token expired")
}

func TestCheckCmd_NothingDue(t *testing.T) {
	oldEngine := detectionEngine
	detectionEngine = &mockEngine{}
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"check"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No sources due")
}
