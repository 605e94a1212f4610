package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

func TestHistoryCmd_Use(t *testing.T) {
	assert.Equal(t, "history [source-id]", historyCmd.Use)
}

func TestHistoryCmd_RequiresSourceID(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"history"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestHistoryCmd_Empty(t *testing.T) {
	oldEngine := detectionEngine
	detectionEngine = &mockEngine{}
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "No operations recorded")
}

func TestHistoryCmd_PrintsOperations(t *testing.T) {
	oldEngine := detectionEngine
	engine := &mockEngine{ops: []domain.SyncOperation{
		{
			SourceID:       "src-1",
			Kind:           domain.SyncManual,
			State:          domain.SyncCompleted,
			StartedAt:      time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC),
			FinishedAt:     time.Date(2026, 3, 14, 9, 1, 30, 0, time.UTC),
			ItemsProcessed: 3,
			ItemsCreated:   1,
		},
		{
			SourceID:  "src-1",
			Kind:      domain.SyncScheduled,
			State:     domain.SyncFailed,
			StartedAt: time.Date(2026, 3, 13, 9, 0, 0, 0, time.UTC),
			Error:     "token expired",
		},
	}}
	detectionEngine = engine
	defer func() { detectionEngine = oldEngine }()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"history", "src-1"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Equal(t, "src-1", engine.lastSource)
	out := buf.String()
	assert.Contains(t, out, "2026-03-14 09:00:00")
	assert.Contains(t, out, "3 processed, 1 new")
	assert.Contains(t, out, "error: token expired")
}
