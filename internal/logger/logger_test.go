package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func captureOutput(t *testing.T) *bytes.Buffer {
	t.Helper()

	buf := new(bytes.Buffer)
	SetOutput(buf)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetVerbose(false)
	})
	return buf
}

func TestDebugSuppressedByDefault(t *testing.T) {
	buf := captureOutput(t)
	SetVerbose(false)

	Debug("cursor advanced to %s", "cursor-v2")

	assert.Empty(t, buf.String())
}

func TestDebugPrintsWhenVerbose(t *testing.T) {
	buf := captureOutput(t)
	SetVerbose(true)

	Debug("cursor advanced to %s", "cursor-v2")

	assert.Equal(t, "[DEBUG] cursor advanced to cursor-v2\n", buf.String())
}

func TestInfoAndWarnRespectVerbose(t *testing.T) {
	buf := captureOutput(t)

	SetVerbose(false)
	Info("scan checked %d sources", 3)
	Warn("recognition failed")
	assert.Empty(t, buf.String())

	SetVerbose(true)
	Info("scan checked %d sources", 3)
	Warn("recognition failed")
	assert.Contains(t, buf.String(), "[INFO] scan checked 3 sources")
	assert.Contains(t, buf.String(), "[WARN] recognition failed")
}

func TestErrorAlwaysPrints(t *testing.T) {
	buf := captureOutput(t)
	SetVerbose(false)

	Error("source %s failed: %v", "src-1", "token expired")

	assert.Equal(t, "[ERROR] source src-1 failed: token expired\n", buf.String())
}

func TestSectionHeader(t *testing.T) {
	buf := captureOutput(t)
	SetVerbose(true)

	Section("detection")

	assert.Contains(t, buf.String(), "=== detection ===")
}

func TestIsVerboseTracksSetting(t *testing.T) {
	captureOutput(t)

	SetVerbose(true)
	assert.True(t, IsVerbose())
	SetVerbose(false)
	assert.False(t, IsVerbose())
}
