package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore(t *testing.T) {
	tmpDir := t.TempDir()

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(tmpDir, "config.toml"), store.Path())
}

func TestSetAndGetTypes(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyOrgID, "org-1"))
	require.NoError(t, store.Set(KeyScanInterval, 15))
	require.NoError(t, store.Set("verbose", true))

	assert.Equal(t, "org-1", store.GetString(KeyOrgID))
	assert.Equal(t, 15, store.GetInt(KeyScanInterval))
	assert.True(t, store.GetBool("verbose"))

	// Missing keys and type mismatches degrade to zero values.
	assert.Equal(t, "", store.GetString("nonexistent"))
	assert.Equal(t, 0, store.GetInt(KeyOrgID))
	assert.False(t, store.GetBool(KeyOrgID))

	_, ok := store.Get("nonexistent")
	assert.False(t, ok)
}

func TestPersistenceAcrossInstances(t *testing.T) {
	tmpDir := t.TempDir()

	store1, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	require.NoError(t, store1.Set(KeyDatabasePath, "/tmp/triago.db"))
	require.NoError(t, store1.Set(KeyScanInterval, 30))

	store2, err := NewConfigStore(tmpDir)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/triago.db", store2.GetString(KeyDatabasePath))
	assert.Equal(t, 30, store2.GetInt(KeyScanInterval))
}

func TestNestedTablesFlattenToDotKeys(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte(`org_id = "org-1"

[openai]
api_key = "sk-test"
model = "gpt-4o-mini"

[ner]
endpoint = "https://lang.example.com"
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", store.GetString(KeyOpenAIAPIKey))
	assert.Equal(t, "gpt-4o-mini", store.GetString(KeyOpenAIModel))
	assert.Equal(t, "https://lang.example.com", store.GetString(KeyNEREndpoint))
	assert.Equal(t, "org-1", store.GetString(KeyOrgID))
}

func TestGetStringSlice(t *testing.T) {
	tmpDir := t.TempDir()

	content := []byte(`[drive]
mime_types = ["application/vnd.google-apps.document", "text/markdown"]
`)
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "config.toml"), content, 0600))

	store, err := NewConfigStore(tmpDir)
	require.NoError(t, err)

	assert.Equal(t,
		[]string{"application/vnd.google-apps.document", "text/markdown"},
		store.GetStringSlice("drive.mime_types"))
	assert.Nil(t, store.GetStringSlice("nonexistent"))
}

func TestFilePermissions(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("test", "value"))

	info, err := os.Stat(store.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestLoadCorruptedFile(t *testing.T) {
	tmpDir := t.TempDir()
	err := os.WriteFile(filepath.Join(tmpDir, "config.toml"), []byte("not toml {{{[["), 0600)
	require.NoError(t, err)

	store, err := NewConfigStore(tmpDir)
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestLoadMissingFileStartsEmpty(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("any_key")
	assert.False(t, ok)
}

func TestOverwriteValue(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set("key", "original"))
	require.NoError(t, store.Set("key", "updated"))
	assert.Equal(t, "updated", store.GetString("key"))
}
