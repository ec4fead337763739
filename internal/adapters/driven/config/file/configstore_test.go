package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfigStore_CreatesDirectory(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "config")

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "config.toml"), store.Path())

	info, err := os.Stat(dir)
	require.NoError(t, err)
	assert.True(t, info.IsDir())
}

func TestSetAndGet(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	require.NoError(t, store.Set(KeyTopK, 10))
	require.NoError(t, store.Set(KeyDataDir, "/var/lib/termrag"))
	require.NoError(t, store.Set(KeyVerbose, true))

	assert.Equal(t, 10, store.GetInt(KeyTopK))
	assert.Equal(t, "/var/lib/termrag", store.GetString(KeyDataDir))
	assert.True(t, store.GetBool(KeyVerbose))
}

func TestGet_MissingAndMistypedKeys(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	_, ok := store.Get("nope")
	assert.False(t, ok)
	assert.Equal(t, "", store.GetString("nope"))
	assert.Zero(t, store.GetInt("nope"))
	assert.False(t, store.GetBool("nope"))

	require.NoError(t, store.Set("mistyped", "not a number"))
	assert.Zero(t, store.GetInt("mistyped"))
	assert.False(t, store.GetBool("mistyped"))
}

func TestSetPersistsAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	require.NoError(t, store.Set(KeyCacheCapacity, 64))

	reopened, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 64, reopened.GetInt(KeyCacheCapacity))
}

func TestLoad_FlattensNestedTables(t *testing.T) {
	dir := t.TempDir()
	content := "[query]\ntop_k = 7\n\n[log]\nverbose = true\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(content), 0600))

	store, err := NewConfigStore(dir)
	require.NoError(t, err)
	assert.Equal(t, 7, store.GetInt("query.top_k"))
	assert.True(t, store.GetBool("log.verbose"))
}

func TestLoad_InvalidTOML(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("not = [valid"), 0600))

	_, err := NewConfigStore(dir)
	assert.Error(t, err)
}
