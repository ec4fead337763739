package cli

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddCmd_RequiresPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestAddCmd_IndexesFile(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	path := filepath.Join(t.TempDir(), "notes.txt")
	require.NoError(t, os.WriteFile(path, []byte("the quick brown fox"), 0644))

	out, err := execute(t, "add", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Indexed 1 documents")
}

func TestAddTextCmd_ThenSearch(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "add_text", "t1", "::", "the", "quick", "brown", "fox")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "t1"`)

	out, err = execute(t, "search", "quick", "fox")
	require.NoError(t, err)
	assert.Contains(t, out, "text://t1")
}

func TestSearchCmd_JSONOutput(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	defer func() { searchJSON = false }()

	_, err := execute(t, "add_text", "t1", "::", "the quick brown fox")
	require.NoError(t, err)

	out, err := execute(t, "search", "--json", "quick fox")
	require.NoError(t, err)
	assert.Contains(t, out, `"source_path": "text://t1"`)
	assert.Contains(t, out, `"score"`)
}

func TestAskCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add_text", "t1", "::", "The index persists across restarts.")
	require.NoError(t, err)

	out, err := execute(t, "ask", "does", "the", "index", "persist")
	require.NoError(t, err)
	assert.Contains(t, out, "persists")
}

func TestStatusCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "status")
	require.NoError(t, err)
	assert.Contains(t, out, "Documents:  0")
	assert.Contains(t, out, "Generation: 0")
}

func TestClearCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add_text", "t1", "::", "content")
	require.NoError(t, err)

	out, err := execute(t, "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Index cleared")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "No documents indexed.")
}

func TestExportImportCmds(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add_text", "t1", "::", "the quick brown fox")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "index.json")
	out, err := execute(t, "export", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported index to")

	_, err = execute(t, "clear")
	require.NoError(t, err)

	out, err = execute(t, "import", path)
	require.NoError(t, err)
	assert.Contains(t, out, "Imported index from")

	out, err = execute(t, "list")
	require.NoError(t, err)
	assert.Contains(t, out, "text://t1")
}

func TestRemoveCmd(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := execute(t, "add_text", "t1", "::", "content")
	require.NoError(t, err)

	out, err := execute(t, "remove", "t1")
	require.NoError(t, err)
	assert.Contains(t, out, "Removed t1")
}

func TestReplCmd_ProcessesLines(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	input := strings.NewReader("add_text t1 :: the quick brown fox\nsearch quick fox\nbogus verb\nquit\n")
	rootCmd.SetIn(input)
	defer rootCmd.SetIn(nil)

	out, err := execute(t, "repl")
	require.NoError(t, err)
	assert.Contains(t, out, `Added "t1"`)
	assert.Contains(t, out, "text://t1")
	assert.Contains(t, out, "Error:")
}

func TestVersionCmd(t *testing.T) {
	originalVersion := version
	version = "1.2.3"
	defer func() { version = originalVersion }()

	cleanup := setupTestServices()
	defer cleanup()

	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "termrag version 1.2.3")
}

func TestSearchCmd_HasLimitFlag(t *testing.T) {
	flag := searchCmd.Flags().Lookup("limit")
	require.NotNil(t, flag)
	assert.Equal(t, "n", flag.Shorthand)
}
