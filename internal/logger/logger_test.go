package logger

import (
	"bytes"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func resetLogger() {
	SetVerbose(false)
	SetOutput(os.Stderr)
}

func TestDebug_SilentByDefault(t *testing.T) {
	defer resetLogger()

	buf := new(bytes.Buffer)
	SetOutput(buf)

	Debug("should not appear")

	assert.Empty(t, buf.String())
}

func TestDebug_PrintsWhenVerbose(t *testing.T) {
	defer resetLogger()

	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetVerbose(true)

	Debug("indexing %d chunks", 3)

	assert.Contains(t, buf.String(), "[DEBUG] indexing 3 chunks")
}

func TestInfoAndWarn_Prefixes(t *testing.T) {
	defer resetLogger()

	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetVerbose(true)

	Info("loaded store")
	Warn("checksum mismatch")

	out := buf.String()
	assert.Contains(t, out, "[INFO] loaded store")
	assert.Contains(t, out, "[WARN] checksum mismatch")
}

func TestSection_Header(t *testing.T) {
	defer resetLogger()

	buf := new(bytes.Buffer)
	SetOutput(buf)
	SetVerbose(true)

	Section("Query Execution")

	assert.Contains(t, buf.String(), "=== Query Execution ===")
}

func TestIsVerbose(t *testing.T) {
	defer resetLogger()

	assert.False(t, IsVerbose())
	SetVerbose(true)
	assert.True(t, IsVerbose())
}
