package normalisers

import (
	"bytes"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
)

// Ensure Classifier implements the interface.
var _ driven.Classifier = (*Classifier)(nil)

// Classifier detects the format kind of a raw source. Extension wins;
// extensionless content falls back to sniffing. Binary content always
// classifies as unknown.
type Classifier struct{}

// NewClassifier creates the default format classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

var extensionKinds = map[string]domain.FormatKind{
	// code
	".go": domain.FormatCode, ".py": domain.FormatCode,
	".js": domain.FormatCode, ".ts": domain.FormatCode,
	".jsx": domain.FormatCode, ".tsx": domain.FormatCode,
	".c": domain.FormatCode, ".h": domain.FormatCode,
	".cpp": domain.FormatCode, ".cc": domain.FormatCode,
	".hpp": domain.FormatCode, ".java": domain.FormatCode,
	".rs": domain.FormatCode, ".rb": domain.FormatCode,
	".sh": domain.FormatCode, ".bash": domain.FormatCode,
	".zsh": domain.FormatCode, ".sql": domain.FormatCode,
	".php": domain.FormatCode, ".swift": domain.FormatCode,
	".kt": domain.FormatCode, ".lua": domain.FormatCode,
	".pl": domain.FormatCode,

	// markup
	".md": domain.FormatMarkup, ".markdown": domain.FormatMarkup,
	".html": domain.FormatMarkup, ".htm": domain.FormatMarkup,
	".xml": domain.FormatMarkup, ".svg": domain.FormatMarkup,

	// structured / tabular data
	".csv": domain.FormatTabular, ".tsv": domain.FormatTabular,
	".json": domain.FormatTabular, ".yaml": domain.FormatTabular,
	".yml": domain.FormatTabular, ".toml": domain.FormatTabular,
	".ini": domain.FormatTabular,

	// prose
	".txt": domain.FormatProse, ".text": domain.FormatProse,
	".log": domain.FormatProse, ".rst": domain.FormatProse,
	".adoc": domain.FormatProse,
}

// Detect returns the format kind for the given path and content.
func (c *Classifier) Detect(sourcePath string, data []byte) domain.FormatKind {
	if isBinary(data) {
		return domain.FormatUnknown
	}

	if ext := strings.ToLower(filepath.Ext(sourcePath)); ext != "" {
		if kind, ok := extensionKinds[ext]; ok {
			return kind
		}
	}

	return sniff(data)
}

// sniff makes a best-effort guess for extensionless text.
func sniff(data []byte) domain.FormatKind {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	switch {
	case bytes.HasPrefix(trimmed, []byte("#!")):
		return domain.FormatCode
	case bytes.HasPrefix(trimmed, []byte("<")):
		return domain.FormatMarkup
	case bytes.HasPrefix(trimmed, []byte("{")), bytes.HasPrefix(trimmed, []byte("[")):
		return domain.FormatTabular
	default:
		return domain.FormatProse
	}
}

// isBinary treats NUL bytes or invalid UTF-8 in the leading window as
// unindexable binary content.
func isBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	window := data
	if len(window) > 8192 {
		window = window[:8192]
		// Avoid a false positive from a rune cut at the window edge.
		for i := 0; i < utf8.UTFMax && len(window) > 0 && !utf8.Valid(window); i++ {
			window = window[:len(window)-1]
		}
	}
	if bytes.IndexByte(window, 0x00) >= 0 {
		return true
	}
	return !utf8.Valid(window)
}
