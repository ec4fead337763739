package domain

import "fmt"

// FormatKind is the detected content category of a source.
// It is a closed set; classification happens once at ingestion and the
// matching normaliser is selected by kind.
type FormatKind int

const (
	// FormatUnknown covers binary or otherwise unindexable content.
	FormatUnknown FormatKind = iota

	// FormatCode is programming-language source text.
	FormatCode

	// FormatProse is plain or lightly structured natural-language text.
	FormatProse

	// FormatTabular is delimited or structured data (CSV, JSON, YAML).
	FormatTabular

	// FormatMarkup is semi-structured markup (Markdown, HTML, XML).
	FormatMarkup
)

// String returns the canonical name of the format kind.
func (k FormatKind) String() string {
	switch k {
	case FormatCode:
		return "code"
	case FormatProse:
		return "prose"
	case FormatTabular:
		return "tabular"
	case FormatMarkup:
		return "markup"
	default:
		return "unknown"
	}
}

// MarshalText encodes the kind by name for the persisted artifact.
func (k FormatKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind from its canonical name.
func (k *FormatKind) UnmarshalText(text []byte) error {
	parsed, err := ParseFormatKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// ParseFormatKind parses a canonical format name.
func ParseFormatKind(name string) (FormatKind, error) {
	switch name {
	case "code":
		return FormatCode, nil
	case "prose":
		return FormatProse, nil
	case "tabular":
		return FormatTabular, nil
	case "markup":
		return FormatMarkup, nil
	case "unknown":
		return FormatUnknown, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: format kind %q", ErrInvalidInput, name)
	}
}
