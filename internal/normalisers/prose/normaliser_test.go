package prose

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
)

func TestNormalise_CollapsesBlankRuns(t *testing.T) {
	n := New()

	got, err := n.Normalise(context.Background(), &domain.RawSource{
		SourcePath: "/notes/a.txt",
		Data:       []byte("first paragraph\n\n\n\n\nsecond paragraph"),
	})

	require.NoError(t, err)
	assert.Equal(t, "first paragraph\n\nsecond paragraph", got)
}

func TestNormalise_PreservesParagraphBoundaries(t *testing.T) {
	n := New()

	got, err := n.Normalise(context.Background(), &domain.RawSource{
		SourcePath: "/notes/b.txt",
		Data:       []byte("one\n\ntwo"),
	})

	require.NoError(t, err)
	assert.Equal(t, "one\n\ntwo", got)
}

func TestNormalise_TrimsOuterWhitespaceAndCR(t *testing.T) {
	n := New()

	got, err := n.Normalise(context.Background(), &domain.RawSource{
		SourcePath: "/notes/c.txt",
		Data:       []byte("  \nline one  \r\nline two\r\n\n  "),
	})

	require.NoError(t, err)
	assert.Equal(t, "line one\nline two", got)
}

func TestNormalise_NilInput(t *testing.T) {
	_, err := New().Normalise(context.Background(), nil)

	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestKind(t *testing.T) {
	assert.Equal(t, domain.FormatProse, New().Kind())
}
