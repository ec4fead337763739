package normalisers

import (
	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/normalisers/code"
	"github.com/justkidding-scripts/termrag/internal/normalisers/markup"
	"github.com/justkidding-scripts/termrag/internal/normalisers/prose"
	"github.com/justkidding-scripts/termrag/internal/normalisers/tabular"
)

// Registry maps each format kind to its normaliser.
// domain.FormatUnknown has no normaliser: unknown content yields zero
// chunks and an unindexable status.
type Registry struct {
	byKind map[domain.FormatKind]driven.Normaliser
}

// NewRegistry creates a registry with all built-in normalisers.
func NewRegistry() *Registry {
	r := &Registry{byKind: make(map[domain.FormatKind]driven.Normaliser)}
	for _, n := range []driven.Normaliser{
		code.New(),
		prose.New(),
		tabular.New(),
		markup.New(),
	} {
		r.byKind[n.Kind()] = n
	}
	return r
}

// ForKind returns the normaliser for a format kind.
func (r *Registry) ForKind(kind domain.FormatKind) (driven.Normaliser, bool) {
	n, ok := r.byKind[kind]
	return n, ok
}
