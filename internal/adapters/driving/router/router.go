// Package router parses single command lines into engine operations.
// One line in, one text block out: the same contract whether lines
// arrive from the repl, a script or a test.
package router

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
)

// textDelimiter separates the document name from its content in the
// add_text verb.
const textDelimiter = "::"

// Router dispatches command lines to the engine services.
type Router struct {
	ingest driving.IngestService
	query  driving.QueryService
	admin  driving.AdminService
	topK   int
}

// Option configures a Router.
type Option func(*Router)

// WithTopK overrides the default result count for query verbs.
func WithTopK(k int) Option {
	return func(r *Router) {
		if k > 0 {
			r.topK = k
		}
	}
}

// New creates a router over the engine services.
func New(ingest driving.IngestService, query driving.QueryService, admin driving.AdminService, opts ...Option) *Router {
	r := &Router{ingest: ingest, query: query, admin: admin, topK: 5}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// verbs maps each command verb to its handler. Populated in Execute
// rather than at package level so handlers can be methods.
func (r *Router) verbs() map[string]func(ctx context.Context, tail string) (string, error) {
	return map[string]func(ctx context.Context, tail string) (string, error){
		"add":      r.runAdd,
		"add_text": r.runAddText,
		"ask":      r.runAsk,
		"search":   r.runSearch,
		"summary":  r.runSummary,
		"status":   r.runStatus,
		"list":     r.runList,
		"export":   r.runExport,
		"import":   r.runImport,
		"clear":    r.runClear,
		"remove":   r.runRemove,
		"help":     r.runHelp,
	}
}

// Execute parses one command line and runs it, returning the text
// block to print.
func (r *Router) Execute(ctx context.Context, line string) (string, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return "", fmt.Errorf("%w: empty command", domain.ErrUnknownCommand)
	}

	verb, tail, _ := strings.Cut(line, " ")
	verb = strings.ToLower(verb)
	tail = strings.TrimSpace(tail)

	handler, ok := r.verbs()[verb]
	if !ok {
		return "", fmt.Errorf("%w: %q (valid: %s)", domain.ErrUnknownCommand, verb, strings.Join(r.verbList(), ", "))
	}
	return handler(ctx, tail)
}

// Verbs returns the sorted list of supported verbs.
func (r *Router) Verbs() []string {
	return r.verbList()
}

func (r *Router) verbList() []string {
	verbs := r.verbs()
	names := make([]string, 0, len(verbs))
	for name := range verbs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Router) runAdd(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: add requires a path", domain.ErrInvalidInput)
	}
	report, err := r.ingest.AddPath(ctx, unquote(tail))
	if err != nil {
		return "", err
	}
	return FormatReport(report), nil
}

func (r *Router) runAddText(ctx context.Context, tail string) (string, error) {
	name, content, found := strings.Cut(tail, textDelimiter)
	if !found {
		return "", fmt.Errorf("%w: add_text requires '<name> %s <content>'", domain.ErrInvalidInput, textDelimiter)
	}
	doc, err := r.ingest.AddText(ctx, unquote(strings.TrimSpace(name)), unquote(strings.TrimSpace(content)))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("Added %q (%d chunks)", strings.TrimPrefix(doc.SourcePath, "text://"), len(doc.Chunks)), nil
}

func (r *Router) runAsk(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: ask requires a question", domain.ErrEmptyQuery)
	}
	answer, err := r.query.Ask(ctx, unquote(tail), r.topK)
	if err != nil {
		return "", err
	}
	return FormatAnswer(answer), nil
}

func (r *Router) runSearch(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: search requires a query", domain.ErrEmptyQuery)
	}
	results, err := r.query.Search(ctx, unquote(tail), r.topK)
	if err != nil {
		return "", err
	}
	return FormatResults(results), nil
}

func (r *Router) runSummary(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: summary requires a topic", domain.ErrEmptyQuery)
	}
	return r.query.Summarize(ctx, unquote(tail), r.topK)
}

func (r *Router) runStatus(ctx context.Context, _ string) (string, error) {
	status, err := r.admin.Status(ctx)
	if err != nil {
		return "", err
	}
	return FormatStatus(status), nil
}

func (r *Router) runList(ctx context.Context, _ string) (string, error) {
	summaries, err := r.admin.List(ctx)
	if err != nil {
		return "", err
	}
	return FormatList(summaries), nil
}

func (r *Router) runExport(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: export requires a destination path", domain.ErrInvalidInput)
	}
	dest := unquote(tail)
	if err := r.admin.Export(ctx, dest); err != nil {
		return "", err
	}
	return fmt.Sprintf("Exported index to %s", dest), nil
}

func (r *Router) runImport(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: import requires a source path", domain.ErrInvalidInput)
	}
	src := unquote(tail)
	if err := r.admin.Import(ctx, src); err != nil {
		return "", err
	}
	return fmt.Sprintf("Imported index from %s", src), nil
}

func (r *Router) runClear(ctx context.Context, _ string) (string, error) {
	if err := r.admin.Clear(ctx); err != nil {
		return "", err
	}
	return "Index cleared", nil
}

func (r *Router) runRemove(ctx context.Context, tail string) (string, error) {
	if tail == "" {
		return "", fmt.Errorf("%w: remove requires a document id or path", domain.ErrInvalidInput)
	}
	target := unquote(tail)
	if err := r.ingest.Remove(ctx, target); err != nil {
		return "", err
	}
	return fmt.Sprintf("Removed %s", target), nil
}

func (r *Router) runHelp(_ context.Context, _ string) (string, error) {
	return "Commands: " + strings.Join(r.verbList(), ", "), nil
}

// unquote strips one matching pair of double quotes, so
// `add_text "t1" :: "some content"` and the unquoted form behave the
// same.
func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		return s[1 : len(s)-1]
	}
	return s
}
