package cli

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/adapters/driven/cache/lru"
	"github.com/justkidding-scripts/termrag/internal/adapters/driven/storage/memory"
	"github.com/justkidding-scripts/termrag/internal/adapters/driving/router"
	"github.com/justkidding-scripts/termrag/internal/core/services"
	"github.com/justkidding-scripts/termrag/internal/embedding/hashing"
	"github.com/justkidding-scripts/termrag/internal/normalisers"
	"github.com/justkidding-scripts/termrag/internal/postprocessors/chunker"
)

// setupTestServices wires the command tree to an in-memory engine and
// disables the real setup hook. The returned cleanup restores state.
func setupTestServices() func() {
	prevPre := rootCmd.PersistentPreRunE
	prevPost := rootCmd.PersistentPostRunE
	rootCmd.PersistentPreRunE = func(*cobra.Command, []string) error { return nil }
	rootCmd.PersistentPostRunE = func(*cobra.Command, []string) error { return nil }

	store := memory.NewDocumentStore()
	cache := lru.New()
	embedder := hashing.New()

	docStore = store
	ingestService = services.NewIngest(store, normalisers.NewClassifier(), normalisers.NewRegistry(), chunker.New(), embedder)
	queryService = services.NewQuery(store, embedder, cache)
	adminService = services.NewAdmin(store, cache)
	commandRouter = router.New(ingestService, queryService, adminService)

	return func() {
		rootCmd.PersistentPreRunE = prevPre
		rootCmd.PersistentPostRunE = prevPost
	}
}

// execute runs the root command with args and captures its output.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs(args)
	defer rootCmd.SetArgs(nil)

	err := rootCmd.Execute()
	return buf.String(), err
}
