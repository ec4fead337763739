// Package cli wires the cobra command tree to the engine services.
// Commands print one text block per invocation; the repl command feeds
// whole lines through the command router instead.
package cli

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/adapters/driven/cache/lru"
	"github.com/justkidding-scripts/termrag/internal/adapters/driven/config/file"
	"github.com/justkidding-scripts/termrag/internal/adapters/driven/storage/memory"
	"github.com/justkidding-scripts/termrag/internal/adapters/driven/storage/sqlite"
	"github.com/justkidding-scripts/termrag/internal/adapters/driving/router"
	"github.com/justkidding-scripts/termrag/internal/core/domain"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driven"
	"github.com/justkidding-scripts/termrag/internal/core/ports/driving"
	"github.com/justkidding-scripts/termrag/internal/core/services"
	"github.com/justkidding-scripts/termrag/internal/embedding/hashing"
	"github.com/justkidding-scripts/termrag/internal/logger"
	"github.com/justkidding-scripts/termrag/internal/normalisers"
	"github.com/justkidding-scripts/termrag/internal/postprocessors/chunker"
)

// version is set at build time via -ldflags.
var version = "dev"

var (
	flagVerbose bool
	flagDataDir string
	flagMemory  bool
)

var (
	configStore   driven.ConfigStore
	docStore      driven.DocumentStore
	ingestService driving.IngestService
	queryService  driving.QueryService
	adminService  driving.AdminService
	commandRouter *router.Router
)

var rootCmd = &cobra.Command{
	Use:   "termrag",
	Short: "Local document indexing and retrieval",
	Long: `termrag indexes local documents into deterministic embeddings and
answers similarity queries over them. Everything runs offline.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRunE: func(*cobra.Command, []string) error {
		if docStore != nil {
			return docStore.Close()
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "verbose logging to stderr")
	rootCmd.PersistentFlags().StringVar(&flagDataDir, "data-dir", "", "index data directory (default ~/.termrag/data)")
	rootCmd.PersistentFlags().BoolVar(&flagMemory, "memory", false, "use an in-memory index (nothing persists)")
}

// setup builds the engine: config, store, embedder, cache, services,
// router. Runs before every command.
func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(flagVerbose)

	cfg, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	configStore = cfg
	if !flagVerbose && cfg.GetBool(file.KeyVerbose) {
		logger.SetVerbose(true)
	}

	dataDir := flagDataDir
	if dataDir == "" {
		dataDir = cfg.GetString(file.KeyDataDir)
	}

	if flagMemory {
		docStore = memory.NewDocumentStore()
	} else {
		store, err := sqlite.NewStore(dataDir)
		if err != nil {
			if !errors.Is(err, domain.ErrIndexCorrupted) {
				return fmt.Errorf("opening index: %w", err)
			}
			cmd.PrintErrln("Warning: index was corrupted and has been reset")
		}
		docStore = store
	}

	var cacheOpts []lru.Option
	if capacity := cfg.GetInt(file.KeyCacheCapacity); capacity > 0 {
		cacheOpts = append(cacheOpts, lru.WithCapacity(capacity))
	}
	cache := lru.New(cacheOpts...)

	var chunkOpts []chunker.Option
	if size := cfg.GetInt(file.KeyMaxChunkSize); size > 0 {
		chunkOpts = append(chunkOpts, chunker.WithMaxChunkSize(size))
	}

	embedder := hashing.New()
	ingestService = services.NewIngest(docStore, normalisers.NewClassifier(), normalisers.NewRegistry(), chunker.New(chunkOpts...), embedder)
	queryService = services.NewQuery(docStore, embedder, cache)
	adminService = services.NewAdmin(docStore, cache)

	var routerOpts []router.Option
	if k := cfg.GetInt(file.KeyTopK); k > 0 {
		routerOpts = append(routerOpts, router.WithTopK(k))
	}
	commandRouter = router.New(ingestService, queryService, adminService, routerOpts...)
	return nil
}

// topK resolves the per-command result limit: flag when set, config
// default otherwise.
func topK(flagValue int) int {
	if flagValue > 0 {
		return flagValue
	}
	if configStore != nil {
		if k := configStore.GetInt(file.KeyTopK); k > 0 {
			return k
		}
	}
	return services.DefaultTopK
}

// joinArgs glues multi-word arguments back into one query string.
func joinArgs(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
