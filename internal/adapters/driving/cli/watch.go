package cli

import (
	"context"
	"errors"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/core/services"
)

var watchDebounce time.Duration

var watchCmd = &cobra.Command{
	Use:   "watch [path]",
	Short: "Re-index files as they change",
	Long: `Watches a file or directory tree and re-indexes documents as they are
created, modified or removed. Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", services.DefaultDebounce, "delay before re-indexing after a burst of changes")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Printf("Watching %s (ctrl-c to stop)\n", args[0])
	watcher := services.NewWatcher(ingestService, services.WithDebounce(watchDebounce))
	if err := watcher.Watch(ctx, args[0]); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
