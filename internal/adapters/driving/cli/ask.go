package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/adapters/driving/router"
)

var askLimit int

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed corpus",
	Long: `Searches the index and assembles an extractive answer from the best
matching chunk, citing the contributing documents.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

var summaryCmd = &cobra.Command{
	Use:   "summary [topic]",
	Short: "Summarise the top matches for a topic",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runSummary,
}

func init() {
	askCmd.Flags().IntVarP(&askLimit, "limit", "n", 0, "maximum number of sources")
	rootCmd.AddCommand(askCmd)
	rootCmd.AddCommand(summaryCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	answer, err := queryService.Ask(cmd.Context(), joinArgs(args), topK(askLimit))
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}
	cmd.Println(router.FormatAnswer(answer))
	return nil
}

func runSummary(cmd *cobra.Command, args []string) error {
	summary, err := queryService.Summarize(cmd.Context(), joinArgs(args), topK(0))
	if err != nil {
		return fmt.Errorf("summary failed: %w", err)
	}
	cmd.Println(summary)
	return nil
}
