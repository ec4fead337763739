package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/adapters/driving/router"
)

var addCmd = &cobra.Command{
	Use:   "add [path]",
	Short: "Index a file or directory",
	Long: `Indexes the file at the given path, or every regular file under a
directory. Unchanged files are skipped; binary files are recorded as
unindexable.`,
	Args: cobra.ExactArgs(1),
	RunE: runAdd,
}

var addTextCmd = &cobra.Command{
	Use:   "add_text [name] :: [content]",
	Short: "Index literal text under a logical name",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runAddText,
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(addTextCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	report, err := ingestService.AddPath(cmd.Context(), args[0])
	if err != nil {
		return err
	}
	cmd.Println(router.FormatReport(report))
	return nil
}

func runAddText(cmd *cobra.Command, args []string) error {
	// Delegate to the router so the CLI and the repl parse the
	// name :: content form identically.
	out, err := commandRouter.Execute(cmd.Context(), "add_text "+strings.Join(args, " "))
	if err != nil {
		return err
	}
	cmd.Println(out)
	return nil
}
