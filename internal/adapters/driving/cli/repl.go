package cli

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Read command lines from stdin",
	Long: `Reads one command per line from stdin and prints one text block per
command. Errors are reported inline and do not end the session; exit
with "quit" or EOF.`,
	Args: cobra.NoArgs,
	RunE: runRepl,
}

func init() {
	rootCmd.AddCommand(replCmd)
}

func runRepl(cmd *cobra.Command, _ []string) error {
	return repl(cmd, cmd.InOrStdin())
}

func repl(cmd *cobra.Command, in io.Reader) error {
	scanner := bufio.NewScanner(in)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for {
		fmt.Fprint(cmd.OutOrStdout(), "> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if line == "quit" || line == "exit" {
			break
		}

		out, err := commandRouter.Execute(cmd.Context(), line)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStdout(), "Error: %v\n", err)
			continue
		}
		fmt.Fprintln(cmd.OutOrStdout(), out)
	}
	return scanner.Err()
}
