package cli

import (
	"github.com/spf13/cobra"

	"github.com/justkidding-scripts/termrag/internal/adapters/driving/router"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show index and cache statistics",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		status, err := adminService.Status(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(router.FormatStatus(status))
		return nil
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List indexed documents in insertion order",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		summaries, err := adminService.List(cmd.Context())
		if err != nil {
			return err
		}
		cmd.Println(router.FormatList(summaries))
		return nil
	},
}

var exportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the index to a portable artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := adminService.Export(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Exported index to %s\n", args[0])
		return nil
	},
}

var importCmd = &cobra.Command{
	Use:   "import [path]",
	Short: "Replace the index with an exported artifact",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := adminService.Import(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Imported index from %s\n", args[0])
		return nil
	},
}

var clearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all indexed documents",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := adminService.Clear(cmd.Context()); err != nil {
			return err
		}
		cmd.Println("Index cleared")
		return nil
	},
}

var removeCmd = &cobra.Command{
	Use:   "remove [id|path]",
	Short: "Remove one document by id, path or text name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := ingestService.Remove(cmd.Context(), args[0]); err != nil {
			return err
		}
		cmd.Printf("Removed %s\n", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(clearCmd)
	rootCmd.AddCommand(removeCmd)
}
