package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/cobra/doc"
)

var docsCmd = &cobra.Command{
	Use:    "docs",
	Short:  "Generate man pages or Markdown reference",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		dir, _ := cmd.Flags().GetString("output")

		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory: %w", err)
		}

		switch format {
		case "man":
			header := &doc.GenManHeader{Title: "BRAGCTL", Section: "1", Source: "bragctl " + version}
			return doc.GenManTree(rootCmd, header, dir)
		case "markdown":
			return doc.GenMarkdownTree(rootCmd, dir)
		default:
			return fmt.Errorf("unknown docs format %q: must be man or markdown", format)
		}
	},
}

func init() {
	rootCmd.AddCommand(docsCmd)
	docsCmd.Flags().String("format", "markdown", "output format: man, markdown")
	docsCmd.Flags().String("output", "./docs", "output directory")
}
