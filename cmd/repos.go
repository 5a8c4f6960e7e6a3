package cmd

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/output"
)

var (
	reposToken string
	reposJSON  bool
)

var reposCmd = &cobra.Command{
	Use:   "repos",
	Short: "List repositories visible to the GitHub token",
	Long: `List the repositories the GitHub token can import from.

Uses --token (or github.token) when given, otherwise the token already
stored on the server.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		if err := loadRepositories(ctx, a, reposToken); err != nil {
			return err
		}

		repos := a.wizard.State().Repositories
		if reposJSON {
			return json.NewEncoder(cmd.OutOrStdout()).Encode(repos)
		}
		if printer.IsQuiet() {
			// One name per line for scripts.
			for _, r := range repos {
				fmt.Fprintln(cmd.OutOrStdout(), r)
			}
			return nil
		}
		if len(repos) == 0 {
			printer.Warning("No repositories found")
			return nil
		}

		table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"#", "REPOSITORY"})
		for i, r := range repos {
			table.AddRow([]string{fmt.Sprint(i + 1), r})
		}
		table.Render()
		printer.PrintHints("repos")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(reposCmd)
	reposCmd.Flags().StringVar(&reposToken, "token", "", "GitHub personal access token")
	reposCmd.Flags().BoolVar(&reposJSON, "json", false, "print repositories as a JSON array")
}

// loadRepositories fills the wizard's repository list, from an explicit
// token or the one the server already holds.
func loadRepositories(ctx context.Context, a *app, token string) error {
	if _, err := a.requireSession(ctx); err != nil {
		return err
	}
	if token == "" {
		token = cfg.GitHub.Token
	}
	if token != "" {
		a.wizard.SetToken(token)
		return a.wizard.LoadRepositories(ctx)
	}

	loaded, err := a.wizard.CheckForSavedToken(ctx)
	if err != nil {
		return err
	}
	if !loaded {
		return &output.CLIError{
			Summary:    "no GitHub token configured",
			Suggestion: "Run 'bragctl token set <token>' or pass --token",
			ExitCode:   output.ExitUsageError,
		}
	}
	return nil
}
