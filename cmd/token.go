package cmd

import (
	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/domain"
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage the GitHub token stored on the server",
}

var tokenSetCmd = &cobra.Command{
	Use:   "set [token]",
	Short: "Store a GitHub personal access token",
	Long: `Store a GitHub personal access token on the server and list the
repositories it can see.

Without an argument the token comes from github.token
(BRAGCTL_GITHUB_TOKEN or BRAGCTL_GITHUB_TOKEN_FILE).`,
	Example: `  bragctl token set ghp_xxx
  BRAGCTL_GITHUB_TOKEN_FILE=/run/secrets/gh bragctl token set`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}

		token := cfg.GitHub.Token
		if len(args) == 1 {
			token = args[0]
		}
		a.wizard.SetToken(token)
		if a.wizard.State().Token == "" {
			return domain.ErrTokenRequired
		}
		if err := a.wizard.SaveToken(ctx); err != nil {
			return err
		}

		printer.Success("GitHub token saved (%d repositories visible)", len(a.wizard.State().Repositories))
		printer.PrintHints("token set")
		return nil
	},
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove the GitHub token from the server",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := getApp(ctx)
		if err != nil {
			return err
		}
		if _, err := a.requireSession(ctx); err != nil {
			return err
		}
		if err := a.wizard.ClearToken(ctx); err != nil {
			return err
		}
		printer.Success("GitHub token removed")
		printer.PrintHints("token clear")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenSetCmd, tokenClearCmd)
}
