package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

var (
	whoamiRefresh bool
	whoamiJSON    bool
)

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
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
		user, err := a.session.GetCurrentUser(ctx, whoamiRefresh)
		if err != nil {
			return err
		}

		if whoamiJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(user)
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "Hi, %s!\n", user.DisplayName())
		fmt.Fprintf(out, "  Login:        %s\n", printer.Bold(user.Login))
		if user.Name != "" {
			fmt.Fprintf(out, "  Name:         %s\n", user.Name)
		}
		token := "not configured"
		if user.HasGitHubToken {
			token = "configured"
		}
		fmt.Fprintf(out, "  GitHub token: %s\n", token)
		printer.PrintHints("whoami")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(whoamiCmd)
	whoamiCmd.Flags().BoolVar(&whoamiRefresh, "refresh", false, "bypass the cached identity")
	whoamiCmd.Flags().BoolVar(&whoamiJSON, "json", false, "print the user as JSON")
}
