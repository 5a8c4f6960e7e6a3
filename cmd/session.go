package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/domain"
)

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Inspect or refresh the stored session",
}

var sessionCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Report whether the stored session is valid",
	Long: `Report whether the stored session is valid.

Exits with code 6 when no user is signed in.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		if !a.session.CheckSession(cmd.Context()) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s signed out\n", printer.StatusBadge("signed out"))
			return fmt.Errorf("%w: session check failed", domain.ErrNotAuthenticated)
		}
		login := ""
		if user := a.session.Current(); user != nil {
			login = " (" + user.Login + ")"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s active%s\n", printer.StatusBadge("active"), login)
		return nil
	},
}

var sessionRefreshCmd = &cobra.Command{
	Use:   "refresh",
	Short: "Refresh the stored session",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := getApp(cmd.Context())
		if err != nil {
			return err
		}
		if err := a.session.Refresh(cmd.Context()); err != nil {
			return err
		}
		printer.Success("Session refreshed")
		printer.PrintHints("session refresh")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(sessionCmd)
	sessionCmd.AddCommand(sessionCheckCmd, sessionRefreshCmd)
}
