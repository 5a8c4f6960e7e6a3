package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/adapter/callback"
	"github.com/farigab/bragctl/internal/browser"
	"github.com/farigab/bragctl/internal/output"
)

var (
	loginNoBrowser bool
	loginSession   string
)

// openBrowser opens url in the user's browser.
var openBrowser = func(url string) error {
	return browser.NewLauncher(log).Open(context.Background(), url)
}

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with GitHub",
	Long: `Sign in through the API's GitHub OAuth flow.

A local callback server receives the session once the browser flow finishes.
Use --session to store a session value obtained elsewhere instead.`,
	Example: `  bragctl login
  bragctl login --no-browser
  bragctl login --session <value>`,
	Args: cobra.NoArgs,
	RunE: runLogin,
}

func init() {
	rootCmd.AddCommand(loginCmd)
	loginCmd.Flags().BoolVar(&loginNoBrowser, "no-browser", false, "print the login URL instead of opening a browser")
	loginCmd.Flags().StringVar(&loginSession, "session", "", "store this session value instead of running the browser flow")
}

func runLogin(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := getApp(ctx)
	if err != nil {
		return err
	}

	if loginSession != "" {
		if err := a.store.Save(loginSession); err != nil {
			return err
		}
	} else {
		srv := callback.New(a.store, callback.Options{Port: cfg.Login.CallbackPort, Logger: log})
		if err := srv.Listen(); err != nil {
			return &output.CLIError{
				Summary:    "failed to start login callback server",
				Detail:     err.Error(),
				Suggestion: "Pick a free port with login.callback_port",
				ExitCode:   output.ExitGeneral,
				Err:        err,
			}
		}

		loginURL := a.gateway.LoginURL(srv.RedirectURL())
		if loginNoBrowser {
			fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to sign in:\n  %s\n", loginURL)
		} else {
			printer.Info("Opening browser to sign in...")
			if err := openBrowser(loginURL); err != nil {
				log.Debug("failed to open browser", "error", err)
				fmt.Fprintf(cmd.OutOrStdout(), "Open this URL to sign in:\n  %s\n", loginURL)
			}
		}

		if err := srv.Wait(ctx, cfg.Login.Timeout); err != nil {
			return err
		}
	}

	a.session.Invalidate()
	user, err := a.session.GetCurrentUser(ctx, true)
	if err != nil {
		return err
	}
	printer.Success("Signed in as %s (%s)", user.DisplayName(), user.Login)
	printer.PrintHints("login")
	return nil
}
