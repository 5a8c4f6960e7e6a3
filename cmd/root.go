// Package cmd contains all CLI commands for bragctl
package cmd

import (
	"context"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/config"
	"github.com/farigab/bragctl/internal/logger"
	"github.com/farigab/bragctl/internal/output"
)

var (
	cfgFile   string
	verbose   bool
	quiet     bool
	colorFlag string
	apiURL    string
	cfg       *config.Config
	log       *slog.Logger
	printer   *output.Printer
	nav       *navigator
	version   = "dev"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bragctl",
	Short: "GitHub activity import and AI reporting CLI",
	Long: `bragctl signs you in to the brag API, imports your GitHub activity and
generates AI summaries of what you shipped.

Example usage:
  bragctl login                              # Sign in with GitHub in the browser
  bragctl token set ghp_xxx                  # Store a personal access token
  bragctl repos                              # List repositories visible to the token
  bragctl import --all                       # Import pull requests, issues and commits
  bragctl report --preset lastMonth          # Executive summary of last month
  bragctl report --preset thisYear --type TECHNICAL --html report.html`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig(cmd)
	},
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signalContext()
	defer stop()

	err := rootCmd.ExecuteContext(ctx)
	code := output.ExitSuccess
	if err != nil {
		code = reportError(err)
	}
	closeApp(context.WithoutCancel(ctx))
	return code
}

// SetVersion sets the version string for the CLI
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is .bragctl.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress informational output")
	rootCmd.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "API base URL (overrides api.base_url)")
}

// initConfig reads in config file and ENV variables, then prepares logging,
// output and navigation for the command about to run.
func initConfig(cmd *cobra.Command) error {
	current = nil
	mode, err := output.ParseColorMode(colorFlag)
	if err != nil {
		return &output.CLIError{Summary: err.Error(), ExitCode: output.ExitUsageError}
	}

	cfg, err = config.Load(cfgFile)
	if err != nil {
		return &output.CLIError{
			Summary:    "invalid configuration",
			Detail:     err.Error(),
			Suggestion: "Check .bragctl.yaml syntax or use --config flag",
			ExitCode:   output.ExitConfigError,
			Err:        err,
		}
	}
	if apiURL != "" {
		cfg.API.BaseURL = strings.TrimRight(apiURL, "/")
	}

	level := cfg.Logging.Level
	if verbose {
		level = "debug"
	}
	log = logger.Init(cmd.ErrOrStderr(), logger.Options{Level: level, Format: cfg.Logging.Format})

	printer = output.NewPrinterWithOptions(output.PrinterOptions{
		ColorMode:    mode,
		ConfigColors: cfg.Output.Colors,
		Quiet:        quiet,
		Out:          cmd.OutOrStdout(),
		Err:          cmd.ErrOrStderr(),
	})
	nav = newNavigator(routeFor(cmd), printer)

	log.Debug("configuration loaded",
		"api_base_url", cfg.API.BaseURL,
		"credentials_file", cfg.Session.CredentialsFile,
		"route", nav.CurrentRoute(),
	)
	return nil
}

func reportError(err error) int {
	cliErr := mapError(err)
	p := printer
	if p == nil {
		p = output.NewPrinter(false)
	}
	if !alreadyReported(err) {
		p.FormatError(cliErr)
	}
	if verbose && cliErr.Err != nil && log != nil {
		log.Debug("command failed", "error", cliErr.Err)
	}
	return cliErr.ExitCode
}
