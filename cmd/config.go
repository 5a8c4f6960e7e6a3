package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/farigab/bragctl/internal/output"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Long: `Display the current bragctl configuration.

Secrets are masked.

Examples:
  bragctl config                # Show all config
  bragctl config --path         # Show config file path
  bragctl config --json         # Output as JSON`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)

	configCmd.Flags().Bool("path", false, "show config file path")
	configCmd.Flags().Bool("json", false, "output as JSON")
}

func runConfig(cmd *cobra.Command, args []string) error {
	showPath, _ := cmd.Flags().GetBool("path")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	if showPath {
		configFile := cfg.File
		if configFile == "" {
			printer.Info("No config file found (using defaults)")
		} else {
			printer.Info("Config file: %s", configFile)
		}
		return nil
	}

	masked := *cfg
	masked.GitHub.Token = maskSecret(cfg.GitHub.Token)

	if jsonOutput {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(masked)
	}

	printer.Header("Current Configuration")

	table := output.NewTableWithWriter(cmd.OutOrStdout(), []string{"KEY", "VALUE"})
	table.AddRows([][]string{
		{"api.base_url", masked.API.BaseURL},
		{"api.timeout", masked.API.Timeout.String()},
		{"api.rate_limit", fmt.Sprint(masked.API.RateLimit)},
		{"api.burst", fmt.Sprint(masked.API.Burst)},
		{"session.cache_ttl", masked.Session.CacheTTL.String()},
		{"session.cookie_name", masked.Session.CookieName},
		{"session.credentials_file", masked.Session.CredentialsFile},
		{"login.callback_port", fmt.Sprint(masked.Login.CallbackPort)},
		{"login.timeout", masked.Login.Timeout.String()},
		{"import.concurrency", fmt.Sprint(masked.Import.Concurrency)},
		{"report.max_prompt_length", fmt.Sprint(masked.Report.MaxPromptLength)},
		{"report.default_type", masked.Report.DefaultType},
		{"github.token", masked.GitHub.Token},
		{"logging.level", masked.Logging.Level},
		{"logging.format", masked.Logging.Format},
		{"output.colors", fmt.Sprint(masked.Output.Colors)},
		{"telemetry.enabled", fmt.Sprint(masked.Telemetry.Enabled)},
		{"telemetry.otlp_endpoint", masked.Telemetry.OTLPEndpoint},
		{"telemetry.service_name", masked.Telemetry.ServiceName},
		{"telemetry.sample_ratio", fmt.Sprint(masked.Telemetry.SampleRatio)},
	})
	table.Render()
	return nil
}

// maskSecret keeps the last four characters of long secrets.
func maskSecret(s string) string {
	switch {
	case s == "":
		return ""
	case len(s) <= 8:
		return "****"
	default:
		return "****" + s[len(s)-4:]
	}
}
