package cmd

import (
	"encoding/json"
	"fmt"
	"runtime"

	"github.com/spf13/cobra"
)

var (
	commit    = "unknown"
	buildTime = "unknown"

	versionShort bool
	versionJSON  bool
)

// SetBuildInfo sets the commit hash and build time
func SetBuildInfo(c, bt string) {
	commit = c
	buildTime = bt
}

// buildInfo describes the binary and the API it is configured against.
type buildInfo struct {
	Version   string `json:"version"`
	Commit    string `json:"commit"`
	Built     string `json:"built"`
	GoVersion string `json:"goVersion"`
	Platform  string `json:"platform"`
	API       string `json:"api"`
	Config    string `json:"config,omitempty"`
	Session   string `json:"session"`
}

func currentBuildInfo() buildInfo {
	info := buildInfo{
		Version:   version,
		Commit:    commit,
		Built:     buildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
	if cfg != nil {
		info.API = cfg.API.BaseURL
		info.Config = cfg.File
		info.Session = cfg.Session.CredentialsFile
	}
	return info
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  `Print the version, build information and the brag API endpoint in use.`,
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)

	versionCmd.Flags().BoolVar(&versionShort, "short", false, "print version string only")
	versionCmd.Flags().BoolVar(&versionJSON, "json", false, "output as JSON")
}

func runVersion(cmd *cobra.Command, _ []string) error {
	w := cmd.OutOrStdout()
	if versionShort {
		fmt.Fprintln(w, version)
		return nil
	}

	info := currentBuildInfo()
	if versionJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}

	config := info.Config
	if config == "" {
		config = "(defaults)"
	}
	fmt.Fprintf(w, "bragctl version %s\n", info.Version)
	fmt.Fprintf(w, "  commit:     %s\n", info.Commit)
	fmt.Fprintf(w, "  built:      %s\n", info.Built)
	fmt.Fprintf(w, "  go version: %s\n", info.GoVersion)
	fmt.Fprintf(w, "  platform:   %s\n", info.Platform)
	fmt.Fprintf(w, "  api:        %s\n", info.API)
	fmt.Fprintf(w, "  config:     %s\n", config)
	fmt.Fprintf(w, "  session:    %s\n", info.Session)
	return nil
}
