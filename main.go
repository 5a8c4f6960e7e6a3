// Package main is the entry point for bragctl CLI
package main

import (
	"os"

	"github.com/farigab/bragctl/cmd"
)

// Set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, buildTime)
	os.Exit(cmd.Execute())
}
