package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/mod/semver"
)

// Version is the CLI version, overridable at build time with
// -ldflags "-X main.Version=...".
var Version = "v0.3.0"

// FormatVersion is the data directory format this binary reads and
// writes. 'spool init' records it in config.yaml; a data directory
// written by a newer major format is refused rather than misread.
const FormatVersion = "v1.0.0"

// checkFormatVersion compares the recorded data format against what
// this binary supports.
func checkFormatVersion(recorded string) error {
	if recorded == "" || !semver.IsValid(recorded) {
		return nil
	}
	if semver.Major(recorded) != semver.Major(FormatVersion) {
		return fmt.Errorf("data directory format %s is not supported by this binary (format %s); upgrade spool",
			recorded, FormatVersion)
	}
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		if jsonOutput {
			outputJSON(map[string]string{
				"version":        Version,
				"format_version": FormatVersion,
			})
			return
		}
		fmt.Printf("spool %s (data format %s)\n", Version, FormatVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
