package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a .spool data directory in the current directory",
	Run: func(cmd *cobra.Command, args []string) {
		dir := dataDirArg
		if dir == "" {
			cwd, err := os.Getwd()
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			dir = filepath.Join(cwd, ".spool")
		}

		if err := os.MkdirAll(dir, 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		configPath := filepath.Join(dir, "config.yaml")
		if _, err := os.Stat(configPath); os.IsNotExist(err) {
			content := fmt.Sprintf("format-version: %s\n", FormatVersion)
			if err := os.WriteFile(configPath, []byte(content), 0o644); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
		}

		if jsonOutput {
			outputJSON(map[string]string{"data_dir": dir})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Initialized spool data directory: %s\n", green("✓"), dir)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
