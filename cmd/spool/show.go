package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a single issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		issue, err := m.Get(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if issue == nil {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Fprintf(os.Stderr, "%s Issue not found: %s\n", yellow("!"), args[0])
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(issue)
			return
		}
		printIssueDetail(issue)
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
