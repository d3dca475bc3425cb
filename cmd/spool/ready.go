package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/types"
)

var readyCmd = &cobra.Command{
	Use:   "ready",
	Short: "Show ready work (open issues with no unresolved blockers)",
	Run: func(cmd *cobra.Command, args []string) {
		limit, _ := cmd.Flags().GetInt("limit")

		m := requireManager()
		issues, err := m.ReadyIssues(limit)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			if issues == nil {
				issues = []*types.Issue{}
			}
			outputJSON(issues)
			return
		}

		if len(issues) == 0 {
			yellow := color.New(color.FgYellow).SprintFunc()
			fmt.Printf("%s No ready work found\n", yellow("!"))
			return
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s Ready work (%d issues with no blockers):\n", cyan("•"), len(issues))
		for i, issue := range issues {
			fmt.Printf("%d. [P%d] %s: %s\n", i+1, issue.Priority, issue.ID, issue.Title)
			if issue.Assignee != "" {
				fmt.Printf("   Assignee: %s\n", issue.Assignee)
			}
		}
	},
}

var blockedCmd = &cobra.Command{
	Use:   "blocked",
	Short: "Show issues with unresolved blockers",
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		blocked, err := m.BlockedIssues()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			if blocked == nil {
				blocked = []*types.BlockedIssue{}
			}
			outputJSON(blocked)
			return
		}

		if len(blocked) == 0 {
			green := color.New(color.FgGreen).SprintFunc()
			fmt.Printf("%s No blocked issues\n", green("✓"))
			return
		}
		red := color.New(color.FgRed).SprintFunc()
		fmt.Printf("%s Blocked issues (%d):\n", red("✗"), len(blocked))
		for _, entry := range blocked {
			fmt.Printf("[P%d] %s: %s\n", entry.Issue.Priority, entry.Issue.ID, entry.Issue.Title)
			fmt.Printf("  Blocked by %d unresolved issues:\n", len(entry.Blockers))
			for _, blocker := range entry.Blockers {
				fmt.Printf("    - %s: %s (%s)\n", blocker.ID, blocker.Title, blocker.Status)
			}
		}
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show statistics",
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		stats, err := m.Stats()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(stats)
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		green := color.New(color.FgGreen).SprintFunc()
		yellow := color.New(color.FgYellow).SprintFunc()

		fmt.Printf("%s Spool statistics:\n", cyan("•"))
		fmt.Printf("Total Issues:      %d\n", stats.TotalIssues)
		fmt.Printf("Open:              %s\n", green(fmt.Sprintf("%d", stats.OpenIssues)))
		fmt.Printf("In Progress:       %s\n", yellow(fmt.Sprintf("%d", stats.InProgressIssues)))
		fmt.Printf("Blocked (status):  %d\n", stats.BlockedIssues)
		fmt.Printf("Closed:            %d\n", stats.ClosedIssues)
		fmt.Printf("Completed:         %d\n", stats.CompletedIssues)
		fmt.Printf("Ready:             %s\n", green(fmt.Sprintf("%d", stats.ReadyIssues)))
		fmt.Printf("Blocked by deps:   %d\n", stats.BlockedByDeps)
	},
}

func init() {
	readyCmd.Flags().IntP("limit", "n", 10, "Maximum issues to show (0 for all)")
	rootCmd.AddCommand(readyCmd)
	rootCmd.AddCommand(blockedCmd)
	rootCmd.AddCommand(statsCmd)
}
