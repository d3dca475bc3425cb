package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/types"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List issues with optional filters",
	Run: func(cmd *cobra.Command, args []string) {
		var filter types.IssueFilter

		if cmd.Flags().Changed("status") {
			statusStr, _ := cmd.Flags().GetString("status")
			status := types.NormalizeStatus(statusStr)
			if !status.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid status %q\n", statusStr)
				os.Exit(1)
			}
			filter.Status = &status
		}
		// Changed() so P0 filters correctly.
		if cmd.Flags().Changed("priority") {
			priorityStr, _ := cmd.Flags().GetString("priority")
			priority, err := parsePriority(priorityStr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			filter.Priority = &priority
		}
		if cmd.Flags().Changed("type") {
			typeStr, _ := cmd.Flags().GetString("type")
			issueType := types.IssueType(typeStr)
			if !issueType.IsValid() {
				fmt.Fprintf(os.Stderr, "Error: invalid issue type %q\n", typeStr)
				os.Exit(1)
			}
			filter.IssueType = &issueType
		}
		if cmd.Flags().Changed("assignee") {
			assignee, _ := cmd.Flags().GetString("assignee")
			filter.Assignee = &assignee
		}

		m := requireManager()
		issues, err := m.List(filter)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		// Listing itself has no defined order; sort here for stable
		// human output.
		sort.Slice(issues, func(i, j int) bool {
			if issues[i].Priority != issues[j].Priority {
				return issues[i].Priority < issues[j].Priority
			}
			return issues[i].CreatedAt.Before(issues[j].CreatedAt)
		})

		if jsonOutput {
			if issues == nil {
				issues = []*types.Issue{}
			}
			outputJSON(issues)
			return
		}

		if len(issues) == 0 {
			fmt.Println("No issues found")
			return
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s %d issues:\n", cyan("•"), len(issues))
		for _, issue := range issues {
			printIssueLine(issue)
		}
	},
}

func init() {
	listCmd.Flags().StringP("status", "s", "", "Filter by status")
	listCmd.Flags().StringP("priority", "p", "", "Filter by priority")
	listCmd.Flags().StringP("type", "t", "", "Filter by issue type")
	listCmd.Flags().StringP("assignee", "a", "", "Filter by assignee")
	rootCmd.AddCommand(listCmd)
}
