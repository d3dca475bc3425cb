package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/tracker"
)

var updateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update fields on an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var req tracker.UpdateRequest

		if cmd.Flags().Changed("title") {
			title, _ := cmd.Flags().GetString("title")
			req.Title = &title
		}
		if cmd.Flags().Changed("description") {
			description, _ := cmd.Flags().GetString("description")
			req.Description = &description
		}
		if cmd.Flags().Changed("status") {
			status, _ := cmd.Flags().GetString("status")
			req.Status = &status
		}
		if cmd.Flags().Changed("priority") {
			priorityStr, _ := cmd.Flags().GetString("priority")
			priority, err := parsePriority(priorityStr)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			req.Priority = &priority
		}
		if cmd.Flags().Changed("assignee") {
			assignee, _ := cmd.Flags().GetString("assignee")
			req.Assignee = &assignee
		}
		if cmd.Flags().Changed("notes") {
			notes, _ := cmd.Flags().GetString("notes")
			req.BlockingNotes = &notes
		}
		if cmd.Flags().Changed("meta") {
			metaPairs, _ := cmd.Flags().GetStringArray("meta")
			metadata, err := parseMetadata(metaPairs)
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			req.Metadata = metadata
		}

		m := requireManager()
		issue, err := m.Update(args[0], req)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("update %s status=%s priority=%d", issue.ID, issue.Status, issue.Priority)

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Updated issue: %s\n", green("✓"), issue.ID)
		printIssueDetail(issue)
	},
}

var closeCmd = &cobra.Command{
	Use:   "close <id>",
	Short: "Close an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		reason, _ := cmd.Flags().GetString("reason")

		m := requireManager()
		issue, err := m.Close(args[0], reason)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("close %s reason=%q", issue.ID, reason)

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Closed issue: %s\n", green("✓"), issue.ID)
	},
}

func init() {
	updateCmd.Flags().String("title", "", "New title")
	updateCmd.Flags().StringP("description", "d", "", "New description")
	updateCmd.Flags().StringP("status", "s", "", "New status (open|in_progress|blocked|closed|completed|pending_user_input)")
	updateCmd.Flags().StringP("priority", "p", "", "New priority (0-4 or named level)")
	updateCmd.Flags().StringP("assignee", "a", "", "New assignee")
	updateCmd.Flags().String("notes", "", "Notes about what's blocking")
	updateCmd.Flags().StringArray("meta", nil, "Metadata entry key=value to merge (repeatable)")
	rootCmd.AddCommand(updateCmd)

	closeCmd.Flags().StringP("reason", "r", "", "Reason for closing (default: Completed)")
	rootCmd.AddCommand(closeCmd)
}
