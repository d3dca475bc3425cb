package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/tracker"
	"github.com/spool-project/spool/internal/types"
)

var createCmd = &cobra.Command{
	Use:   "create <title>",
	Short: "Create a new issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		description, _ := cmd.Flags().GetString("description")
		priorityStr, _ := cmd.Flags().GetString("priority")
		issueType, _ := cmd.Flags().GetString("type")
		assignee, _ := cmd.Flags().GetString("assignee")
		parentID, _ := cmd.Flags().GetString("parent")
		discoveredFrom, _ := cmd.Flags().GetString("discovered-from")
		metaPairs, _ := cmd.Flags().GetStringArray("meta")

		priority, err := parsePriority(priorityStr)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		metadata, err := parseMetadata(metaPairs)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		m := requireManager()
		issue, err := m.Create(tracker.CreateRequest{
			Title:          args[0],
			Description:    description,
			Priority:       priority,
			IssueType:      types.IssueType(issueType),
			Assignee:       assignee,
			ParentID:       parentID,
			DiscoveredFrom: discoveredFrom,
			Metadata:       metadata,
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("create %s %q", issue.ID, issue.Title)

		if jsonOutput {
			outputJSON(issue)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Created issue: %s\n", green("✓"), issue.ID)
		fmt.Printf("  Title: %s\n", issue.Title)
		fmt.Printf("  Priority: P%d\n", issue.Priority)
		fmt.Printf("  Status: %s\n", issue.Status)
	},
}

func init() {
	createCmd.Flags().StringP("description", "d", "", "Issue description")
	createCmd.Flags().StringP("priority", "p", "2", "Priority (0-4 or critical|high|medium|low|deferred)")
	createCmd.Flags().StringP("type", "t", "task", "Issue type (bug|feature|task|epic|chore)")
	createCmd.Flags().StringP("assignee", "a", "", "Assignee")
	createCmd.Flags().String("parent", "", "Parent issue ID")
	createCmd.Flags().String("discovered-from", "", "Issue this was discovered from")
	createCmd.Flags().StringArray("meta", nil, "Metadata entry key=value (repeatable)")
	rootCmd.AddCommand(createCmd)
}
