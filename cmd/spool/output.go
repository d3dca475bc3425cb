package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spool-project/spool/internal/types"
)

// outputJSON prints v as indented JSON on stdout.
func outputJSON(v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error encoding JSON: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(string(data))
}

// printIssueLine prints the one-line summary used by list-style
// commands.
func printIssueLine(issue *types.Issue) {
	fmt.Printf("[P%d] %s: %s (%s)\n", issue.Priority, issue.ID, issue.Title, issue.Status)
}

// printIssueDetail prints the full field breakdown for a single issue.
func printIssueDetail(issue *types.Issue) {
	fmt.Printf("%s: %s\n", issue.ID, issue.Title)
	fmt.Printf("  Status:   %s\n", issue.Status)
	fmt.Printf("  Priority: P%d\n", issue.Priority)
	fmt.Printf("  Type:     %s\n", issue.IssueType)
	if issue.Assignee != "" {
		fmt.Printf("  Assignee: %s\n", issue.Assignee)
	}
	if issue.Description != "" {
		fmt.Printf("  Description: %s\n", issue.Description)
	}
	if issue.ParentID != "" {
		fmt.Printf("  Parent: %s\n", issue.ParentID)
	}
	if issue.DiscoveredFrom != "" {
		fmt.Printf("  Discovered from: %s\n", issue.DiscoveredFrom)
	}
	if issue.BlockingNotes != "" {
		fmt.Printf("  Blocking notes: %s\n", issue.BlockingNotes)
	}
	fmt.Printf("  Created: %s\n", issue.CreatedAt.Format("2006-01-02 15:04:05"))
	fmt.Printf("  Updated: %s\n", issue.UpdatedAt.Format("2006-01-02 15:04:05"))
	if issue.ClosedAt != nil {
		fmt.Printf("  Closed:  %s\n", issue.ClosedAt.Format("2006-01-02 15:04:05"))
	}
}
