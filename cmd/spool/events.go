package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/types"
)

var eventsCmd = &cobra.Command{
	Use:   "events <id>",
	Short: "Show the audit trail for an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		events, err := m.IssueEvents(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			if events == nil {
				events = []*types.Event{}
			}
			outputJSON(events)
			return
		}

		if len(events) == 0 {
			fmt.Printf("No events for %s\n", args[0])
			return
		}
		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s %d events for %s:\n", cyan("•"), len(events), args[0])
		for _, event := range events {
			fmt.Printf("%s  %-20s actor=%s", event.Timestamp.Format("2006-01-02 15:04:05"), event.EventType, event.Actor)
			if event.SessionID != "" {
				fmt.Printf(" session=%s", event.SessionID)
			}
			fmt.Println()
		}
	},
}

var sessionsCmd = &cobra.Command{
	Use:   "sessions <id>",
	Short: "Show which external sessions have touched an issue",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		links, err := m.IssueSessions(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			outputJSON(links)
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s %d sessions touched %s:\n", cyan("•"), links.SessionCount, links.IssueID)
		for _, sessionID := range links.LinkedSessions {
			fmt.Printf("  %s:", sessionID)
			for _, eventType := range links.EventsBySession[sessionID] {
				fmt.Printf(" %s", eventType)
			}
			fmt.Println()
		}
		if links.SessionCount > 0 {
			fmt.Printf("  %s\n", links.Hint)
		}
	},
}

var sessionEndCmd = &cobra.Command{
	Use:   "session-end <id>",
	Short: "Record a session_ended event (no-op for unknown issues)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		if err := m.EmitSessionEnded(args[0]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("session-end %s", args[0])

		if jsonOutput {
			outputJSON(map[string]string{"issue_id": args[0]})
			return
		}
		fmt.Printf("Recorded session end for %s\n", args[0])
	},
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(sessionEndCmd)
}
