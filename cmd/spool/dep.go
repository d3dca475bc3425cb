package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/spool-project/spool/internal/types"
)

var depCmd = &cobra.Command{
	Use:   "dep",
	Short: "Manage dependencies between issues",
}

var depAddCmd = &cobra.Command{
	Use:   "add <from-id> <to-id>",
	Short: "Add a dependency (from-id is blocked by to-id)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		depType, _ := cmd.Flags().GetString("type")

		m := requireManager()
		dep, err := m.AddDependency(args[0], args[1], types.DependencyType(depType))
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("dep add %s -> %s type=%s", dep.FromID, dep.ToID, dep.Type)

		if jsonOutput {
			outputJSON(dep)
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Added dependency: %s is blocked by %s (%s)\n",
			green("✓"), dep.FromID, dep.ToID, dep.Type)
	},
}

var depRemoveCmd = &cobra.Command{
	Use:   "remove <from-id> <to-id>",
	Short: "Remove a dependency",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		if err := m.RemoveDependency(args[0], args[1]); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		logOp("dep remove %s -> %s", args[0], args[1])

		if jsonOutput {
			outputJSON(map[string]string{"from_id": args[0], "to_id": args[1], "removed": "true"})
			return
		}
		green := color.New(color.FgGreen).SprintFunc()
		fmt.Printf("%s Removed dependency: %s -> %s\n", green("✓"), args[0], args[1])
	},
}

var depListCmd = &cobra.Command{
	Use:   "list <id>",
	Short: "Show what an issue is blocked by and what it blocks",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		m := requireManager()
		blockers, err := m.GetDependencies(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		dependents, err := m.GetDependents(args[0])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		if jsonOutput {
			if blockers == nil {
				blockers = []*types.Issue{}
			}
			if dependents == nil {
				dependents = []*types.Issue{}
			}
			outputJSON(map[string][]*types.Issue{
				"blocked_by": blockers,
				"blocks":     dependents,
			})
			return
		}

		cyan := color.New(color.FgCyan).SprintFunc()
		fmt.Printf("%s %s is blocked by %d issues:\n", cyan("•"), args[0], len(blockers))
		for _, issue := range blockers {
			printIssueLine(issue)
		}
		fmt.Printf("%s %s blocks %d issues:\n", cyan("•"), args[0], len(dependents))
		for _, issue := range dependents {
			printIssueLine(issue)
		}
	},
}

func init() {
	depAddCmd.Flags().StringP("type", "t", "blocks", "Dependency type (blocks|related|parent-child|discovered-from)")
	depCmd.AddCommand(depAddCmd)
	depCmd.AddCommand(depRemoveCmd)
	depCmd.AddCommand(depListCmd)
	rootCmd.AddCommand(depCmd)
}
