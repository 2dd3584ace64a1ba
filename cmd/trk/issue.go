package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:     "show <id>",
	GroupID: "issues",
	Short:   "Show one issue with its comments",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		issue, err := svc.GetIssue(context.Background(), parseID(args[0], "issue"))
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(issue)
			return
		}
		printIssue(issue)
	},
}

var updateCmd = &cobra.Command{
	Use:     "update <id> <field> <value>",
	GroupID: "issues",
	Short:   "Update one issue field (title, description, status, assignedTo)",
	Args:    cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		id := parseID(args[0], "issue")
		if !svc.UpdateIssueField(context.Background(), id, args[1], args[2]) {
			FatalError("could not update %s of issue #%d", args[1], id)
		}
		fmt.Printf("Updated issue #%d\n", id)
	},
}

var deleteCmd = &cobra.Command{
	Use:     "delete <id>",
	GroupID: "issues",
	Aliases: []string{"rm"},
	Short:   "Delete an issue and everything attached to it",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		id := parseID(args[0], "issue")
		if !svc.DeleteIssue(context.Background(), id) {
			FatalError("issue #%d not found", id)
		}
		fmt.Printf("Deleted issue #%d\n", id)
	},
}

var assignCmd = &cobra.Command{
	Use:     "assign <id> <user>",
	GroupID: "issues",
	Short:   "Assign an issue to a user",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		id := parseID(args[0], "issue")
		if !svc.AssignUserToIssue(context.Background(), id, args[1]) {
			FatalError("could not assign issue #%d to %q", id, args[1])
		}
		fmt.Printf("Assigned issue #%d to %s\n", id, args[1])
	},
}

var unassignCmd = &cobra.Command{
	Use:     "unassign <id>",
	GroupID: "issues",
	Short:   "Clear an issue's assignee",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		id := parseID(args[0], "issue")
		if !svc.UnassignUserFromIssue(context.Background(), id) {
			FatalError("issue #%d not found", id)
		}
		fmt.Printf("Unassigned issue #%d\n", id)
	},
}

func init() {
	rootCmd.AddCommand(showCmd, updateCmd, deleteCmd, assignCmd, unassignCmd)
}
