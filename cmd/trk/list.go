package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avigan/tracker/internal/types"
)

var listCmd = &cobra.Command{
	Use:     "list",
	GroupID: "issues",
	Aliases: []string{"ls"},
	Short:   "List issues",
	Args:    cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()
		ctx := context.Background()

		var (
			issues []*types.HydratedIssue
			err    error
		)
		switch {
		case mustFlag(cmd, "unassigned"):
			issues, err = svc.ListUnassignedIssues(ctx)
		case flagValue(cmd, "user") != "":
			issues, err = svc.FindIssuesByUser(ctx, flagValue(cmd, "user"))
		case flagValue(cmd, "status") != "":
			var status types.Status
			status, err = types.ParseStatus(flagValue(cmd, "status"))
			if err == nil {
				issues, err = svc.FindIssuesByStatus(ctx, status)
			}
		case len(flagSlice(cmd, "tag")) == 1:
			issues, err = svc.FindIssuesByTag(ctx, flagSlice(cmd, "tag")[0])
		case len(flagSlice(cmd, "tag")) > 1:
			issues, err = svc.FindIssuesByTags(ctx, flagSlice(cmd, "tag"))
		default:
			issues, err = svc.ListAllIssues(ctx)
		}
		if err != nil {
			FatalError("%v", err)
		}

		if jsonOutput(cmd) {
			printJSON(issues)
			return
		}
		if mustFlag(cmd, "by-status") {
			printByStatus(issues)
			return
		}
		if len(issues) == 0 {
			fmt.Println("No issues.")
			return
		}
		for _, issue := range issues {
			fmt.Println(issueLine(issue))
		}
	},
}

// printByStatus groups the listing under the three status headings, in
// workflow order.
func printByStatus(issues []*types.HydratedIssue) {
	for _, status := range []types.Status{types.StatusToDo, types.StatusInProgress, types.StatusDone} {
		var group []*types.HydratedIssue
		for _, issue := range issues {
			if issue.Status == status {
				group = append(group, issue)
			}
		}
		fmt.Printf("%s (%d)\n", status, len(group))
		for _, issue := range group {
			fmt.Println("  " + issueLine(issue))
		}
	}
}

func mustFlag(cmd *cobra.Command, name string) bool {
	v, _ := cmd.Flags().GetBool(name)
	return v
}

func flagValue(cmd *cobra.Command, name string) string {
	v, _ := cmd.Flags().GetString(name)
	return v
}

func flagSlice(cmd *cobra.Command, name string) []string {
	v, _ := cmd.Flags().GetStringSlice(name)
	return v
}

func init() {
	listCmd.Flags().Bool("unassigned", false, "only issues with no assignee")
	listCmd.Flags().String("user", "", "issues authored by a user (case-insensitive)")
	listCmd.Flags().String("status", "", "issues with an exact status")
	listCmd.Flags().StringSlice("tag", nil, "issues carrying the tag (repeatable; several tags must all match)")
	listCmd.Flags().Bool("by-status", false, "group output by status")
	rootCmd.AddCommand(listCmd)
}
