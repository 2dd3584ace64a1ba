package main

import (
	"context"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:     "create <title>",
	GroupID: "issues",
	Aliases: []string{"new"},
	Short:   "Create a new issue",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()
		ctx := context.Background()

		author, _ := cmd.Flags().GetString("author")
		if author == "" {
			FatalError("--author is required")
		}
		description, _ := cmd.Flags().GetString("description")

		issue, err := svc.CreateIssue(ctx, args[0], description, author)
		if err != nil {
			FatalError("%v", err)
		}

		// Optional initial status, applied after creation so the alias
		// normalization of the update path is reused.
		if status, _ := cmd.Flags().GetString("status"); status != "" {
			if !svc.UpdateIssueField(ctx, issue.ID, "status", status) {
				FatalError("invalid initial status %q", status)
			}
			issue, err = svc.GetIssue(ctx, issue.ID)
			if err != nil {
				FatalError("%v", err)
			}
		}

		if jsonOutput(cmd) {
			printJSON(issue)
			return
		}
		printIssue(issue)
	},
}

func init() {
	createCmd.Flags().StringP("author", "a", "", "author user name (required)")
	createCmd.Flags().StringP("description", "d", "", "long-form description, stored as the first comment")
	createCmd.Flags().StringP("status", "s", "", "initial status (To Be Done, In Progress, Done, or 1/2/3)")
	rootCmd.AddCommand(createCmd)
}
