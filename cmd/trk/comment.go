package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var commentCmd = &cobra.Command{
	Use:     "comment",
	GroupID: "issues",
	Short:   "Work with issue comments",
}

var commentAddCmd = &cobra.Command{
	Use:   "add <issue-id> <text>",
	Short: "Add a comment to an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		author, _ := cmd.Flags().GetString("author")
		if author == "" {
			FatalError("--author is required")
		}
		issueID := parseID(args[0], "issue")
		comment, err := svc.AddCommentToIssue(context.Background(), issueID, args[1], author)
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(comment)
			return
		}
		fmt.Printf("Added comment %d to issue #%d\n", comment.ID, issueID)
	},
}

var commentListCmd = &cobra.Command{
	Use:   "list <issue-id>",
	Short: "List an issue's comments",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		issueID := parseID(args[0], "issue")
		comments, err := svc.GetAllComments(context.Background(), issueID)
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(comments)
			return
		}
		if len(comments) == 0 {
			fmt.Println("No comments.")
			return
		}
		for _, c := range comments {
			fmt.Printf("[%d] %s at %s: %s\n", c.ID, c.Author, formatTimestamp(c.Timestamp), c.Text)
		}
	},
}

var commentEditCmd = &cobra.Command{
	Use:   "edit <issue-id> <comment-id> <text>",
	Short: "Replace a comment's text",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		issueID := parseID(args[0], "issue")
		commentID := parseID(args[1], "comment")
		if !svc.UpdateComment(context.Background(), issueID, commentID, args[2]) {
			FatalError("could not edit comment %d on issue #%d", commentID, issueID)
		}
		fmt.Printf("Edited comment %d on issue #%d\n", commentID, issueID)
	},
}

var commentDeleteCmd = &cobra.Command{
	Use:     "delete <issue-id> <comment-id>",
	Aliases: []string{"rm"},
	Short:   "Delete a comment",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		issueID := parseID(args[0], "issue")
		commentID := parseID(args[1], "comment")
		if !svc.DeleteComment(context.Background(), issueID, commentID) {
			FatalError("comment %d on issue #%d not found", commentID, issueID)
		}
		fmt.Printf("Deleted comment %d from issue #%d\n", commentID, issueID)
	},
}

func init() {
	commentAddCmd.Flags().StringP("author", "a", "", "comment author user name (required)")
	commentCmd.AddCommand(commentAddCmd, commentListCmd, commentEditCmd, commentDeleteCmd)
	rootCmd.AddCommand(commentCmd)
}
