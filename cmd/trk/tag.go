package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avigan/tracker/internal/types"
)

var tagCmd = &cobra.Command{
	Use:     "tag",
	GroupID: "issues",
	Short:   "Tag and untag issues",
}

var tagAddCmd = &cobra.Command{
	Use:   "add <issue-id> <name>",
	Short: "Attach a tag to an issue",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		color, _ := cmd.Flags().GetString("color")
		issueID := parseID(args[0], "issue")
		if !svc.AddTagToIssue(context.Background(), issueID, types.Tag{Name: args[1], Color: color}) {
			FatalError("could not tag issue #%d with %q", issueID, args[1])
		}
		fmt.Printf("Tagged issue #%d with %s\n", issueID, args[1])
	},
}

var tagRemoveCmd = &cobra.Command{
	Use:     "remove <issue-id> <name>",
	Aliases: []string{"rm"},
	Short:   "Detach a tag from an issue",
	Args:    cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		issueID := parseID(args[0], "issue")
		if !svc.RemoveTagFromIssue(context.Background(), issueID, args[1]) {
			FatalError("issue #%d does not carry tag %q", issueID, args[1])
		}
		fmt.Printf("Removed tag %s from issue #%d\n", args[1], issueID)
	},
}

func init() {
	tagAddCmd.Flags().String("color", "", "tag color")
	tagCmd.AddCommand(tagAddCmd, tagRemoveCmd)
	rootCmd.AddCommand(tagCmd)
}
