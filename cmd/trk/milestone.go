package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avigan/tracker/internal/service"
)

var milestoneCmd = &cobra.Command{
	Use:     "milestone",
	GroupID: "planning",
	Aliases: []string{"ms"},
	Short:   "Manage milestones",
}

var milestoneAddCmd = &cobra.Command{
	Use:   "add <name> <start-date> <end-date>",
	Short: "Create a milestone",
	Args:  cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		description, _ := cmd.Flags().GetString("description")
		milestone, err := svc.CreateMilestone(context.Background(), args[0], description, args[1], args[2])
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(milestone)
			return
		}
		printMilestone(milestone)
	},
}

var milestoneListCmd = &cobra.Command{
	Use:   "list",
	Short: "List milestones with their issues",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		milestones, err := svc.ListAllMilestones(context.Background())
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(milestones)
			return
		}
		if len(milestones) == 0 {
			fmt.Println("No milestones.")
			return
		}
		for _, m := range milestones {
			printMilestone(m)
		}
	},
}

var milestoneShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a milestone and its member issues",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()
		ctx := context.Background()

		id := parseID(args[0], "milestone")
		milestone, err := svc.GetMilestone(ctx, id)
		if err != nil {
			FatalError("%v", err)
		}
		issues, err := svc.GetIssuesForMilestone(ctx, id)
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(map[string]any{"milestone": milestone, "issues": issues})
			return
		}
		printMilestone(milestone)
		for _, issue := range issues {
			fmt.Println("  " + issueLine(issue))
		}
	},
}

var milestoneUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update milestone fields (at least one flag required)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		var update service.MilestoneUpdate
		if cmd.Flags().Changed("name") {
			v, _ := cmd.Flags().GetString("name")
			update.Name = &v
		}
		if cmd.Flags().Changed("description") {
			v, _ := cmd.Flags().GetString("description")
			update.Description = &v
		}
		if cmd.Flags().Changed("start") {
			v, _ := cmd.Flags().GetString("start")
			update.StartDate = &v
		}
		if cmd.Flags().Changed("end") {
			v, _ := cmd.Flags().GetString("end")
			update.EndDate = &v
		}

		id := parseID(args[0], "milestone")
		if !svc.UpdateMilestone(context.Background(), id, update) {
			FatalError("could not update milestone #%d (pass at least one of --name/--description/--start/--end)", id)
		}
		fmt.Printf("Updated milestone #%d\n", id)
	},
}

var milestoneDeleteCmd = &cobra.Command{
	Use:     "delete <id>",
	Aliases: []string{"rm"},
	Short:   "Delete a milestone",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		cascade, _ := cmd.Flags().GetBool("cascade")
		id := parseID(args[0], "milestone")
		if !svc.DeleteMilestone(context.Background(), id, cascade) {
			FatalError("milestone #%d not found", id)
		}
		fmt.Printf("Deleted milestone #%d\n", id)
	},
}

var milestoneLinkCmd = &cobra.Command{
	Use:   "link <milestone-id> <issue-id>",
	Short: "Add an issue to a milestone",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		milestoneID := parseID(args[0], "milestone")
		issueID := parseID(args[1], "issue")
		if !svc.AddIssueToMilestone(context.Background(), milestoneID, issueID) {
			FatalError("could not add issue #%d to milestone #%d", issueID, milestoneID)
		}
		fmt.Printf("Added issue #%d to milestone #%d\n", issueID, milestoneID)
	},
}

var milestoneUnlinkCmd = &cobra.Command{
	Use:   "unlink <milestone-id> <issue-id>",
	Short: "Remove an issue from a milestone",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		milestoneID := parseID(args[0], "milestone")
		issueID := parseID(args[1], "issue")
		if !svc.RemoveIssueFromMilestone(context.Background(), milestoneID, issueID) {
			FatalError("issue #%d is not in milestone #%d", issueID, milestoneID)
		}
		fmt.Printf("Removed issue #%d from milestone #%d\n", issueID, milestoneID)
	},
}

func init() {
	milestoneAddCmd.Flags().StringP("description", "d", "", "milestone description")
	milestoneUpdateCmd.Flags().String("name", "", "new name")
	milestoneUpdateCmd.Flags().String("description", "", "new description")
	milestoneUpdateCmd.Flags().String("start", "", "new start date")
	milestoneUpdateCmd.Flags().String("end", "", "new end date")
	milestoneDeleteCmd.Flags().Bool("cascade", false, "also delete the milestone's issues")
	milestoneCmd.AddCommand(milestoneAddCmd, milestoneListCmd, milestoneShowCmd,
		milestoneUpdateCmd, milestoneDeleteCmd, milestoneLinkCmd, milestoneUnlinkCmd)
	rootCmd.AddCommand(milestoneCmd)
}
