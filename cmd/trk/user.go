package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var userCmd = &cobra.Command{
	Use:     "user",
	GroupID: "people",
	Short:   "Manage users",
}

var userAddCmd = &cobra.Command{
	Use:   "add <name> <role>",
	Short: "Create a user (or update the role of an existing one)",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		user, err := svc.CreateUser(context.Background(), args[0], args[1])
		if err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("User %s (%s)\n", user.Name, user.Role)
	},
}

var userListCmd = &cobra.Command{
	Use:   "list",
	Short: "List users",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		users, err := svc.ListAllUsers(context.Background())
		if err != nil {
			FatalError("%v", err)
		}
		if jsonOutput(cmd) {
			printJSON(users)
			return
		}
		if len(users) == 0 {
			fmt.Println("No users.")
			return
		}
		for _, user := range users {
			fmt.Printf("%-20s %s\n", user.Name, user.Role)
		}
	},
}

var userUpdateCmd = &cobra.Command{
	Use:   "update <name> <field> <value>",
	Short: "Update a user field (role, or name to rename)",
	Long: `Update a user field.

Renaming rewrites every issue author, assignee and comment author that
references the old name, then removes the old user.`,
	Args: cobra.ExactArgs(3),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		if !svc.UpdateUser(context.Background(), args[0], args[1], args[2]) {
			FatalError("could not update %s of user %q", args[1], args[0])
		}
		fmt.Printf("Updated user %s\n", args[0])
	},
}

var userRemoveCmd = &cobra.Command{
	Use:     "remove <name>",
	Aliases: []string{"rm"},
	Short:   "Remove a user (issues and comments keep the name)",
	Args:    cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		svc, repo := openService(cmd)
		defer repo.Close()

		if !svc.RemoveUser(context.Background(), args[0]) {
			FatalError("user %q not found", args[0])
		}
		fmt.Printf("Removed user %s\n", args[0])
	},
}

func init() {
	userCmd.AddCommand(userAddCmd, userListCmd, userUpdateCmd, userRemoveCmd)
	rootCmd.AddCommand(userCmd)
}
