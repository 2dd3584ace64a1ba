// Command trk is the issue tracker CLI: issues, comments, users, tags and
// milestones over a sqlite or in-memory repository.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avigan/tracker/internal/config"
	"github.com/avigan/tracker/internal/service"
	"github.com/avigan/tracker/internal/storage"
	"github.com/avigan/tracker/internal/storage/factory"
)

var rootCmd = &cobra.Command{
	Use:           "trk",
	Short:         "trk - multi-user issue tracker",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().String("backend", "", "storage backend (sqlite or memory)")
	rootCmd.PersistentFlags().String("db", "", "database file for the sqlite backend")
	rootCmd.PersistentFlags().Bool("json", false, "print results as JSON")

	rootCmd.AddGroup(
		&cobra.Group{ID: "issues", Title: "Issues:"},
		&cobra.Group{ID: "people", Title: "Users:"},
		&cobra.Group{ID: "planning", Title: "Milestones:"},
	)
}

// FatalError prints an error and exits. Command Run functions use it for
// terminal failures instead of threading errors upward.
func FatalError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "Error: "+format+"\n", args...)
	os.Exit(1)
}

// openService resolves configuration (flags over env over tracker.yaml) and
// opens the configured backend. The caller must Close the returned
// repository.
func openService(cmd *cobra.Command) (*service.Service, storage.Repository) {
	if err := config.Initialize(); err != nil {
		FatalError("%v", err)
	}
	if err := config.BindFlags(cmd.Flags()); err != nil {
		FatalError("%v", err)
	}
	repo, err := factory.New(context.Background(), config.Backend(), config.DBPath())
	if err != nil {
		FatalError("opening %s backend: %v", config.Backend(), err)
	}
	return service.New(repo), repo
}

func jsonOutput(cmd *cobra.Command) bool {
	v, _ := cmd.Flags().GetBool("json")
	return v
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
