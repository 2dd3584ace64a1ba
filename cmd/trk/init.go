package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avigan/tracker/internal/config"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a tracker.yaml in the current directory",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		backend, _ := cmd.Flags().GetString("backend")
		if backend == "" {
			backend = config.DefaultBackend
		}
		db, _ := cmd.Flags().GetString("db")
		if db == "" {
			db = config.DefaultDBPath
		}
		if err := config.WriteFile(config.FileName, config.File{Backend: backend, DBPath: db}); err != nil {
			FatalError("%v", err)
		}
		fmt.Printf("Wrote %s (backend: %s, db: %s)\n", config.FileName, backend, db)
	},
}

func init() {
	rootCmd.AddCommand(initCmd)
}
