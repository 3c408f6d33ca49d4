package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "instaclone",
	Short:         "Photo sharing API server",
	SilenceUsage:  true,
	SilenceErrors: false,
	RunE:          runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd, migrateCmd, sweepStoriesCmd, reconcileCmd, seedCmd)

	seedCmd.Flags().Int("users", 20, "number of users to create")
	seedCmd.Flags().Int("posts", 3, "posts per user")
	seedCmd.Flags().Int("follows", 5, "follows per user")
	seedCmd.Flags().Int("comments", 2, "comments per post")
	seedCmd.Flags().Int("likes", 4, "likes per post")
	seedCmd.Flags().Int64("seed", 1, "random seed")
}
