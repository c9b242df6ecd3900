package cmd

import (
	"context"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "formrunner",
	Short: "Run multi-page government-style online forms",
	Long: `formrunner serves published form definitions to the public one question per
page, keeps each visitor's answers in a session, and lets them check their
answers before submitting.

Forms are read from a directory of YAML definitions or from a forms API.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

// ExecuteContext runs the root command with ctx available to every subcommand
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}
