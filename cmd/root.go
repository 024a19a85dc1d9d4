// Package cmd implements the ragdesk command line interface.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	logLevel string
	logJSON  bool
)

var rootCmd = &cobra.Command{
	Use:   "ragdesk",
	Short: "Retrieval-augmented helpdesk over your documents",
	Long: `ragdesk ingests documents into a pgvector-backed index and answers
questions grounded in their content. Ticket documents are cross-referenced
against prior tickets by embedding similarity.`,
	SilenceUsage: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().BoolVar(&logJSON, "log-json", false, "log in JSON format")
}
