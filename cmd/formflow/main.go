// Formflow is a companion CLI for the payment-request template catalog.
//
// It validates template documents, lists a catalog, fills a template
// interactively through the form engine, and bootstraps template drafts from
// OpenAPI operations.
//
// Usage:
//
//	formflow [command] [flags]
//
// See 'formflow --help' for available commands.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var logLevel string

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "formflow",
	Short: "Payment-request template tooling",
	Long: `Tooling around the go-formflow template engine.

Validates template catalogs, fills templates interactively, and imports
template drafts from OpenAPI documents.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(fillCmd)
	rootCmd.AddCommand(importCmd)
}
