package main

import (
	"github.com/spf13/cobra"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "souschef",
	Short: "Configuration-driven ML pipeline cookbook",
	Long: "Souschef enumerates every pipeline combination a configuration\n" +
		"describes, runs each against a dataset, and compares the results.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
}

func init() {
	rootCmd.AddCommand(bakeCmd)
	rootCmd.Version = version
}
