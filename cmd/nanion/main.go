// Package main provides the CLI entry point for nanion.
package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "nanion",
		Short: "Extract measurement tables from patch-clamp exports",
		Long: `nanion detects the protocol of patch-clamp spreadsheet exports
(activation or inactivation), locates their result tables and extracts
them in batches, writing a PASS/FAIL summary per file.`,
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "Log format: text or json")

	rootCmd.AddCommand(newAnalyzeCmd(), newDetectCmd(), newConfigCmd())
	return rootCmd
}
