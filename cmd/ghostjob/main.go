// Package main provides the ghost job detector CLI and API server.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var (
	configPath string
	debugLogs  bool
	jsonLogs   bool
)

var rootCmd = &cobra.Command{
	Use:   "ghostjob",
	Short: "Ghost job detection engine",
	Long:  "ghostjob estimates the probability that a job posting is a ghost listing by combining rule heuristics, language-model analysis, career-site verification, and posting history signals.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to JSON config file")
	rootCmd.PersistentFlags().BoolVar(&debugLogs, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Emit logs as JSON")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
