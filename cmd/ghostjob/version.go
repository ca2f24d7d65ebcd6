package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/ghost-job-detector/internal/analysis"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("ghostjob %s (algorithm %s)\n", Version, analysis.AlgorithmVersion)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
