package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var statsCompany string

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate analysis statistics",
	Long:  "Show aggregate statistics over all persisted analyses, or the insight view for one company with --company.",
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().StringVar(&statsCompany, "company", "", "Show the insight view for this company instead")
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	if a.database == nil {
		return fmt.Errorf("stats require DATABASE_URL")
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	if statsCompany != "" {
		insight, err := a.database.GetCompanyInsight(ctx, statsCompany)
		if err != nil {
			return err
		}
		if insight == nil {
			return fmt.Errorf("no data for company %q", statsCompany)
		}
		return encoder.Encode(insight)
	}

	stats, err := a.database.GetStats(ctx)
	if err != nil {
		return err
	}
	return encoder.Encode(stats)
}
