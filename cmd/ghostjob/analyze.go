package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jonathan/ghost-job-detector/internal/types"
)

var (
	analyzeURL      string
	analyzeTextFile string
	analyzeTitle    string
	analyzeCompany  string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze one job posting",
	Long:  "Analyze a job posting from a URL, a text file, or inline flags, and print the analysis result as JSON.",
	RunE:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeURL, "url", "u", "", "URL of the job posting")
	analyzeCmd.Flags().StringVarP(&analyzeTextFile, "text-file", "t", "", "Path to a file containing the posting text")
	analyzeCmd.Flags().StringVar(&analyzeTitle, "title", "", "Job title (with --company, skips extraction)")
	analyzeCmd.Flags().StringVar(&analyzeCompany, "company", "", "Company name (with --title, skips extraction)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, _ []string) error {
	if analyzeURL == "" && analyzeTextFile == "" && (analyzeTitle == "" || analyzeCompany == "") {
		return fmt.Errorf("provide --url, --text-file, or both --title and --company")
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	job, err := resolveAnalyzeInput(ctx, a)
	if err != nil {
		return err
	}

	result, err := a.analyzer.Analyze(ctx, job)
	if err != nil {
		return err
	}

	if err := a.store.SaveAnalysis(ctx, job, result); err != nil {
		a.log.Error("failed to persist analysis", zap.Error(err))
	}

	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(result)
}

func resolveAnalyzeInput(ctx context.Context, a *app) (*types.JobRecord, error) {
	switch {
	case analyzeURL != "":
		return a.ingestor.FromURL(ctx, analyzeURL)
	case analyzeTextFile != "":
		data, err := os.ReadFile(analyzeTextFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read text file: %w", err)
		}
		return a.ingestor.FromText(ctx, string(data), "")
	default:
		return &types.JobRecord{
			Title:    analyzeTitle,
			Company:  analyzeCompany,
			Platform: types.PlatformOther,
		}, nil
	}
}
