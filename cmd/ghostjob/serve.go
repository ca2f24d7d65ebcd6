package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/jonathan/ghost-job-detector/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the REST API server",
	Long:  "Start an HTTP server exposing analysis, history, stats, and company insight endpoints.",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 8080, "Port to listen on")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer a.Close()

	srv := server.New(server.Config{Port: servePort}, a.analyzer, a.ingestor, a.store, a.log)
	return srv.Start()
}
