package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/cv-builder/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the CV HTTP API server",
	Long: `Start the HTTP API server for editing, previewing and exporting CVs.

Endpoints:
  GET    /health                       Health check
  GET    /cvs                          List CVs
  POST   /cvs                          Create a CV
  GET    /cvs/{id}                     Load a normalized CV
  DELETE /cvs/{id}                     Delete a CV
  GET    /cvs/{id}/sections            Section completion
  PUT    /cvs/{id}/sections/{section}  Save one section
  GET    /cvs/{id}/preview             HTML preview
  GET    /cvs/{id}/preview.jpg         JPEG preview of the first page
  GET    /cvs/{id}/export.pdf          PDF download
  GET    /countries                    Country table
  GET    /skills, /companies           Shared catalogs`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides config)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := context.Background()

	if cmd.Flags().Changed("port") {
		cfg.Port = servePort
	}

	database, err := connectDB(ctx)
	if err != nil {
		return err
	}
	defer database.Close()

	exp, closeExporter := newExporter(ctx)
	defer closeExporter()

	svc := newService(database, exp)

	srv := server.New(server.Config{
		Port:         cfg.Port,
		RateLimit:    cfg.RateLimiter(),
		Export:       cfg.ExportOptions(),
		WriteTimeout: 2 * cfg.Chrome.Timeout,
	}, svc, database, appLog)

	appLog.Info("starting server", "port", cfg.Port, "remote_chrome", cfg.Chrome.RemoteURL != "")
	if err := srv.Start(); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}
