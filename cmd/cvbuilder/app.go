package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jonathan/cv-builder/internal/builder"
	"github.com/jonathan/cv-builder/internal/db"
	"github.com/jonathan/cv-builder/internal/export"
	"github.com/jonathan/cv-builder/internal/records"
	"github.com/jonathan/cv-builder/internal/rendering"
)

// connectDB opens the configured database.
func connectDB(ctx context.Context) (*db.DB, error) {
	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("database URL is required: set CVBUILDER_DATABASE_URL, DATABASE_URL or database_url in the config file")
	}
	database, err := db.Connect(ctx, cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}

// newExporter builds the Chrome exporter, wrapped in the Redis cache when one
// is configured and reachable. The returned func releases the cache client.
func newExporter(ctx context.Context) (export.Exporter, func()) {
	chrome := export.NewChromeExporter(cfg.ExportChrome(), appLog)
	if cfg.Redis.URL == "" {
		return chrome, func() {}
	}

	cache, err := export.NewRedisCacheFromURL(cfg.Redis.URL)
	if err != nil {
		appLog.Warn("invalid redis URL, exporting without cache", "error", err)
		return chrome, func() {}
	}
	if err := cache.Ping(ctx); err != nil {
		appLog.Warn("redis unreachable, exporting without cache", "error", err)
		_ = cache.Close()
		return chrome, func() {}
	}

	cached := export.NewCachedExporter(chrome, cache, &export.CachedExporterConfig{
		TTL:       cfg.Redis.TTL,
		KeyPrefix: cfg.Redis.KeyPrefix,
	}, appLog)
	appLog.Info("export cache enabled", "ttl", cfg.Redis.TTL.String())
	return cached, func() { _ = cache.Close() }
}

// newService wires the orchestration layer.
func newService(store builder.Store, exp export.Exporter) *builder.Service {
	return builder.New(builder.Config{
		Store:           store,
		Exporter:        exp,
		Logger:          appLog,
		LoadConcurrency: cfg.Load.Concurrency,
		LoadRetries:     cfg.Load.Retries,
		RetryDelay:      cfg.Load.RetryDelay,
	})
}

// readBundle decodes a record bundle file; the format follows the extension.
func readBundle(path string) (*records.Bundle, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read records file: %w", err)
	}
	b, err := records.DecodeBundle(data, records.FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to decode records file %s: %w", path, err)
	}
	return b, nil
}

// pageOptions applies page flags to the configured export options.
func pageOptions(page string, landscape, landscapeSet bool) (export.Options, error) {
	opts := cfg.ExportOptions()
	if page != "" {
		opts.PageSize = strings.ToUpper(page)
	}
	if landscapeSet {
		opts.Landscape = landscape
	}
	if err := opts.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// renderOptionsFor carries the page setup over to the renderer.
func renderOptionsFor(opts export.Options) rendering.Options {
	r := rendering.DefaultOptions()
	r.PageSize = opts.PageSize
	r.Landscape = opts.Landscape
	r.MarginMM = opts.MarginMM
	return r
}
