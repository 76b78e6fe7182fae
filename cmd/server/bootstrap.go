package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"stock-advisor/internal/app"
	"stock-advisor/internal/logger"
	"stock-advisor/internal/server"
	"stock-advisor/internal/store"
	"stock-advisor/internal/trace"
)

// initializeSystem loads .env and starts the logger and tracer.
func initializeSystem() error {
	_ = godotenv.Load()

	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}
	return nil
}

func loadConfig(ctx context.Context, path string) (*store.Config, error) {
	cfg, err := store.LoadOrDefault(path)
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err, "path", path)
		return nil, err
	}
	logger.Info(ctx, "Configuration loaded",
		"path", path,
		"tickers", len(cfg.Tickers),
		"addr", cfg.Server.Addr,
		"database", cfg.Database.Path,
	)
	return cfg, nil
}

// compressOldJournals rotates journal files once at startup.
func compressOldJournals(ctx context.Context, a *app.App) {
	n, err := a.Journal.CompressOlder(a.Config.Journal.RetentionDays)
	if err != nil {
		logger.Warn(ctx, "Failed to compress old journals", "error", err)
		return
	}
	if n > 0 {
		logger.Info(ctx, "Compressed old journals", "files", n)
	}
}

func initializeServer(a *app.App) *server.Server {
	cfg := a.Config
	return server.New(server.Config{
		Addr:         cfg.Server.Addr,
		CORSOrigins:  cfg.Server.CORSOrigins,
		ReadTimeout:  store.Seconds(cfg.Server.ReadTimeoutSeconds),
		WriteTimeout: store.Seconds(cfg.Server.WriteTimeoutSeconds),
		Recommender:  a.Recommender,
		Risk:         a.Risk,
		Stocks:       a.Stocks,
		News:         a.Chain,
		RSS:          a.RSS,
		NewsLimit:    cfg.News.LiveLimit,
		WindowDays:   cfg.Recommend.WindowDays,
	})
}
