package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/Troyboy911/tyson/pkg/config"
	"github.com/Troyboy911/tyson/pkg/model/perplexity"
	"github.com/Troyboy911/tyson/pkg/server"
	"github.com/Troyboy911/tyson/pkg/store/sqlite"
	"github.com/Troyboy911/tyson/pkg/tool"
	"github.com/Troyboy911/tyson/pkg/tool/builtin"
)

func main() {
	// Setup logger.
	opts := &slog.HandlerOptions{Level: slog.LevelDebug}
	logger := slog.New(slog.NewTextHandler(os.Stderr, opts))
	slog.SetDefault(logger)

	// Config.
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Configuration error", "error", err)
		os.Exit(1)
	}

	// Initialize store. Chat works without it; session endpoints degrade.
	var db server.Store
	os.MkdirAll(filepath.Dir(cfg.DBPath), 0755)
	sqliteStore, err := sqlite.New(cfg.DBPath)
	if err != nil {
		slog.Warn("Database initialization failed, continuing without persistent storage", "path", cfg.DBPath, "error", err)
	} else {
		defer sqliteStore.Close()
		db = sqliteStore
	}

	// Model provider.
	provider := perplexity.New(cfg.APIKey, cfg.BaseURL)

	// Each session gets its own registry with the full tool set.
	newRegistry := func() *tool.Registry {
		r := tool.NewRegistry()
		builtin.RegisterDev(r)
		return r
	}

	srv := server.New(provider, cfg.Model, cfg.MaxIterations, db, newRegistry)
	if err := srv.Start(cfg.Addr); err != nil {
		slog.Error("Server failed", "error", err)
		os.Exit(1)
	}
}
