package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/viper"

	"github.com/Veraticus/sortit/internal/config"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/guide"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
	"github.com/Veraticus/sortit/internal/storage"
)

// loadConfig decodes the global viper state.
func loadConfig() (*config.Config, error) {
	return config.Load(viper.GetViper())
}

// loadRules returns the configured rule set, or the built-in one.
func loadRules(cfg *config.Config) (*rules.RuleSet, error) {
	if cfg.Rules.Path == "" {
		return rules.Default(), nil
	}
	rs, err := rules.LoadFile(cfg.Rules.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %s: %w", cfg.Rules.Path, err)
	}
	slog.Debug("Loaded rules", "path", cfg.Rules.Path)
	return rs, nil
}

// loadGuide returns the disposal guide with the configured image base.
func loadGuide(cfg *config.Config) *guide.Table {
	return guide.Default().WithImageBase(cfg.Guide.ImageBase)
}

// sourceConfig maps the source settings onto the label client config.
// staticLabels is only used by the static provider.
func sourceConfig(cfg *config.Config, staticLabels model.LabelSet) labels.Config {
	return labels.Config{
		Provider:   cfg.Source.Provider,
		Model:      cfg.Source.Model,
		BaseURL:    cfg.Source.URL,
		APIKey:     cfg.Source.APIKey,
		Prompt:     cfg.Source.Prompt,
		Labels:     staticLabels,
		Timeout:    cfg.Source.Timeout,
		RetryDelay: cfg.Source.RetryDelay,
		MaxRetries: cfg.Source.MaxRetries,
		RateLimit:  cfg.Source.RateLimit,
	}
}

// openHistory opens the history database when history is enabled. It
// returns nil without error when disabled.
func openHistory(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	if !cfg.History.Enabled {
		return nil, nil
	}
	return openHistoryStore(ctx, cfg)
}

// openHistoryStore opens the history database regardless of history.enabled,
// for commands that only read what was recorded earlier.
func openHistoryStore(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.Open(ctx, cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open history database: %w", err)
	}
	return store, nil
}

func closeStore(store *storage.SQLiteStorage) {
	if store == nil {
		return
	}
	if err := store.Close(); err != nil {
		slog.Error("Failed to close database", "error", err)
	}
}

// newEngine wires rules, guide, source and optional recorder together.
func newEngine(cfg *config.Config, src labels.Source, store *storage.SQLiteStorage) (*engine.Engine, error) {
	rs, err := loadRules(cfg)
	if err != nil {
		return nil, err
	}

	ecfg := engine.Config{
		Source: src,
		Rules:  rs,
		Guides: loadGuide(cfg),
		Logger: slog.Default(),
	}
	if store != nil {
		ecfg.Recorder = store
	}
	return engine.New(ecfg)
}
