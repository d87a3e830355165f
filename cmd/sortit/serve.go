package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sortit/internal/config"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the classification HTTP API",
		Long: `Serve the classification API:

  POST /api/classify      multipart image upload (field "image")
  POST /api/resolve       {"labels": ["battery", "apple"]}
  GET  /api/categories    categories, keywords and disposal guide
  GET  /api/distribution  dataset image counts per class
  GET  /api/history       recorded classifications (history.enabled)
  GET  /metrics           Prometheus metrics
  GET  /healthz           liveness`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().String("dataset", "", "dataset directory for /api/distribution")
	cmd.Flags().Bool("history", false, "record classifications in the history database")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))
	_ = viper.BindPFlag("history.enabled", cmd.Flags().Lookup("history"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if dir, _ := cmd.Flags().GetString("dataset"); dir != "" {
		cfg.Dataset.Path = config.ExpandPath(dir)
	}

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	client, err := labels.New(sourceConfig(cfg, nil), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create label source: %w", err)
	}

	metrics := server.NewMetrics()
	eng, err := newEngine(cfg, metrics.InstrumentSource(client), store)
	if err != nil {
		return err
	}

	scfg := server.Config{
		Engine:         eng,
		Metrics:        metrics,
		Logger:         slog.Default(),
		DatasetRoot:    cfg.Dataset.Path,
		DatasetClasses: cfg.Dataset.Classes,
		BinImageDir:    cfg.Guide.ImageDir,
		MaxUploadBytes: cfg.Server.MaxUploadBytes,
	}
	if store != nil {
		scfg.History = store
	}

	srv, err := server.New(scfg)
	if err != nil {
		return err
	}

	slog.Info("Starting sortit server",
		"addr", cfg.Server.Addr,
		"source", client.Name(),
		"history", store != nil)
	return srv.Run(ctx, cfg.Server.Addr)
}
