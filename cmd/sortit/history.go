package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sortit/internal/cli"
	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/storage"
)

func historyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Browse recorded classifications",
		Long: `Browse classifications recorded while history.enabled was set.
The database location is database.path.`,
	}

	cmd.AddCommand(historyListCmd())
	cmd.AddCommand(historyStatsCmd())
	cmd.AddCommand(historyPruneCmd())

	return cmd
}

func historyListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recent classifications",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			var filter storage.HistoryFilter
			filter.Limit, _ = cmd.Flags().GetInt("limit")
			filter.Offset, _ = cmd.Flags().GetInt("offset")
			if raw, _ := cmd.Flags().GetString("category"); raw != "" {
				c, err := model.ParseCategory(raw)
				if err != nil {
					return common.NewUserError("invalid --category", err)
				}
				filter.Category = c
			}
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistoryStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			results, err := store.ListClassifications(ctx, filter)
			if err != nil {
				return err
			}

			if asJSON {
				if results == nil {
					results = []model.ClassificationResult{}
				}
				guides := loadGuide(cfg)
				for i := range results {
					results[i].Disposal = guides.Lookup(results[i].Category)
				}
				return writeJSON(cmd.OutOrStdout(), results)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderHistory(results))
			return err
		},
	}

	cmd.Flags().String("category", "", "only show this category")
	cmd.Flags().Int("limit", storage.DefaultHistoryLimit, "maximum number of results")
	cmd.Flags().Int("offset", 0, "skip this many results")
	cmd.Flags().Bool("json", false, "print results as JSON")

	return cmd
}

func historyStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Count recorded classifications per category",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistoryStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			counts, err := store.CategoryCounts(ctx)
			if err != nil {
				return err
			}

			if asJSON {
				return writeJSON(cmd.OutOrStdout(), counts)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderCounts(counts))
			return err
		},
	}

	cmd.Flags().Bool("json", false, "print counts as JSON")
	return cmd
}

func historyPruneCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete classifications older than a given age",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			olderThan, _ := cmd.Flags().GetDuration("older-than")
			if olderThan <= 0 {
				return common.NewUserError("--older-than must be positive, e.g. 720h", nil)
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			store, err := openHistoryStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore(store)

			n, err := store.DeleteClassificationsBefore(ctx, time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d classifications", n)))
			return err
		},
	}

	cmd.Flags().Duration("older-than", 30*24*time.Hour, "age of the oldest classification to keep")
	return cmd
}
