package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sortit/internal/cli"
	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/config"
	"github.com/Veraticus/sortit/internal/dataset"
)

func datasetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "dataset",
		Short: "Inspect the training image dataset",
	}
	cmd.AddCommand(datasetDistributionCmd())
	return cmd
}

func datasetDistributionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "distribution",
		Short: "Count images per class directory",
		RunE: func(cmd *cobra.Command, _ []string) error {
			asJSON, _ := cmd.Flags().GetBool("json")

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if dir, _ := cmd.Flags().GetString("path"); dir != "" {
				cfg.Dataset.Path = config.ExpandPath(dir)
			}
			if cfg.Dataset.Path == "" {
				return common.NewUserError("dataset path is not configured: pass --path or set dataset.path", nil)
			}

			counts, err := dataset.Distribution(cfg.Dataset.Path, cfg.Dataset.Classes)
			if err != nil {
				return err
			}

			if asJSON {
				out := make(map[string]int, len(counts))
				for _, c := range counts {
					out[c.Class] = c.Images
				}
				return writeJSON(cmd.OutOrStdout(), out)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), cli.RenderDistribution(counts))
			return err
		},
	}

	cmd.Flags().String("path", "", "dataset directory containing one folder per class")
	cmd.Flags().Bool("json", false, "print counts as JSON")

	return cmd
}
