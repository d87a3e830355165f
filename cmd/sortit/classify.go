package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync/atomic"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sortit/internal/cli"
	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/dataset"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
)

// cliSource marks results whose labels came from --labels.
const cliSource = "cli"

// ErrNoImages is returned when the arguments contain no image files.
var ErrNoImages = errors.New("no images found")

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify [image|directory]...",
		Short: "Classify images or labels into a disposal category",
		Long: `Classify one or more images into a disposal category. Directories are
searched recursively for .jpg, .jpeg and .png files.

With --labels no image is needed: the given labels are classified directly.

Examples:
  sortit classify bottle.jpg
  sortit classify ~/photos/kitchen --json
  sortit classify --labels battery,apple --explain
  sortit classify --labels "plastic bottle:0.9,plastic:0.7"`,
		RunE: runClassify,
	}

	cmd.Flags().StringP("labels", "l", "", "comma-separated labels to classify instead of an image (name[:confidence])")
	cmd.Flags().BoolP("explain", "e", false, "show which step and keyword decided the category")
	cmd.Flags().Bool("json", false, "print results as JSON")
	cmd.Flags().String("provider", "", "label source: ollama, gemini, openai or static")
	cmd.Flags().String("model", "", "vision model name")

	// Bind to viper (errors are rare and can be ignored in practice)
	_ = viper.BindPFlag("source.provider", cmd.Flags().Lookup("provider"))
	_ = viper.BindPFlag("source.model", cmd.Flags().Lookup("model"))

	return cmd
}

type classifyOptions struct {
	labels  string
	explain bool
	json    bool
}

func runClassify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	var opts classifyOptions
	opts.labels, _ = cmd.Flags().GetString("labels")
	opts.explain, _ = cmd.Flags().GetBool("explain")
	opts.json, _ = cmd.Flags().GetBool("json")

	if opts.labels != "" && len(args) > 0 {
		return common.NewUserError("use either --labels or image paths, not both", nil)
	}
	if opts.labels == "" && len(args) == 0 {
		return common.NewUserError("nothing to classify: pass image paths or --labels", nil)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openHistory(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeStore(store)

	if opts.labels != "" {
		ls, parseErr := model.ParseLabelList(opts.labels)
		if parseErr != nil {
			return common.NewUserError("invalid --labels value", parseErr)
		}
		eng, engErr := newEngine(cfg, nil, store)
		if engErr != nil {
			return engErr
		}
		return classifyLabels(ctx, cmd.OutOrStdout(), eng, ls, opts)
	}

	paths, err := collectImages(args)
	if err != nil {
		return err
	}

	client, err := labels.New(sourceConfig(cfg, nil), slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create label source: %w", err)
	}
	eng, err := newEngine(cfg, client, store)
	if err != nil {
		return err
	}

	return classifyImages(ctx, cmd.OutOrStdout(), cmd.ErrOrStderr(), eng, paths, opts)
}

func classifyLabels(ctx context.Context, out io.Writer, eng *engine.Engine, ls model.LabelSet, opts classifyOptions) error {
	result, err := eng.ClassifyLabels(ctx, ls, cliSource)
	if err != nil {
		return err
	}
	if opts.json {
		return writeJSON(out, result)
	}
	_, err = fmt.Fprintln(out, cli.RenderResult("", result, opts.explain))
	return err
}

// namedResult pairs a result with the image it came from.
type namedResult struct {
	*model.ClassificationResult
	Path  string `json:"path"`
	Error string `json:"error,omitempty"`
}

func classifyImages(ctx context.Context, out, errOut io.Writer, eng *engine.Engine, paths []string, opts classifyOptions) error {
	step := func() {}
	if len(paths) > 1 && !opts.json {
		pb := cli.NewProgressBar(errOut, len(paths), "Classifying images...")
		var done atomic.Int64
		handler := cli.NewInterruptHandler(errOut)
		var cancel context.CancelFunc
		ctx, cancel = handler.HandleInterrupts(ctx, func() (int, int) { return int(done.Load()), len(paths) })
		defer cancel()
		step = func() {
			done.Add(1)
			cli.Advance(pb)
		}
	}

	results, failed := runBatch(ctx, eng, paths, step)
	return report(out, results, failed, opts)
}

// runBatch classifies paths in order and stops early on cancellation.
func runBatch(ctx context.Context, eng *engine.Engine, paths []string, step func()) ([]namedResult, int) {
	results := make([]namedResult, 0, len(paths))
	failed := 0
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}

		nr := namedResult{Path: path}
		data, err := os.ReadFile(path)
		if err == nil {
			nr.ClassificationResult, err = eng.ClassifyImage(ctx, labels.Image{Data: data})
		}
		if err != nil {
			failed++
			nr.Error = err.Error()
			slog.Warn("Failed to classify image", "path", path, "error", err)
		}
		results = append(results, nr)
		step()
	}
	return results, failed
}

func report(out io.Writer, results []namedResult, failed int, opts classifyOptions) error {
	if opts.json {
		var err error
		if len(results) == 1 {
			err = writeJSON(out, results[0])
		} else {
			err = writeJSON(out, results)
		}
		if err != nil {
			return err
		}
	} else {
		for _, nr := range results {
			if nr.ClassificationResult != nil {
				fmt.Fprintln(out, cli.RenderResult(nr.Path, nr.ClassificationResult, opts.explain))
			}
			if nr.Error != "" {
				fmt.Fprintln(out, cli.FormatError(fmt.Sprintf("%s: %s", nr.Path, nr.Error)))
			}
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d images could not be classified", failed, len(results))
	}
	return nil
}

// collectImages expands directories into the image files they contain.
// Explicit file arguments are kept even without an image extension.
func collectImages(args []string) ([]string, error) {
	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, common.NewUserError(fmt.Sprintf("cannot read %s", arg), err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}

		var found []string
		err = filepath.WalkDir(arg, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if !d.IsDir() && dataset.IsImageFile(d.Name()) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("failed to scan %s: %w", arg, err)
		}
		sort.Strings(found)
		paths = append(paths, found...)
	}

	if len(paths) == 0 {
		return nil, common.NewUserError("no .jpg, .jpeg or .png files found", ErrNoImages)
	}
	return paths, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
