// Package engine turns images or label sets into classification results by
// combining a label source, the category rules and the disposal guide.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/guide"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
)

// SourceManual marks results whose labels were supplied by the caller.
const SourceManual = "manual"

// ErrNoSource is returned by ClassifyImage when no label source is configured.
var ErrNoSource = errors.New("no label source configured")

// Config holds the collaborators of an Engine.
type Config struct {
	Source   labels.Source
	Rules    *rules.RuleSet
	Guides   *guide.Table
	Recorder Recorder
	Logger   *slog.Logger
	// Now is used to timestamp results. Defaults to time.Now.
	Now func() time.Time
}

// Engine classifies images and label sets. It holds no mutable state and is
// safe for concurrent use.
type Engine struct {
	source   labels.Source
	rules    *rules.RuleSet
	guides   *guide.Table
	recorder Recorder
	logger   *slog.Logger
	now      func() time.Time
}

// New creates an engine. Rules and Guides are required.
func New(cfg Config) (*Engine, error) {
	if cfg.Rules == nil {
		return nil, fmt.Errorf("%w: rule set is required", common.ErrMissingConfig)
	}
	if cfg.Guides == nil {
		return nil, fmt.Errorf("%w: disposal guide is required", common.ErrMissingConfig)
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &Engine{
		source:   cfg.Source,
		rules:    cfg.Rules,
		guides:   cfg.Guides,
		recorder: cfg.Recorder,
		logger:   logger,
		now:      now,
	}, nil
}

// Rules returns the rule set the engine resolves against.
func (e *Engine) Rules() *rules.RuleSet {
	return e.rules
}

// Guides returns the disposal guide table.
func (e *Engine) Guides() *guide.Table {
	return e.guides
}

// SourceName returns the configured label source name, or "" if none.
func (e *Engine) SourceName() string {
	if e.source == nil {
		return ""
	}
	return e.source.Name()
}

// ClassifyImage obtains labels for img and classifies them. When the label
// source fails, the returned result is the fallback classification (other,
// no labels) and the error wraps common.ErrLabelSourceUnavailable, so
// callers can tell "unavailable" apart from "unrecognized".
func (e *Engine) ClassifyImage(ctx context.Context, img labels.Image) (*model.ClassificationResult, error) {
	if e.source == nil {
		return nil, ErrNoSource
	}

	img, err := img.Normalize()
	if err != nil {
		return nil, err
	}

	ls, err := e.source.Labels(ctx, img)
	if err != nil {
		if !errors.Is(err, common.ErrLabelSourceUnavailable) {
			// Bad input such as an empty upload is the caller's problem.
			if errors.Is(err, common.ErrEmptyImage) || errors.Is(err, labels.ErrUnsupportedImage) {
				return nil, err
			}
			err = fmt.Errorf("%w: %w", common.ErrLabelSourceUnavailable, err)
		}

		result := e.fallback(e.source.Name())
		e.logger.Warn("Label source unavailable, using fallback",
			"source", e.source.Name(),
			"error", err)
		return result, err
	}

	return e.classify(ctx, ls, e.source.Name())
}

// ClassifyLabels classifies labels supplied directly by the caller. source
// is recorded on the result and defaults to "manual".
func (e *Engine) ClassifyLabels(ctx context.Context, ls model.LabelSet, source string) (*model.ClassificationResult, error) {
	if err := ls.Validate(); err != nil {
		return nil, err
	}
	if source == "" {
		source = SourceManual
	}
	return e.classify(ctx, ls, source)
}

func (e *Engine) classify(ctx context.Context, ls model.LabelSet, source string) (*model.ClassificationResult, error) {
	decision := rules.Explain(ls, e.rules)

	e.logger.Debug("Resolved category",
		"labels", ls.Names(),
		"category", decision.Category,
		"step", decision.Step,
		"matched_label", decision.Label,
		"matched_keyword", decision.Keyword)

	result := &model.ClassificationResult{
		ID:             uuid.NewString(),
		Category:       decision.Category,
		Step:           string(decision.Step),
		MatchedLabel:   decision.Label,
		MatchedKeyword: decision.Keyword,
		Source:         source,
		Disposal:       e.guides.Lookup(decision.Category),
		Labels:         append(model.LabelSet{}, ls...),
		ClassifiedAt:   e.now().UTC(),
	}

	e.record(ctx, result)
	return result, nil
}

// fallback builds the result used when no labels could be obtained.
func (e *Engine) fallback(source string) *model.ClassificationResult {
	return &model.ClassificationResult{
		ID:           uuid.NewString(),
		Category:     model.Other,
		Step:         string(rules.StepFallback),
		Source:       source,
		Disposal:     e.guides.Lookup(model.Other),
		Labels:       model.LabelSet{},
		ClassifiedAt: e.now().UTC(),
	}
}

func (e *Engine) record(ctx context.Context, result *model.ClassificationResult) {
	if e.recorder == nil {
		return
	}
	if err := e.recorder.SaveClassification(ctx, result); err != nil {
		e.logger.Warn("Failed to record classification",
			"id", result.ID,
			"error", err)
	}
}
