package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/engine"
	"github.com/Veraticus/sortit/internal/guide"
	"github.com/Veraticus/sortit/internal/labels"
	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

type unavailableSource struct{}

func (unavailableSource) Labels(context.Context, labels.Image) (model.LabelSet, error) {
	return nil, fmt.Errorf("%w: timeout", common.ErrLabelSourceUnavailable)
}

func (unavailableSource) Name() string { return "gemini" }

func testEngine(t *testing.T, src labels.Source) *engine.Engine {
	t.Helper()
	eng, err := engine.New(engine.Config{
		Source: src,
		Rules:  rules.Default(),
		Guides: guide.Default(),
		Logger: common.DiscardLogger(),
	})
	require.NoError(t, err)
	return eng
}

func writeImages(t *testing.T, dir string, names ...string) []string {
	t.Helper()
	var paths []string
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o750))
		require.NoError(t, os.WriteFile(path, pngBytes, 0o600))
		paths = append(paths, path)
	}
	return paths
}

func TestCollectImages(t *testing.T) {
	dir := t.TempDir()
	writeImages(t, dir, "b.jpg", "a.PNG", "nested/c.jpeg", "notes.txt")
	single := writeImages(t, t.TempDir(), "photo.heic")[0]

	paths, err := collectImages([]string{dir, single})
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.PNG"),
		filepath.Join(dir, "b.jpg"),
		filepath.Join(dir, "nested", "c.jpeg"),
		single,
	}, paths)
}

func TestCollectImages_Errors(t *testing.T) {
	_, err := collectImages([]string{filepath.Join(t.TempDir(), "missing.jpg")})
	var userErr *common.UserError
	assert.True(t, errors.As(err, &userErr))

	_, err = collectImages([]string{t.TempDir()})
	assert.ErrorIs(t, err, ErrNoImages)
}

func TestClassifyLabels_JSON(t *testing.T) {
	var out bytes.Buffer
	ls, err := model.ParseLabelList("battery:0.9, apple")
	require.NoError(t, err)

	err = classifyLabels(context.Background(), &out, testEngine(t, nil), ls, classifyOptions{json: true})
	require.NoError(t, err)

	var result model.ClassificationResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, model.Hazardous, result.Category)
	assert.Equal(t, cliSource, result.Source)
	assert.Equal(t, "This is hazardous waste", result.Disposal.Title)
}

func TestClassifyLabels_Card(t *testing.T) {
	var out bytes.Buffer
	err := classifyLabels(context.Background(), &out, testEngine(t, nil), model.NewLabelSet("metal", "can"), classifyOptions{explain: true})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "deposit")
	assert.Contains(t, out.String(), "Step:")
}

func TestClassifyImages(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "one.png", "two.png")
	eng := testEngine(t, labels.NewStatic(model.NewLabelSet("newspaper")))

	var out, errOut bytes.Buffer
	err := classifyImages(context.Background(), &out, &errOut, eng, paths, classifyOptions{json: true})
	require.NoError(t, err)

	var results []struct {
		Path     string         `json:"path"`
		Category model.Category `json:"category"`
		Error    string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &results))
	require.Len(t, results, 2)
	for i, r := range results {
		assert.Equal(t, paths[i], r.Path)
		assert.Equal(t, model.Recyclable, r.Category)
		assert.Empty(t, r.Error)
	}
	assert.Empty(t, errOut.String(), "no progress bar in JSON mode")
}

func TestClassifyImages_ProgressAndCards(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "one.png", "two.png", "three.png")
	eng := testEngine(t, labels.NewStatic(model.NewLabelSet("banana")))

	var out, errOut bytes.Buffer
	err := classifyImages(context.Background(), &out, &errOut, eng, paths, classifyOptions{})
	require.NoError(t, err)

	assert.Contains(t, out.String(), "three.png")
	assert.Contains(t, out.String(), "This is food waste")
	assert.Contains(t, errOut.String(), "3/3")
}

func TestClassifyImages_SourceUnavailable(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "one.png")
	eng := testEngine(t, unavailableSource{})

	var out, errOut bytes.Buffer
	err := classifyImages(context.Background(), &out, &errOut, eng, paths, classifyOptions{json: true})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 images could not be classified")

	var result struct {
		Category model.Category `json:"category"`
		Step     string         `json:"step"`
		Error    string         `json:"error"`
	}
	require.NoError(t, json.Unmarshal(out.Bytes(), &result))
	assert.Equal(t, model.Other, result.Category)
	assert.Equal(t, "fallback", result.Step)
	assert.Contains(t, result.Error, "label source unavailable")
}

func TestRunBatch_StopsWhenCanceled(t *testing.T) {
	paths := writeImages(t, t.TempDir(), "one.png", "two.png")
	eng := testEngine(t, labels.NewStatic(model.NewLabelSet("glass")))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, failed := runBatch(ctx, eng, paths, func() {})
	assert.Empty(t, results)
	assert.Zero(t, failed)
}
