package testutil

import (
	"fmt"
	"time"

	"github.com/Veraticus/sortit/internal/model"
)

// BaseTime is the timestamp of the first result a ResultBuilder produces.
var BaseTime = time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)

// sampleLabels gives each category a label that resolves to it with the
// default rules.
var sampleLabels = map[model.Category]string{
	model.Recyclable: "newspaper",
	model.Hazardous:  "battery",
	model.Food:       "banana",
	model.Reuse:      "shoes",
	model.Deposit:    "plastic bottle",
	model.Other:      "ceramic mug",
}

// ResultBuilder produces classification results one minute apart, in the
// order they are added.
type ResultBuilder struct {
	results []*model.ClassificationResult
	source  string
	step    time.Duration
}

// NewResultBuilder creates an empty builder.
func NewResultBuilder() *ResultBuilder {
	return &ResultBuilder{source: "static", step: time.Minute}
}

// WithSource sets the source recorded on subsequently added results.
func (b *ResultBuilder) WithSource(source string) *ResultBuilder {
	b.source = source
	return b
}

// With adds n results in category c.
func (b *ResultBuilder) With(c model.Category, n int) *ResultBuilder {
	for i := 0; i < n; i++ {
		idx := len(b.results)
		label := sampleLabels[c]
		b.results = append(b.results, &model.ClassificationResult{
			ID:             fmt.Sprintf("result-%03d", idx),
			Category:       c,
			Step:           "sweep",
			MatchedLabel:   label,
			MatchedKeyword: label,
			Source:         b.source,
			Labels:         model.NewLabelSet(label),
			ClassifiedAt:   BaseTime.Add(time.Duration(idx) * b.step),
		})
	}
	return b
}

// Build returns the results added so far.
func (b *ResultBuilder) Build() []*model.ClassificationResult {
	out := make([]*model.ClassificationResult, len(b.results))
	copy(out, b.results)
	return out
}
