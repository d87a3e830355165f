package labels

import (
	"context"

	"github.com/Veraticus/sortit/internal/model"
)

// Static returns the same labels for every image. It backs the --labels
// flag and tests.
type Static struct {
	labels model.LabelSet
}

// NewStatic creates a source that always answers with labels.
func NewStatic(labels model.LabelSet) *Static {
	return &Static{labels: append(model.LabelSet(nil), labels...)}
}

// Labels returns a copy of the configured labels.
func (s *Static) Labels(ctx context.Context, _ Image) (model.LabelSet, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return append(model.LabelSet(nil), s.labels...), nil
}

// Name implements Source.
func (s *Static) Name() string {
	return "static"
}
