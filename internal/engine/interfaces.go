package engine

import (
	"context"

	"github.com/Veraticus/sortit/internal/model"
)

// Recorder persists classification results. Implementations must be safe
// for concurrent use.
type Recorder interface {
	SaveClassification(ctx context.Context, result *model.ClassificationResult) error
}
