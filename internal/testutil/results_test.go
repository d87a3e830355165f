package testutil

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/rules"
	"github.com/Veraticus/sortit/internal/storage"
)

func TestSampleLabelsResolveToTheirCategory(t *testing.T) {
	for c, label := range sampleLabels {
		assert.Equal(t, c, rules.Resolve(model.NewLabelSet(label), nil), label)
	}
}

func TestSetupHistoryDB(t *testing.T) {
	results := NewResultBuilder().
		With(model.Food, 2).
		WithSource("ollama").
		With(model.Deposit, 1).
		Build()

	require.Len(t, results, 3)
	assert.Equal(t, "static", results[0].Source)
	assert.Equal(t, "ollama", results[2].Source)
	assert.True(t, results[2].ClassifiedAt.After(results[0].ClassifiedAt))

	store := SetupHistoryDB(t, results...)

	listed, err := store.ListClassifications(context.Background(), storage.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, listed, 3)
	assert.Equal(t, results[2].ID, listed[0].ID)
}
