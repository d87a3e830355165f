// Package testutil provides shared fixtures for tests that need a populated
// history database.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/sortit/internal/model"
	"github.com/Veraticus/sortit/internal/storage"
)

// SetupHistoryDB creates a migrated in-memory history database seeded with
// results. The database is closed when the test ends.
//
// Example:
//
//	store := testutil.SetupHistoryDB(t,
//		testutil.NewResultBuilder().
//			With(model.Food, 3).
//			With(model.Hazardous, 1).
//			Build()...,
//	)
func SetupHistoryDB(t *testing.T, results ...*model.ClassificationResult) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.Open(context.Background(), storage.MemoryPath)
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	ctx := context.Background()
	for _, r := range results {
		if err := store.SaveClassification(ctx, r); err != nil {
			t.Fatalf("failed to seed classification %q: %v", r.ID, err)
		}
	}

	return store
}
