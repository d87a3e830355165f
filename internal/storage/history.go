package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/sortit/internal/common"
	"github.com/Veraticus/sortit/internal/model"
)

// Paging bounds for ListClassifications.
const (
	DefaultHistoryLimit = 50
	MaxHistoryLimit     = 500
)

// HistoryFilter narrows ListClassifications. Zero values mean no filter and
// the default page size.
type HistoryFilter struct {
	Category model.Category
	Limit    int
	Offset   int
}

// SaveClassification stores a result. Saving the same ID again replaces it.
// The disposal entry is not stored; it is derived from the category.
func (s *SQLiteStorage) SaveClassification(ctx context.Context, result *model.ClassificationResult) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateResult(result); err != nil {
		return err
	}

	labels := result.Labels
	if labels == nil {
		labels = model.LabelSet{}
	}
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return fmt.Errorf("failed to marshal labels: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO classifications (
			id, category, step, source, matched_label,
			matched_keyword, labels, classified_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			category = excluded.category,
			step = excluded.step,
			source = excluded.source,
			matched_label = excluded.matched_label,
			matched_keyword = excluded.matched_keyword,
			labels = excluded.labels,
			classified_at = excluded.classified_at
	`,
		result.ID,
		string(result.Category),
		result.Step,
		result.Source,
		result.MatchedLabel,
		result.MatchedKeyword,
		string(labelsJSON),
		result.ClassifiedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to save classification: %w", err)
	}
	return nil
}

// GetClassification returns the stored result with the given ID, or an
// error wrapping common.ErrNotFound.
func (s *SQLiteStorage) GetClassification(ctx context.Context, id string) (*model.ClassificationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT id, category, step, source, matched_label, matched_keyword, labels, classified_at
		FROM classifications
		WHERE id = ?
	`, id)

	result, err := scanResult(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("classification %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListClassifications returns stored results, newest first.
func (s *SQLiteStorage) ListClassifications(ctx context.Context, filter HistoryFilter) ([]model.ClassificationResult, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	limit := filter.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if limit > MaxHistoryLimit {
		limit = MaxHistoryLimit
	}

	var (
		query strings.Builder
		args  []any
	)
	query.WriteString(`
		SELECT id, category, step, source, matched_label, matched_keyword, labels, classified_at
		FROM classifications`)
	if filter.Category != "" {
		query.WriteString(` WHERE category = ?`)
		args = append(args, string(filter.Category))
	}
	query.WriteString(` ORDER BY classified_at DESC, id ASC LIMIT ? OFFSET ?`)
	args = append(args, limit, filter.Offset)

	rows, err := s.db.QueryContext(ctx, query.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query classifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.ClassificationResult
	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, *result)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating classifications: %w", err)
	}
	return results, nil
}

// CategoryCounts returns how many stored results fall in each category.
// Every category is present, with zero for unused ones.
func (s *SQLiteStorage) CategoryCounts(ctx context.Context) (map[model.Category]int, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	counts := make(map[model.Category]int)
	for _, c := range model.AllCategories() {
		counts[c] = 0
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT category, COUNT(*) FROM classifications GROUP BY category
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count classifications: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var (
			category string
			count    int
		)
		if err := rows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		counts[model.Category(category)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating category counts: %w", err)
	}
	return counts, nil
}

// DeleteClassificationsBefore removes results classified before cutoff and
// returns how many were removed.
func (s *SQLiteStorage) DeleteClassificationsBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM classifications WHERE classified_at < ?`, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to delete classifications: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted classifications: %w", err)
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanResult(row scanner) (*model.ClassificationResult, error) {
	var (
		result     model.ClassificationResult
		category   string
		labelsJSON string
	)
	err := row.Scan(
		&result.ID,
		&category,
		&result.Step,
		&result.Source,
		&result.MatchedLabel,
		&result.MatchedKeyword,
		&labelsJSON,
		&result.ClassifiedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan classification: %w", err)
	}

	result.Category = model.Category(category)
	if !result.Category.IsValid() {
		return nil, fmt.Errorf("%w: classification %s has unknown category %q",
			common.ErrDatabaseCorrupted, result.ID, category)
	}
	if err := json.Unmarshal([]byte(labelsJSON), &result.Labels); err != nil {
		return nil, fmt.Errorf("%w: classification %s has malformed labels: %w",
			common.ErrDatabaseCorrupted, result.ID, err)
	}
	result.ClassifiedAt = result.ClassifiedAt.UTC()
	return &result, nil
}
