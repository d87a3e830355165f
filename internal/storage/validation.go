// Package storage persists classification history.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sortit/internal/model"
)

// Validation errors.
var (
	ErrNilContext            = errors.New("context cannot be nil")
	ErrEmptyString           = errors.New("string parameter cannot be empty")
	ErrNilParameter          = errors.New("parameter cannot be nil")
	ErrInvalidClassification = errors.New("invalid classification")
	ErrInvalidFilter         = errors.New("invalid history filter")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateResult validates a classification result before it is stored.
func validateResult(result *model.ClassificationResult) error {
	if result == nil {
		return fmt.Errorf("%w: classification", ErrNilParameter)
	}
	if result.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidClassification)
	}
	if !result.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidClassification, result.Category)
	}
	if result.Step == "" {
		return fmt.Errorf("%w: missing step", ErrInvalidClassification)
	}
	if result.Source == "" {
		return fmt.Errorf("%w: missing source", ErrInvalidClassification)
	}
	if result.ClassifiedAt.IsZero() {
		return fmt.Errorf("%w: missing classification time", ErrInvalidClassification)
	}
	return nil
}

// validateFilter checks paging and category bounds.
func validateFilter(f HistoryFilter) error {
	if f.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidFilter, f.Limit)
	}
	if f.Offset < 0 {
		return fmt.Errorf("%w: negative offset %d", ErrInvalidFilter, f.Offset)
	}
	if f.Category != "" && !f.Category.IsValid() {
		return fmt.Errorf("%w: unknown category %q", ErrInvalidFilter, f.Category)
	}
	return nil
}
