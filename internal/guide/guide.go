// Package guide holds the per-category disposal instructions shown to users.
package guide

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/sortit/internal/model"
)

// ErrIncompleteGuide is returned when a table lacks an entry for a category.
var ErrIncompleteGuide = errors.New("incomplete disposal guide")

// Entry is the presentation data for one category.
type Entry = model.Disposal

// Table maps every category to its presentation entry.
type Table struct {
	entries map[model.Category]Entry
}

// NewTable validates that every category has a title and guide text.
func NewTable(entries map[model.Category]Entry) (*Table, error) {
	var errs []error
	t := &Table{entries: make(map[model.Category]Entry, len(entries))}

	for c := range entries {
		if !c.IsValid() {
			errs = append(errs, fmt.Errorf("%w: %q", model.ErrUnknownCategory, c))
		}
	}

	for _, c := range model.AllCategories() {
		e, ok := entries[c]
		switch {
		case !ok:
			errs = append(errs, fmt.Errorf("no entry for %s", c))
		case strings.TrimSpace(e.Title) == "":
			errs = append(errs, fmt.Errorf("%s has no title", c))
		case strings.TrimSpace(e.Guide) == "":
			errs = append(errs, fmt.Errorf("%s has no guide text", c))
		default:
			t.entries[c] = e
		}
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrIncompleteGuide, errors.Join(errs...))
	}
	return t, nil
}

// Default returns the built-in disposal guide.
func Default() *Table {
	t, err := NewTable(map[model.Category]Entry{
		model.Recyclable: {
			Title:    "This is recyclable waste",
			Guide:    "Please ensure items are clean and dry before placing in recycling bin",
			BinImage: "bins/recyclable.jpg",
		},
		model.Hazardous: {
			Title:    "This is hazardous waste",
			Guide:    "Please package properly and take to a specialized hazardous waste collection point",
			BinImage: "bins/hazardous.jpg",
		},
		model.Food: {
			Title:    "This is food waste",
			Guide:    "Please drain excess water before placing in food waste bin",
			BinImage: "bins/food.jpg",
		},
		model.Reuse: {
			Title:    "This item can be reused",
			Guide:    "Please donate, sell or hand in at a reuse station if the item is still in usable condition",
			BinImage: "bins/reuse.jpg",
		},
		model.Deposit: {
			Title:    "This is a deposit container",
			Guide:    "Please empty the container and return it to a deposit machine to get your refund",
			BinImage: "bins/deposit.jpg",
		},
		model.Other: {
			Title:    "This is other waste",
			Guide:    "Please place in general waste bin",
			BinImage: "bins/other.jpg",
		},
	})
	if err != nil {
		panic(err)
	}
	return t
}

// Lookup returns the entry for a category. Unknown categories get the
// entry for model.Other.
func (t *Table) Lookup(c model.Category) Entry {
	if e, ok := t.entries[c]; ok {
		return e
	}
	return t.entries[model.Other]
}

// WithImageBase returns a copy of the table with bin image references
// prefixed by base. Absolute URLs are left untouched.
func (t *Table) WithImageBase(base string) *Table {
	out := &Table{entries: make(map[model.Category]Entry, len(t.entries))}
	base = strings.TrimRight(base, "/")
	for c, e := range t.entries {
		if base != "" && e.BinImage != "" && !strings.Contains(e.BinImage, "://") {
			e.BinImage = base + "/" + strings.TrimLeft(e.BinImage, "/")
		}
		out.entries[c] = e
	}
	return out
}
