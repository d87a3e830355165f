// Package model defines the core data structures for the sortit application.
package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCategory is returned when a string does not name a disposal category.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one of the fixed disposal classes an item is sorted into.
type Category string

const (
	// Recyclable covers paper, cardboard, glass, metal and plastic packaging.
	Recyclable Category = "recyclable"
	// Hazardous covers batteries, electronics, chemicals and medicine.
	Hazardous Category = "hazardous"
	// Food covers food waste and other organic material.
	Food Category = "food"
	// Reuse covers items that can be donated or passed on.
	Reuse Category = "reuse"
	// Deposit covers containers returnable for a deposit refund.
	Deposit Category = "deposit"
	// Other is general waste and the universal fallback.
	Other Category = "other"
)

var allCategories = []Category{Recyclable, Hazardous, Food, Reuse, Deposit, Other}

// AllCategories returns every category in canonical display order.
func AllCategories() []Category {
	out := make([]Category, len(allCategories))
	copy(out, allCategories)
	return out
}

// IsValid reports whether c is one of the known categories.
func (c Category) IsValid() bool {
	for _, known := range allCategories {
		if c == known {
			return true
		}
	}
	return false
}

func (c Category) String() string {
	return string(c)
}

// ParseCategory converts a case-insensitive name into a Category.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}
