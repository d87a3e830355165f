// Package rules maps image labels to disposal categories using keyword rules.
package rules

import (
	"errors"
	"fmt"

	"github.com/Veraticus/sortit/internal/model"
)

// ErrInvalidRuleSet is returned when a rule set fails load-time validation.
var ErrInvalidRuleSet = errors.New("invalid rule set")

// DefaultContainerWords are the label fragments that make a deposit match
// look like a returnable container.
var DefaultContainerWords = []string{"bottle", "can", "container"}

// Entry is the keyword list configured for one category.
type Entry struct {
	Category model.Category
	Keywords []string
}

// RuleSet is a validated, immutable mapping from category to keywords.
// Entries keep their declared order, which drives the generic sweep.
type RuleSet struct {
	index          map[model.Category]int
	entries        []Entry
	containerWords []string
}

// New normalizes and validates the given entries. Keywords are lower-cased,
// trimmed and de-duplicated; declared order is kept. A nil containerWords
// uses DefaultContainerWords.
func New(entries []Entry, containerWords []string) (*RuleSet, error) {
	var errs []error

	rs := &RuleSet{
		index:   make(map[model.Category]int, len(entries)),
		entries: make([]Entry, 0, len(entries)),
	}

	for i, e := range entries {
		if !e.Category.IsValid() {
			errs = append(errs, fmt.Errorf("entry %d: %w: %q", i, model.ErrUnknownCategory, e.Category))
			continue
		}
		if _, dup := rs.index[e.Category]; dup {
			errs = append(errs, fmt.Errorf("category %s declared more than once", e.Category))
			continue
		}

		keywords, err := normalizeKeywords(e.Keywords)
		if err != nil {
			errs = append(errs, fmt.Errorf("category %s: %w", e.Category, err))
			continue
		}
		if len(keywords) == 0 && e.Category != model.Other {
			errs = append(errs, fmt.Errorf("category %s has no keywords", e.Category))
			continue
		}

		rs.index[e.Category] = len(rs.entries)
		rs.entries = append(rs.entries, Entry{Category: e.Category, Keywords: keywords})
	}

	for _, c := range model.AllCategories() {
		if _, ok := rs.index[c]; !ok && !categoryRejected(entries, c) {
			errs = append(errs, fmt.Errorf("category %s is missing", c))
		}
	}

	if containerWords == nil {
		containerWords = DefaultContainerWords
	}
	words, err := normalizeKeywords(containerWords)
	switch {
	case err != nil:
		errs = append(errs, fmt.Errorf("container words: %w", err))
	case len(words) == 0:
		errs = append(errs, errors.New("container words must not be empty"))
	}
	rs.containerWords = words

	if len(errs) > 0 {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRuleSet, errors.Join(errs...))
	}
	return rs, nil
}

// categoryRejected reports whether c was declared but failed validation, so
// it is not also reported as missing.
func categoryRejected(entries []Entry, c model.Category) bool {
	for _, e := range entries {
		if e.Category == c {
			return true
		}
	}
	return false
}

func normalizeKeywords(keywords []string) ([]string, error) {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for i, kw := range keywords {
		norm := model.NormalizeLabel(kw)
		if norm == "" {
			return nil, fmt.Errorf("keyword %d is empty", i)
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out, nil
}

// Keywords returns a copy of the normalized keywords for a category.
func (rs *RuleSet) Keywords(c model.Category) []string {
	return append([]string(nil), rs.keywords(c)...)
}

func (rs *RuleSet) keywords(c model.Category) []string {
	i, ok := rs.index[c]
	if !ok {
		return nil
	}
	return rs.entries[i].Keywords
}

// Entries returns a deep copy of the entries in declared order.
func (rs *RuleSet) Entries() []Entry {
	out := make([]Entry, len(rs.entries))
	for i, e := range rs.entries {
		out[i] = Entry{Category: e.Category, Keywords: append([]string(nil), e.Keywords...)}
	}
	return out
}

// ContainerWords returns a copy of the container words.
func (rs *RuleSet) ContainerWords() []string {
	return append([]string(nil), rs.containerWords...)
}
