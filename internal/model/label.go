package model

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// ErrInvalidLabel is returned for labels that cannot be used for classification.
var ErrInvalidLabel = errors.New("invalid label")

// Label is a free-text description of something visible in an image.
type Label struct {
	Confidence *float64 `json:"confidence,omitempty"`
	Name       string   `json:"name"`
}

// LabelSet is the unordered collection of labels produced for one image.
type LabelSet []Label

// NewLabelSet builds a label set from bare names.
func NewLabelSet(names ...string) LabelSet {
	ls := make(LabelSet, 0, len(names))
	for _, name := range names {
		ls = append(ls, Label{Name: name})
	}
	return ls
}

// NormalizeLabel lower-cases and trims a label or keyword for comparison.
func NormalizeLabel(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Names returns the normalized label names: lower-cased, trimmed, with
// empties and duplicates removed, sorted.
func (ls LabelSet) Names() []string {
	seen := make(map[string]struct{}, len(ls))
	names := make([]string, 0, len(ls))
	for _, l := range ls {
		name := NormalizeLabel(l.Name)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Validate checks that confidences, when present, fall within [0,1].
func (ls LabelSet) Validate() error {
	for i, l := range ls {
		if l.Confidence == nil {
			continue
		}
		if c := *l.Confidence; c < 0 || c > 1 {
			return fmt.Errorf("%w: label %d (%q) confidence must be between 0.0 and 1.0, got %.2f", ErrInvalidLabel, i, l.Name, c)
		}
	}
	return nil
}

// ParseLabel parses the "name[:confidence]" syntax used on the command line
// and in the label API.
func ParseLabel(s string) (Label, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Label{}, fmt.Errorf("%w: empty label", ErrInvalidLabel)
	}

	idx := strings.LastIndex(s, ":")
	if idx < 0 {
		return Label{Name: s}, nil
	}

	score, err := strconv.ParseFloat(strings.TrimSpace(s[idx+1:]), 64)
	if err != nil {
		// Not a score suffix; the colon belongs to the label.
		return Label{Name: s}, nil
	}
	if score < 0 || score > 1 {
		return Label{}, fmt.Errorf("%w: %q confidence must be between 0.0 and 1.0", ErrInvalidLabel, s)
	}

	name := strings.TrimSpace(s[:idx])
	if name == "" {
		return Label{}, fmt.Errorf("%w: %q has no name", ErrInvalidLabel, s)
	}
	return Label{Name: name, Confidence: &score}, nil
}

// ParseLabelList parses a comma-separated list of "name[:confidence]" entries.
func ParseLabelList(s string) (LabelSet, error) {
	var ls LabelSet
	for _, part := range strings.Split(s, ",") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		l, err := ParseLabel(part)
		if err != nil {
			return nil, err
		}
		ls = append(ls, l)
	}
	return ls, nil
}
