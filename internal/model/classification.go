package model

import "time"

// Disposal is the presentation entry shown alongside a category.
type Disposal struct {
	Title    string `json:"title"`
	Guide    string `json:"guide"`
	BinImage string `json:"bin_image"`
}

// ClassificationResult is the outcome of classifying one image or label set.
type ClassificationResult struct {
	ClassifiedAt   time.Time `json:"classified_at"`
	ID             string    `json:"id"`
	Category       Category  `json:"category"`
	Step           string    `json:"step"`
	MatchedLabel   string    `json:"matched_label,omitempty"`
	MatchedKeyword string    `json:"matched_keyword,omitempty"`
	Source         string    `json:"source"`
	Disposal       Disposal  `json:"disposal"`
	Labels         LabelSet  `json:"labels"`
}
