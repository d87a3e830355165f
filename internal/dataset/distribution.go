// Package dataset reports on the labeled image dataset used to train the
// local classifier.
package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// DefaultClasses are the class directories of the garbage classification dataset.
var DefaultClasses = []string{"glass", "paper", "cardboard", "plastic", "metal", "trash"}

var imageExtensions = map[string]struct{}{
	".jpg":  {},
	".jpeg": {},
	".png":  {},
}

// ClassCount is the number of images found for one class.
type ClassCount struct {
	Class  string `json:"class"`
	Images int    `json:"images"`
}

// Distribution counts the images in each class sub-directory of root. A
// missing class directory counts as zero; a missing root is an error.
func Distribution(root string, classes []string) ([]ClassCount, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("dataset root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("dataset root %s is not a directory", root)
	}

	if len(classes) == 0 {
		classes = DefaultClasses
	}

	counts := make([]ClassCount, 0, len(classes))
	for _, class := range classes {
		n, err := countImages(filepath.Join(root, class))
		if err != nil {
			return nil, fmt.Errorf("count %s: %w", class, err)
		}
		counts = append(counts, ClassCount{Class: class, Images: n})
	}
	return counts, nil
}

func countImages(dir string) (int, error) {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	n := 0
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if IsImageFile(e.Name()) {
			n++
		}
	}
	return n, nil
}

// IsImageFile reports whether name has a supported image extension.
func IsImageFile(name string) bool {
	_, ok := imageExtensions[strings.ToLower(filepath.Ext(name))]
	return ok
}

// Total sums the image counts.
func Total(counts []ClassCount) int {
	total := 0
	for _, c := range counts {
		total += c.Images
	}
	return total
}
