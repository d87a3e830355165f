package rules

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/Veraticus/sortit/internal/model"
)

// FileVersion is the rules file format version written by Encode.
const FileVersion = 1

// File is the on-disk YAML representation of a rule set.
type File struct {
	Version        int            `yaml:"version"`
	ContainerWords []string       `yaml:"container_words,omitempty"`
	Categories     []FileCategory `yaml:"categories"`
}

// FileCategory is one category block in a rules file.
type FileCategory struct {
	Name     string   `yaml:"name"`
	Keywords []string `yaml:"keywords"`
}

// LoadFile reads and validates a YAML rules file.
func LoadFile(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	rs, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("rules file %s: %w", path, err)
	}
	return rs, nil
}

// Parse decodes and validates a YAML rules document.
func Parse(data []byte) (*RuleSet, error) {
	var f File
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	if f.Version != 0 && f.Version != FileVersion {
		return nil, fmt.Errorf("%w: unsupported rules file version %d", ErrInvalidRuleSet, f.Version)
	}

	entries := make([]Entry, 0, len(f.Categories))
	for _, c := range f.Categories {
		// Unknown names are rejected by New, keep the raw name for the message.
		cat, err := model.ParseCategory(c.Name)
		if err != nil {
			cat = model.Category(c.Name)
		}
		entries = append(entries, Entry{Category: cat, Keywords: c.Keywords})
	}

	return New(entries, f.ContainerWords)
}

// Encode renders a rule set in the YAML rules file format.
func Encode(rs *RuleSet) ([]byte, error) {
	f := File{
		Version:        FileVersion,
		ContainerWords: rs.ContainerWords(),
	}
	for _, e := range rs.entries {
		f.Categories = append(f.Categories, FileCategory{
			Name:     string(e.Category),
			Keywords: append([]string(nil), e.Keywords...),
		})
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(&f); err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encode rules: %w", err)
	}
	return buf.Bytes(), nil
}
