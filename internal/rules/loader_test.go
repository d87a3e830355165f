package rules

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/model"
)

const sampleRules = `version: 1
container_words: [bottle, jar]
categories:
  - name: Hazardous
    keywords: [battery, paint]
  - name: food
    keywords: [apple]
  - name: deposit
    keywords: [glass]
  - name: recyclable
    keywords: [paper, glass]
  - name: reuse
    keywords: [books]
  - name: other
    keywords: []
`

func TestParse(t *testing.T) {
	rs, err := Parse([]byte(sampleRules))
	require.NoError(t, err)

	assert.Equal(t, []string{"battery", "paint"}, rs.Keywords(model.Hazardous))
	assert.Equal(t, []string{"bottle", "jar"}, rs.ContainerWords())
	assert.Equal(t, model.Deposit, Resolve(model.NewLabelSet("glass", "jar"), rs))
	assert.Equal(t, model.Recyclable, Resolve(model.NewLabelSet("glass"), rs))
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{name: "empty document", doc: ""},
		{name: "malformed yaml", doc: "categories: [\n"},
		{name: "unknown field", doc: "version: 1\nrules: []\n"},
		{name: "future version", doc: "version: 2\ncategories: []\n"},
		{name: "unknown category", doc: "categories:\n  - name: compost\n    keywords: [peel]\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			assert.Error(t, err)
		})
	}
}

func TestEncode_RoundTripsDefault(t *testing.T) {
	data, err := Encode(Default())
	require.NoError(t, err)
	assert.Contains(t, string(data), "version: 1")

	rs, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, Default().Entries(), rs.Entries())
	assert.Equal(t, Default().ContainerWords(), rs.ContainerWords())
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(sampleRules), 0o600))

	rs, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, model.Hazardous, Resolve(model.NewLabelSet("paint can"), rs))

	_, err = LoadFile(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
