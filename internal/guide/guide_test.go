package guide

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/sortit/internal/model"
)

func TestDefault_CoversEveryCategory(t *testing.T) {
	table := Default()
	for _, c := range model.AllCategories() {
		e := table.Lookup(c)
		assert.NotEmpty(t, e.Title, "title for %s", c)
		assert.NotEmpty(t, e.Guide, "guide for %s", c)
		assert.NotEmpty(t, e.BinImage, "bin image for %s", c)
	}
}

func TestNewTable_Incomplete(t *testing.T) {
	entries := map[model.Category]Entry{
		model.Recyclable: {Title: "Recyclable", Guide: "Rinse it"},
		model.Hazardous:  {Title: "Hazardous"},
		model.Food:       {Title: "Food", Guide: "Compost it"},
		model.Reuse:      {Title: "Reuse", Guide: "Donate it"},
		model.Other:      {Title: " ", Guide: "Bin it"},
	}

	_, err := NewTable(entries)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIncompleteGuide))
	assert.Contains(t, err.Error(), "no entry for deposit")
	assert.Contains(t, err.Error(), "hazardous has no guide text")
	assert.Contains(t, err.Error(), "other has no title")
}

func TestNewTable_UnknownCategory(t *testing.T) {
	entries := map[model.Category]Entry{}
	for _, c := range model.AllCategories() {
		entries[c] = Entry{Title: "t", Guide: "g"}
	}
	entries["compost"] = Entry{Title: "t", Guide: "g"}

	_, err := NewTable(entries)
	assert.ErrorIs(t, err, model.ErrUnknownCategory)
}

func TestLookup_UnknownFallsBackToOther(t *testing.T) {
	table := Default()
	assert.Equal(t, table.Lookup(model.Other), table.Lookup("compost"))
}

func TestWithImageBase(t *testing.T) {
	table := Default().WithImageBase("https://cdn.example.com/static/")

	assert.Equal(t, "https://cdn.example.com/static/bins/food.jpg", table.Lookup(model.Food).BinImage)
	assert.Equal(t, "bins/food.jpg", Default().Lookup(model.Food).BinImage)

	again := table.WithImageBase("/other")
	assert.Equal(t, "https://cdn.example.com/static/bins/food.jpg", again.Lookup(model.Food).BinImage)
}
