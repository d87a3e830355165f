package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLabelSet_Names(t *testing.T) {
	ls := LabelSet{
		{Name: "  Battery Pack "},
		{Name: "apple"},
		{Name: "APPLE"},
		{Name: "   "},
		{Name: ""},
	}

	assert.Equal(t, []string{"apple", "battery pack"}, ls.Names())
	assert.Empty(t, LabelSet(nil).Names())
}

func TestLabelSet_Validate(t *testing.T) {
	ok := 0.5
	tooHigh := 1.5
	negative := -0.01

	assert.NoError(t, LabelSet{{Name: "can", Confidence: &ok}, {Name: "metal"}}.Validate())

	err := LabelSet{{Name: "can", Confidence: &tooHigh}}.Validate()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidLabel))

	assert.Error(t, LabelSet{{Name: "can", Confidence: &negative}}.Validate())
}

func TestParseLabel(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		wantName string
		wantConf *float64
		wantErr  bool
	}{
		{name: "bare name", input: " battery ", wantName: "battery"},
		{name: "with confidence", input: "battery:0.93", wantName: "battery", wantConf: ptr(0.93)},
		{name: "colon without score", input: "note: fragile", wantName: "note: fragile"},
		{name: "confidence out of range", input: "battery:1.2", wantErr: true},
		{name: "missing name", input: ":0.5", wantErr: true},
		{name: "empty", input: "  ", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabel(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, got.Name)
			if tt.wantConf == nil {
				assert.Nil(t, got.Confidence)
			} else {
				require.NotNil(t, got.Confidence)
				assert.InDelta(t, *tt.wantConf, *got.Confidence, 1e-9)
			}
		})
	}
}

func TestParseLabelList(t *testing.T) {
	ls, err := ParseLabelList("battery:0.9, apple,, can")
	require.NoError(t, err)
	require.Len(t, ls, 3)
	assert.Equal(t, "battery", ls[0].Name)
	assert.Equal(t, "apple", ls[1].Name)
	assert.Equal(t, "can", ls[2].Name)

	_, err = ParseLabelList("battery:7")
	assert.Error(t, err)
}

func ptr(f float64) *float64 { return &f }
