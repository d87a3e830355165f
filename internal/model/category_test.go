package model

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCategory(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    Category
		wantErr bool
	}{
		{name: "lower case", input: "recyclable", want: Recyclable},
		{name: "mixed case with spaces", input: "  HazarDous ", want: Hazardous},
		{name: "deposit", input: "deposit", want: Deposit},
		{name: "unknown", input: "compost", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseCategory(tt.input)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrUnknownCategory))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAllCategories(t *testing.T) {
	all := AllCategories()
	assert.Len(t, all, 6)
	for _, c := range all {
		assert.True(t, c.IsValid(), "category %s should be valid", c)
	}

	// Mutating the returned slice must not leak into later calls.
	all[0] = "bogus"
	assert.Equal(t, Recyclable, AllCategories()[0])
	assert.False(t, Category("bogus").IsValid())
}
