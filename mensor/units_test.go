package mensor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUnitCode_Table(t *testing.T) {
	codes := Units()
	assert.Len(t, codes, 34)
	assert.Equal(t, UnitCode(1), codes[0])
	assert.Equal(t, UnitCode(34), codes[33])
	for _, c := range codes {
		assert.True(t, c.Valid())
		assert.NotEmpty(t, c.String())
		assert.NotEmpty(t, c.Description())
	}
	assert.Equal(t, "psi", UnitCode(1).String())
	assert.Equal(t, "bar", UnitCode(14).String())
	assert.Equal(t, "kPa", UnitCode(22).String())
	assert.Equal(t, "n/a", UnitCode(34).String())
	assert.Equal(t, "UnitCode(35)", UnitCode(35).String())
	assert.False(t, UnitCode(0).Valid())
	assert.Empty(t, UnitCode(0).Description())
}

func TestParseUnitCode(t *testing.T) {
	tests := []struct {
		given    string
		expected UnitCode
		wantErr  bool
	}{
		{"1", 1, false},
		{" 22 ", 22, false},
		{"psi", 1, false},
		{"KPA", 22, false},
		{"dyn/sq cm", 24, false},
		{"0", 0, true},
		{"35", 0, true},
		{"furlongs", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			code, err := ParseUnitCode(tt.given)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrValidation)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, code)
		})
	}
}
