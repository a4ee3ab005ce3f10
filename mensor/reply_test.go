package mensor

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrimReply(t *testing.T) {
	tests := []struct {
		given    string
		expected string
	}{
		{"YES\r\n", "YES"},
		{"NO\r", "NO"},
		{"EEYES\r\n", "YES"},
		{"E  +1.5\r\n", "+1.5"},
		{" E1.5\r\n", "E1.5"},
		{"A\n\n", "A"},
		{"14", "14"},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.given), func(t *testing.T) {
			assert.Equal(t, tt.expected, trimReply(tt.given))
		})
	}
}

func TestParseReading(t *testing.T) {
	v, err := parseReading("E+1.234500\r\n")
	assert.NoError(t, err)
	assert.InDelta(t, 1.2345, v, 1e-12)

	v, err = parseReading("E-1.5E+02\r\n")
	assert.NoError(t, err)
	assert.InDelta(t, -150.0, v, 1e-12)

	_, err = parseReading("\r\n")
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestParseIdentity(t *testing.T) {
	id, err := parseIdentity("MENSOR, 600,610189,0.1.5\r\n")
	assert.NoError(t, err)
	assert.Equal(t, "MENSOR", id.Manufacturer)
	assert.Equal(t, "0.1.5", id.Firmware)

	_, err = parseIdentity("MENSOR 600\r\n")
	assert.ErrorIs(t, err, ErrProtocol)
}
