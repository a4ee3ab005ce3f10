package serial

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	bugst "go.bug.st/serial"
)

func TestNewMode(t *testing.T) {
	mode, err := NewMode(9600, 0, "none", "1")
	require.NoError(t, err)
	assert.Equal(t, bugst.Mode{BaudRate: 9600, DataBits: 8, Parity: bugst.NoParity, StopBits: bugst.OneStopBit}, mode)

	mode, err = NewMode(57600, 7, "Even", "2")
	require.NoError(t, err)
	assert.Equal(t, bugst.EvenParity, mode.Parity)
	assert.Equal(t, bugst.TwoStopBits, mode.StopBits)
	assert.Equal(t, 7, mode.DataBits)

	_, err = NewMode(9600, 9, "none", "1")
	assert.Error(t, err)
	_, err = NewMode(9600, 8, "purple", "1")
	assert.Error(t, err)
	_, err = NewMode(9600, 8, "none", "3")
	assert.Error(t, err)
}
