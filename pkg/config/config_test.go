package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecode(t *testing.T) {
	doc := `
address: GPIB0::1::INSTR
prologix:
  port: /dev/ttyUSB1
serial:
  read_timeout: 500ms
monitor:
  interval: 250ms
`
	cfg, err := Decode(strings.NewReader(doc), Default())
	require.NoError(t, err)
	assert.Equal(t, "GPIB0::1::INSTR", cfg.Address)
	assert.Equal(t, "/dev/ttyUSB1", cfg.Prologix.Port)
	assert.Equal(t, 9600, cfg.Prologix.BaudRate)
	assert.Equal(t, 500*time.Millisecond, cfg.Serial.ReadTimeout)
	assert.Equal(t, 9600, cfg.Serial.BaudRate)
	assert.Equal(t, 250*time.Millisecond, cfg.Monitor.Interval)
	assert.Equal(t, ":8080", cfg.Monitor.Listen)
}

func TestDecode_UnknownField(t *testing.T) {
	_, err := Decode(strings.NewReader("adress: typo\n"), Default())
	assert.Error(t, err)
}

func TestDecode_Empty(t *testing.T) {
	cfg, err := Decode(strings.NewReader(""), Default())
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bench.yaml")
	require.NoError(t, os.WriteFile(path, []byte("address: ASRL/dev/ttyUSB0::INSTR\n"), 0o600))
	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "ASRL/dev/ttyUSB0::INSTR", cfg.Address)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
