package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Version is injected at build time.
var Version = "dev"

const DefaultPath = "mensor.yaml"

type Config struct {
	// Address is the instrument resource string, e.g. ASRL/dev/ttyUSB0::INSTR.
	Address  string   `yaml:"address"`
	Serial   Serial   `yaml:"serial"`
	Prologix Prologix `yaml:"prologix"`
	Socket   Socket   `yaml:"socket"`
	Monitor  Monitor  `yaml:"monitor"`
	// Identity overrides the identification substring checked by ping.
	Identity string `yaml:"identity,omitempty"`
}

type Serial struct {
	BaudRate    int           `yaml:"baud_rate"`
	DataBits    int           `yaml:"data_bits"`
	Parity      string        `yaml:"parity"`
	StopBits    string        `yaml:"stop_bits"`
	ReadTimeout time.Duration `yaml:"read_timeout"`
}

type Prologix struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

type Socket struct {
	Timeout time.Duration `yaml:"timeout"`
}

type Monitor struct {
	Listen   string        `yaml:"listen"`
	Interval time.Duration `yaml:"interval"`
}

func Default() Config {
	return Config{
		Serial: Serial{
			BaudRate:    9600,
			DataBits:    8,
			Parity:      "none",
			StopBits:    "1",
			ReadTimeout: 2 * time.Second,
		},
		Prologix: Prologix{BaudRate: 9600},
		Socket:   Socket{Timeout: 2 * time.Second},
		Monitor: Monitor{
			Listen:   ":8080",
			Interval: time.Second,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. A missing file is
// not an error when path is the default path.
func Load(path string) (Config, error) {
	cfg := Default()
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) && path == DefaultPath {
			return cfg, nil
		}
		return cfg, fmt.Errorf("could not open config file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return Decode(f, cfg)
}

func Decode(r io.Reader, cfg Config) (Config, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && !errors.Is(err, io.EOF) {
		return cfg, fmt.Errorf("could not decode config: %w", err)
	}
	return cfg, nil
}
