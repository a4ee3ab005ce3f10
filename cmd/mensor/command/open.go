package command

import (
	"context"
	"fmt"
	"io"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/mensor"
	"github.com/mklimuk/pressure/pkg/config"
	"github.com/mklimuk/pressure/prsctx"
	"github.com/mklimuk/pressure/serial"
	"github.com/mklimuk/pressure/visa"
)

const metadataConfig = "config"

// SetConfig stores the resolved configuration for the commands.
func SetConfig(app *cli.App, cfg config.Config) {
	if app.Metadata == nil {
		app.Metadata = make(map[string]interface{})
	}
	app.Metadata[metadataConfig] = cfg
}

func Config(c *cli.Context) config.Config {
	cfg, ok := c.App.Metadata[metadataConfig].(config.Config)
	if !ok {
		return config.Default()
	}
	return cfg
}

// Context returns the command context carrying the verbose flag.
func Context(c *cli.Context) context.Context {
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}
	return prsctx.SetVerbose(ctx, c.Bool("verbose"))
}

// Session is an opened instrument. Close releases the transport.
type Session struct {
	Instrument mensor.Instrument
	closer     io.Closer
}

func (s *Session) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// Open connects to the configured instrument, or to the simulator when the
// simulate flag is set.
func Open(c *cli.Context) (*Session, error) {
	if c.Bool("simulate") {
		return &Session{Instrument: NewSimulator()}, nil
	}
	cfg := Config(c)
	if cfg.Address == "" {
		return nil, fmt.Errorf("no instrument address configured (use --address or the config file)")
	}
	mode, err := serial.NewMode(cfg.Serial.BaudRate, cfg.Serial.DataBits, cfg.Serial.Parity, cfg.Serial.StopBits)
	if err != nil {
		return nil, fmt.Errorf("invalid serial settings: %w", err)
	}
	t, err := visa.Open(Context(c), cfg.Address,
		visa.WithSerialOptions(serial.WithMode(mode), serial.WithReadTimeout(cfg.Serial.ReadTimeout)),
		visa.WithPrologixPort(cfg.Prologix.Port, cfg.Prologix.BaudRate),
		visa.WithSocketTimeout(cfg.Socket.Timeout),
	)
	if err != nil {
		return nil, fmt.Errorf("could not open %s: %w", cfg.Address, err)
	}
	var opts []mensor.Option
	if cfg.Identity != "" {
		opts = append(opts, mensor.WithIdentity(cfg.Identity))
	}
	return &Session{Instrument: mensor.New(t, opts...), closer: t}, nil
}
