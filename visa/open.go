package visa

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"strconv"
	"time"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/gpib"
	"github.com/mklimuk/pressure/serial"
	"github.com/mklimuk/pressure/socket"
)

type Options struct {
	SerialOptions []serial.Option
	PrologixPort  string
	PrologixBaud  int
	SocketTimeout time.Duration
}

type Option func(*Options)

func WithSerialOptions(opts ...serial.Option) Option {
	return func(o *Options) {
		o.SerialOptions = append(o.SerialOptions, opts...)
	}
}

// WithPrologixPort names the serial port of the GPIB adapter used for GPIB resources.
func WithPrologixPort(port string, baudRate int) Option {
	return func(o *Options) {
		o.PrologixPort = port
		o.PrologixBaud = baudRate
	}
}

func WithSocketTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.SocketTimeout = d
	}
}

// Open parses the resource string and opens the matching transport.
// The caller owns the returned transport and must close it.
func Open(ctx context.Context, address string, opts ...Option) (pressure.TransportCloser, error) {
	res, err := Parse(address)
	if err != nil {
		return nil, err
	}
	config := Options{
		PrologixBaud:  serial.DefaultBaudRate,
		SocketTimeout: socket.DefaultTimeout,
	}
	for _, opt := range opts {
		opt(&config)
	}
	slog.DebugContext(ctx, "opening resource", "resource", res.String())
	var t pressure.TransportCloser
	switch res.Kind {
	case KindSerial:
		t, err = serial.Open(res.Device, config.SerialOptions...)
	case KindGPIB:
		if config.PrologixPort == "" {
			return nil, fmt.Errorf("%w: GPIB resource %s needs a GPIB adapter port", ErrUnsupportedResource, res)
		}
		t, err = gpib.Open(config.PrologixPort, res.GPIB, config.PrologixBaud)
	case KindSocket:
		t, err = socket.Dial(ctx, net.JoinHostPort(res.Host, strconv.Itoa(res.Port)), config.SocketTimeout)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedResource, address)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}
