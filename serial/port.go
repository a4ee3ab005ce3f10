package serial

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	bugst "go.bug.st/serial"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/prsctx"
)

const (
	DefaultBaudRate    = 9600
	DefaultReadTimeout = 2 * time.Second
	// poll interval of a single blocking read on the device
	pollInterval = 50 * time.Millisecond
)

// Conn is the subset of go.bug.st/serial.Port used by Port.
type Conn interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
	ResetInputBuffer() error
}

var _ pressure.TransportCloser = &Port{}

type Options struct {
	Mode        bugst.Mode
	ReadTimeout time.Duration
	Terminator  byte
}

type Option func(*Options)

func WithBaudRate(rate int) Option {
	return func(o *Options) {
		o.Mode.BaudRate = rate
	}
}

func WithMode(mode bugst.Mode) Option {
	return func(o *Options) {
		o.Mode = mode
	}
}

// WithReadTimeout bounds the time Query waits for a complete reply line.
func WithReadTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.ReadTimeout = d
	}
}

// WithTerminator sets the byte ending a reply line (default '\n').
func WithTerminator(b byte) Option {
	return func(o *Options) {
		o.Terminator = b
	}
}

// Port is a line oriented instrument link over a serial device.
// Commands are written verbatim, replies are read up to the terminator.
type Port struct {
	mx      sync.Mutex
	name    string
	conn    Conn
	config  Options
	pending []byte
	status  pressure.Status
}

func defaultOptions() Options {
	return Options{
		Mode: bugst.Mode{
			BaudRate: DefaultBaudRate,
			DataBits: 8,
			Parity:   bugst.NoParity,
			StopBits: bugst.OneStopBit,
		},
		ReadTimeout: DefaultReadTimeout,
		Terminator:  '\n',
	}
}

// Open opens the named serial device (e.g. /dev/ttyUSB0 or COM3).
func Open(name string, opts ...Option) (*Port, error) {
	config := defaultOptions()
	for _, opt := range opts {
		opt(&config)
	}
	port, err := bugst.Open(name, &config.Mode)
	if err != nil {
		return nil, fmt.Errorf("%w: could not open serial port %s: %w", pressure.ErrTransport, name, err)
	}
	if err := port.SetReadTimeout(pollInterval); err != nil {
		_ = port.Close()
		return nil, fmt.Errorf("%w: could not set read timeout on %s: %w", pressure.ErrTransport, name, err)
	}
	slog.Debug("serial port opened", "port", name, "baud", config.Mode.BaudRate)
	return &Port{name: name, conn: port, config: config}, nil
}

// NewPort wraps an already opened connection.
func NewPort(name string, conn Conn, opts ...Option) *Port {
	config := defaultOptions()
	for _, opt := range opts {
		opt(&config)
	}
	return &Port{name: name, conn: conn, config: config}
}

// Ports lists the serial devices present on the host.
func Ports() ([]string, error) {
	return bugst.GetPortsList()
}

func (p *Port) Name() string {
	return p.name
}

func (p *Port) Write(ctx context.Context, command string) error {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.write(ctx, command)
}

// Query discards unread input, writes the command and returns the next reply
// line including its terminator.
func (p *Port) Query(ctx context.Context, command string) (string, error) {
	p.mx.Lock()
	defer p.mx.Unlock()
	p.pending = p.pending[:0]
	if err := p.conn.ResetInputBuffer(); err != nil {
		return "", fmt.Errorf("%w: could not reset input buffer of %s: %w", pressure.ErrTransport, p.name, err)
	}
	if err := p.write(ctx, command); err != nil {
		return "", err
	}
	line, err := p.readLine(ctx)
	if err != nil {
		return "", err
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "rx", "port", p.name, "data", fmt.Sprintf("%q", line))
	}
	return line, nil
}

func (p *Port) LastStatus() pressure.Status {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.status
}

func (p *Port) Close() error {
	p.mx.Lock()
	defer p.mx.Unlock()
	return p.conn.Close()
}

func (p *Port) write(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "tx", "port", p.name, "data", fmt.Sprintf("%q", command))
	}
	n, err := p.conn.Write([]byte(command))
	if err != nil {
		p.status = pressure.StatusUnknown
		return fmt.Errorf("%w: write to %s failed: %w", pressure.ErrTransport, p.name, err)
	}
	if n != len(command) {
		p.status = pressure.StatusUnknown
		return fmt.Errorf("%w: short write to %s: %d of %d bytes", pressure.ErrTransport, p.name, n, len(command))
	}
	p.status = pressure.StatusSuccess
	return nil
}

// readLine accumulates reads until the terminator arrives.
func (p *Port) readLine(ctx context.Context) (string, error) {
	deadline := time.Now().Add(p.config.ReadTimeout)
	buf := make([]byte, 64)
	for {
		if i := bytes.IndexByte(p.pending, p.config.Terminator); i >= 0 {
			line := string(p.pending[:i+1])
			p.pending = append(p.pending[:0], p.pending[i+1:]...)
			p.status = pressure.StatusTermChar
			return line, nil
		}
		if err := ctx.Err(); err != nil {
			return "", err
		}
		if time.Now().After(deadline) {
			p.status = pressure.StatusUnknown
			return "", fmt.Errorf("%w: read from %s timed out after %s (got %q)", pressure.ErrTransport, p.name, p.config.ReadTimeout, p.pending)
		}
		n, err := p.conn.Read(buf)
		if err != nil {
			p.status = pressure.StatusUnknown
			return "", fmt.Errorf("%w: read from %s failed: %w", pressure.ErrTransport, p.name, err)
		}
		p.pending = append(p.pending, buf[:n]...)
	}
}
