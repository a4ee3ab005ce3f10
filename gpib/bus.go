package gpib

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/gotmc/prologix"
	bugst "go.bug.st/serial"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/prsctx"
)

var ErrInvalidAddress = errors.New("invalid GPIB address")

const (
	MaxPrimaryAddress   = 30
	MinSecondaryAddress = 96
	MaxSecondaryAddress = 126
)

// Address is a GPIB device address. Secondary is 0 when unused.
type Address struct {
	Primary   int
	Secondary int
}

func (a Address) Validate() error {
	if a.Primary < 0 || a.Primary > MaxPrimaryAddress {
		return fmt.Errorf("%w: primary address %d (must be 0-%d)", ErrInvalidAddress, a.Primary, MaxPrimaryAddress)
	}
	if a.Secondary != 0 && (a.Secondary < MinSecondaryAddress || a.Secondary > MaxSecondaryAddress) {
		return fmt.Errorf("%w: secondary address %d (must be %d-%d)", ErrInvalidAddress, a.Secondary, MinSecondaryAddress, MaxSecondaryAddress)
	}
	return nil
}

func (a Address) String() string {
	if a.Secondary != 0 {
		return fmt.Sprintf("%d::%d", a.Primary, a.Secondary)
	}
	return fmt.Sprintf("%d", a.Primary)
}

var _ pressure.TransportCloser = &Bus{}

// Bus reaches an instrument through a Prologix GPIB-USB controller (or an
// AR488 clone) attached as a virtual COM port. The controller terminates
// every command on the GPIB side itself, so trailing CR/LF in commands is
// replaced by the controller's own terminator.
type Bus struct {
	mx         sync.Mutex
	addr       Address
	closer     io.Closer
	controller *prologix.Controller
	status     pressure.Status
}

// Open opens the adapter's serial port and addresses the instrument.
func Open(port string, addr Address, baudRate int) (*Bus, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	sp, err := bugst.Open(port, &bugst.Mode{BaudRate: baudRate})
	if err != nil {
		return nil, fmt.Errorf("%w: could not open GPIB adapter port %s: %w", pressure.ErrTransport, port, err)
	}
	bus, err := NewBus(sp, addr)
	if err != nil {
		_ = sp.Close()
		return nil, err
	}
	bus.closer = sp
	slog.Debug("GPIB adapter configured", "port", port, "address", addr.String())
	return bus, nil
}

// NewBus configures a Prologix controller on an open link.
func NewBus(rw io.ReadWriter, addr Address) (*Bus, error) {
	if err := addr.Validate(); err != nil {
		return nil, err
	}
	c, err := prologix.NewController(rw, addr.Primary, false)
	if err != nil {
		return nil, fmt.Errorf("%w: could not configure GPIB controller: %w", pressure.ErrTransport, err)
	}
	// the controller only sets the primary address
	if addr.Secondary != 0 {
		if err := c.CommandController(fmt.Sprintf("addr %d %d", addr.Primary, addr.Secondary)); err != nil {
			return nil, fmt.Errorf("%w: could not set GPIB secondary address: %w", pressure.ErrTransport, err)
		}
	}
	return &Bus{addr: addr, controller: c}, nil
}

func (b *Bus) Address() Address {
	return b.addr
}

func (b *Bus) Write(ctx context.Context, command string) error {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := ctx.Err(); err != nil {
		return err
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "tx", "gpib", b.addr.String(), "data", fmt.Sprintf("%q", command))
	}
	if err := b.controller.Command("%s", strings.TrimRight(command, "\r\n")); err != nil {
		b.status = pressure.StatusUnknown
		return fmt.Errorf("%w: GPIB write to %s failed: %w", pressure.ErrTransport, b.addr, err)
	}
	b.status = pressure.StatusSuccess
	return nil
}

func (b *Bus) Query(ctx context.Context, command string) (string, error) {
	b.mx.Lock()
	defer b.mx.Unlock()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "tx", "gpib", b.addr.String(), "data", fmt.Sprintf("%q", command))
	}
	resp, err := b.controller.Query(strings.TrimRight(command, "\r\n"))
	if err != nil && !errors.Is(err, io.EOF) {
		b.status = pressure.StatusUnknown
		return "", fmt.Errorf("%w: GPIB query to %s failed: %w", pressure.ErrTransport, b.addr, err)
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "rx", "gpib", b.addr.String(), "data", fmt.Sprintf("%q", resp))
	}
	b.status = pressure.StatusTermChar
	return resp, nil
}

func (b *Bus) LastStatus() pressure.Status {
	b.mx.Lock()
	defer b.mx.Unlock()
	return b.status
}

func (b *Bus) Close() error {
	if b.closer == nil {
		return nil
	}
	return b.closer.Close()
}
