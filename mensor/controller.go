package mensor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"

	"github.com/mklimuk/pressure"
)

// DefaultIdentity is the substring a supported controller returns to *IDN?.
const DefaultIdentity = "MENSOR, 600,610189,0.1.5"

const terminator = "\r"

var ErrValidation = errors.New("invalid argument")
var ErrProtocol = errors.New("unexpected instrument reply")

type Options struct {
	Identity string
}

type Option func(*Options)

// WithIdentity overrides the identification substring Ping looks for.
func WithIdentity(id string) Option {
	return func(o *Options) {
		o.Identity = id
	}
}

// Controller drives a Mensor 600 series modular pressure controller.
// See: https://www.mensor.com/products_pressure_controllers_en_co.WIKA
//
// Typical usage:
//
//	c := mensor.New(transport)
//	_, err := c.SetActiveChannel(ctx, "A")
//	p, err := c.ReadPressure(ctx)
//
// The controller keeps no state besides the transport. It is not safe for
// concurrent use: several operations issue more than one exchange and the
// sequence must not be interleaved with other callers.
type Controller struct {
	transport pressure.Transport
	config    Options
}

var _ Instrument = &Controller{}

func New(transport pressure.Transport, opts ...Option) *Controller {
	config := Options{
		Identity: DefaultIdentity,
	}
	for _, opt := range opts {
		opt(&config)
	}
	return &Controller{transport: transport, config: config}
}

// Ping checks that a Mensor controller answers the identification query.
func (c *Controller) Ping(ctx context.Context) (bool, error) {
	resp, err := c.transport.Query(ctx, "*IDN?"+terminator)
	if err != nil {
		return false, err
	}
	if !strings.Contains(resp, c.config.Identity) {
		return false, fmt.Errorf("%w: a Mensor pressure controller did not respond, got %q", ErrProtocol, resp)
	}
	return true, nil
}

// Identify returns the fields of the identification reply.
func (c *Controller) Identify(ctx context.Context) (Identity, error) {
	resp, err := c.transport.Query(ctx, "*IDN?"+terminator)
	if err != nil {
		return Identity{}, err
	}
	return parseIdentity(resp)
}

// SetActiveChannel selects channel A or B.
func (c *Controller) SetActiveChannel(ctx context.Context, channel string) (pressure.Status, error) {
	ch, err := ParseChannel(channel)
	if err != nil {
		return pressure.StatusUnknown, err
	}
	return c.write(ctx, "Chan "+string(ch)+terminator)
}

// SetActiveChannelDifferential makes the differential channel the active one.
func (c *Controller) SetActiveChannelDifferential(ctx context.Context) (pressure.Status, error) {
	return c.write(ctx, "Chan "+string(ChannelDifferential)+terminator)
}

// SetUnit sets the unit of the active channel.
func (c *Controller) SetUnit(ctx context.Context, code UnitCode) (pressure.Status, error) {
	if !code.Valid() {
		return pressure.StatusUnknown, fmt.Errorf("%w: unit code %d not supported, see the instrument's manual", ErrValidation, int(code))
	}
	return c.write(ctx, "Units "+strconv.Itoa(int(code))+terminator)
}

// SetMode switches the operating mode. The instrument rejects unknown modes.
func (c *Controller) SetMode(ctx context.Context, mode Mode) (pressure.Status, error) {
	return c.write(ctx, "Mode "+string(mode)+terminator)
}

// SetMeasurementType sets absolute or gauge measurement. Differential
// measurement has no Ptype of its own and selects the differential channel.
func (c *Controller) SetMeasurementType(ctx context.Context, mtype string) (pressure.Status, error) {
	t, err := ParseMeasurementType(mtype)
	if err != nil {
		return pressure.StatusUnknown, err
	}
	switch t {
	case Absolute:
		return c.write(ctx, "Ptype A"+terminator)
	case Gauge:
		return c.write(ctx, "Ptype G"+terminator)
	default:
		return c.write(ctx, "Chan D"+terminator)
	}
}

// SetLimit sets the upper and lower control limits of the active channel.
// The instrument accepts the limit commands without a terminator.
func (c *Controller) SetLimit(ctx context.Context, upper, lower float64) (pressure.Status, error) {
	if err := checkValue("upper limit", upper); err != nil {
		return pressure.StatusUnknown, err
	}
	if err := checkValue("lower limit", lower); err != nil {
		return pressure.StatusUnknown, err
	}
	if _, err := c.write(ctx, "UpperLimit"+formatNumber(upper)); err != nil {
		return pressure.StatusUnknown, err
	}
	return c.write(ctx, "LowerLimit"+formatNumber(lower))
}

// SetSetpoint sets the control target of the active channel in its current units.
func (c *Controller) SetSetpoint(ctx context.Context, value float64) (pressure.Status, error) {
	if err := checkValue("setpoint", value); err != nil {
		return pressure.StatusUnknown, err
	}
	return c.write(ctx, "Setpt "+formatNumber(value)+terminator)
}

// IsStable reports whether the controlled pressure has settled.
func (c *Controller) IsStable(ctx context.Context) (bool, error) {
	resp, err := c.transport.Query(ctx, "Stable?"+terminator)
	if err != nil {
		return false, err
	}
	return parseYesNo(resp)
}

// ReadPressure returns the reading of the active channel. When the active
// channel is neither A nor B (e.g. differential) the reading is 0.
func (c *Controller) ReadPressure(ctx context.Context) (float64, error) {
	resp, err := c.transport.Query(ctx, "Chan?"+terminator)
	if err != nil {
		return 0, err
	}
	ch := Channel(trimReply(resp))
	switch ch {
	case ChannelA, ChannelB:
	default:
		slog.DebugContext(ctx, "active channel has no direct reading", "channel", string(ch))
		return 0, nil
	}
	resp, err = c.transport.Query(ctx, string(ch)+"?"+terminator)
	if err != nil {
		return 0, err
	}
	return parseReading(resp)
}

// ReadPressureWithUnits returns the reading of the active channel together
// with the unit reported by the instrument.
func (c *Controller) ReadPressureWithUnits(ctx context.Context) (Reading, error) {
	val, err := c.ReadPressure(ctx)
	if err != nil {
		return Reading{}, err
	}
	resp, err := c.transport.Query(ctx, "Units?"+terminator)
	if err != nil {
		return Reading{}, err
	}
	return Reading{Value: val, Unit: trimReply(resp)}, nil
}

func (c *Controller) write(ctx context.Context, cmd string) (pressure.Status, error) {
	err := c.transport.Write(ctx, cmd)
	if err != nil {
		return pressure.StatusUnknown, err
	}
	return c.transport.LastStatus(), nil
}

func checkValue(name string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("%w: %s must be a finite number, got %v", ErrValidation, name, v)
	}
	return nil
}
