package mensor

import (
	"context"
	"strconv"

	"github.com/mklimuk/pressure"
)

// Instrument is the set of operations exposed by Controller.
type Instrument interface {
	Ping(ctx context.Context) (bool, error)
	Identify(ctx context.Context) (Identity, error)
	SetActiveChannel(ctx context.Context, channel string) (pressure.Status, error)
	SetActiveChannelDifferential(ctx context.Context) (pressure.Status, error)
	SetUnit(ctx context.Context, code UnitCode) (pressure.Status, error)
	SetMode(ctx context.Context, mode Mode) (pressure.Status, error)
	SetMeasurementType(ctx context.Context, mtype string) (pressure.Status, error)
	SetLimit(ctx context.Context, upper, lower float64) (pressure.Status, error)
	SetSetpoint(ctx context.Context, value float64) (pressure.Status, error)
	IsStable(ctx context.Context) (bool, error)
	ReadPressure(ctx context.Context) (float64, error)
	ReadPressureWithUnits(ctx context.Context) (Reading, error)
}

// ReadingBehaviorFunc produces the reading returned by the mock.
type ReadingBehaviorFunc func(ctx context.Context) (Reading, error)

// StabilityBehaviorFunc produces the stability state returned by the mock.
type StabilityBehaviorFunc func(ctx context.Context) (bool, error)

// MockController is an Instrument that needs no hardware. Readings and
// stability come from behavior functions, setters only record the last value.
// A reading without a unit reports the unit code last set with SetUnit.
//
// Example usage:
//
//	c := NewMockController(
//		func(ctx context.Context) (Reading, error) { return Reading{Value: 14.7, Unit: "1"}, nil },
//		func(ctx context.Context) (bool, error) { return true, nil },
//	)
type MockController struct {
	readingBehavior   ReadingBehaviorFunc
	stabilityBehavior StabilityBehaviorFunc

	Channel     Channel
	Unit        UnitCode
	Mode        Mode
	Type        MeasurementType
	Upper       float64
	Lower       float64
	Setpoint    float64
	Identity    Identity
	Unreachable bool
}

var _ Instrument = &MockController{}

func NewMockController(reading ReadingBehaviorFunc, stability StabilityBehaviorFunc) *MockController {
	return &MockController{
		readingBehavior:   reading,
		stabilityBehavior: stability,
		Channel:           ChannelA,
		Unit:              1,
		Mode:              ModeStandby,
		Type:              Gauge,
		Identity:          Identity{Manufacturer: "MENSOR", Model: "600", Serial: "610189", Firmware: "0.1.5"},
	}
}

func (m *MockController) Ping(ctx context.Context) (bool, error) {
	if m.Unreachable {
		return false, ErrProtocol
	}
	return true, nil
}

func (m *MockController) Identify(ctx context.Context) (Identity, error) {
	return m.Identity, nil
}

func (m *MockController) SetActiveChannel(ctx context.Context, channel string) (pressure.Status, error) {
	ch, err := ParseChannel(channel)
	if err != nil {
		return pressure.StatusUnknown, err
	}
	m.Channel = ch
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetActiveChannelDifferential(ctx context.Context) (pressure.Status, error) {
	m.Channel = ChannelDifferential
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetUnit(ctx context.Context, code UnitCode) (pressure.Status, error) {
	if !code.Valid() {
		return pressure.StatusUnknown, ErrValidation
	}
	m.Unit = code
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetMode(ctx context.Context, mode Mode) (pressure.Status, error) {
	m.Mode = mode
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetMeasurementType(ctx context.Context, mtype string) (pressure.Status, error) {
	t, err := ParseMeasurementType(mtype)
	if err != nil {
		return pressure.StatusUnknown, err
	}
	if t == Differential {
		m.Channel = ChannelDifferential
		return pressure.StatusSuccess, nil
	}
	m.Type = t
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetLimit(ctx context.Context, upper, lower float64) (pressure.Status, error) {
	if err := checkValue("upper limit", upper); err != nil {
		return pressure.StatusUnknown, err
	}
	if err := checkValue("lower limit", lower); err != nil {
		return pressure.StatusUnknown, err
	}
	m.Upper, m.Lower = upper, lower
	return pressure.StatusSuccess, nil
}

func (m *MockController) SetSetpoint(ctx context.Context, value float64) (pressure.Status, error) {
	if err := checkValue("setpoint", value); err != nil {
		return pressure.StatusUnknown, err
	}
	m.Setpoint = value
	return pressure.StatusSuccess, nil
}

func (m *MockController) IsStable(ctx context.Context) (bool, error) {
	return m.stabilityBehavior(ctx)
}

// ReadPressure mirrors Controller: the differential channel reads 0.
func (m *MockController) ReadPressure(ctx context.Context) (float64, error) {
	if m.Channel != ChannelA && m.Channel != ChannelB {
		return 0, nil
	}
	r, err := m.readingBehavior(ctx)
	if err != nil {
		return 0, err
	}
	return r.Value, nil
}

func (m *MockController) ReadPressureWithUnits(ctx context.Context) (Reading, error) {
	r, err := m.readingBehavior(ctx)
	if err != nil {
		return Reading{}, err
	}
	if m.Channel != ChannelA && m.Channel != ChannelB {
		r.Value = 0
	}
	if r.Unit == "" {
		r.Unit = strconv.Itoa(int(m.Unit))
	}
	return r, nil
}
