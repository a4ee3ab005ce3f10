package mensor

import (
	"context"
	"errors"
	"fmt"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mklimuk/pressure"
)

// MockTransport is a mock implementation of pressure.Transport using testify/mock
type MockTransport struct {
	mock.Mock
}

func (m *MockTransport) Write(ctx context.Context, command string) error {
	args := m.Called(ctx, command)
	return args.Error(0)
}

func (m *MockTransport) Query(ctx context.Context, command string) (string, error) {
	args := m.Called(ctx, command)
	return args.String(0), args.Error(1)
}

func (m *MockTransport) LastStatus() pressure.Status {
	args := m.Called()
	return args.Get(0).(pressure.Status)
}

// writes returns the commands passed to Write in call order
func (m *MockTransport) writes() []string {
	var cmds []string
	for _, call := range m.Calls {
		if call.Method == "Write" {
			cmds = append(cmds, call.Arguments.String(1))
		}
	}
	return cmds
}

func newWritingTransport() *MockTransport {
	bus := new(MockTransport)
	bus.On("Write", mock.Anything, mock.Anything).Return(nil)
	bus.On("LastStatus").Return(pressure.StatusSuccess)
	return bus
}

func TestController_Ping(t *testing.T) {
	tests := []struct {
		name    string
		reply   string
		wantErr error
	}{
		{"exact identification", "MENSOR, 600,610189,0.1.5\r\n", nil},
		{"identification with padding", "E MENSOR, 600,610189,0.1.5, extra\r\n", nil},
		{"other instrument", "KEYSIGHT,33220A,MY123,2.0\r\n", ErrProtocol},
		{"empty reply", "", ErrProtocol},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockTransport)
			bus.On("Query", mock.Anything, "*IDN?\r").Return(tt.reply, nil).Once()
			ok, err := New(bus).Ping(context.Background())
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.False(t, ok)
			} else {
				assert.NoError(t, err)
				assert.True(t, ok)
			}
			bus.AssertExpectations(t)
			assert.Empty(t, bus.writes())
		})
	}
}

func TestController_PingCustomIdentity(t *testing.T) {
	bus := new(MockTransport)
	bus.On("Query", mock.Anything, "*IDN?\r").Return("MENSOR, 600,700001,1.2.0\r\n", nil)
	ok, err := New(bus, WithIdentity("MENSOR, 600")).Ping(context.Background())
	assert.NoError(t, err)
	assert.True(t, ok)
}

func TestController_Identify(t *testing.T) {
	bus := new(MockTransport)
	bus.On("Query", mock.Anything, "*IDN?\r").Return("MENSOR, 600,610189,0.1.5\r\n", nil)
	id, err := New(bus).Identify(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Identity{Manufacturer: "MENSOR", Model: "600", Serial: "610189", Firmware: "0.1.5"}, id)
}

func TestController_SetActiveChannel(t *testing.T) {
	valid := map[string]string{
		"A": "Chan A\r",
		"a": "Chan A\r",
		"B": "Chan B\r",
		"b": "Chan B\r",
	}
	for in, expected := range valid {
		t.Run(in, func(t *testing.T) {
			bus := newWritingTransport()
			status, err := New(bus).SetActiveChannel(context.Background(), in)
			assert.NoError(t, err)
			assert.Equal(t, pressure.StatusSuccess, status)
			assert.Equal(t, []string{expected}, bus.writes())
		})
	}
	for _, in := range []string{"", "C", "D", "AB", " A", "channel A", "1"} {
		t.Run(fmt.Sprintf("invalid %q", in), func(t *testing.T) {
			bus := new(MockTransport)
			_, err := New(bus).SetActiveChannel(context.Background(), in)
			assert.ErrorIs(t, err, ErrValidation)
			bus.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
		})
	}
}

func TestController_SetActiveChannelDifferential(t *testing.T) {
	bus := newWritingTransport()
	_, err := New(bus).SetActiveChannelDifferential(context.Background())
	assert.NoError(t, err)
	assert.Equal(t, []string{"Chan D\r"}, bus.writes())
}

func TestController_SetUnit(t *testing.T) {
	for code := UnitCode(1); code <= 34; code++ {
		bus := newWritingTransport()
		_, err := New(bus).SetUnit(context.Background(), code)
		assert.NoError(t, err)
		assert.Equal(t, []string{fmt.Sprintf("Units %d\r", code)}, bus.writes())
	}
	for _, code := range []UnitCode{-1, 0, 35, 100} {
		bus := new(MockTransport)
		_, err := New(bus).SetUnit(context.Background(), code)
		assert.ErrorIs(t, err, ErrValidation, "code %d", code)
		bus.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	}
}

func TestController_SetMode(t *testing.T) {
	bus := newWritingTransport()
	c := New(bus)
	for _, mode := range []Mode{ModeStandby, ModeMeasure, ModeControl, ModeVent, "bogus"} {
		_, err := c.SetMode(context.Background(), mode)
		assert.NoError(t, err)
	}
	assert.Equal(t, []string{"Mode Standby\r", "Mode Measure\r", "Mode Control\r", "Mode Vent\r", "Mode bogus\r"}, bus.writes())
}

func TestController_SetMeasurementType(t *testing.T) {
	tests := []struct {
		given    string
		expected string
	}{
		{"Absolute", "Ptype A\r"},
		{"absolute", "Ptype A\r"},
		{"A", "Ptype A\r"},
		{"a", "Ptype A\r"},
		{"Gauge", "Ptype G\r"},
		{"G", "Ptype G\r"},
		{"g", "Ptype G\r"},
		{"Differential", "Chan D\r"},
		{"differential", "Chan D\r"},
		{"D", "Chan D\r"},
	}
	for _, tt := range tests {
		t.Run(tt.given, func(t *testing.T) {
			bus := newWritingTransport()
			_, err := New(bus).SetMeasurementType(context.Background(), tt.given)
			assert.NoError(t, err)
			assert.Equal(t, []string{tt.expected}, bus.writes())
		})
	}
	for _, in := range []string{"", "X", "abs", "gauge ", "sealed"} {
		bus := new(MockTransport)
		_, err := New(bus).SetMeasurementType(context.Background(), in)
		assert.ErrorIs(t, err, ErrValidation, "input %q", in)
		bus.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	}
}

func TestController_SetLimit(t *testing.T) {
	bus := newWritingTransport()
	status, err := New(bus).SetLimit(context.Background(), 10.5, 2.0)
	assert.NoError(t, err)
	assert.Equal(t, pressure.StatusSuccess, status)
	assert.Equal(t, []string{"UpperLimit10.5", "LowerLimit2"}, bus.writes())
}

func TestController_SetLimitInvalid(t *testing.T) {
	for _, pair := range [][2]float64{
		{10.5, math.NaN()},
		{math.NaN(), 2},
		{math.Inf(1), 2},
		{10.5, math.Inf(-1)},
	} {
		bus := new(MockTransport)
		_, err := New(bus).SetLimit(context.Background(), pair[0], pair[1])
		assert.ErrorIs(t, err, ErrValidation)
		bus.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
	}
}

func TestController_SetLimitUpperFails(t *testing.T) {
	bus := new(MockTransport)
	failure := errors.New("link down")
	bus.On("Write", mock.Anything, "UpperLimit10").Return(failure).Once()
	_, err := New(bus).SetLimit(context.Background(), 10, 0)
	assert.ErrorIs(t, err, failure)
	assert.Equal(t, []string{"UpperLimit10"}, bus.writes())
}

func TestController_SetSetpoint(t *testing.T) {
	tests := []struct {
		given    float64
		expected string
	}{
		{14.7, "Setpt 14.7\r"},
		{0, "Setpt 0\r"},
		{-3.25, "Setpt -3.25\r"},
		{1000000, "Setpt 1000000\r"},
	}
	for _, tt := range tests {
		bus := newWritingTransport()
		_, err := New(bus).SetSetpoint(context.Background(), tt.given)
		assert.NoError(t, err)
		assert.Equal(t, []string{tt.expected}, bus.writes())
	}

	bus := new(MockTransport)
	_, err := New(bus).SetSetpoint(context.Background(), math.NaN())
	assert.ErrorIs(t, err, ErrValidation)
	bus.AssertNotCalled(t, "Write", mock.Anything, mock.Anything)
}

func TestController_IsStable(t *testing.T) {
	tests := []struct {
		reply    string
		expected bool
		wantErr  bool
	}{
		{"YES\r\n", true, false},
		{"EYES\r\n", true, false},
		{"E  YES\r\n", true, false},
		{"NO\r\n", false, false},
		{"E NO\r\n", false, false},
		{"MAYBE\r\n", false, true},
		{"yes\r\n", false, true},
		{"", false, true},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%q", tt.reply), func(t *testing.T) {
			bus := new(MockTransport)
			bus.On("Query", mock.Anything, "Stable?\r").Return(tt.reply, nil).Once()
			stable, err := New(bus).IsStable(context.Background())
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrProtocol)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, stable)
		})
	}
}

func TestController_ReadPressure(t *testing.T) {
	tests := []struct {
		name     string
		channel  string
		query    string
		reply    string
		expected float64
	}{
		{"channel A", "A\r\n", "A?\r", "E+1.234500\r\n", 1.2345},
		{"channel B", "EB\r\n", "B?\r", " -0.000120\r\n", -0.00012},
		{"channel A padded", "E A\r\n", "A?\r", "E 14.696\r\n", 14.696},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			bus := new(MockTransport)
			bus.On("Query", mock.Anything, "Chan?\r").Return(tt.channel, nil).Once()
			bus.On("Query", mock.Anything, tt.query).Return(tt.reply, nil).Once()
			p, err := New(bus).ReadPressure(context.Background())
			assert.NoError(t, err)
			assert.InDelta(t, tt.expected, p, 1e-12)
			bus.AssertExpectations(t)
		})
	}
}

func TestController_ReadPressureUnknownChannel(t *testing.T) {
	for _, ch := range []string{"X\r\n", "D\r\n", "\r\n", "a\r\n"} {
		bus := new(MockTransport)
		bus.On("Query", mock.Anything, "Chan?\r").Return(ch, nil).Once()
		p, err := New(bus).ReadPressure(context.Background())
		assert.NoError(t, err)
		assert.Equal(t, 0.0, p)
		bus.AssertNumberOfCalls(t, "Query", 1)
	}
}

func TestController_ReadPressureInvalidNumber(t *testing.T) {
	bus := new(MockTransport)
	bus.On("Query", mock.Anything, "Chan?\r").Return("A\r\n", nil)
	bus.On("Query", mock.Anything, "A?\r").Return("OVERRANGE\r\n", nil)
	_, err := New(bus).ReadPressure(context.Background())
	assert.ErrorIs(t, err, ErrProtocol)
}

func TestController_ReadPressureWithUnits(t *testing.T) {
	bus := new(MockTransport)
	bus.On("Query", mock.Anything, "Chan?\r").Return("A\r\n", nil).Once()
	bus.On("Query", mock.Anything, "A?\r").Return("E+1.234500\r\n", nil).Once()
	bus.On("Query", mock.Anything, "Units?\r").Return("14\r\n", nil).Once()
	r, err := New(bus).ReadPressureWithUnits(context.Background())
	require.NoError(t, err)
	assert.InDelta(t, 1.2345, r.Value, 1e-12)
	assert.Equal(t, "14", r.Unit)
	assert.Equal(t, "1.2345,14", r.String())
	code, ok := r.UnitCode()
	assert.True(t, ok)
	assert.Equal(t, UnitCode(14), code)
	bus.AssertExpectations(t)
}

func TestController_ReadPressureWithUnitsUnknownChannel(t *testing.T) {
	bus := new(MockTransport)
	bus.On("Query", mock.Anything, "Chan?\r").Return("D\r\n", nil).Once()
	bus.On("Query", mock.Anything, "Units?\r").Return("14\r\n", nil).Once()
	r, err := New(bus).ReadPressureWithUnits(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Reading{Value: 0, Unit: "14"}, r)
	bus.AssertExpectations(t)
	bus.AssertNumberOfCalls(t, "Query", 2)
}

func TestController_TransportErrorsPropagate(t *testing.T) {
	failure := fmt.Errorf("%w: read timeout", pressure.ErrTransport)
	ctx := context.Background()

	bus := new(MockTransport)
	bus.On("Query", mock.Anything, mock.Anything).Return("", failure)
	bus.On("Write", mock.Anything, mock.Anything).Return(failure)
	c := New(bus)

	_, err := c.Ping(ctx)
	assert.Same(t, failure, err)
	_, err = c.IsStable(ctx)
	assert.Same(t, failure, err)
	_, err = c.ReadPressure(ctx)
	assert.Same(t, failure, err)
	_, err = c.ReadPressureWithUnits(ctx)
	assert.Same(t, failure, err)
	_, err = c.SetMode(ctx, ModeVent)
	assert.Same(t, failure, err)
	_, err = c.SetSetpoint(ctx, 1)
	assert.ErrorIs(t, err, pressure.ErrTransport)
}
