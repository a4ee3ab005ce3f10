package command

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/mensor"
)

var ErrUnknownCommand = errors.New("unknown command")

const consoleHelp = `commands:
  ping                    check the instrument identification
  idn                     print the identification fields
  channel <A|B|D>         select the active channel
  units <code|symbol>     set the unit of the active channel
  mode <mode>             standby, measure, control or vent
  type <type>             absolute, gauge or differential
  limit <upper> <lower>   set the control limits
  setpoint <value>        set the control target
  stable                  query stability
  read [units]            read the active channel
  help                    print this help
  exit                    leave the console`

// Exec runs one console line against the instrument and returns the text to print.
func Exec(ctx context.Context, inst mensor.Instrument, line string) (string, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return "", nil
	}
	cmd, args := strings.ToLower(fields[0]), fields[1:]
	switch cmd {
	case "help", "?":
		return consoleHelp, nil
	case "ping":
		if _, err := inst.Ping(ctx); err != nil {
			return "", err
		}
		return "ok", nil
	case "idn":
		id, err := inst.Identify(ctx)
		if err != nil {
			return "", err
		}
		return fmt.Sprintf("%s %s (serial %s, firmware %s)", id.Manufacturer, id.Model, id.Serial, id.Firmware), nil
	case "channel", "chan":
		if err := argCount(cmd, args, 1); err != nil {
			return "", err
		}
		return SetChannel(ctx, inst, args[0])
	case "units", "unit":
		if err := argCount(cmd, args, 1); err != nil {
			return "", err
		}
		code, err := mensor.ParseUnitCode(args[0])
		if err != nil {
			return "", err
		}
		return status(inst.SetUnit(ctx, code))
	case "mode":
		if err := argCount(cmd, args, 1); err != nil {
			return "", err
		}
		return status(inst.SetMode(ctx, NormalizeMode(args[0])))
	case "type", "ptype":
		if err := argCount(cmd, args, 1); err != nil {
			return "", err
		}
		return status(inst.SetMeasurementType(ctx, args[0]))
	case "limit", "limits":
		if err := argCount(cmd, args, 2); err != nil {
			return "", err
		}
		upper, err := ParseValue("upper limit", args[0])
		if err != nil {
			return "", err
		}
		lower, err := ParseValue("lower limit", args[1])
		if err != nil {
			return "", err
		}
		return status(inst.SetLimit(ctx, upper, lower))
	case "setpoint", "setpt", "sp":
		if err := argCount(cmd, args, 1); err != nil {
			return "", err
		}
		v, err := ParseValue("setpoint", args[0])
		if err != nil {
			return "", err
		}
		return status(inst.SetSetpoint(ctx, v))
	case "stable":
		stable, err := inst.IsStable(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatBool(stable), nil
	case "read":
		if len(args) > 0 && strings.HasPrefix(strings.ToLower(args[0]), "unit") {
			r, err := inst.ReadPressureWithUnits(ctx)
			if err != nil {
				return "", err
			}
			return r.String(), nil
		}
		v, err := inst.ReadPressure(ctx)
		if err != nil {
			return "", err
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil
	}
	return "", fmt.Errorf("%w: %s (type help)", ErrUnknownCommand, cmd)
}

// SetChannel selects A, B or the differential channel D.
func SetChannel(ctx context.Context, inst mensor.Instrument, channel string) (string, error) {
	if strings.EqualFold(channel, string(mensor.ChannelDifferential)) {
		return status(inst.SetActiveChannelDifferential(ctx))
	}
	return status(inst.SetActiveChannel(ctx, channel))
}

// ParseValue parses a numeric argument. Parse failures are validation errors.
func ParseValue(name, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", mensor.ErrValidation, name, s)
	}
	return v, nil
}

// NormalizeMode maps case-insensitive mode names to the documented spelling.
// Unknown modes are passed through for the instrument to judge.
func NormalizeMode(s string) mensor.Mode {
	for _, m := range []mensor.Mode{mensor.ModeStandby, mensor.ModeMeasure, mensor.ModeControl, mensor.ModeVent} {
		if strings.EqualFold(s, string(m)) {
			return m
		}
	}
	return mensor.Mode(s)
}

func argCount(cmd string, args []string, n int) error {
	if len(args) != n {
		return fmt.Errorf("%w: %s expects %d argument(s), got %d", mensor.ErrValidation, cmd, n, len(args))
	}
	return nil
}

func status(s pressure.Status, err error) (string, error) {
	if err != nil {
		return "", err
	}
	return s.String(), nil
}
