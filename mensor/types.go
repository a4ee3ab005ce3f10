package mensor

import (
	"fmt"
	"strconv"
	"strings"
)

type Channel string

const (
	ChannelA            Channel = "A"
	ChannelB            Channel = "B"
	ChannelDifferential Channel = "D"
)

// ParseChannel accepts the selectable channels A and B in any case.
func ParseChannel(s string) (Channel, error) {
	ch := Channel(strings.ToUpper(s))
	if ch != ChannelA && ch != ChannelB {
		return "", fmt.Errorf("%w: channel must be 'A' or 'B', got %q", ErrValidation, s)
	}
	return ch, nil
}

// Mode is the instrument operating mode. Values are passed to the instrument
// as they are; the constants list the modes documented for the 600 series.
type Mode string

const (
	ModeStandby Mode = "Standby"
	ModeMeasure Mode = "Measure"
	ModeControl Mode = "Control"
	ModeVent    Mode = "Vent"
)

type MeasurementType int

const (
	Absolute MeasurementType = iota + 1
	Gauge
	Differential
)

func (t MeasurementType) String() string {
	switch t {
	case Absolute:
		return "Absolute"
	case Gauge:
		return "Gauge"
	case Differential:
		return "Differential"
	default:
		return fmt.Sprintf("MeasurementType(%d)", int(t))
	}
}

// ParseMeasurementType accepts the full names and their single letter
// abbreviations in any case.
func ParseMeasurementType(s string) (MeasurementType, error) {
	switch strings.ToUpper(s) {
	case "ABSOLUTE", "A":
		return Absolute, nil
	case "GAUGE", "G":
		return Gauge, nil
	case "DIFFERENTIAL", "D":
		return Differential, nil
	}
	return 0, fmt.Errorf("%w: measurement type must be Absolute, Gauge or Differential, got %q", ErrValidation, s)
}

// Reading is a pressure value together with the unit reported by the instrument.
type Reading struct {
	Value float64 `json:"value" yaml:"value"`
	// Unit is the raw Units? reply, not translated.
	Unit string `json:"unit" yaml:"unit"`
}

func (r Reading) String() string {
	return formatNumber(r.Value) + "," + r.Unit
}

// UnitCode maps the reported unit to the unit table. The instrument may answer
// with either the numeric code or the unit symbol.
func (r Reading) UnitCode() (UnitCode, bool) {
	code, err := ParseUnitCode(r.Unit)
	if err != nil {
		return 0, false
	}
	return code, true
}

// Identity is the parsed *IDN? reply.
type Identity struct {
	Manufacturer string `yaml:"manufacturer"`
	Model        string `yaml:"model"`
	Serial       string `yaml:"serial"`
	Firmware     string `yaml:"firmware"`
}

func parseIdentity(reply string) (Identity, error) {
	fields := strings.Split(trimReply(reply), ",")
	if len(fields) < 4 {
		return Identity{}, fmt.Errorf("%w: malformed identification %q", ErrProtocol, reply)
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	return Identity{
		Manufacturer: fields[0],
		Model:        fields[1],
		Serial:       fields[2],
		Firmware:     strings.Join(fields[3:], ","),
	}, nil
}

func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
