package mensor

import (
	"fmt"
	"strconv"
	"strings"
)

// UnitCode selects the engineering unit of the active channel. The instrument
// maps the code to a physical unit; the table below only documents it.
type UnitCode int

const (
	MinUnitCode UnitCode = 1
	MaxUnitCode UnitCode = 34
)

type unitInfo struct {
	symbol      string
	description string
}

var units = [...]unitInfo{
	1:  {"psi", "pounds per square inch"},
	2:  {"inHg@0C", "inches of mercury @0C"},
	3:  {"inHg@60F", "inches of mercury @60F"},
	4:  {"inH2O@4C", "inches of water @4C"},
	5:  {"inH2O@20C", "inches of water @20C"},
	6:  {"inH2O@60F", "inches of water @60F"},
	7:  {"ftH2O@4C", "feet of water @4C"},
	8:  {"ftH2O@20C", "feet of water @20C"},
	9:  {"ftH2O@60F", "feet of water @60F"},
	10: {"mTorr", "millitorr"},
	11: {"inSW@0C", "inches of seawater @0C 3.5% salinity"},
	12: {"ftSW@0C", "feet of seawater @0C 3.5% salinity"},
	13: {"atm", "atmospheres"},
	14: {"bar", "bars"},
	15: {"mbar", "millibars"},
	16: {"mmH2O@4C", "millimeters of water @4C"},
	17: {"cmH2O@4C", "centimeters of water @4C"},
	18: {"mH2O@4C", "meters of water @4C"},
	19: {"mmHg@0C", "millimeters of mercury @0C"},
	20: {"cmHg@0C", "centimeters of mercury @0C"},
	21: {"Torr", "torr"},
	22: {"kPa", "kilopascals"},
	23: {"Pa", "pascals"},
	24: {"dyn/sq cm", "dyne per square centimeter"},
	25: {"g/sq cm", "grams per square centimeter"},
	26: {"kg/sq cm", "kilograms per square centimeter"},
	27: {"mSW@0C", "meters of seawater @0C 3.5% salinity"},
	28: {"oz/si", "ounce per square inch"},
	29: {"psf", "pounds per square foot"},
	30: {"tons/sq ft", "tons per square foot"},
	31: {"%FS", "percent of full scale"},
	32: {"micronHg@0C", "micron Hg @0C"},
	33: {"tons/sq in", "ton per square inch"},
	34: {"n/a", "n/a"},
}

func (c UnitCode) Valid() bool {
	return c >= MinUnitCode && c <= MaxUnitCode
}

// String returns the unit symbol as printed by the instrument front panel.
func (c UnitCode) String() string {
	if !c.Valid() {
		return fmt.Sprintf("UnitCode(%d)", int(c))
	}
	return units[c].symbol
}

func (c UnitCode) Description() string {
	if !c.Valid() {
		return ""
	}
	return units[c].description
}

// Units returns all known unit codes in ascending order.
func Units() []UnitCode {
	codes := make([]UnitCode, 0, MaxUnitCode)
	for c := MinUnitCode; c <= MaxUnitCode; c++ {
		codes = append(codes, c)
	}
	return codes
}

// ParseUnitCode accepts either a numeric code or a unit symbol (case-insensitive).
func ParseUnitCode(s string) (UnitCode, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		code := UnitCode(n)
		if !code.Valid() {
			return 0, fmt.Errorf("%w: unit code %d out of range [%d,%d]", ErrValidation, n, MinUnitCode, MaxUnitCode)
		}
		return code, nil
	}
	for _, code := range Units() {
		if strings.EqualFold(units[code].symbol, s) {
			return code, nil
		}
	}
	return 0, fmt.Errorf("%w: unknown unit %q", ErrValidation, s)
}
