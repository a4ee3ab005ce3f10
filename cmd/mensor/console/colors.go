package console

import (
	"strconv"

	"github.com/fatih/color"
)

var (
	Yellow = color.New(color.FgYellow).SprintFunc()
	Red    = color.New(color.FgRed).SprintFunc()
	Green  = color.New(color.FgGreen).SprintFunc()
	White  = color.New(color.FgHiWhite).SprintFunc()
	Cyan   = color.New(color.FgCyan).SprintFunc()
	Bold   = color.New(color.Bold).SprintFunc()
)

// Pressure renders a reading with its unit symbol.
func Pressure(value float64, unit string) string {
	v := Bold(White(strconv.FormatFloat(value, 'f', -1, 64)))
	if unit == "" {
		return v
	}
	return v + " " + Cyan(unit)
}

// Stability renders the stable flag.
func Stability(stable bool) string {
	if stable {
		return Green("stable")
	}
	return Yellow("not stable")
}
