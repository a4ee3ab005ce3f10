package serial

import (
	"fmt"
	"strings"

	bugst "go.bug.st/serial"
)

func ParseParity(s string) (bugst.Parity, error) {
	switch strings.ToLower(s) {
	case "", "none", "n":
		return bugst.NoParity, nil
	case "odd", "o":
		return bugst.OddParity, nil
	case "even", "e":
		return bugst.EvenParity, nil
	case "mark", "m":
		return bugst.MarkParity, nil
	case "space", "s":
		return bugst.SpaceParity, nil
	}
	return 0, fmt.Errorf("unknown parity %q", s)
}

func ParseStopBits(s string) (bugst.StopBits, error) {
	switch s {
	case "", "1":
		return bugst.OneStopBit, nil
	case "1.5":
		return bugst.OnePointFiveStopBits, nil
	case "2":
		return bugst.TwoStopBits, nil
	}
	return 0, fmt.Errorf("unknown stop bits %q", s)
}

// NewMode builds a port mode, 0 data bits meaning 8.
func NewMode(baud, dataBits int, parity, stopBits string) (bugst.Mode, error) {
	p, err := ParseParity(parity)
	if err != nil {
		return bugst.Mode{}, err
	}
	sb, err := ParseStopBits(stopBits)
	if err != nil {
		return bugst.Mode{}, err
	}
	if dataBits == 0 {
		dataBits = 8
	}
	if dataBits < 5 || dataBits > 8 {
		return bugst.Mode{}, fmt.Errorf("unsupported data bits %d", dataBits)
	}
	return bugst.Mode{BaudRate: baud, DataBits: dataBits, Parity: p, StopBits: sb}, nil
}
