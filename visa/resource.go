// Package visa opens instrument transports from VISA style resource strings
// such as "ASRL/dev/ttyUSB0::INSTR", "GPIB0::1::INSTR" or
// "TCPIP0::10.0.0.5::50000::SOCKET".
package visa

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mklimuk/pressure/gpib"
)

var ErrUnsupportedResource = errors.New("unsupported resource")

type Kind int

const (
	KindSerial Kind = iota + 1
	KindGPIB
	KindSocket
)

func (k Kind) String() string {
	switch k {
	case KindSerial:
		return "ASRL"
	case KindGPIB:
		return "GPIB"
	case KindSocket:
		return "TCPIP"
	default:
		return "UNKNOWN"
	}
}

// Resource is a parsed resource string.
type Resource struct {
	Kind  Kind
	Board int
	// serial device path or name
	Device string
	GPIB   gpib.Address
	Host   string
	Port   int
}

func (r Resource) String() string {
	switch r.Kind {
	case KindSerial:
		return fmt.Sprintf("ASRL%s::INSTR", r.Device)
	case KindGPIB:
		return fmt.Sprintf("GPIB%d::%s::INSTR", r.Board, r.GPIB)
	case KindSocket:
		return fmt.Sprintf("TCPIP%d::%s::%d::SOCKET", r.Board, r.Host, r.Port)
	default:
		return ""
	}
}

// Parse reads a resource string. Interface type and resource class are
// case-insensitive, the serial device path is kept as given.
func Parse(address string) (Resource, error) {
	parts := strings.Split(strings.TrimSpace(address), "::")
	if len(parts) < 2 {
		return Resource{}, fmt.Errorf("%w: %q", ErrUnsupportedResource, address)
	}
	head := parts[0]
	class := strings.ToUpper(parts[len(parts)-1])
	upper := strings.ToUpper(head)
	switch {
	case strings.HasPrefix(upper, "ASRL"):
		return parseSerial(address, head[len("ASRL"):], parts[1:len(parts)-1], class)
	case strings.HasPrefix(upper, "GPIB"):
		return parseGPIB(address, head[len("GPIB"):], parts[1:len(parts)-1], class)
	case strings.HasPrefix(upper, "TCPIP"):
		return parseSocket(address, head[len("TCPIP"):], parts[1:len(parts)-1], class)
	}
	return Resource{}, fmt.Errorf("%w: unknown interface type in %q", ErrUnsupportedResource, address)
}

func parseSerial(address, suffix string, middle []string, class string) (Resource, error) {
	if class != "INSTR" {
		return Resource{}, fmt.Errorf("%w: serial resources must be INSTR: %q", ErrUnsupportedResource, address)
	}
	device := suffix
	switch {
	case device == "" && len(middle) == 1:
		device = middle[0]
	case device != "" && len(middle) == 0:
	default:
		return Resource{}, fmt.Errorf("%w: malformed serial resource %q", ErrUnsupportedResource, address)
	}
	if device == "" {
		return Resource{}, fmt.Errorf("%w: missing serial device in %q", ErrUnsupportedResource, address)
	}
	res := Resource{Kind: KindSerial, Device: device}
	// ASRL<n> is the numbered COM port
	if n, err := strconv.Atoi(device); err == nil {
		res.Board = n
		res.Device = "COM" + device
	}
	return res, nil
}

func parseGPIB(address, board string, middle []string, class string) (Resource, error) {
	if class != "INSTR" || len(middle) < 1 || len(middle) > 2 {
		return Resource{}, fmt.Errorf("%w: malformed GPIB resource %q", ErrUnsupportedResource, address)
	}
	res := Resource{Kind: KindGPIB}
	var err error
	if res.Board, err = parseBoard(board); err != nil {
		return Resource{}, fmt.Errorf("%w: invalid board in %q", ErrUnsupportedResource, address)
	}
	if res.GPIB.Primary, err = strconv.Atoi(middle[0]); err != nil {
		return Resource{}, fmt.Errorf("%w: invalid primary address in %q", ErrUnsupportedResource, address)
	}
	if len(middle) == 2 {
		if res.GPIB.Secondary, err = strconv.Atoi(middle[1]); err != nil {
			return Resource{}, fmt.Errorf("%w: invalid secondary address in %q", ErrUnsupportedResource, address)
		}
	}
	if err := res.GPIB.Validate(); err != nil {
		return Resource{}, err
	}
	return res, nil
}

func parseSocket(address, board string, middle []string, class string) (Resource, error) {
	if class != "SOCKET" || len(middle) != 2 {
		return Resource{}, fmt.Errorf("%w: only raw TCPIP SOCKET resources are supported: %q", ErrUnsupportedResource, address)
	}
	res := Resource{Kind: KindSocket, Host: middle[0]}
	var err error
	if res.Board, err = parseBoard(board); err != nil {
		return Resource{}, fmt.Errorf("%w: invalid board in %q", ErrUnsupportedResource, address)
	}
	if res.Port, err = strconv.Atoi(middle[1]); err != nil || res.Port <= 0 || res.Port > 65535 {
		return Resource{}, fmt.Errorf("%w: invalid port in %q", ErrUnsupportedResource, address)
	}
	if res.Host == "" {
		return Resource{}, fmt.Errorf("%w: missing host in %q", ErrUnsupportedResource, address)
	}
	return res, nil
}

func parseBoard(s string) (int, error) {
	if s == "" {
		return 0, nil
	}
	return strconv.Atoi(s)
}
