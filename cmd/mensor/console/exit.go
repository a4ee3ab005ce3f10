package console

import (
	"errors"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/mensor"
)

// Exit codes by failure class.
const (
	ExitFailure    = 1
	ExitValidation = 2
	ExitTransport  = 3
	ExitProtocol   = 4
	ExitTimeout    = 5
)

func Exit(code int, msg string, args ...interface{}) cli.ExitCoder {
	return cli.Exit(fmt.Sprintf(msg, args...), code)
}

// ExitErr reports err with an exit code derived from its class so scripts
// can tell a bad argument from an unreachable instrument.
func ExitErr(err error, msg string, args ...interface{}) cli.ExitCoder {
	return Exit(ExitCode(err), "%s: %s", fmt.Sprintf(msg, args...), Red(err))
}

func ExitCode(err error) int {
	switch {
	case errors.Is(err, mensor.ErrValidation):
		return ExitValidation
	case errors.Is(err, pressure.ErrTransport):
		return ExitTransport
	case errors.Is(err, mensor.ErrProtocol):
		return ExitProtocol
	default:
		return ExitFailure
	}
}
