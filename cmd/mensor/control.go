package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/cmd/mensor/command"
	"github.com/mklimuk/pressure/cmd/mensor/console"
	"github.com/mklimuk/pressure/mensor"
)

var channelCmd = cli.Command{
	Name:      "channel",
	Aliases:   []string{"chan"},
	Usage:     "select the active channel",
	ArgsUsage: "<A|B|D>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitValidation, "expected 1 argument, got %d", c.NArg())
		}
		return withInstrument(c, func(s *command.Session) error {
			status, err := command.SetChannel(command.Context(c), s.Instrument, c.Args().First())
			if err != nil {
				return console.ExitErr(err, "could not select channel")
			}
			console.Infof("channel %s selected (%s)", console.White(c.Args().First()), status)
			return nil
		})
	},
}

var unitsCmd = cli.Command{
	Name:      "units",
	Usage:     "set the unit of the active channel",
	ArgsUsage: "<code|symbol>",
	Subcommands: []*cli.Command{
		&unitsLsCmd,
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitValidation, "expected 1 argument, got %d", c.NArg())
		}
		code, err := mensor.ParseUnitCode(c.Args().First())
		if err != nil {
			return console.ExitErr(err, "invalid argument")
		}
		return setter(c, func(s *command.Session) (pressure.Status, error) {
			return s.Instrument.SetUnit(command.Context(c), code)
		}, "unit set to %s", code)
	},
}

var unitsLsCmd = cli.Command{
	Name:  "ls",
	Usage: "list unit codes",
	Action: func(c *cli.Context) error {
		w := tabwriter.NewWriter(os.Stdout, 8, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "CODE\tSYMBOL\tDESCRIPTION\n")
		for _, code := range mensor.Units() {
			_, _ = fmt.Fprintf(w, "%d\t%s\t%s\n", code, code, code.Description())
		}
		return w.Flush()
	},
}

var modeCmd = cli.Command{
	Name:      "mode",
	Usage:     "set the operating mode",
	ArgsUsage: "<standby|measure|control|vent>",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "yes", Aliases: []string{"y"}, Usage: "do not ask before venting"},
	},
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitValidation, "expected 1 argument, got %d", c.NArg())
		}
		mode := command.NormalizeMode(c.Args().First())
		if mode == mensor.ModeVent && !c.Bool("yes") {
			ok, err := console.Confirm(fmt.Sprintf("%s vent the controller to atmosphere?", console.PictoWind))
			if err != nil {
				return console.Exit(console.ExitFailure, "prompt error: %s", console.Red(err))
			}
			if !ok {
				console.PInfof(console.PictoStop, "aborted")
				return nil
			}
		}
		return setter(c, func(s *command.Session) (pressure.Status, error) {
			return s.Instrument.SetMode(command.Context(c), mode)
		}, "mode set to %s", mode)
	},
}

var typeCmd = cli.Command{
	Name:      "type",
	Usage:     "set the measurement type",
	ArgsUsage: "<absolute|gauge|differential>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitValidation, "expected 1 argument, got %d", c.NArg())
		}
		t, err := mensor.ParseMeasurementType(c.Args().First())
		if err != nil {
			return console.ExitErr(err, "invalid argument")
		}
		return setter(c, func(s *command.Session) (pressure.Status, error) {
			return s.Instrument.SetMeasurementType(command.Context(c), c.Args().First())
		}, "measurement type set to %s", t)
	},
}

var limitCmd = cli.Command{
	Name:      "limit",
	Usage:     "set the upper and lower control limits of the active channel",
	ArgsUsage: "<upper> <lower>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 2 {
			return console.Exit(console.ExitValidation, "expected 2 arguments, got %d", c.NArg())
		}
		upper, err := command.ParseValue("upper limit", c.Args().Get(0))
		if err != nil {
			return console.ExitErr(err, "invalid argument")
		}
		lower, err := command.ParseValue("lower limit", c.Args().Get(1))
		if err != nil {
			return console.ExitErr(err, "invalid argument")
		}
		return setter(c, func(s *command.Session) (pressure.Status, error) {
			return s.Instrument.SetLimit(command.Context(c), upper, lower)
		}, "limits set to %v/%v", upper, lower)
	},
}

var setpointCmd = cli.Command{
	Name:      "setpoint",
	Aliases:   []string{"sp"},
	Usage:     "set the control target of the active channel",
	ArgsUsage: "<value>",
	Action: func(c *cli.Context) error {
		if c.NArg() != 1 {
			return console.Exit(console.ExitValidation, "expected 1 argument, got %d", c.NArg())
		}
		v, err := command.ParseValue("setpoint", c.Args().First())
		if err != nil {
			return console.ExitErr(err, "invalid argument")
		}
		return setter(c, func(s *command.Session) (pressure.Status, error) {
			return s.Instrument.SetSetpoint(command.Context(c), v)
		}, "setpoint set to %v", v)
	},
}

func setter(c *cli.Context, fn func(s *command.Session) (pressure.Status, error), msg string, args ...interface{}) error {
	return withInstrument(c, func(s *command.Session) error {
		status, err := fn(s)
		if err != nil {
			return console.ExitErr(err, "command failed")
		}
		console.Infof("%s (%s)", fmt.Sprintf(msg, args...), status)
		return nil
	})
}
