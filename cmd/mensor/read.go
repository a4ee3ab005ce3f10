package main

import (
	"context"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/cmd/mensor/command"
	"github.com/mklimuk/pressure/cmd/mensor/console"
)

var readCmd = cli.Command{
	Name:    "read",
	Aliases: []string{"rd"},
	Usage:   "read the pressure of the active channel",
	Flags: []cli.Flag{
		&cli.BoolFlag{Name: "units", Aliases: []string{"u"}, Usage: "also read the unit"},
	},
	Action: func(c *cli.Context) error {
		return withInstrument(c, func(s *command.Session) error {
			ctx := command.Context(c)
			if c.Bool("units") {
				r, err := s.Instrument.ReadPressureWithUnits(ctx)
				if err != nil {
					return console.ExitErr(err, "error reading pressure")
				}
				unit := r.Unit
				if code, ok := r.UnitCode(); ok {
					unit = code.String()
				}
				console.PInfof(console.PictoGauge, "%s", console.Pressure(r.Value, unit))
				return nil
			}
			p, err := s.Instrument.ReadPressure(ctx)
			if err != nil {
				return console.ExitErr(err, "error reading pressure")
			}
			console.PInfof(console.PictoGauge, "%s", console.Pressure(p, ""))
			return nil
		})
	},
}

var stableCmd = cli.Command{
	Name:  "stable",
	Usage: "report whether the controlled pressure is stable",
	Action: func(c *cli.Context) error {
		return withInstrument(c, func(s *command.Session) error {
			stable, err := s.Instrument.IsStable(command.Context(c))
			if err != nil {
				return console.ExitErr(err, "error querying stability")
			}
			console.Print(console.Stability(stable))
			return nil
		})
	},
}

var waitStableCmd = cli.Command{
	Name:  "wait-stable",
	Usage: "poll until the controlled pressure is stable",
	Flags: []cli.Flag{
		&cli.DurationFlag{Name: "timeout", Value: 2 * time.Minute},
		&cli.DurationFlag{Name: "interval", Value: time.Second},
	},
	Action: func(c *cli.Context) error {
		return withInstrument(c, func(s *command.Session) error {
			ctx, cancel := context.WithTimeout(command.Context(c), c.Duration("timeout"))
			defer cancel()
			ticker := time.NewTicker(c.Duration("interval"))
			defer ticker.Stop()
			console.PInfof(console.PictoWait, "waiting for stable pressure")
			for {
				stable, err := s.Instrument.IsStable(ctx)
				if err != nil {
					return console.ExitErr(err, "error querying stability")
				}
				if stable {
					console.PInfof(console.PictoCheck, "%s", console.Stability(true))
					return nil
				}
				select {
				case <-ctx.Done():
					return console.Exit(console.ExitTimeout, "pressure not stable after %s", c.Duration("timeout"))
				case <-ticker.C:
				}
			}
		})
	},
}
