package main

import (
	"context"
	"errors"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/cmd/mensor/command"
	"github.com/mklimuk/pressure/cmd/mensor/console"
	"github.com/mklimuk/pressure/monitor"
)

var monitorCmd = cli.Command{
	Name:  "monitor",
	Usage: "poll the controller and stream samples over websocket",
	Flags: []cli.Flag{
		&cli.StringFlag{Name: "listen", Usage: "http listen address (overrides config)"},
		&cli.DurationFlag{Name: "interval", Usage: "poll interval (overrides config)"},
	},
	Action: func(c *cli.Context) error {
		cfg := command.Config(c)
		if c.IsSet("listen") {
			cfg.Monitor.Listen = c.String("listen")
		}
		if c.IsSet("interval") {
			cfg.Monitor.Interval = c.Duration("interval")
		}
		return withInstrument(c, func(s *command.Session) error {
			ctx, stop := signal.NotifyContext(command.Context(c), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			srv := monitor.New(s.Instrument, cfg.Monitor.Interval)
			console.PInfof(console.PictoPlug, "serving samples on %s (ws: /ws, json: /sample)", console.White(cfg.Monitor.Listen))
			err := srv.ListenAndServe(ctx, cfg.Monitor.Listen)
			if err != nil && !errors.Is(err, context.Canceled) {
				return console.ExitErr(err, "monitor error")
			}
			return nil
		})
	},
}
