package main

import (
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"time"

	chlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/cmd/mensor/command"
	"github.com/mklimuk/pressure/cmd/mensor/console"
	"github.com/mklimuk/pressure/pkg/config"
)

var commit string
var date string

func main() {
	os.Exit(run())
}

func run() int {
	app := cli.NewApp()
	app.Name = "mensor"
	app.EnableBashCompletion = true
	app.Version = fmt.Sprintf("%s-%s-%s", config.Version, date, commit)
	app.Usage = "Mensor pressure controller cli"
	app.Flags = []cli.Flag{
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "enable verbose logging and trace instrument traffic",
		},
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "configuration file",
			Value:   config.DefaultPath,
			EnvVars: []string{"MENSOR_CONFIG"},
		},
		&cli.StringFlag{
			Name:    "address",
			Aliases: []string{"a"},
			Usage:   "instrument resource, e.g. ASRL/dev/ttyUSB0::INSTR, GPIB0::1::INSTR or TCPIP0::10.0.0.5::50000::SOCKET",
			EnvVars: []string{"MENSOR_ADDRESS"},
		},
		&cli.BoolFlag{
			Name:  "simulate",
			Usage: "use a simulated controller instead of hardware",
		},
	}
	app.Before = func(ctx *cli.Context) error {
		charm := chlog.NewWithOptions(os.Stdout, chlog.Options{
			ReportCaller:    true,
			ReportTimestamp: true,
			TimeFormat:      time.DateTime,
		})
		charm.SetColorProfile(termenv.TrueColor)
		charm.SetLevel(chlog.InfoLevel)
		if ctx.Bool("verbose") {
			charm.SetLevel(chlog.DebugLevel)
			console.Trace = true
		}
		slog.SetDefault(slog.New(charm))

		cfg, err := config.Load(ctx.String("config"))
		if err != nil {
			return console.Exit(console.ExitFailure, "configuration error: %s", console.Red(err))
		}
		if ctx.IsSet("address") {
			cfg.Address = ctx.String("address")
		}
		command.SetConfig(ctx.App, cfg)
		return nil
	}
	app.Commands = cli.Commands{
		&pingCmd,
		&idnCmd,
		&channelCmd,
		&unitsCmd,
		&modeCmd,
		&typeCmd,
		&limitCmd,
		&setpointCmd,
		&stableCmd,
		&waitStableCmd,
		&readCmd,
		&monitorCmd,
		&portsCmd,
		command.ConsoleCmd,
	}
	err := app.Run(os.Args)
	if err != nil {
		var exerr cli.ExitCoder
		if errors.As(err, &exerr) {
			log.Printf("unexpected error: %v", err)
			return exerr.ExitCode()
		}
		return 1
	}
	return 0
}
