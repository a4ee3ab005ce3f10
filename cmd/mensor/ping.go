package main

import (
	"os"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/mklimuk/pressure/cmd/mensor/command"
	"github.com/mklimuk/pressure/cmd/mensor/console"
)

var pingCmd = cli.Command{
	Name:  "ping",
	Usage: "check that a Mensor controller responds",
	Action: func(c *cli.Context) error {
		return withInstrument(c, func(s *command.Session) error {
			if _, err := s.Instrument.Ping(command.Context(c)); err != nil {
				return console.ExitErr(err, "ping failed")
			}
			console.PInfof(console.PictoCheck, "%s", console.Green("controller responded"))
			return nil
		})
	},
}

var idnCmd = cli.Command{
	Name:  "idn",
	Usage: "print the identification of the controller",
	Action: func(c *cli.Context) error {
		return withInstrument(c, func(s *command.Session) error {
			id, err := s.Instrument.Identify(command.Context(c))
			if err != nil {
				return console.ExitErr(err, "identification failed")
			}
			enc := yaml.NewEncoder(os.Stdout)
			if err := enc.Encode(id); err != nil {
				return console.Exit(console.ExitFailure, "encoding error: %s", console.Red(err))
			}
			return enc.Close()
		})
	},
}

// withInstrument opens the configured instrument and closes it after fn returns.
func withInstrument(c *cli.Context, fn func(s *command.Session) error) error {
	s, err := command.Open(c)
	if err != nil {
		return console.ExitErr(err, "connection error")
	}
	defer func() {
		if err := s.Close(); err != nil {
			console.Errorf("error closing transport: %s", console.Red(err))
		}
	}()
	return fn(s)
}
