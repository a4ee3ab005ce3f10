package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/cmd/mensor/console"
	"github.com/mklimuk/pressure/serial"
)

var portsCmd = cli.Command{
	Name:  "ports",
	Usage: "list serial ports of this host",
	Action: func(c *cli.Context) error {
		ports, err := serial.Ports()
		if err != nil {
			return console.Exit(console.ExitFailure, "could not list serial ports: %s", console.Red(err))
		}
		w := tabwriter.NewWriter(os.Stdout, 24, 0, 1, ' ', 0)
		_, _ = fmt.Fprintf(w, "PORT\tRESOURCE\n")
		for _, p := range ports {
			_, _ = fmt.Fprintf(w, "%s\tASRL%s::INSTR\n", p, p)
		}
		_ = w.Flush()
		return nil
	},
}
