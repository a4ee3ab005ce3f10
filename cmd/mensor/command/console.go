package command

import (
	"errors"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/urfave/cli/v2"

	"github.com/mklimuk/pressure/cmd/mensor/console"
)

var ConsoleCmd = &cli.Command{
	Name:    "console",
	Aliases: []string{"repl"},
	Usage:   "interactive session with the controller",
	Action: func(c *cli.Context) error {
		s, err := Open(c)
		if err != nil {
			return console.ExitErr(err, "connection error")
		}
		defer func() {
			if err := s.Close(); err != nil {
				console.Errorf("error closing transport: %s", console.Red(err))
			}
		}()
		rl, err := readline.NewEx(&readline.Config{
			Prompt:          "mensor> ",
			InterruptPrompt: "^C",
			EOFPrompt:       "exit",
		})
		if err != nil {
			return console.Exit(console.ExitFailure, "could not start console: %s", console.Red(err))
		}
		defer func() { _ = rl.Close() }()
		ctx := Context(c)
		for {
			line, err := rl.Readline()
			if errors.Is(err, readline.ErrInterrupt) {
				continue
			}
			if errors.Is(err, io.EOF) {
				return nil
			}
			if err != nil {
				return console.Exit(console.ExitFailure, "console error: %s", console.Red(err))
			}
			line = strings.TrimSpace(line)
			if line == "exit" || line == "quit" {
				return nil
			}
			console.Debugf("exec %q", line)
			out, err := Exec(ctx, s.Instrument, line)
			if errors.Is(err, ErrUnknownCommand) {
				console.Warnf("%s", err)
				continue
			}
			if err != nil {
				console.Errorf("%s", err)
				continue
			}
			if out != "" {
				console.Print(console.White(out))
			}
		}
	},
}
