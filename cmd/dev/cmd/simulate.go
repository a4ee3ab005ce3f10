package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"os/exec"

	"github.com/spf13/cobra"
)

// SimulateCmd runs the cli against the simulated controller so the monitor
// page can be exercised without hardware.
func SimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Run the monitor against a simulated controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			listen, err := cmd.Flags().GetString("listen")
			if err != nil {
				return fmt.Errorf("could not get listen flag: %w", err)
			}
			runArgs := []string{"run", "./cmd/mensor", "--simulate", "monitor", "--listen", listen}
			slog.Info("starting simulated monitor", "listen", listen)
			run := exec.CommandContext(cmd.Context(), "go", runArgs...)
			run.Stdout = os.Stdout
			run.Stderr = os.Stderr
			if err := run.Run(); err != nil {
				return fmt.Errorf("simulated monitor exited: %w", err)
			}
			return nil
		},
	}
	cmd.Flags().String("listen", "127.0.0.1:8090", "http listen address of the monitor")
	return cmd
}
