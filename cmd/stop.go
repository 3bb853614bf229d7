package cmd

import (
	"errors"
	"fmt"
	"os"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/registry"
)

var stopCmd = &cobra.Command{
	Use:   "stop <name>",
	Short: "Stop a background worker",
	Long: `Send SIGTERM to the named worker to trigger a graceful shutdown and
remove it from the registry. The worker closes its upstream connection
and removes its socket before exiting.

Examples:
  mcpkeep stop docs`,
	Args: cobra.ExactArgs(1),
	RunE: runStop,
}

func init() {
	rootCmd.AddCommand(stopCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	name := args[0]

	err := registry.WithLiveEntry(name, func(entry *registry.Entry) error {
		return signalWorker(entry.PID)
	})
	if err != nil {
		if errors.Is(err, registry.ErrProcessGone) {
			return fmt.Errorf("worker %q died unexpectedly; stale entry removed", name)
		}
		return err
	}

	if err := registry.Remove(name); err != nil {
		return err
	}
	infof("Stopped %s\n", name)
	return nil
}

// signalWorker sends SIGTERM to the given PID.
func signalWorker(pid int) error {
	proc, err := os.FindProcess(pid)
	if err != nil {
		return fmt.Errorf("could not find process %d: %w", pid, err)
	}
	if err := proc.Signal(syscall.SIGTERM); err != nil {
		return fmt.Errorf("failed to send SIGTERM to PID %d: %w", pid, err)
	}
	return nil
}
