package cmd

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/registry"
)

var psJSON bool

var psCmd = &cobra.Command{
	Use:   "ps [name]",
	Short: "List tracked workers",
	Long: `Show the workers tracked in the registry. Each entry is probed for
liveness; entries whose process has died are pruned from the registry
and reported as gone.

Examples:
  mcpkeep ps
  mcpkeep ps docs
  mcpkeep ps --json`,
	Args: cobra.MaximumNArgs(1),
	RunE: runPS,
}

func init() {
	psCmd.Flags().BoolVar(&psJSON, "json", false, "Print entries as JSON")
	rootCmd.AddCommand(psCmd)
}

// psRow is one worker in the ps output.
type psRow struct {
	Name       string    `json:"name"`
	PID        int       `json:"pid"`
	State      string    `json:"state"`
	StartedAt  time.Time `json:"started_at,omitempty"`
	SocketPath string    `json:"socket_path,omitempty"`
	Target     string    `json:"target,omitempty"`
}

func runPS(cmd *cobra.Command, args []string) error {
	entries, err := registry.Load()
	if err != nil {
		return err
	}

	names := make([]string, 0, len(entries))
	for name := range entries {
		if len(args) == 1 && name != args[0] {
			continue
		}
		names = append(names, name)
	}
	sort.Strings(names)

	if len(args) == 1 && len(names) == 0 {
		return fmt.Errorf("%w: %s", registry.ErrNotRunning, args[0])
	}

	rows := make([]psRow, 0, len(names))
	for _, name := range names {
		row := psRow{Name: name}
		err := registry.WithLiveEntry(name, func(entry *registry.Entry) error {
			row.PID = entry.PID
			row.State = "running"
			row.StartedAt = entry.StartedAt
			row.SocketPath = entry.SocketPath
			row.Target = entry.Launch.Target()
			return nil
		})
		switch {
		case err == nil:
		case errors.Is(err, registry.ErrProcessGone):
			// Pruned by the probe; still report it once.
			row.PID = entries[name].PID
			row.State = "gone"
			row.Target = entries[name].Launch.Target()
		default:
			return err
		}
		rows = append(rows, row)
	}

	if psJSON {
		out, err := json.MarshalIndent(rows, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	}

	if len(rows) == 0 {
		fmt.Println("No workers")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tPID\tSTATE\tUPTIME\tTARGET")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n", row.Name, row.PID, row.State, formatUptime(row.StartedAt), row.Target)
	}
	return tw.Flush()
}
