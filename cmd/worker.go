package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/upstream"
	"github.com/zhubert/mcpkeep/internal/worker"
)

var (
	workerName string
	workerSpec string
)

var workerCmd = &cobra.Command{
	Use:    "__worker",
	Short:  "Run the background worker process (internal use)",
	Hidden: true,
	RunE:   runWorker,
}

func init() {
	workerCmd.Flags().StringVar(&workerName, "name", "", "Worker name")
	workerCmd.Flags().StringVar(&workerSpec, "spec", "", "Launch spec as JSON")
	rootCmd.AddCommand(workerCmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	if workerName == "" || workerSpec == "" {
		return fmt.Errorf("--name and --spec are required")
	}

	var spec upstream.LaunchSpec
	if err := json.Unmarshal([]byte(workerSpec), &spec); err != nil {
		return fmt.Errorf("parsing launch spec: %w", err)
	}

	// The launcher hands us the control pipe's write end on fd 3.
	ctl := os.NewFile(3, "control")
	if ctl == nil {
		return fmt.Errorf("control pipe (fd 3) not inherited")
	}

	return worker.Run(workerName, spec, ctl)
}
