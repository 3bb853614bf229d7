package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/ipc"
	"github.com/zhubert/mcpkeep/internal/registry"
)

var (
	toolsJSON    bool
	toolsTimeout time.Duration
)

var toolsCmd = &cobra.Command{
	Use:   "tools <name>",
	Short: "List tools exposed by a worker's MCP server",
	Long: `Ask the named worker for the tool list of its upstream MCP server.
The worker answers from its warm connection, so no server startup
happens on this path.

Examples:
  mcpkeep tools docs
  mcpkeep tools docs --json`,
	Args: cobra.ExactArgs(1),
	RunE: runTools,
}

func init() {
	toolsCmd.Flags().BoolVar(&toolsJSON, "json", false, "Print the raw JSON response")
	toolsCmd.Flags().DurationVar(&toolsTimeout, "timeout", 30*time.Second, "How long to wait for the worker's response")
	rootCmd.AddCommand(toolsCmd)
}

func runTools(cmd *cobra.Command, args []string) error {
	name := args[0]

	var result json.RawMessage
	err := registry.WithLiveEntry(name, func(entry *registry.Entry) error {
		ctx, cancel := context.WithTimeout(context.Background(), toolsTimeout)
		defer cancel()
		var callErr error
		result, callErr = ipc.Call(ctx, entry.SocketPath, ipc.MethodListTools, nil)
		return callErr
	})
	if err != nil {
		return err
	}

	if toolsJSON {
		fmt.Println(string(result))
		return nil
	}
	return printToolTable(result)
}

// printToolTable renders the listTools result as an aligned table.
func printToolTable(result json.RawMessage) error {
	var parsed struct {
		Tools []struct {
			Name        string `json:"name"`
			Description string `json:"description"`
		} `json:"tools"`
	}
	if err := json.Unmarshal(result, &parsed); err != nil {
		return fmt.Errorf("unexpected listTools response: %w", err)
	}
	if len(parsed.Tools) == 0 {
		fmt.Println("No tools")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tDESCRIPTION")
	for _, tool := range parsed.Tools {
		desc := tool.Description
		if len(desc) > 80 {
			desc = desc[:77] + "..."
		}
		fmt.Fprintf(tw, "%s\t%s\n", tool.Name, desc)
	}
	return tw.Flush()
}
