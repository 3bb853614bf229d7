package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/ipc"
	"github.com/zhubert/mcpkeep/internal/registry"
)

var (
	callArgs    []string
	callTimeout time.Duration
)

var callCmd = &cobra.Command{
	Use:   "call <name> <tool> [json-arguments]",
	Short: "Invoke a tool through a worker's warm connection",
	Long: `Invoke a tool on the named worker's MCP server. Arguments are passed
either as a single JSON object, or as repeated --arg KEY=VALUE flags.
--arg values that parse as JSON are passed typed; anything else is
passed as a string.

Examples:
  mcpkeep call docs search '{"query":"retries","limit":5}'
  mcpkeep call docs search --arg query=retries --arg limit=5`,
	Args: cobra.RangeArgs(2, 3),
	RunE: runCall,
}

func init() {
	callCmd.Flags().StringArrayVar(&callArgs, "arg", nil, "Tool argument (KEY=VALUE, repeatable)")
	callCmd.Flags().DurationVar(&callTimeout, "timeout", 60*time.Second, "How long to wait for the tool call to complete")
	rootCmd.AddCommand(callCmd)
}

func runCall(cmd *cobra.Command, args []string) error {
	name, tool := args[0], args[1]

	arguments, err := resolveCallArguments(args[2:], callArgs)
	if err != nil {
		return err
	}

	var result json.RawMessage
	err = registry.WithLiveEntry(name, func(entry *registry.Entry) error {
		ctx, cancel := context.WithTimeout(context.Background(), callTimeout)
		defer cancel()
		var callErr error
		result, callErr = ipc.Call(ctx, entry.SocketPath, ipc.MethodCallTool, &ipc.CallParams{
			Name:      tool,
			Arguments: arguments,
		})
		return callErr
	})
	if err != nil {
		return err
	}

	var pretty json.RawMessage
	if indented, err := indentJSON(result); err == nil {
		pretty = indented
	} else {
		pretty = result
	}
	fmt.Println(string(pretty))
	return nil
}

// resolveCallArguments builds the tool arguments from either the positional
// JSON object or --arg flags. The positional form is passed through
// verbatim so the server sees exactly what was typed.
func resolveCallArguments(positional, flagPairs []string) (json.RawMessage, error) {
	if len(positional) > 0 && len(flagPairs) > 0 {
		return nil, fmt.Errorf("pass arguments as JSON or as --arg flags, not both")
	}

	if len(positional) > 0 {
		raw := json.RawMessage(positional[0])
		if !json.Valid(raw) {
			return nil, fmt.Errorf("arguments are not valid JSON: %s", positional[0])
		}
		return raw, nil
	}

	if len(flagPairs) == 0 {
		return nil, nil
	}

	pairs, err := parseEnvPairs(flagPairs)
	if err != nil {
		return nil, fmt.Errorf("invalid --arg: %w", err)
	}
	arguments := make(map[string]any, len(pairs))
	for key, value := range pairs {
		var typed any
		if err := json.Unmarshal([]byte(value), &typed); err == nil {
			arguments[key] = typed
		} else {
			arguments[key] = value
		}
	}
	return json.Marshal(arguments)
}
