package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/zhubert/mcpkeep/internal/config"
	"github.com/zhubert/mcpkeep/internal/launcher"
	"github.com/zhubert/mcpkeep/internal/logger"
	"github.com/zhubert/mcpkeep/internal/upstream"
)

var (
	startCwd string
	startEnv []string
)

var startCmd = &cobra.Command{
	Use:   "start <name> [target] [args...]",
	Short: "Start a background worker for an MCP server",
	Long: `Spawn a detached worker that connects to the given MCP server and
keeps the connection warm. The target is either a command to run as a
stdio server, or an http(s) URL for a remote server.

When the target is omitted, the server definition is looked up by name
in mcpkeep.yaml (current directory first, then the user config dir).

Examples:
  mcpkeep start docs npx -- -y @modelcontextprotocol/server-docs
  mcpkeep start db mcp-postgres --cwd /srv/db --env PGHOST=10.0.0.5
  mcpkeep start dash https://dash.example.com/mcp
  mcpkeep start docs                # Target from mcpkeep.yaml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runStart,
}

func init() {
	startCmd.Flags().StringVar(&startCwd, "cwd", "", "Working directory for the server command")
	startCmd.Flags().StringArrayVar(&startEnv, "env", nil, "Environment variable for the server command (KEY=VALUE, repeatable)")
	rootCmd.AddCommand(startCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	name := args[0]

	spec, err := resolveStartSpec(name, args[1:])
	if err != nil {
		return err
	}

	entry, err := launcher.Launch(name, spec)
	if err != nil {
		if errors.Is(err, launcher.ErrSpawnFailed) || errors.Is(err, launcher.ErrStartupTimeout) {
			if logPath, pathErr := logger.WorkerLogPath(name); pathErr == nil {
				return fmt.Errorf("%w (worker log: %s)", err, logPath)
			}
		}
		return err
	}

	infof("Started %s (PID %d)\n", entry.Name, entry.PID)
	infof("  target: %s\n", entry.Launch.Target())
	infof("  socket: %s\n", entry.SocketPath)
	return nil
}

// resolveStartSpec builds the launch spec from command-line arguments, or
// from mcpkeep.yaml when no target was given.
func resolveStartSpec(name string, targetArgs []string) (upstream.LaunchSpec, error) {
	if len(targetArgs) == 0 {
		if startCwd != "" || len(startEnv) > 0 {
			return upstream.LaunchSpec{}, fmt.Errorf("--cwd and --env require an explicit target")
		}
		spec, err := config.LookupServer(name)
		if err != nil {
			return upstream.LaunchSpec{}, err
		}
		if spec == nil {
			return upstream.LaunchSpec{}, fmt.Errorf("no target given and %q is not defined in mcpkeep.yaml", name)
		}
		return *spec, nil
	}

	env, err := parseEnvPairs(startEnv)
	if err != nil {
		return upstream.LaunchSpec{}, err
	}
	return upstream.ParseTarget(targetArgs[0], targetArgs[1:], startCwd, env)
}
