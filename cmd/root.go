package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	quietMode             bool
	version, commit, date string
)

// SetVersionInfo sets version information from ldflags
func SetVersionInfo(v, c, d string) {
	version, commit, date = v, c, d
}

var rootCmd = &cobra.Command{
	Use:   "mcpkeep",
	Short: "Keep MCP servers connected between CLI invocations",
	Long: `mcpkeep holds a long-lived connection to an MCP server in a detached
background worker, so repeated tool listings and tool calls skip the
server's startup cost.

Workers for the current directory are tracked in .mcpkeep.json.
Predefined servers can be declared in mcpkeep.yaml.`,
	Example: `  mcpkeep start docs npx -- -y @modelcontextprotocol/server-docs
  mcpkeep start dash https://dash.example.com/mcp
  mcpkeep tools docs               # List tools on the warm connection
  mcpkeep call docs search '{"query":"retries"}'
  mcpkeep ps                       # Show tracked workers
  mcpkeep stop docs                # Terminate the worker`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&quietMode, "quiet", "q", false, "Suppress informational output")

	// Hide the auto-generated completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true
}

// Execute runs the root command
func Execute() error {
	rootCmd.Version = version
	rootCmd.SetVersionTemplate(versionTemplate())
	return rootCmd.Execute()
}

func versionTemplate() string {
	if commit != "none" && commit != "" {
		return fmt.Sprintf("mcpkeep %s\n  commit: %s\n  built:  %s\n", version, commit, date)
	}
	return fmt.Sprintf("mcpkeep %s\n", version)
}

// infof prints unless --quiet was given.
func infof(format string, args ...any) {
	if !quietMode {
		fmt.Printf(format, args...)
	}
}
