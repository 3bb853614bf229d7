package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Conn is one established upstream connection. The SDK session correlates
// concurrent requests itself, so a single Conn is safe to dispatch against
// from multiple in-flight requests.
type Conn interface {
	// ListTools returns the upstream tool list as raw JSON.
	ListTools(ctx context.Context) (json.RawMessage, error)
	// CallTool forwards one tool invocation and returns the raw JSON result.
	CallTool(ctx context.Context, name string, arguments json.RawMessage) (json.RawMessage, error)
	// Close tears down the session (and the spawned process, for local specs).
	Close() error
}

// Connect establishes the upstream MCP session described by spec.
// Local specs spawn the command with the process environment plus overrides;
// remote specs connect over SSE.
func Connect(ctx context.Context, spec LaunchSpec) (Conn, error) {
	client := mcp.NewClient(&mcp.Implementation{
		Name:    "mcpkeep",
		Version: "1.0.0",
	}, nil)

	var transport mcp.Transport
	if spec.IsRemote() {
		transport = mcp.NewSSEClientTransport(spec.URL, nil)
	} else {
		cmd := exec.Command(spec.Command, spec.Args...)
		if spec.Cwd != "" {
			cmd.Dir = spec.Cwd
		}
		cmd.Env = MergedEnv(os.Environ(), spec.Env)
		cmd.Stderr = os.Stderr
		transport = mcp.NewCommandTransport(cmd)
	}

	session, err := client.Connect(ctx, transport)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", spec.Target(), err)
	}
	return &sdkConn{session: session}, nil
}

// MergedEnv overlays override variables onto a base KEY=VALUE environment.
func MergedEnv(base []string, overrides map[string]string) []string {
	env := make([]string, len(base), len(base)+len(overrides))
	copy(env, base)
	for key, value := range overrides {
		env = append(env, fmt.Sprintf("%s=%s", key, value))
	}
	return env
}

type sdkConn struct {
	session *mcp.ClientSession
}

func (c *sdkConn) ListTools(ctx context.Context) (json.RawMessage, error) {
	result, err := c.session.ListTools(ctx, &mcp.ListToolsParams{})
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (c *sdkConn) CallTool(ctx context.Context, name string, arguments json.RawMessage) (json.RawMessage, error) {
	// The SDK wants decoded arguments; this is the only place the relay
	// re-interprets the caller's JSON.
	var args map[string]any
	if len(arguments) > 0 {
		if err := json.Unmarshal(arguments, &args); err != nil {
			return nil, fmt.Errorf("decode tool arguments: %w", err)
		}
	}

	result, err := c.session.CallTool(ctx, &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		return nil, err
	}
	return json.Marshal(result)
}

func (c *sdkConn) Close() error {
	return c.session.Close()
}
