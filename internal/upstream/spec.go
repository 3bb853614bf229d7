// Package upstream owns the connection to the actual tool-providing MCP
// server. It wraps the official MCP SDK client behind a small interface so
// the worker's dispatch loop can be tested without spawning processes.
package upstream

import (
	"fmt"
	"net/url"
	"strings"
)

// LaunchSpec describes how to reach an MCP server: either spawn a local
// process (Command/Args/Cwd/Env) or connect to a remote endpoint (URL).
// The two forms are mutually exclusive.
type LaunchSpec struct {
	Command string            `json:"command,omitempty"`
	Args    []string          `json:"args,omitempty"`
	Cwd     string            `json:"cwd,omitempty"`
	Env     map[string]string `json:"env,omitempty"`
	URL     string            `json:"url,omitempty"`
}

// IsRemote reports whether the spec targets a remote endpoint.
func (s LaunchSpec) IsRemote() bool {
	return s.URL != ""
}

// Target returns a short human-readable description of what the spec launches.
func (s LaunchSpec) Target() string {
	if s.IsRemote() {
		return s.URL
	}
	if len(s.Args) == 0 {
		return s.Command
	}
	return s.Command + " " + strings.Join(s.Args, " ")
}

// ParseTarget builds a LaunchSpec from a CLI target. The target is first
// tried as an http(s) URL; anything else is treated as a command to spawn.
// Extra args, cwd, and env overrides only apply to local spawns.
func ParseTarget(target string, args []string, cwd string, env map[string]string) (LaunchSpec, error) {
	if target == "" {
		return LaunchSpec{}, fmt.Errorf("empty target")
	}

	if u, err := url.Parse(target); err == nil && (u.Scheme == "http" || u.Scheme == "https") {
		if len(args) > 0 || cwd != "" || len(env) > 0 {
			return LaunchSpec{}, fmt.Errorf("args, --cwd, and --env do not apply to remote URL targets")
		}
		return LaunchSpec{URL: target}, nil
	}

	return LaunchSpec{Command: target, Args: args, Cwd: cwd, Env: env}, nil
}
