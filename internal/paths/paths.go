// Package paths provides centralized path resolution for mcpkeep's directories.
//
// mcpkeep follows the XDG Base Directory Specification where the environment
// opts in, and falls back to a flat ~/.mcpkeep/ layout otherwise:
//
//   - Config (XDG_CONFIG_HOME): mcpkeep.yaml — predefined server definitions
//   - State (XDG_STATE_HOME): logs/ — per-worker log files
//
// Resolution order:
//  1. If ~/.mcpkeep/ exists → use the legacy flat layout
//  2. If XDG env vars are set → use the XDG layout
//  3. Fresh install, no XDG vars → default to ~/.mcpkeep/
package paths

import (
	"os"
	"path/filepath"
	"sync"
)

var (
	mu       sync.Mutex
	resolved *resolvedPaths
)

type resolvedPaths struct {
	configDir string
	stateDir  string
}

// resolve computes the path layout once and caches it.
func resolve() (*resolvedPaths, error) {
	mu.Lock()
	defer mu.Unlock()

	if resolved != nil {
		return resolved, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	legacyDir := filepath.Join(home, ".mcpkeep")

	if info, err := os.Stat(legacyDir); err == nil && info.IsDir() {
		resolved = &resolvedPaths{configDir: legacyDir, stateDir: legacyDir}
		return resolved, nil
	}

	xdgConfig := os.Getenv("XDG_CONFIG_HOME")
	xdgState := os.Getenv("XDG_STATE_HOME")

	if xdgConfig != "" || xdgState != "" {
		if xdgConfig == "" {
			xdgConfig = filepath.Join(home, ".config")
		}
		if xdgState == "" {
			xdgState = filepath.Join(home, ".local", "state")
		}
		resolved = &resolvedPaths{
			configDir: filepath.Join(xdgConfig, "mcpkeep"),
			stateDir:  filepath.Join(xdgState, "mcpkeep"),
		}
		return resolved, nil
	}

	resolved = &resolvedPaths{configDir: legacyDir, stateDir: legacyDir}
	return resolved, nil
}

// ConfigDir returns the directory for configuration files.
func ConfigDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.configDir, nil
}

// StateDir returns the directory for runtime state and logs.
func StateDir() (string, error) {
	r, err := resolve()
	if err != nil {
		return "", err
	}
	return r.stateDir, nil
}

// LogsDir returns the directory for worker log files.
func LogsDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "logs"), nil
}

// Reset clears the cached path resolution. This is intended for testing only.
func Reset() {
	mu.Lock()
	defer mu.Unlock()
	resolved = nil
}
