// Package registry persists the record of named servers believed to be
// running: which worker process owns each name, where its socket lives, and
// how it was launched.
//
// The store is a single JSON file rewritten wholesale on every mutation.
// There is no locking; callers re-load immediately before any modify-then-save
// sequence and accept last-writer-wins semantics. An entry's presence means a
// start handshake once succeeded, not that the process is still alive — use
// WithLiveEntry for anything that talks to the worker.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/zhubert/mcpkeep/internal/upstream"
)

// FileName is the registry file, resolved relative to the invoking directory.
const FileName = ".mcpkeep.json"

// envOverride lets tests point the registry at a scratch file.
const envOverride = "MCPKEEP_REGISTRY"

// Entry describes one named, currently-believed-running worker.
type Entry struct {
	Name       string              `json:"name"`
	Launch     upstream.LaunchSpec `json:"launch"`
	PID        int                 `json:"pid"`
	SocketPath string              `json:"socket_path"`
	StartedAt  time.Time           `json:"started_at"`
}

// Path returns the registry file location.
func Path() string {
	if p := os.Getenv(envOverride); p != "" {
		return p
	}
	return FileName
}

// Load reads the registry from disk. A missing file is an empty registry,
// not an error.
func Load() (map[string]*Entry, error) {
	data, err := os.ReadFile(Path())
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]*Entry{}, nil
		}
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	entries := map[string]*Entry{}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse registry: %w", err)
	}
	return entries, nil
}

// Save rewrites the registry wholesale (temp file, then rename).
func Save(entries map[string]*Entry) error {
	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal registry: %w", err)
	}

	fp := Path()
	if dir := filepath.Dir(fp); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create registry directory: %w", err)
		}
	}

	tmpFile := fp + ".tmp"
	if err := os.WriteFile(tmpFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write temp registry file: %w", err)
	}
	if err := os.Rename(tmpFile, fp); err != nil {
		os.Remove(tmpFile)
		return fmt.Errorf("failed to rename registry file: %w", err)
	}
	return nil
}

// Put re-loads the registry, inserts entry under its name, and saves.
func Put(entry *Entry) error {
	entries, err := Load()
	if err != nil {
		return err
	}
	entries[entry.Name] = entry
	return Save(entries)
}

// Remove re-loads the registry, deletes name, and saves. Removing an absent
// name is a no-op.
func Remove(name string) error {
	entries, err := Load()
	if err != nil {
		return err
	}
	if _, ok := entries[name]; !ok {
		return nil
	}
	delete(entries, name)
	return Save(entries)
}
