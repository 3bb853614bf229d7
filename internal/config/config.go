// Package config loads predefined server definitions from mcpkeep.yaml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zhubert/mcpkeep/internal/paths"
	"github.com/zhubert/mcpkeep/internal/upstream"
)

const fileName = "mcpkeep.yaml"

// Server is one predefined upstream in mcpkeep.yaml. Either Command or
// URL is set, matching the start command's target forms.
type Server struct {
	Command string            `yaml:"command,omitempty"`
	Args    []string          `yaml:"args,omitempty"`
	Cwd     string            `yaml:"cwd,omitempty"`
	Env     map[string]string `yaml:"env,omitempty"`
	URL     string            `yaml:"url,omitempty"`
}

// Config is the parsed mcpkeep.yaml.
type Config struct {
	Servers map[string]Server `yaml:"servers"`
}

// Load reads mcpkeep.yaml from the invoking directory, falling back to
// the user config directory. Returns nil, nil when neither file exists.
func Load() (*Config, error) {
	configDir, err := paths.ConfigDir()
	if err != nil {
		return nil, err
	}
	for _, fp := range []string{fileName, filepath.Join(configDir, fileName)} {
		data, err := os.ReadFile(fp)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", fp, err)
		}

		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", fp, err)
		}
		return &cfg, nil
	}
	return nil, nil
}

// LookupServer resolves a predefined server to a launch spec. Returns
// nil, nil when no config file defines the name.
func LookupServer(name string) (*upstream.LaunchSpec, error) {
	cfg, err := Load()
	if err != nil {
		return nil, err
	}
	if cfg == nil {
		return nil, nil
	}
	srv, ok := cfg.Servers[name]
	if !ok {
		return nil, nil
	}
	if srv.Command == "" && srv.URL == "" {
		return nil, fmt.Errorf("server %q in %s has neither command nor url", name, fileName)
	}
	if srv.Command != "" && srv.URL != "" {
		return nil, fmt.Errorf("server %q in %s has both command and url", name, fileName)
	}
	return &upstream.LaunchSpec{
		Command: srv.Command,
		Args:    srv.Args,
		Cwd:     srv.Cwd,
		Env:     srv.Env,
		URL:     srv.URL,
	}, nil
}
