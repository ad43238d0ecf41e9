// Package config provides configuration initialization helpers.
package config

import (
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const repoConfigFileMode = 0o644

// InitOptions configures init-time behaviors such as verbose logging.
type InitOptions struct {
	Verbose bool
	Writer  io.Writer
}

func (opts InitOptions) logf(format string, args ...interface{}) {
	if !opts.Verbose {
		return
	}
	writer := opts.Writer
	if writer == nil {
		writer = os.Stdout
	}
	fmt.Fprintf(writer, format+"\n", args...)
}

// InitRepoConfig writes the documented defaults to <repoRoot>/.agentfleet.yaml.
// It does not overwrite an existing file and reports whether one was written.
func InitRepoConfig(repoRoot string, opts InitOptions) (bool, error) {
	if repoRoot == "" {
		return false, fmt.Errorf("repo root cannot be empty")
	}

	configPath := RepoConfigPath(repoRoot)
	if _, err := os.Stat(configPath); err == nil {
		opts.logf("config exists: %s", configPath)
		return false, nil
	} else if !os.IsNotExist(err) {
		return false, fmt.Errorf("check config file %s: %w", configPath, err)
	}

	data, err := yaml.Marshal(Defaults())
	if err != nil {
		return false, fmt.Errorf("marshal default config: %w", err)
	}
	if err := os.WriteFile(configPath, data, repoConfigFileMode); err != nil {
		return false, fmt.Errorf("write config file %s: %w", configPath, err)
	}
	opts.logf("created %s", configPath)
	return true, nil
}
