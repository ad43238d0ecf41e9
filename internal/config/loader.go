// Package config provides configuration loading helpers.
package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	userConfigDirName  = ".config"
	userConfigAppDir   = "agentfleet"
	userConfigFileName = "config.yaml"
	repoConfigFileName = ".agentfleet.yaml"
)

// Load resolves configuration from user defaults, repo overrides, and CLI overrides.
func Load(repoRoot string, cliOverrides map[string]any, warn func(string)) (Config, error) {
	userConfigPath, err := UserConfigPath()
	if err != nil {
		return Config{}, err
	}

	merged := map[string]any{}
	merged, err = mergeConfigLayer(merged, userConfigPath, "user defaults")
	if err != nil {
		return Config{}, err
	}

	if repoRoot != "" {
		merged, err = mergeConfigLayer(merged, RepoConfigPath(repoRoot), "repo overrides")
		if err != nil {
			return Config{}, err
		}
	}

	if cliOverrides != nil {
		merged = mergeConfigMaps(merged, cliOverrides)
	}

	cfg := decodeConfig(merged, warn)
	return ApplyDefaults(cfg, warn), nil
}

// UserConfigPath resolves the user defaults path for config.yaml.
func UserConfigPath() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolve user home: %w", err)
	}
	return filepath.Join(homeDir, userConfigDirName, userConfigAppDir, userConfigFileName), nil
}

// RepoConfigPath returns the per-repository override file.
func RepoConfigPath(repoRoot string) string {
	return filepath.Join(repoRoot, repoConfigFileName)
}

// mergeConfigLayer reads a config file and merges it into the base map.
func mergeConfigLayer(base map[string]any, path string, label string) (map[string]any, error) {
	layer, err := readConfigFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return base, nil
		}
		return nil, fmt.Errorf("load %s config %s: %w", label, path, err)
	}
	return mergeConfigMaps(base, layer), nil
}

// readConfigFile parses a single YAML mapping from the given path.
func readConfigFile(path string) (map[string]any, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)

	var data map[string]any
	if err := decoder.Decode(&data); err != nil {
		if errors.Is(err, io.EOF) {
			return map[string]any{}, nil
		}
		return nil, err
	}
	if err := ensureEOF(decoder); err != nil {
		return nil, err
	}
	if data == nil {
		return map[string]any{}, nil
	}
	return data, nil
}

// ensureEOF verifies the file holds a single YAML document.
func ensureEOF(decoder *yaml.Decoder) error {
	var extra any
	if err := decoder.Decode(&extra); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return err
	}
	return errors.New("invalid trailing document after YAML mapping")
}

// mergeConfigMaps overlays override onto base and returns a merged map.
func mergeConfigMaps(base map[string]any, override map[string]any) map[string]any {
	if base == nil {
		base = map[string]any{}
	}
	merged := cloneConfigMap(base)
	for key, value := range override {
		overrideMap, ok := value.(map[string]any)
		if !ok {
			merged[key] = value
			continue
		}
		if baseMap, ok := merged[key].(map[string]any); ok {
			merged[key] = mergeConfigMaps(baseMap, overrideMap)
			continue
		}
		merged[key] = cloneConfigMap(overrideMap)
	}
	return merged
}

// cloneConfigMap copies a map recursively to prevent aliasing.
func cloneConfigMap(values map[string]any) map[string]any {
	clone := make(map[string]any, len(values))
	for key, value := range values {
		if nested, ok := value.(map[string]any); ok {
			clone[key] = cloneConfigMap(nested)
			continue
		}
		clone[key] = value
	}
	return clone
}

// decodeConfig best-effort decodes a config map into the Config struct.
// Keys that are absent keep their defaults.
func decodeConfig(raw map[string]any, warn func(string)) Config {
	cfg := Defaults()

	agent := toConfigMap(raw["agent"])
	if value, ok := agent["program"]; ok {
		cfg.Agent.Program = parseString(value)
	}

	worktree := toConfigMap(raw["worktree"])
	if value, ok := worktree["create"]; ok {
		cfg.Worktree.Create = parseBool(value, cfg.Worktree.Create, "worktree.create", warn)
	}
	if value, ok := worktree["base"]; ok {
		cfg.Worktree.Base = parseString(value)
	}
	if value, ok := worktree["log_file"]; ok {
		cfg.Worktree.LogFile = parseString(value)
	}

	host := toConfigMap(raw["host"])
	if value, ok := host["multiplexer"]; ok {
		cfg.Host.Multiplexer = parseString(value)
	}

	audit := toConfigMap(raw["audit"])
	if value, ok := audit["path"]; ok {
		cfg.Audit.Path = parseString(value)
	}
	if value, ok := audit["level"]; ok {
		cfg.Audit.Level = parseString(value)
	}

	return cfg
}

// toConfigMap asserts a value as map[string]any.
func toConfigMap(value any) map[string]any {
	if value == nil {
		return nil
	}
	typed, ok := value.(map[string]any)
	if !ok {
		return nil
	}
	return typed
}

// parseBool reads a YAML boolean, keeping fallback for anything else.
func parseBool(value any, fallback bool, key string, warn func(string)) bool {
	typed, ok := value.(bool)
	if !ok {
		emitWarning(warn, "invalid "+key+"; using default")
		return fallback
	}
	return typed
}

// parseString returns trimmed string values from config maps.
func parseString(value any) string {
	typed, ok := value.(string)
	if !ok {
		return ""
	}
	return strings.TrimSpace(typed)
}
