package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/yndnr/curvectl/internal/core/domain"
	"github.com/yndnr/curvectl/internal/infra/confloader"
)

// DotEnvFile is read from the working directory before env parsing.
const DotEnvFile = ".env"

// DefaultConfigPath returns ~/.curvectl/config.yaml.
func DefaultConfigPath() string {
	homeDir, _ := os.UserHomeDir()
	return filepath.Join(homeDir, ".curvectl", "config.yaml")
}

// Load reads the profile at path on top of Default. An empty path selects
// DefaultConfigPath, which may be missing; an explicit path must exist.
// Each entry of sets is "section.key=value" and wins over every other
// source.
func Load(path string, sets ...string) (*CLIConfig, error) {
	overrides, err := ParseSets(sets)
	if err != nil {
		return nil, err
	}

	opts := []confloader.Option{confloader.WithDotEnv(DotEnvFile), confloader.WithOverrides(overrides)}
	if path == "" {
		opts = append(opts, confloader.WithConfigFile(DefaultConfigPath()), confloader.WithOptionalFile())
	} else {
		opts = append(opts, confloader.WithConfigFile(path))
	}

	cfg := Default()
	if err := confloader.NewLoader(opts...).Load(cfg); err != nil {
		return nil, domain.ErrConfigInvalid.Wrap(err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ParseSets turns "section.key=value" entries into a dotted-key map. The
// value may be empty; the key may not.
func ParseSets(sets []string) (map[string]any, error) {
	out := make(map[string]any, len(sets))
	for _, s := range sets {
		key, value, ok := strings.Cut(s, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, domain.ErrConfigInvalid.WithDetails(fmt.Sprintf("--set %q: want section.key=value", s))
		}
		out[strings.ToLower(key)] = value
	}
	return out, nil
}

// Save writes cfg as YAML, readable by the owner only.
func Save(cfg *CLIConfig, path string) error {
	if path == "" {
		path = DefaultConfigPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// FlagLookup reports the value of a shared flag and whether it was set
// explicitly on the command line or through its environment variable.
type FlagLookup func(name string) (string, bool)

// Shared flag names.
const (
	FlagEnv     = "env"
	FlagRPC     = "rpc"
	FlagKeypair = "keypair"
)

// Shared returns the raw shared inputs of one invocation. An explicit flag
// wins over the profile; a value set in neither place is returned empty so
// the resolver applies its default.
func (c *CLIConfig) Shared(lookup FlagLookup) (env, keypair, rpc string) {
	pick := func(flag, file string) string {
		if v, ok := lookup(flag); ok {
			return v
		}
		return file
	}
	return pick(FlagEnv, c.Cluster.Env),
		pick(FlagKeypair, c.Cluster.Keypair),
		pick(FlagRPC, c.Cluster.RPC)
}
