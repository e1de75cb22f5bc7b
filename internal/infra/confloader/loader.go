package confloader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

// DefaultEnvPrefix is the default environment variable prefix.
const DefaultEnvPrefix = "CURVECTL_"

// SectionSeparator splits an environment variable name into config path
// segments. A single underscore stays part of the key:
// CURVECTL_CLUSTER__RPC_RATE_LIMIT -> cluster.rpc_rate_limit.
const SectionSeparator = "__"

// Loader loads configuration from multiple sources.
type Loader struct {
	k            *koanf.Koanf
	envPrefix    string
	filePath     string
	dotEnvFiles  []string
	optionalFile bool
	overrides    map[string]any
}

// Option is a function that configures the Loader.
type Option func(*Loader)

// WithEnvPrefix sets the environment variable prefix.
func WithEnvPrefix(prefix string) Option {
	return func(l *Loader) {
		l.envPrefix = prefix
	}
}

// WithConfigFile sets the configuration file path.
func WithConfigFile(path string) Option {
	return func(l *Loader) {
		l.filePath = path
	}
}

// WithOptionalFile makes a missing configuration file a no-op instead of
// an error. Used for the default path, which may not exist yet.
func WithOptionalFile() Option {
	return func(l *Loader) {
		l.optionalFile = true
	}
}

// WithDotEnv loads the given .env files into the process environment
// before environment variables are read. Variables already set win.
func WithDotEnv(paths ...string) Option {
	return func(l *Loader) {
		l.dotEnvFiles = append(l.dotEnvFiles, paths...)
	}
}

// WithOverrides applies data, keyed by dotted path, after every other
// source.
func WithOverrides(data map[string]any) Option {
	return func(l *Loader) {
		l.overrides = data
	}
}

// NewLoader creates a new configuration loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{
		k:         koanf.New("."),
		envPrefix: DefaultEnvPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Load loads configuration from all sources and unmarshals into target.
// Loading order (later sources override earlier):
//  1. Values already in target (defaults)
//  2. Configuration file (YAML)
//  3. .env files, then environment variables
//  4. Overrides
func (l *Loader) Load(target any) error {
	if l.filePath != "" && !(l.optionalFile && !fileExists(l.filePath)) {
		if err := l.LoadFile(l.filePath); err != nil {
			return fmt.Errorf("load config file: %w", err)
		}
	}

	if err := l.LoadDotEnv(l.dotEnvFiles...); err != nil {
		return err
	}

	if err := l.LoadEnv(); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	if len(l.overrides) > 0 {
		if err := l.LoadMap(l.overrides); err != nil {
			return err
		}
	}

	if err := l.Unmarshal(target); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}
	return nil
}

// LoadFile loads configuration from a YAML file.
func (l *Loader) LoadFile(path string) error {
	if path == "" {
		return nil
	}

	if err := l.k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return fmt.Errorf("load file %s: %w", path, err)
	}

	return nil
}

// LoadDotEnv loads .env files into the process environment. Missing
// files are skipped.
func (l *Loader) LoadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load dotenv %s: %w", p, err)
		}
	}
	return nil
}

// LoadEnv loads configuration from environment variables.
// Example: CURVECTL_METRICS__PUSHGATEWAY=http://gw:9091 -> metrics.pushgateway
func (l *Loader) LoadEnv() error {
	envTransformer := func(s string) string {
		s = strings.TrimPrefix(s, l.envPrefix)
		s = strings.ToLower(s)
		return strings.ReplaceAll(s, SectionSeparator, ".")
	}

	if err := l.k.Load(env.Provider(l.envPrefix, ".", envTransformer), nil); err != nil {
		return fmt.Errorf("load env: %w", err)
	}

	return nil
}

// LoadMap loads configuration from a map with dotted keys.
func (l *Loader) LoadMap(data map[string]any) error {
	if err := l.k.Load(mapProvider(data), nil); err != nil {
		return fmt.Errorf("load map: %w", err)
	}
	return nil
}

// Unmarshal unmarshals the loaded configuration into the target struct
// using koanf tags.
func (l *Loader) Unmarshal(target any) error {
	return l.k.Unmarshal("", target)
}

// GetString returns a string value from the configuration.
func (l *Loader) GetString(key string) string {
	return l.k.String(key)
}

// GetInt returns an int value from the configuration.
func (l *Loader) GetInt(key string) int {
	return l.k.Int(key)
}

// GetBool returns a bool value from the configuration.
func (l *Loader) GetBool(key string) bool {
	return l.k.Bool(key)
}

// Exists reports whether key was set by any loaded source.
func (l *Loader) Exists(key string) bool {
	return l.k.Exists(key)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
