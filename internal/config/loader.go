package config

import (
	"bytes"
	_ "embed"
	"errors"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	tilerrors "github.com/nigeltao/tiler/internal/errors"
)

//go:embed default.yml
var defaultConfig []byte

var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

// configNames are searched for, in order, in the tiler config directory.
var configNames = []string{"config.yml", "config.yaml", "config.toml"}

// Load reads and parses a configuration file. The format follows the file
// extension: .toml is TOML, anything else YAML.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, tilerrors.ConfigNotFound(path)
		}
		return nil, tilerrors.Wrap(err, tilerrors.ErrCodeConfigInvalid, "failed to read config file").
			WithDetail("path", path)
	}
	cfg, err := LoadFromBytes(data, formatOf(path))
	if err != nil {
		if e, ok := err.(*tilerrors.Error); ok {
			return nil, e.WithDetail("path", path)
		}
		return nil, err
	}
	return cfg, nil
}

// LoadDefault loads the first config file found in the tiler config
// directory, or the built-in defaults when there is none. It returns the path
// loaded, empty for the built-in defaults.
func LoadDefault() (*Config, string, error) {
	if path := FindConfigFile(); path != "" {
		cfg, err := Load(path)
		return cfg, path, err
	}
	cfg, err := Default()
	return cfg, "", err
}

// Default returns the built-in configuration.
func Default() (*Config, error) {
	return LoadFromBytes(defaultConfig, "yaml")
}

// DefaultYAML returns the built-in configuration file.
func DefaultYAML() []byte {
	return append([]byte(nil), defaultConfig...)
}

// LoadFromBytes parses, schema-validates, defaults and semantically
// validates a configuration. format is "yaml" or "toml".
func LoadFromBytes(data []byte, format string) (*Config, error) {
	expanded := []byte(expandEnvVars(string(data)))

	var cfg Config
	if err := decode(expanded, format, &cfg); err != nil {
		return nil, tilerrors.Wrap(err, tilerrors.ErrCodeConfigInvalid, "failed to parse "+format+" configuration")
	}

	validator, err := defaultValidator()
	if err != nil {
		return nil, tilerrors.Wrap(err, tilerrors.ErrCodeInternal, "failed to create validator")
	}
	if err := validator.Validate(&cfg); err != nil {
		return nil, tilerrors.Wrap(err, tilerrors.ErrCodeConfigInvalid, "schema validation failed")
	}

	cfg.SetDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func decode(data []byte, format string, cfg *Config) error {
	if format == "toml" {
		dec := toml.NewDecoder(bytes.NewReader(data))
		dec.DisallowUnknownFields()
		return dec.Decode(cfg)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func formatOf(path string) string {
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		return "toml"
	}
	return "yaml"
}

// ConfigDir returns $XDG_CONFIG_HOME/tiler, or ~/.config/tiler.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "tiler")
	}
	if home, err := os.UserHomeDir(); err == nil {
		return filepath.Join(home, ".config", "tiler")
	}
	return ""
}

// FindConfigFile returns the config file in ConfigDir, or "" if none exists.
func FindConfigFile() string {
	dir := ConfigDir()
	if dir == "" {
		return ""
	}
	for _, name := range configNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path
		}
	}
	return ""
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment
// variable values.
func expandEnvVars(content string) string {
	return envVarRegex.ReplaceAllStringFunc(content, func(match string) string {
		varName := envVarRegex.FindStringSubmatch(match)[1]

		parts := strings.SplitN(varName, ":-", 2)
		varName = parts[0]
		defaultValue := ""
		if len(parts) > 1 {
			defaultValue = parts[1]
		}

		if value := os.Getenv(varName); value != "" {
			return value
		}
		return defaultValue
	})
}

// expandPath expands a leading ~/ to the home directory.
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[2:])
		}
	}
	return path
}
