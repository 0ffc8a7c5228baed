// Package config loads CLI settings from an optional dotenv file and the
// FORMSTATE_* environment variables. Command-line flags are applied on top by
// the caller.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// DefaultDotenv is read when no explicit dotenv path is given. Its absence
// is not an error.
const DefaultDotenv = ".env"

var (
	// ErrParsingConfig is returned when the environment cannot be parsed.
	ErrParsingConfig = errors.New("config: parse environment")
	// ErrInvalidConfig is returned when a parsed value is out of range.
	ErrInvalidConfig = errors.New("config: invalid value")
)

// Config holds the CLI settings.
type Config struct {
	SchemaPath   string `env:"FORMSTATE_SCHEMA"`
	UniformClear bool   `env:"FORMSTATE_UNIFORM_CLEAR"`
	Output       string `env:"FORMSTATE_OUTPUT" envDefault:"json"`
	MaxAttempts  int    `env:"FORMSTATE_MAX_ATTEMPTS" envDefault:"3"`
	Export       string `env:"FORMSTATE_EXPORT"`
}

// Load reads dotenv (DefaultDotenv when empty) and the process environment.
// Process variables win over dotenv entries.
func Load(dotenv string) (Config, error) {
	environ, err := readDotenv(dotenv)
	if err != nil {
		return Config{}, err
	}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			environ[key] = value
		}
	}
	return Parse(environ)
}

// Parse builds a Config from an explicit environment map.
func Parse(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, errors.Join(ErrParsingConfig, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the enumerated and numeric settings.
func (c Config) Validate() error {
	switch c.Output {
	case "json", "pretty":
	default:
		return fmt.Errorf("%w: output %q (want json or pretty)", ErrInvalidConfig, c.Output)
	}
	switch c.Export {
	case "", "openapi":
	default:
		return fmt.Errorf("%w: export %q (want openapi)", ErrInvalidConfig, c.Export)
	}
	if c.MaxAttempts < 1 {
		return fmt.Errorf("%w: max attempts %d", ErrInvalidConfig, c.MaxAttempts)
	}
	return nil
}

func readDotenv(path string) (map[string]string, error) {
	optional := path == ""
	if optional {
		path = DefaultDotenv
	}
	values, err := godotenv.Read(path)
	if err != nil {
		if optional && errors.Is(err, fs.ErrNotExist) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	return values, nil
}
