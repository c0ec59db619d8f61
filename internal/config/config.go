// Package config loads anchorleak configuration.
//
// Configuration comes from a single YAML file named by the --config flag or,
// when no flag is given, the ANCHORLEAK_CONFIG environment variable. There
// is no discovery: with neither set, the built-in defaults are used.
// Command-line flags override file values.
package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/FocuswithJustin/anchorleak/core/anchorleak"
	apperrors "github.com/FocuswithJustin/anchorleak/core/errors"
	"github.com/FocuswithJustin/anchorleak/internal/logging"
)

// EnvVar names the environment variable holding the config file path.
const EnvVar = "ANCHORLEAK_CONFIG"

// Config is the configuration shared by the CLI and the API server.
type Config struct {
	Log     LogConfig     `yaml:"log"`
	Extract ExtractConfig `yaml:"extract"`
	Server  ServerConfig  `yaml:"server"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

// ExtractConfig configures extraction defaults.
type ExtractConfig struct {
	// DefaultCorpus is the selector used when a request omits one.
	DefaultCorpus string `yaml:"default_corpus"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Port int `yaml:"port"`

	// AllowedOrigins lists origins accepted by CORS and the websocket
	// upgrader. Empty allows any origin.
	AllowedOrigins []string `yaml:"allowed_origins"`

	// MaxMessageBytes bounds request bodies and websocket frames.
	MaxMessageBytes int64 `yaml:"max_message_bytes"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
		Extract: ExtractConfig{
			DefaultCorpus: anchorleak.DefaultSelector,
		},
		Server: ServerConfig{
			Port:            8080,
			MaxMessageBytes: 64 << 10,
		},
	}
}

// Load reads the file at path, falling back to $ANCHORLEAK_CONFIG when path
// is empty. With neither set it returns Default(). File values are merged
// over the defaults and the result is validated.
func Load(path string) (*Config, error) {
	if path == "" {
		path = os.Getenv(EnvVar)
	}
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to read config")
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, apperrors.Wrapf(err, "failed to parse config %s", path)
	}
	if err := cfg.Validate(); err != nil {
		return nil, apperrors.Wrapf(err, "invalid config %s", path)
	}
	return cfg, nil
}

// Validate checks the configuration for errors. All problems are reported.
func (c *Config) Validate() error {
	var errs []error

	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if _, err := logging.ParseFormat(c.Log.Format); err != nil {
		errs = append(errs, fmt.Errorf("log.format: %w", err))
	}
	if _, err := anchorleak.ParseCorpus(c.Extract.DefaultCorpus); err != nil {
		errs = append(errs, fmt.Errorf("extract.default_corpus: %w", err))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port))
	}
	if c.Server.MaxMessageBytes <= 0 {
		errs = append(errs, fmt.Errorf("server.max_message_bytes must be positive, got %d", c.Server.MaxMessageBytes))
	}

	return errors.Join(errs...)
}

// ApplyLogging initializes the global logger from c.Log, writing to stderr.
func (c *Config) ApplyLogging() error {
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	format, err := logging.ParseFormat(c.Log.Format)
	if err != nil {
		return err
	}
	logging.InitLogger(level, format, os.Stderr)
	return nil
}
