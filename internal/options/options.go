// Package options loads the codec configuration file and turns it into the
// network, logging and storage settings the CLI runs with.
package options

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/bkkIoT/iotAdeunis/internal/frame"
	"github.com/bkkIoT/iotAdeunis/internal/store"
)

// Output formats.
const (
	OutputJSON = "json"
	OutputCBOR = "cbor"
)

// Storage backends.
const (
	BackendMemory = "memory"
	BackendFile   = "file"
	BackendSQLite = "sqlite"
)

// ErrInvalidConfig wraps every validation failure.
var ErrInvalidConfig = errors.New("invalid config")

// Config is the file-level configuration.
type Config struct {
	Network  string      `yaml:"network"`
	Output   string      `yaml:"output"`
	LogLevel string      `yaml:"log_level"`
	Store    StoreConfig `yaml:"store"`
}

// StoreConfig selects where device state is kept.
type StoreConfig struct {
	Backend string `yaml:"backend"`
	Path    string `yaml:"path"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		Network:  string(frame.NetworkUnknown),
		Output:   OutputJSON,
		LogLevel: logrus.InfoLevel.String(),
		Store:    StoreConfig{Backend: BackendMemory},
	}
}

// Load reads the YAML file at path. An empty path yields Default.
func Load(path string) (Config, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes YAML, fills unset fields with defaults and validates.
// Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// ApplyDefaults fills empty fields from Default.
func (c *Config) ApplyDefaults() {
	def := Default()
	if c.Network == "" {
		c.Network = def.Network
	}
	if c.Output == "" {
		c.Output = def.Output
	}
	if c.LogLevel == "" {
		c.LogLevel = def.LogLevel
	}
	if c.Store.Backend == "" {
		c.Store.Backend = def.Store.Backend
	}
	c.Output = strings.ToLower(c.Output)
	c.Store.Backend = strings.ToLower(c.Store.Backend)
}

// Validate checks every field.
func (c Config) Validate() error {
	if _, err := c.ParsedNetwork(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, err)
	}
	switch c.Output {
	case OutputJSON, OutputCBOR:
	default:
		return fmt.Errorf("%w: output %q (want json or cbor)", ErrInvalidConfig, c.Output)
	}
	switch c.Store.Backend {
	case BackendMemory:
	case BackendFile, BackendSQLite:
		if c.Store.Path == "" {
			return fmt.Errorf("%w: store backend %s needs a path", ErrInvalidConfig, c.Store.Backend)
		}
	default:
		return fmt.Errorf("%w: store backend %q (want memory, file or sqlite)", ErrInvalidConfig, c.Store.Backend)
	}
	return nil
}

// ParsedNetwork returns the configured network.
func (c Config) ParsedNetwork() (frame.Network, error) {
	return frame.ParseNetwork(c.Network)
}

// Level returns the configured log level.
func (c Config) Level() (logrus.Level, error) {
	return logrus.ParseLevel(c.LogLevel)
}

// OpenStorage opens the configured backend. The returned close function
// must be called once the storage is no longer used.
func OpenStorage(cfg StoreConfig, log logrus.FieldLogger) (store.Storage, func() error, error) {
	noop := func() error { return nil }
	switch cfg.Backend {
	case BackendMemory, "":
		return store.NewMemoryStorage(), noop, nil
	case BackendFile:
		s, err := store.OpenFile(cfg.Path)
		if err != nil {
			return nil, nil, err
		}
		return s, noop, nil
	case BackendSQLite:
		s, err := store.OpenSQLite(cfg.Path, log)
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	default:
		return nil, nil, fmt.Errorf("%w: store backend %q", ErrInvalidConfig, cfg.Backend)
	}
}
