package config

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/isodom/internal/errors"
)

const (
	// ConfigFileName is the name of the YAML configuration file.
	ConfigFileName = "isodom.yaml"

	// JSONConfigFileName is the name of the JSON configuration file.
	JSONConfigFileName = "isodom.json"

	// DefaultAddr is the default bridge listen address.
	DefaultAddr = "localhost:8080"

	// DefaultRootID is the default id of the render root element.
	DefaultRootID = "app"

	// DefaultLogLevel is the default log level.
	DefaultLogLevel = "info"

	// DefaultDemo is the default demo application.
	DefaultDemo = "toggle"

	// DefaultDepth is the default nesting depth of the recursive demo.
	DefaultDepth = 3

	// MaxDepth bounds the recursive demo.
	MaxDepth = 32

	// DefaultNamespace is the default Prometheus namespace.
	DefaultNamespace = "isodom"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultQueueSize is the default capacity of the driver loop queue.
	DefaultQueueSize = 256
)

// Config represents the complete isodom configuration.
type Config struct {
	// Addr is the bridge listen address (host:port).
	Addr string `json:"addr,omitempty" yaml:"addr,omitempty"`

	// RootID is the id attribute of the render root element.
	RootID string `json:"rootId,omitempty" yaml:"rootId,omitempty"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `json:"logLevel,omitempty" yaml:"logLevel,omitempty"`

	// Demo names the demo application to serve.
	Demo string `json:"demo,omitempty" yaml:"demo,omitempty"`

	// Depth is the nesting depth of the recursive demo.
	Depth int `json:"depth,omitempty" yaml:"depth,omitempty"`

	// Metrics contains Prometheus settings.
	Metrics MetricsConfig `json:"metrics,omitempty" yaml:"metrics,omitempty"`

	// Loop contains driver loop settings.
	Loop LoopConfig `json:"loop,omitempty" yaml:"loop,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	// Enabled turns on driver metrics and the metrics endpoint.
	Enabled bool `json:"enabled,omitempty" yaml:"enabled,omitempty"`

	// Namespace prefixes every metric name.
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`

	// Path is the HTTP path of the metrics endpoint.
	Path string `json:"path,omitempty" yaml:"path,omitempty"`
}

// LoopConfig contains driver loop settings.
type LoopConfig struct {
	// QueueSize is the number of callbacks the loop buffers.
	QueueSize int `json:"queueSize,omitempty" yaml:"queueSize,omitempty"`
}

// New returns a configuration with default values.
func New() *Config {
	c := &Config{}
	c.applyDefaults()
	return c
}

// Load reads configuration from dir, preferring isodom.yaml over isodom.json.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, JSONConfigFileName} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New("E106").
		WithDetail("No " + ConfigFileName + " or " + JSONConfigFileName + " found in " + dir).
		WithSuggestion("Create one or pass --config")
}

// LoadFile reads configuration from path. Files ending in .json are parsed
// as JSON, everything else as YAML.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.New("E106").WithDetail("Cannot read " + path).Wrap(err)
	}

	cfg := &Config{}
	if isJSON(path) {
		err = json.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New("E106").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check the file syntax")
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

func isJSON(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".json")
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to path in the format its extension names.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isJSON(path) {
		data, err = json.MarshalIndent(c, "", "  ")
		data = append(data, '\n')
	} else {
		data, err = yaml.Marshal(c)
	}
	if err != nil {
		return errors.New("E106").Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New("E106").Wrap(err)
	}

	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	if c.Addr == "" {
		c.Addr = DefaultAddr
	}
	if c.RootID == "" {
		c.RootID = DefaultRootID
	}
	if c.LogLevel == "" {
		c.LogLevel = DefaultLogLevel
	}
	if c.Demo == "" {
		c.Demo = DefaultDemo
	}
	if c.Depth == 0 {
		c.Depth = DefaultDepth
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Loop.QueueSize == 0 {
		c.Loop.QueueSize = DefaultQueueSize
	}
}

var (
	rootIDPattern    = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)
	namespacePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if _, _, err := net.SplitHostPort(c.Addr); err != nil {
		return errors.New("E106").
			WithDetail(fmt.Sprintf("addr %q must be host:port", c.Addr)).
			Wrap(err)
	}
	if !rootIDPattern.MatchString(c.RootID) {
		return errors.New("E106").
			WithDetail(fmt.Sprintf("rootId %q is not a valid element id", c.RootID))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Depth < 1 || c.Depth > MaxDepth {
		return errors.New("E106").
			WithDetail(fmt.Sprintf("depth must be between 1 and %d", MaxDepth))
	}
	if !namespacePattern.MatchString(c.Metrics.Namespace) {
		return errors.New("E106").
			WithDetail(fmt.Sprintf("metrics namespace %q is not a valid metric name prefix", c.Metrics.Namespace))
	}
	if !strings.HasPrefix(c.Metrics.Path, "/") {
		return errors.New("E106").
			WithDetail("metrics path must start with /")
	}
	if c.Loop.QueueSize < 0 {
		return errors.New("E106").
			WithDetail("loop queueSize must not be negative")
	}
	return nil
}

// ParseLevel converts a level name to a slog.Level.
func ParseLevel(name string) (slog.Level, error) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.New("E106").
		WithDetail(fmt.Sprintf("unknown log level %q", name)).
		WithSuggestion("use debug, info, warn or error")
}

// Logger returns a text logger writing to w at the configured level.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := ParseLevel(c.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
