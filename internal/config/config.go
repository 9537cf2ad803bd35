package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/vango-dev/toastkit/internal/errors"
	"github.com/vango-dev/toastkit/pkg/toastui"
	"gopkg.in/yaml.v3"
)

const (
	// ConfigFileName is the name of the JSON configuration file.
	ConfigFileName = "toastkit.json"

	// YAMLConfigFileName is the name of the YAML configuration file.
	YAMLConfigFileName = "toastkit.yaml"

	// DefaultAddress is the default listen address.
	DefaultAddress = "localhost:7300"

	DefaultShutdownTimeout  = "10s"
	DefaultMaxToasts        = 5
	DefaultDuration         = "5s"
	DefaultCopyFeedback     = "2s"
	DefaultClipboardTimeout = "5s"
	DefaultLogLevel         = "info"
	DefaultLogFormat        = "console"
	DefaultNamespace        = "toastkit"
	DefaultTracerName       = "toastd"
)

// Config represents the complete toastkit configuration.
type Config struct {
	Server  ServerConfig  `json:"server" yaml:"server"`
	Toasts  ToastsConfig  `json:"toasts" yaml:"toasts"`
	Log     LogConfig     `json:"log" yaml:"log"`
	Metrics MetricsConfig `json:"metrics" yaml:"metrics"`
	Tracing TracingConfig `json:"tracing" yaml:"tracing"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	// Address is the host:port to listen on.
	Address string `json:"address,omitempty" yaml:"address,omitempty"`

	// ShutdownTimeout bounds graceful shutdown (e.g., "10s").
	ShutdownTimeout string `json:"shutdownTimeout,omitempty" yaml:"shutdownTimeout,omitempty"`

	// AllowedOrigins are accepted WebSocket origins. Empty means same-origin only.
	AllowedOrigins []string `json:"allowedOrigins,omitempty" yaml:"allowedOrigins,omitempty"`
}

// ToastsConfig contains store and container settings.
type ToastsConfig struct {
	MaxToasts        int     `json:"maxToasts,omitempty" yaml:"maxToasts,omitempty"`
	DefaultDuration  string  `json:"defaultDuration,omitempty" yaml:"defaultDuration,omitempty"`
	Position         string  `json:"position,omitempty" yaml:"position,omitempty"`
	MobileBreakpoint int     `json:"mobileBreakpoint,omitempty" yaml:"mobileBreakpoint,omitempty"`
	SwipeThreshold   float64 `json:"swipeThreshold,omitempty" yaml:"swipeThreshold,omitempty"`
	CopyFeedback     string  `json:"copyFeedback,omitempty" yaml:"copyFeedback,omitempty"`
	ClipboardTimeout string  `json:"clipboardTimeout,omitempty" yaml:"clipboardTimeout,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is a zerolog level name (debug, info, warn, error).
	Level string `json:"level,omitempty" yaml:"level,omitempty"`

	// Format is "console" or "json".
	Format string `json:"format,omitempty" yaml:"format,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   bool   `json:"enabled" yaml:"enabled"`
	Namespace string `json:"namespace,omitempty" yaml:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	Enabled    bool   `json:"enabled" yaml:"enabled"`
	TracerName string `json:"tracerName,omitempty" yaml:"tracerName,omitempty"`
}

// New creates a new Config with default values.
func New() *Config {
	return &Config{
		Server: ServerConfig{
			Address:         DefaultAddress,
			ShutdownTimeout: DefaultShutdownTimeout,
		},
		Toasts: ToastsConfig{
			MaxToasts:        DefaultMaxToasts,
			DefaultDuration:  DefaultDuration,
			Position:         string(toastui.TopRight),
			MobileBreakpoint: toastui.DefaultMobileBreakpoint,
			SwipeThreshold:   toastui.DefaultSwipeThreshold,
			CopyFeedback:     DefaultCopyFeedback,
			ClipboardTimeout: DefaultClipboardTimeout,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
		Metrics: MetricsConfig{
			Enabled:   true,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
	}
}

// Load reads configuration from the specified directory.
// It looks for toastkit.json, then toastkit.yaml, then toastkit.yml.
func Load(dir string) (*Config, error) {
	for _, name := range []string{ConfigFileName, YAMLConfigFileName, "toastkit.yml"} {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			return LoadFile(path)
		}
	}
	return nil, errors.New(errors.CodeConfigNotFound).
		WithDetail("No toastkit.json or toastkit.yaml found in " + dir).
		WithSuggestion("Run 'toastd config init' to write the defaults")
}

// LoadFile reads configuration from the specified file path. The format is
// chosen by extension: .yaml and .yml are YAML, anything else JSON.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No config file at " + path).
				WithSuggestion("Run 'toastd config init' to write the defaults")
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := New()
	if isYAML(path) {
		err = yaml.Unmarshal(data, cfg)
	} else {
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid " + formatName(path))
	}

	cfg.configPath = path
	cfg.applyDefaults()
	return cfg, nil
}

// Save writes the configuration to the file it was loaded from.
func (c *Config) Save() error {
	if c.configPath == "" {
		return errors.Newf(errors.CategoryConfig, "no config path set")
	}
	return c.SaveTo(c.configPath)
}

// SaveTo writes the configuration to the specified path, as YAML when the
// extension asks for it.
func (c *Config) SaveTo(path string) error {
	var (
		data []byte
		err  error
	)
	if isYAML(path) {
		data, err = yaml.Marshal(c)
	} else {
		data, err = json.MarshalIndent(c, "", "  ")
		// Add newline at end of file
		data = append(data, '\n')
	}
	if err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigParse).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yaml" || ext == ".yml"
}

func formatName(path string) string {
	if isYAML(path) {
		return "YAML"
	}
	return "JSON"
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Server
	if c.Server.Address == "" {
		c.Server.Address = DefaultAddress
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Toasts
	if c.Toasts.MaxToasts == 0 {
		c.Toasts.MaxToasts = DefaultMaxToasts
	}
	if c.Toasts.DefaultDuration == "" {
		c.Toasts.DefaultDuration = DefaultDuration
	}
	if c.Toasts.Position == "" {
		c.Toasts.Position = string(toastui.TopRight)
	}
	if c.Toasts.MobileBreakpoint == 0 {
		c.Toasts.MobileBreakpoint = toastui.DefaultMobileBreakpoint
	}
	if c.Toasts.SwipeThreshold == 0 {
		c.Toasts.SwipeThreshold = toastui.DefaultSwipeThreshold
	}
	if c.Toasts.CopyFeedback == "" {
		c.Toasts.CopyFeedback = DefaultCopyFeedback
	}
	if c.Toasts.ClipboardTimeout == "" {
		c.Toasts.ClipboardTimeout = DefaultClipboardTimeout
	}

	// Log
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}

	// Observability
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = DefaultNamespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = DefaultTracerName
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Toasts.MaxToasts < 1 {
		return invalid("toasts.maxToasts must be at least 1")
	}
	if c.Toasts.MobileBreakpoint < 0 {
		return invalid("toasts.mobileBreakpoint must not be negative")
	}
	if c.Toasts.SwipeThreshold < 0 {
		return invalid("toasts.swipeThreshold must not be negative")
	}
	if _, err := toastui.ParsePosition(c.Toasts.Position); err != nil {
		return invalid(err.Error())
	}

	for _, field := range []struct{ name, value string }{
		{"server.shutdownTimeout", c.Server.ShutdownTimeout},
		{"toasts.defaultDuration", c.Toasts.DefaultDuration},
		{"toasts.copyFeedback", c.Toasts.CopyFeedback},
		{"toasts.clipboardTimeout", c.Toasts.ClipboardTimeout},
	} {
		d, err := time.ParseDuration(field.value)
		if err != nil {
			return invalid(field.name + " is not a duration: " + field.value)
		}
		if d < 0 {
			return invalid(field.name + " must not be negative")
		}
	}

	if _, err := zerolog.ParseLevel(c.Log.Level); err != nil {
		return invalid("log.level is not a valid level: " + c.Log.Level)
	}
	if c.Log.Format != "console" && c.Log.Format != "json" {
		return invalid("log.format must be console or json")
	}
	return nil
}

func invalid(detail string) error {
	return errors.New(errors.CodeConfigInvalid).WithDetail(detail)
}

// duration parses a validated duration field, falling back to def.
func duration(value, def string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}

// ShutdownTimeout returns server.shutdownTimeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout, DefaultShutdownTimeout)
}

// DefaultToastDuration returns toasts.defaultDuration.
func (c *Config) DefaultToastDuration() time.Duration {
	return duration(c.Toasts.DefaultDuration, DefaultDuration)
}

// CopyFeedback returns toasts.copyFeedback.
func (c *Config) CopyFeedback() time.Duration {
	return duration(c.Toasts.CopyFeedback, DefaultCopyFeedback)
}

// ClipboardTimeout returns toasts.clipboardTimeout.
func (c *Config) ClipboardTimeout() time.Duration {
	return duration(c.Toasts.ClipboardTimeout, DefaultClipboardTimeout)
}

// Position returns toasts.position.
func (c *Config) Position() toastui.Position {
	p, err := toastui.ParsePosition(c.Toasts.Position)
	if err != nil {
		return toastui.TopRight
	}
	return p
}
