package config

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/varint/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "varint.json"

	// DefaultAddr is the default listen address of the HTTP service.
	DefaultAddr = ":8080"

	// DefaultNamespace is the default metrics namespace.
	DefaultNamespace = "varint"

	// DefaultTracerName is the default OpenTelemetry tracer name.
	DefaultTracerName = "varint"

	// DefaultMaxBodyBytes caps request bodies of the HTTP service (1MB).
	DefaultMaxBodyBytes = 1 << 20

	// DefaultRegion is used for S3 when no region is configured.
	DefaultRegion = "us-east-1"
)

// Config represents the complete varint.json configuration.
type Config struct {
	Server  ServerConfig  `json:"server,omitempty"`
	Metrics MetricsConfig `json:"metrics,omitempty"`
	Tracing TracingConfig `json:"tracing,omitempty"`
	Log     LogConfig     `json:"log,omitempty"`
	S3      S3Config      `json:"s3,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// ServerConfig contains HTTP service settings.
type ServerConfig struct {
	// Addr is the listen address.
	Addr string `json:"addr,omitempty"`

	// ReadTimeout bounds reading a request (e.g., "10s").
	ReadTimeout string `json:"readTimeout,omitempty"`

	// WriteTimeout bounds writing a response.
	WriteTimeout string `json:"writeTimeout,omitempty"`

	// ShutdownTimeout bounds graceful shutdown.
	ShutdownTimeout string `json:"shutdownTimeout,omitempty"`

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64 `json:"maxBodyBytes,omitempty"`
}

// MetricsConfig contains Prometheus settings.
type MetricsConfig struct {
	Enabled   *bool  `json:"enabled,omitempty"`
	Namespace string `json:"namespace,omitempty"`
}

// TracingConfig contains OpenTelemetry settings.
type TracingConfig struct {
	TracerName string `json:"tracerName,omitempty"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `json:"level,omitempty"`

	// Format is "text" or "json".
	Format string `json:"format,omitempty"`
}

// S3Config contains object storage settings.
type S3Config struct {
	Region       string `json:"region,omitempty"`
	Endpoint     string `json:"endpoint,omitempty"`
	UsePathStyle bool   `json:"usePathStyle,omitempty"`

	// Credentials are only read from the environment.
	AccessKeyID     string `json:"-"`
	SecretAccessKey string `json:"-"`
	SessionToken    string `json:"-"`
}

// New creates a new Config with default values.
func New() *Config {
	enabled := true
	return &Config{
		Server: ServerConfig{
			Addr:            DefaultAddr,
			ReadTimeout:     "10s",
			WriteTimeout:    "10s",
			ShutdownTimeout: "5s",
			MaxBodyBytes:    DefaultMaxBodyBytes,
		},
		Metrics: MetricsConfig{
			Enabled:   &enabled,
			Namespace: DefaultNamespace,
		},
		Tracing: TracingConfig{
			TracerName: DefaultTracerName,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		S3: S3Config{
			Region: DefaultRegion,
		},
	}
}

// Load loads configuration from the varint.json file in dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile loads configuration from a specific file path.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithDetail("No " + filepath.Base(path) + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or omit --config to use defaults")
		}
		return nil, errors.New(errors.CodeConfigParse).Wrap(err)
	}

	cfg := New()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New(errors.CodeConfigParse).
			WithDetail("Failed to parse " + path + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	return cfg, nil
}

// Path returns the path the configuration was loaded from, if any.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in fields a config file left empty.
func (c *Config) applyDefaults() {
	d := New()

	if c.Server.Addr == "" {
		c.Server.Addr = d.Server.Addr
	}
	if c.Server.ReadTimeout == "" {
		c.Server.ReadTimeout = d.Server.ReadTimeout
	}
	if c.Server.WriteTimeout == "" {
		c.Server.WriteTimeout = d.Server.WriteTimeout
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = d.Server.ShutdownTimeout
	}
	if c.Server.MaxBodyBytes == 0 {
		c.Server.MaxBodyBytes = d.Server.MaxBodyBytes
	}

	if c.Metrics.Enabled == nil {
		c.Metrics.Enabled = d.Metrics.Enabled
	}
	if c.Metrics.Namespace == "" {
		c.Metrics.Namespace = d.Metrics.Namespace
	}
	if c.Tracing.TracerName == "" {
		c.Tracing.TracerName = d.Tracing.TracerName
	}

	if c.Log.Level == "" {
		c.Log.Level = d.Log.Level
	}
	if c.Log.Format == "" {
		c.Log.Format = d.Log.Format
	}

	if c.S3.Region == "" {
		c.S3.Region = d.S3.Region
	}
}

// ApplyEnv overrides settings from the environment.
func (c *Config) ApplyEnv() {
	if v := os.Getenv("VARINT_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("AWS_REGION"); v != "" {
		c.S3.Region = v
	}
	c.S3.AccessKeyID = os.Getenv("AWS_ACCESS_KEY_ID")
	c.S3.SecretAccessKey = os.Getenv("AWS_SECRET_ACCESS_KEY")
	c.S3.SessionToken = os.Getenv("AWS_SESSION_TOKEN")
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	for name, v := range map[string]string{
		"server.readTimeout":     c.Server.ReadTimeout,
		"server.writeTimeout":    c.Server.WriteTimeout,
		"server.shutdownTimeout": c.Server.ShutdownTimeout,
	} {
		if _, err := time.ParseDuration(v); err != nil {
			return errors.New(errors.CodeConfigInvalid).
				WithDetail(name + " must be a duration such as \"10s\"").
				Wrap(err)
		}
	}
	if c.Server.MaxBodyBytes < 0 {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("server.maxBodyBytes must not be negative")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.level must be one of debug, info, warn, error")
	}
	if f := strings.ToLower(c.Log.Format); f != "text" && f != "json" {
		return errors.New(errors.CodeConfigInvalid).
			WithDetail("log.format must be text or json")
	}
	return nil
}

// MetricsEnabled reports whether Prometheus metrics are exported.
func (c *Config) MetricsEnabled() bool {
	return c.Metrics.Enabled == nil || *c.Metrics.Enabled
}

// ReadTimeout returns the parsed server read timeout.
func (c *Config) ReadTimeout() time.Duration {
	return duration(c.Server.ReadTimeout)
}

// WriteTimeout returns the parsed server write timeout.
func (c *Config) WriteTimeout() time.Duration {
	return duration(c.Server.WriteTimeout)
}

// ShutdownTimeout returns the parsed graceful shutdown timeout.
func (c *Config) ShutdownTimeout() time.Duration {
	return duration(c.Server.ShutdownTimeout)
}

// LogLevel returns the configured slog level.
func (c *Config) LogLevel() slog.Level {
	l, _ := parseLevel(c.Log.Level)
	return l
}

func duration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}
