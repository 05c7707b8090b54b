// Package config loads and validates the engine configuration from a
// JSON file, with environment variable overrides for deployment.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/c360/scriptbridge/errors"
)

// Config is the full engine configuration
type Config struct {
	Service   ServiceConfig   `json:"service"`
	NATS      NATSConfig      `json:"nats"`
	HTTP      HTTPConfig      `json:"http"`
	Metrics   MetricsConfig   `json:"metrics"`
	Logging   LoggingConfig   `json:"logging"`
	Store     StoreConfig     `json:"store"`
	Catalog   CatalogConfig   `json:"catalog"`
	Discovery DiscoveryConfig `json:"discovery"`
}

// ServiceConfig names the service and its command channel
type ServiceConfig struct {
	Name           string `json:"name"`
	CommandSubject string `json:"command_subject"`
}

// NATSConfig configures the NATS connection
type NATSConfig struct {
	URL            string        `json:"url"`
	Username       string        `json:"username,omitempty"`
	Password       string        `json:"password,omitempty"`
	Token          string        `json:"token,omitempty"`
	ConnectTimeout time.Duration `json:"connect_timeout,omitempty"`
}

// HTTPConfig configures the HTTP/WebSocket command endpoint
type HTTPConfig struct {
	Enabled bool `json:"enabled"`
	Port    int  `json:"port"`
}

// MetricsConfig configures the Prometheus endpoint
type MetricsConfig struct {
	Enabled bool   `json:"enabled"`
	Port    int    `json:"port"`
	Path    string `json:"path"`
}

// LoggingConfig configures structured logging
type LoggingConfig struct {
	Level  string `json:"level"`
	Format string `json:"format"`
}

// StoreConfig configures document persistence
type StoreConfig struct {
	Bucket string `json:"bucket"`
}

// CatalogConfig points at the host-exported catalog manifest. An empty
// path starts the engine with an empty catalog, for hosts that register
// entries programmatically.
type CatalogConfig struct {
	ManifestPath string `json:"manifest_path,omitempty"`
}

// DiscoveryConfig bounds catalog discovery
type DiscoveryConfig struct {
	MaxResults int `json:"max_results"`
}

// Default returns the configuration used when no file is provided
func Default() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:           "scriptbridge",
			CommandSubject: "scriptbridge.command",
		},
		NATS: NATSConfig{
			URL:            "nats://localhost:4222",
			ConnectTimeout: 5 * time.Second,
		},
		HTTP: HTTPConfig{
			Enabled: true,
			Port:    8080,
		},
		Metrics: MetricsConfig{
			Enabled: true,
			Port:    9090,
			Path:    "/metrics",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Store: StoreConfig{
			Bucket: "scriptbridge_documents",
		},
		Discovery: DiscoveryConfig{
			MaxResults: 50,
		},
	}
}

// Load reads a JSON configuration file over the defaults, then applies
// environment overrides. An empty path loads defaults and environment
// only.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.WrapNotFound(err, "config", "Load", "config file read")
		}
		if err := json.Unmarshal(data, cfg); err != nil {
			return nil, errors.WrapInvalid(err, "config", "Load", "config file parse")
		}
	}

	cfg.applyEnv()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overrides config fields from SCRIPTBRIDGE_* environment
// variables, the deployment-time escape hatch
func (c *Config) applyEnv() {
	if v := os.Getenv("SCRIPTBRIDGE_NATS_URL"); v != "" {
		c.NATS.URL = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_NATS_USERNAME"); v != "" {
		c.NATS.Username = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_NATS_PASSWORD"); v != "" {
		c.NATS.Password = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_NATS_TOKEN"); v != "" {
		c.NATS.Token = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_COMMAND_SUBJECT"); v != "" {
		c.Service.CommandSubject = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.HTTP.Port = port
		}
	}
	if v := os.Getenv("SCRIPTBRIDGE_METRICS_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Metrics.Port = port
		}
	}
	if v := os.Getenv("SCRIPTBRIDGE_LOG_LEVEL"); v != "" {
		c.Logging.Level = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_LOG_FORMAT"); v != "" {
		c.Logging.Format = v
	}
	if v := os.Getenv("SCRIPTBRIDGE_CATALOG_MANIFEST"); v != "" {
		c.Catalog.ManifestPath = v
	}
}

// Validate checks the configuration is usable
func (c *Config) Validate() error {
	if c.Service.Name == "" {
		return invalid("service.name cannot be empty")
	}
	if c.Service.CommandSubject == "" {
		return invalid("service.command_subject cannot be empty")
	}
	if c.NATS.URL == "" {
		return invalid("nats.url cannot be empty")
	}
	if c.HTTP.Enabled && (c.HTTP.Port < 1 || c.HTTP.Port > 65535) {
		return invalid(fmt.Sprintf("http.port %d out of range", c.HTTP.Port))
	}
	if c.Metrics.Enabled && (c.Metrics.Port < 1 || c.Metrics.Port > 65535) {
		return invalid(fmt.Sprintf("metrics.port %d out of range", c.Metrics.Port))
	}
	if c.HTTP.Enabled && c.Metrics.Enabled && c.HTTP.Port == c.Metrics.Port {
		return invalid("http.port and metrics.port cannot be the same")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return invalid(fmt.Sprintf("logging.level %q is not one of debug, info, warn, error", c.Logging.Level))
	}
	switch c.Logging.Format {
	case "json", "text":
	default:
		return invalid(fmt.Sprintf("logging.format %q is not one of json, text", c.Logging.Format))
	}
	if c.Store.Bucket == "" {
		return invalid("store.bucket cannot be empty")
	}
	if c.Discovery.MaxResults < 1 {
		return invalid("discovery.max_results must be at least 1")
	}
	return nil
}

func invalid(msg string) error {
	return errors.WrapInvalid(fmt.Errorf("%s", msg), "Config", "Validate", "config validation")
}
