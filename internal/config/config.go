package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Default values applied when fields are absent from the config file.
const (
	DefaultHTTPPort        = 8080
	DefaultNotifyInterval  = 15 * time.Second
	DefaultNotifyWindow    = 20
	DefaultNotifyRetention = 24 * time.Hour
	DefaultRequestTimeout  = 10 * time.Second
	DefaultRateLimit       = 5
)

// Config is the top-level configuration parsed from config.yaml.
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Notify  NotifyConfig  `yaml:"notify"`
	Quantum QuantumConfig `yaml:"quantum"`
	Users   []User        `yaml:"users"`
}

// ServerConfig holds the HTTP serving settings.
type ServerConfig struct {
	// HTTPPort is the port the REST API and WebSocket channel listen on.
	HTTPPort int `yaml:"http_port"`
}

// NotifyConfig controls the background job-status change notifier.
type NotifyConfig struct {
	// Interval is the pause between poll cycles.
	Interval time.Duration `yaml:"interval"`

	// Window is how many recent jobs are fetched per user per cycle.
	Window int `yaml:"window"`

	// Retention is how long a job's last-seen status is kept without being
	// re-observed. Bounds the in-memory state map; an evicted job that shows
	// up again is treated as a first observation.
	Retention time.Duration `yaml:"retention"`
}

// QuantumConfig holds the remote job-execution service settings.
type QuantumConfig struct {
	// Endpoint is the base URL of the remote runtime API.
	Endpoint string `yaml:"endpoint"`

	// Timeout is the per-request timeout for remote calls.
	Timeout time.Duration `yaml:"timeout"`

	// RateLimit is the maximum number of requests per second sent to the
	// remote service across all users.
	RateLimit int `yaml:"rate_limit"`
}

// User is one registered credential. Names are matched case-insensitively.
type User struct {
	// Name is the unique registry key.
	Name string `yaml:"name"`

	// APIKeyEnv is the name of the environment variable that holds the
	// user's API key. Keys never live in the config file itself.
	APIKeyEnv string `yaml:"api_key_env"`

	// Instance is the opaque routing identifier passed to the remote service.
	Instance string `yaml:"instance"`
}

// APIKey returns the user's API key resolved from the environment.
// Returns empty string if APIKeyEnv is unset or the variable is not found.
func (u User) APIKey() string {
	if u.APIKeyEnv == "" {
		return ""
	}
	return os.Getenv(u.APIKeyEnv)
}

// Load reads and parses the YAML config file at path.
// Missing optional fields are filled with sensible defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	return cfg, nil
}

// defaults returns a Config pre-populated with default values.
func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			HTTPPort: DefaultHTTPPort,
		},
		Notify: NotifyConfig{
			Interval:  DefaultNotifyInterval,
			Window:    DefaultNotifyWindow,
			Retention: DefaultNotifyRetention,
		},
		Quantum: QuantumConfig{
			Timeout:   DefaultRequestTimeout,
			RateLimit: DefaultRateLimit,
		},
	}
}

// validate checks required fields and structural constraints.
func validate(cfg *Config) error {
	if cfg.Server.HTTPPort <= 0 || cfg.Server.HTTPPort > 65535 {
		return fmt.Errorf("server.http_port %d is out of range [1, 65535]", cfg.Server.HTTPPort)
	}
	if cfg.Notify.Interval <= 0 {
		return fmt.Errorf("notify.interval must be positive")
	}
	if cfg.Notify.Window <= 0 {
		return fmt.Errorf("notify.window must be positive")
	}
	if cfg.Notify.Retention <= 0 {
		return fmt.Errorf("notify.retention must be positive")
	}
	if cfg.Quantum.Endpoint == "" {
		return fmt.Errorf("quantum.endpoint is required")
	}
	if cfg.Quantum.Timeout <= 0 {
		return fmt.Errorf("quantum.timeout must be positive")
	}
	if cfg.Quantum.RateLimit <= 0 {
		return fmt.Errorf("quantum.rate_limit must be positive")
	}

	seen := make(map[string]int, len(cfg.Users))
	for i, u := range cfg.Users {
		if u.Name == "" {
			return fmt.Errorf("users[%d]: name is required", i)
		}
		key := strings.ToLower(u.Name)
		if j, dup := seen[key]; dup {
			return fmt.Errorf("users[%d] %q: name collides with users[%d] (names are case-insensitive)", i, u.Name, j)
		}
		seen[key] = i
		if u.APIKeyEnv == "" {
			return fmt.Errorf("users[%d] %q: api_key_env is required", i, u.Name)
		}
		if u.Instance == "" {
			return fmt.Errorf("users[%d] %q: instance is required", i, u.Name)
		}
	}
	return nil
}
