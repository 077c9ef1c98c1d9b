package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// APIKeyEnv is consulted before any configured or stored credential.
const APIKeyEnv = "DEEPGRAM_API_KEY"

// ErrMissingCredential is returned when no agent API key can be found.
// Connections are refused before any session state is created.
var ErrMissingCredential = errors.New("agent API key not configured: set " + APIKeyEnv + ", agent.api_key, or run 'callbridge credential set'")

// Config holds the bridge configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Agent     AgentConfig     `yaml:"agent"`
	Audio     AudioConfig     `yaml:"audio"`
	Database  DatabaseConfig  `yaml:"database"`
	Retention RetentionConfig `yaml:"retention"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig is the telephony-facing listener.
type ServerConfig struct {
	Host       string `yaml:"host"`        // Bind address (default: 0.0.0.0)
	Port       int    `yaml:"port"`        // Listen port (default: 5000)
	StreamPath string `yaml:"stream_path"` // Media stream websocket path (default: /stream)
}

// AgentConfig describes the hosted voice agent connection.
type AgentConfig struct {
	URL              string        `yaml:"url"`
	APIKey           string        `yaml:"api_key"`           // Optional, prefer the env var or keychain
	SettingsFile     string        `yaml:"settings_file"`     // JSON settings document sent on connect
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"` // Dial timeout (default: 10s)
	WriteTimeout     time.Duration `yaml:"write_timeout"`     // Per-frame write deadline (default: 10s)
	ResponsePacing   time.Duration `yaml:"response_pacing"`   // Hold after each function call response (default: 50ms)
	FallbackPacing   time.Duration `yaml:"fallback_pacing"`   // Hold after an error fallback response (default: 30ms)
}

// AudioConfig controls inbound frame chunking.
type AudioConfig struct {
	SampleRate     int           `yaml:"sample_rate"`      // Hz (default: 8000)
	BytesPerSample int           `yaml:"bytes_per_sample"` // 1 for mu-law (default: 1)
	FrameDuration  time.Duration `yaml:"frame_duration"`   // Audio per forwarded frame (default: 400ms)
	QueueSize      int           `yaml:"queue_size"`       // Frames buffered between ingress and sender (default: 64)
}

// DatabaseConfig selects the complaint store backend.
type DatabaseConfig struct {
	Driver string `yaml:"driver"` // "sqlite" or "postgres"
	Path   string `yaml:"path"`   // SQLite file path
	DSN    string `yaml:"dsn"`    // Postgres connection string
}

// RetentionConfig controls transcript cleanup.
type RetentionConfig struct {
	Transcripts time.Duration `yaml:"transcripts"` // Keep transcripts this long (0 = forever)
	Schedule    string        `yaml:"schedule"`    // Cron expression for the purge job
}

// LoggingConfig controls the process logger.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	Color bool   `yaml:"color"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:       "0.0.0.0",
			Port:       5000,
			StreamPath: "/stream",
		},
		Agent: AgentConfig{
			URL:              "wss://agent.deepgram.com/v1/agent/converse",
			SettingsFile:     "config.json",
			HandshakeTimeout: 10 * time.Second,
			WriteTimeout:     10 * time.Second,
			ResponsePacing:   50 * time.Millisecond,
			FallbackPacing:   30 * time.Millisecond,
		},
		Audio: AudioConfig{
			SampleRate:     8000,
			BytesPerSample: 1,
			FrameDuration:  400 * time.Millisecond,
			QueueSize:      64,
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			Path:   "./data/callbridge.db",
		},
		Retention: RetentionConfig{
			Transcripts: 30 * 24 * time.Hour,
			Schedule:    "@daily",
		},
		Logging: LoggingConfig{
			Level: "info",
			Color: true,
		},
	}
}

// LoadFromBytes applies YAML bytes on top of cfg, expanding ${VAR} references first.
func LoadFromBytes(cfg *Config, data []byte) error {
	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}

// Load builds the config from the embedded defaults and an optional override file.
func Load(embedded []byte, path string) (*Config, error) {
	cfg := DefaultConfig()
	if len(embedded) > 0 {
		if err := LoadFromBytes(cfg, embedded); err != nil {
			return nil, err
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, err
		}
		if err := LoadFromBytes(cfg, data); err != nil {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the values that would otherwise fail deep inside a session.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port %d out of range", c.Server.Port)
	}
	if !strings.HasPrefix(c.Server.StreamPath, "/") {
		return fmt.Errorf("server.stream_path must start with /: %q", c.Server.StreamPath)
	}
	if c.Agent.URL == "" {
		return errors.New("agent.url is required")
	}
	if c.Audio.Threshold() <= 0 {
		return fmt.Errorf("audio frame threshold must be positive (sample_rate=%d bytes_per_sample=%d frame_duration=%s)",
			c.Audio.SampleRate, c.Audio.BytesPerSample, c.Audio.FrameDuration)
	}
	if c.Audio.QueueSize <= 0 {
		return fmt.Errorf("audio.queue_size must be positive, got %d", c.Audio.QueueSize)
	}
	switch c.Database.Driver {
	case "sqlite":
		if c.Database.Path == "" {
			return errors.New("database.path is required for sqlite")
		}
	case "postgres":
		if c.Database.DSN == "" {
			return errors.New("database.dsn is required for postgres")
		}
	default:
		return fmt.Errorf("unknown database.driver %q", c.Database.Driver)
	}
	return nil
}

// Addr returns the listen address.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// Threshold is the byte length of one forwarded audio frame.
func (a AudioConfig) Threshold() int {
	return a.SampleRate * a.BytesPerSample * int(a.FrameDuration/time.Millisecond) / 1000
}

// ResolveAPIKey returns the agent credential from, in order, the environment,
// the config file and the OS keychain.
func (a AgentConfig) ResolveAPIKey(keychain func() (string, error)) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnv)); key != "" {
		return key, nil
	}
	if key := strings.TrimSpace(a.APIKey); key != "" {
		return key, nil
	}
	if keychain != nil {
		if key, err := keychain(); err == nil && strings.TrimSpace(key) != "" {
			return strings.TrimSpace(key), nil
		}
	}
	return "", ErrMissingCredential
}
