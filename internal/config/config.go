// Package config loads the lobby server configuration
package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-yaml"

	"connect4-lobby/internal/lobby"
	"connect4-lobby/internal/network"
)

const (
	DefaultHost         = "0.0.0.0"
	DefaultPort         = 12345
	DefaultWriteTimeout = 5 * time.Second
	DefaultLogLevel     = "INFO"

	MinCodeLength = 3
	MaxCodeLength = 12
)

// Config holds all server configuration
type Config struct {
	// Listener
	Host string
	Port int

	// HealthPort serves /health, /ready and /stats; empty disables it
	HealthPort string

	// Lobby behaviour
	AnnounceDelay time.Duration
	CodeLength    int

	// Connection limits
	WriteTimeout time.Duration
	MaxPayload   int

	// Logging
	LogLevel string
	LogFile  string
}

// fileConfig is the on-disk YAML shape. Durations are written as "2s", "500ms".
type fileConfig struct {
	Host          *string `yaml:"host"`
	Port          *int    `yaml:"port"`
	HealthPort    *string `yaml:"health_port"`
	AnnounceDelay *string `yaml:"announce_delay"`
	CodeLength    *int    `yaml:"code_length"`
	WriteTimeout  *string `yaml:"write_timeout"`
	MaxPayload    *int    `yaml:"max_payload"`
	LogLevel      *string `yaml:"log_level"`
	LogFile       *string `yaml:"log_file"`
}

// Default returns a Config with the stock settings
func Default() *Config {
	return &Config{
		Host:          DefaultHost,
		Port:          DefaultPort,
		AnnounceDelay: lobby.DefaultAnnounceDelay,
		CodeLength:    lobby.DefaultCodeLength,
		WriteTimeout:  DefaultWriteTimeout,
		MaxPayload:    network.DefaultMaxPayload,
		LogLevel:      DefaultLogLevel,
	}
}

// Load builds a Config from defaults, the YAML file at path (if any) and
// the C4_* environment variables, in that order, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.applyFile(path); err != nil {
			return nil, err
		}
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	if fc.Host != nil {
		c.Host = *fc.Host
	}
	if fc.Port != nil {
		c.Port = *fc.Port
	}
	if fc.HealthPort != nil {
		c.HealthPort = *fc.HealthPort
	}
	if fc.CodeLength != nil {
		c.CodeLength = *fc.CodeLength
	}
	if fc.MaxPayload != nil {
		c.MaxPayload = *fc.MaxPayload
	}
	if fc.LogLevel != nil {
		c.LogLevel = *fc.LogLevel
	}
	if fc.LogFile != nil {
		c.LogFile = *fc.LogFile
	}
	if fc.AnnounceDelay != nil {
		if c.AnnounceDelay, err = time.ParseDuration(*fc.AnnounceDelay); err != nil {
			return fmt.Errorf("announce_delay: %w", err)
		}
	}
	if fc.WriteTimeout != nil {
		if c.WriteTimeout, err = time.ParseDuration(*fc.WriteTimeout); err != nil {
			return fmt.Errorf("write_timeout: %w", err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	c.Host = getEnv("C4_HOST", c.Host)
	c.HealthPort = getEnv("C4_HEALTH_PORT", c.HealthPort)
	c.LogLevel = getEnv("C4_LOG_LEVEL", c.LogLevel)
	c.LogFile = getEnv("C4_LOG_FILE", c.LogFile)

	var err error
	if c.Port, err = getEnvInt("C4_PORT", c.Port); err != nil {
		return err
	}
	if c.CodeLength, err = getEnvInt("C4_CODE_LENGTH", c.CodeLength); err != nil {
		return err
	}
	if c.MaxPayload, err = getEnvInt("C4_MAX_PAYLOAD", c.MaxPayload); err != nil {
		return err
	}
	if c.AnnounceDelay, err = getEnvDuration("C4_ANNOUNCE_DELAY", c.AnnounceDelay); err != nil {
		return err
	}
	if c.WriteTimeout, err = getEnvDuration("C4_WRITE_TIMEOUT", c.WriteTimeout); err != nil {
		return err
	}
	return nil
}

// Validate ensures the configuration is coherent
func (c *Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d (must be 1-65535)", c.Port)
	}
	if c.HealthPort != "" {
		p, err := strconv.Atoi(c.HealthPort)
		if err != nil || p < 1 || p > 65535 {
			return fmt.Errorf("invalid health port: %q", c.HealthPort)
		}
		if p == c.Port {
			return fmt.Errorf("health port %d collides with the game port", p)
		}
	}
	if c.CodeLength < MinCodeLength || c.CodeLength > MaxCodeLength {
		return fmt.Errorf("code length %d out of range [%d, %d]", c.CodeLength, MinCodeLength, MaxCodeLength)
	}
	if c.MaxPayload <= 0 {
		return fmt.Errorf("max payload must be positive, got %d", c.MaxPayload)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %s", c.WriteTimeout)
	}
	if c.AnnounceDelay < 0 {
		return fmt.Errorf("announce delay must not be negative, got %s", c.AnnounceDelay)
	}

	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		return fmt.Errorf("invalid log level: %s (supported: DEBUG, INFO, WARN, ERROR)", c.LogLevel)
	}
	return nil
}

// Address returns the game listener address
func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

// HealthAddress returns the health listener address, or "" when disabled
func (c *Config) HealthAddress() string {
	if c.HealthPort == "" {
		return ""
	}
	return ":" + c.HealthPort
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %q is not an integer", key, value)
	}
	return n, nil
}

func getEnvDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
