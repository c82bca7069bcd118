// Package config provides configuration management for the picker
// engine.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the engine configuration.
type Config struct {
	Collect   CollectConfig   `yaml:"collect"`
	Match     MatchConfig     `yaml:"match"`
	Render    RenderConfig    `yaml:"render"`
	Preview   PreviewConfig   `yaml:"preview"`
	Session   SessionConfig   `yaml:"session"`
	Scheduler SchedulerConfig `yaml:"scheduler"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// CollectConfig tunes the Collect Processor.
type CollectConfig struct {
	Threshold       int `yaml:"threshold"`         // Max collected items before Collect stops early
	ChunkSize       int `yaml:"chunk_size"`        // Items buffered before an update event fires
	ChunkIntervalMs int `yaml:"chunk_interval_ms"` // Max delay before flushing a partial chunk
}

// MatchConfig tunes the Match Processor.
type MatchConfig struct {
	IntervalMs int `yaml:"interval_ms"` // Delay between incremental match passes
	Threshold  int `yaml:"threshold"`   // Max matched items kept
	ChunkSize  int `yaml:"chunk_size"`  // Items buffered before an update event fires
}

// RenderConfig tunes the Render Processor.
type RenderConfig struct {
	Height       int `yaml:"height"`        // Visible window height (rows)
	ScrollOffset int `yaml:"scroll_offset"` // Rows kept visible above/below cursor when scrolling
}

// PreviewConfig tunes the Preview Processor.
type PreviewConfig struct {
	DebounceMs int `yaml:"debounce_ms"` // Delay after cursor movement before previewing
}

// SessionConfig tunes the Session Store.
type SessionConfig struct {
	Capacity int `yaml:"capacity"` // Max sessions retained; oldest evicted first
}

// SchedulerConfig tunes the picker's driving scheduler.
type SchedulerConfig struct {
	TickIntervalMs int `yaml:"tick_interval_ms"` // Period between event-queue drains
}

// LoggingConfig holds structured-logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error
	File  string `yaml:"file"`  // Log file path; empty logs to stderr
}

// DefaultConfig returns the engine's documented defaults.
func DefaultConfig() *Config {
	return &Config{
		Collect: CollectConfig{
			Threshold:       100_000,
			ChunkSize:       1_000,
			ChunkIntervalMs: 100,
		},
		Match: MatchConfig{
			IntervalMs: 5,
			Threshold:  100_000,
			ChunkSize:  1_000,
		},
		Render: RenderConfig{
			Height:       20,
			ScrollOffset: 2,
		},
		Preview: PreviewConfig{
			DebounceMs: 150,
		},
		Session: SessionConfig{
			Capacity: 100,
		},
		Scheduler: SchedulerConfig{
			TickIntervalMs: 10,
		},
		Logging: LoggingConfig{
			Level: "info",
			File:  "",
		},
	}
}

// ChunkInterval returns the collect chunk interval as a Duration.
func (c CollectConfig) ChunkInterval() time.Duration {
	return time.Duration(c.ChunkIntervalMs) * time.Millisecond
}

// Interval returns the match interval as a Duration.
func (c MatchConfig) Interval() time.Duration {
	return time.Duration(c.IntervalMs) * time.Millisecond
}

// Debounce returns the preview debounce delay as a Duration.
func (c PreviewConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMs) * time.Millisecond
}

// TickInterval returns the scheduler tick interval as a Duration.
func (c SchedulerConfig) TickInterval() time.Duration {
	return time.Duration(c.TickIntervalMs) * time.Millisecond
}

// Load loads configuration from the default path.
func Load() (*Config, error) {
	paths := DefaultPaths()
	return LoadFromFile(paths.ConfigFile())
}

// LoadFromFile loads configuration from the specified file. If the file
// doesn't exist, returns default configuration. Environment variable
// overrides are applied after file loading.
func LoadFromFile(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ApplyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Save saves the configuration to the default path.
func (c *Config) Save() error {
	paths := DefaultPaths()
	return c.SaveToFile(paths.ConfigFile())
}

// SaveToFile saves the configuration to the specified file.
func (c *Config) SaveToFile(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Get retrieves a configuration value by dot-separated key, e.g.
// "scheduler.tick_interval_ms" or "logging.level".
func (c *Config) Get(key string) (string, error) {
	section, field, err := splitKey(key)
	if err != nil {
		return "", err
	}

	switch section {
	case "collect":
		return getField(c.Collect, field)
	case "match":
		return getField(c.Match, field)
	case "render":
		return getField(c.Render, field)
	case "preview":
		return getField(c.Preview, field)
	case "session":
		return getField(c.Session, field)
	case "scheduler":
		return getField(c.Scheduler, field)
	case "logging":
		return getField(c.Logging, field)
	default:
		return "", fmt.Errorf("unknown section: %s", section)
	}
}

// Set sets a configuration value by dot-separated key.
func (c *Config) Set(key, value string) error {
	section, field, err := splitKey(key)
	if err != nil {
		return err
	}

	switch section {
	case "collect":
		return setField(&c.Collect, field, value)
	case "match":
		return setField(&c.Match, field, value)
	case "render":
		return setField(&c.Render, field, value)
	case "preview":
		return setField(&c.Preview, field, value)
	case "session":
		return setField(&c.Session, field, value)
	case "scheduler":
		return setField(&c.Scheduler, field, value)
	case "logging":
		return setField(&c.Logging, field, value)
	default:
		return fmt.Errorf("unknown section: %s", section)
	}
}

func splitKey(key string) (section, field string, err error) {
	parts := strings.Split(key, ".")
	if len(parts) != 2 {
		return "", "", errors.New("key must be in format 'section.key'")
	}
	return parts[0], parts[1], nil
}

// Validate checks the configuration for internally-consistent values,
// clamping where a sensible default range exists (mirroring
// history.picker_page_size clamping) and erroring otherwise.
func (c *Config) Validate() error {
	if c.Collect.Threshold < 0 {
		return errors.New("collect.threshold must be >= 0")
	}
	if c.Collect.ChunkSize <= 0 {
		return errors.New("collect.chunk_size must be > 0")
	}
	if c.Match.Threshold < 0 {
		return errors.New("match.threshold must be >= 0")
	}
	if c.Match.ChunkSize <= 0 {
		return errors.New("match.chunk_size must be > 0")
	}
	if c.Render.Height <= 0 {
		return errors.New("render.height must be > 0")
	}
	if c.Preview.DebounceMs < 0 {
		return errors.New("preview.debounce_ms must be >= 0")
	}
	if c.Session.Capacity <= 0 {
		c.Session.Capacity = 100
	}
	if c.Scheduler.TickIntervalMs <= 0 {
		return errors.New("scheduler.tick_interval_ms must be > 0")
	}
	if !isValidLogLevel(c.Logging.Level) {
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got: %s)", c.Logging.Level)
	}
	return nil
}

func isValidLogLevel(level string) bool {
	switch level {
	case "debug", "info", "warn", "error":
		return true
	default:
		return false
	}
}

// ApplyEnvOverrides applies environment variable overrides to the
// config, taking effect after file load and before Validate.
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("FALL_LOG_LEVEL"); v != "" && isValidLogLevel(v) {
		c.Logging.Level = v
	}
	if v := os.Getenv("FALL_DEBUG"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil && b {
			c.Logging.Level = "debug"
		}
	}
	if v := os.Getenv("FALL_LOG_FILE"); v != "" {
		c.Logging.File = v
	}
	if v := os.Getenv("FALL_SESSION_CAPACITY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Session.Capacity = n
		}
	}
}

// ListKeys returns user-facing configuration keys.
func ListKeys() []string {
	return []string{
		"collect.threshold",
		"collect.chunk_size",
		"collect.chunk_interval_ms",
		"match.interval_ms",
		"match.threshold",
		"match.chunk_size",
		"render.height",
		"render.scroll_offset",
		"preview.debounce_ms",
		"session.capacity",
		"scheduler.tick_interval_ms",
		"logging.level",
		"logging.file",
	}
}
