package config

import (
	"time"

	"github.com/diligent-ai/diligent/internal/core"
)

// Config is the complete application configuration.
type Config struct {
	Log      LogConfig      `mapstructure:"log" yaml:"log"`
	Backends BackendsConfig `mapstructure:"backends" yaml:"backends"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Debate   DebateConfig   `mapstructure:"debate" yaml:"debate"`
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
}

// LogConfig configures logging behavior.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
	File   string `mapstructure:"file" yaml:"file"`
}

// BackendsConfig configures the available reasoning backends.
type BackendsConfig struct {
	// Default names the backends used when the caller selects none.
	Default []string      `mapstructure:"default" yaml:"default"`
	Claude  BackendConfig `mapstructure:"claude" yaml:"claude"`
	Gemini  BackendConfig `mapstructure:"gemini" yaml:"gemini"`
	Codex   BackendConfig `mapstructure:"codex" yaml:"codex"`
}

// BackendConfig configures a single backend.
type BackendConfig struct {
	Enabled     bool    `mapstructure:"enabled" yaml:"enabled"`
	Path        string  `mapstructure:"path" yaml:"path"`
	Model       string  `mapstructure:"model" yaml:"model"`
	APIKey      string  `mapstructure:"api_key" yaml:"api_key"`
	MaxTokens   int     `mapstructure:"max_tokens" yaml:"max_tokens"`
	Temperature float64 `mapstructure:"temperature" yaml:"temperature"`
	Timeout     string  `mapstructure:"timeout" yaml:"timeout"`
	// Role is the analyst specialization this backend plays in
	// analysis mode (e.g. legal, financial, research).
	Role string `mapstructure:"role" yaml:"role"`
}

// AnalysisConfig configures analysis mode.
type AnalysisConfig struct {
	Timeout    string `mapstructure:"timeout" yaml:"timeout"`
	MaxRetries int    `mapstructure:"max_retries" yaml:"max_retries"`
}

// DebateConfig configures debate mode role assignments.
type DebateConfig struct {
	Rounds  int    `mapstructure:"rounds" yaml:"rounds"`
	For     string `mapstructure:"for" yaml:"for"`
	Against string `mapstructure:"against" yaml:"against"`
	Judge   string `mapstructure:"judge" yaml:"judge"`
	Timeout string `mapstructure:"timeout" yaml:"timeout"`
}

// ServerConfig configures serve mode.
type ServerConfig struct {
	Host           string   `mapstructure:"host" yaml:"host"`
	Port           int      `mapstructure:"port" yaml:"port"`
	RequestTimeout string   `mapstructure:"request_timeout" yaml:"request_timeout"`
	CORSOrigins    []string `mapstructure:"cors_origins" yaml:"cors_origins"`
}

// StoreConfig configures result persistence.
type StoreConfig struct {
	Enabled bool   `mapstructure:"enabled" yaml:"enabled"`
	Path    string `mapstructure:"path" yaml:"path"`
}

// EnabledBackends returns name/config pairs for every enabled backend,
// in stable order.
func (c *BackendsConfig) EnabledBackends() map[string]BackendConfig {
	out := make(map[string]BackendConfig)
	if c.Claude.Enabled {
		out["claude"] = c.Claude
	}
	if c.Gemini.Enabled {
		out["gemini"] = c.Gemini
	}
	if c.Codex.Enabled {
		out["codex"] = c.Codex
	}
	return out
}

// Backend looks up one backend's configuration by name.
func (c *BackendsConfig) Backend(name string) (BackendConfig, bool) {
	switch name {
	case "claude":
		return c.Claude, c.Claude.Enabled
	case "gemini":
		return c.Gemini, c.Gemini.Enabled
	case "codex":
		return c.Codex, c.Codex.Enabled
	default:
		return BackendConfig{}, false
	}
}

// Descriptor builds the dispatch descriptor for a named backend. The
// analysis timeout applies when the backend has none of its own.
func (c *Config) Descriptor(name string) (core.BackendDescriptor, bool) {
	bc, ok := c.Backends.Backend(name)
	if !ok {
		return core.BackendDescriptor{}, false
	}

	timeout := parseDurationOr(bc.Timeout, 0)
	if timeout == 0 {
		timeout = parseDurationOr(c.Analysis.Timeout, 2*time.Minute)
	}

	return core.BackendDescriptor{
		Name:    name,
		Role:    bc.Role,
		Model:   bc.Model,
		Timeout: timeout,
	}, true
}

// DefaultDescriptors returns descriptors for the configured default
// backend set, skipping names that are unknown or disabled.
func (c *Config) DefaultDescriptors() []core.BackendDescriptor {
	var out []core.BackendDescriptor
	for _, name := range c.Backends.Default {
		if d, ok := c.Descriptor(name); ok {
			out = append(out, d)
		}
	}
	return out
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
