package config

import (
	"fmt"
	"strings"
	"time"
)

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Value   interface{}
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("config validation: %s: %s (got: %v)", e.Field, e.Message, e.Value)
}

// ValidationErrors collects multiple validation errors.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// HasErrors returns true if there are any validation errors.
func (e ValidationErrors) HasErrors() bool {
	return len(e) > 0
}

// Validator validates configuration.
type Validator struct {
	errors ValidationErrors
}

// NewValidator creates a new validator.
func NewValidator() *Validator {
	return &Validator{errors: make(ValidationErrors, 0)}
}

// Validate validates the entire configuration.
func (v *Validator) Validate(cfg *Config) error {
	v.validateLog(&cfg.Log)
	v.validateBackends(&cfg.Backends)
	v.validateAnalysis(&cfg.Analysis)
	v.validateDebate(cfg)
	v.validateServer(&cfg.Server)

	if len(v.errors) > 0 {
		return v.errors
	}
	return nil
}

func (v *Validator) addError(field string, value interface{}, msg string) {
	v.errors = append(v.errors, ValidationError{Field: field, Value: value, Message: msg})
}

func (v *Validator) validateLog(cfg *LogConfig) {
	switch cfg.Level {
	case "debug", "info", "warn", "error":
	default:
		v.addError("log.level", cfg.Level, "must be one of debug, info, warn, error")
	}
	switch cfg.Format {
	case "auto", "text", "json":
	default:
		v.addError("log.format", cfg.Format, "must be one of auto, text, json")
	}
}

func (v *Validator) validateBackends(cfg *BackendsConfig) {
	if len(cfg.EnabledBackends()) == 0 {
		v.addError("backends", nil, "at least one backend must be enabled")
	}
	for _, name := range cfg.Default {
		if _, ok := cfg.Backend(name); !ok {
			v.addError("backends.default", name, "references an unknown or disabled backend")
		}
	}
	v.validateBackend("backends.claude", &cfg.Claude)
	v.validateBackend("backends.gemini", &cfg.Gemini)
	v.validateBackend("backends.codex", &cfg.Codex)
}

func (v *Validator) validateBackend(field string, cfg *BackendConfig) {
	if !cfg.Enabled {
		return
	}
	if cfg.MaxTokens < 0 {
		v.addError(field+".max_tokens", cfg.MaxTokens, "must not be negative")
	}
	if cfg.Temperature < 0 || cfg.Temperature > 2 {
		v.addError(field+".temperature", cfg.Temperature, "must be in [0, 2]")
	}
	v.validateDuration(field+".timeout", cfg.Timeout, false)
}

func (v *Validator) validateAnalysis(cfg *AnalysisConfig) {
	v.validateDuration("analysis.timeout", cfg.Timeout, true)
	if cfg.MaxRetries < 0 {
		v.addError("analysis.max_retries", cfg.MaxRetries, "must not be negative")
	}
}

func (v *Validator) validateDebate(cfg *Config) {
	d := &cfg.Debate
	if d.Rounds < 1 {
		v.addError("debate.rounds", d.Rounds, "must be at least 1")
	}
	v.validateDuration("debate.timeout", d.Timeout, true)

	if d.Judge != "" && (d.Judge == d.For || d.Judge == d.Against) {
		v.addError("debate.judge", d.Judge, "must be distinct from both debaters")
	}
	for field, name := range map[string]string{"debate.for": d.For, "debate.against": d.Against, "debate.judge": d.Judge} {
		if name == "" {
			v.addError(field, name, "must name a backend")
			continue
		}
		if _, ok := cfg.Backends.Backend(name); !ok {
			v.addError(field, name, "references an unknown or disabled backend")
		}
	}
}

func (v *Validator) validateServer(cfg *ServerConfig) {
	if cfg.Port < 1 || cfg.Port > 65535 {
		v.addError("server.port", cfg.Port, "must be in [1, 65535]")
	}
	v.validateDuration("server.request_timeout", cfg.RequestTimeout, true)
}

func (v *Validator) validateDuration(field, value string, required bool) {
	if value == "" {
		if required {
			v.addError(field, value, "must be set")
		}
		return
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		v.addError(field, value, "must be a valid duration (e.g. 90s, 2m)")
		return
	}
	if d <= 0 {
		v.addError(field, value, "must be positive")
	}
}
