package config

// setDefaults configures default values.
func (l *Loader) setDefaults() {
	// Log defaults
	l.v.SetDefault("log.level", "info")
	l.v.SetDefault("log.format", "auto")

	// Backend defaults: CLI adapters are on when their binary exists,
	// so enabled-by-default is the useful default for claude and codex.
	l.v.SetDefault("backends.default", []string{"claude", "gemini", "codex"})

	l.v.SetDefault("backends.claude.enabled", true)
	l.v.SetDefault("backends.claude.path", "claude")
	l.v.SetDefault("backends.claude.max_tokens", 4096)
	l.v.SetDefault("backends.claude.temperature", 0.3)
	l.v.SetDefault("backends.claude.role", "legal")

	l.v.SetDefault("backends.gemini.enabled", true)
	l.v.SetDefault("backends.gemini.model", "gemini-1.5-pro")
	l.v.SetDefault("backends.gemini.max_tokens", 4096)
	l.v.SetDefault("backends.gemini.temperature", 0.3)
	l.v.SetDefault("backends.gemini.role", "financial")

	l.v.SetDefault("backends.codex.enabled", true)
	l.v.SetDefault("backends.codex.path", "codex")
	l.v.SetDefault("backends.codex.max_tokens", 4096)
	l.v.SetDefault("backends.codex.temperature", 0.3)
	l.v.SetDefault("backends.codex.role", "research")

	// Analysis defaults
	l.v.SetDefault("analysis.timeout", "2m")
	l.v.SetDefault("analysis.max_retries", 0)

	// Debate defaults
	l.v.SetDefault("debate.rounds", 2)
	l.v.SetDefault("debate.for", "claude")
	l.v.SetDefault("debate.against", "gemini")
	l.v.SetDefault("debate.judge", "codex")
	l.v.SetDefault("debate.timeout", "3m")

	// Server defaults
	l.v.SetDefault("server.host", "127.0.0.1")
	l.v.SetDefault("server.port", 8378)
	l.v.SetDefault("server.request_timeout", "10m")
	l.v.SetDefault("server.cors_origins", []string{"http://localhost:3000"})

	// Store defaults
	l.v.SetDefault("store.enabled", false)
	l.v.SetDefault("store.path", ".diligent/results.db")
}
