package llm

import (
	"os"
	"time"

	"github.com/diligent-ai/diligent/internal/config"
)

// ConfigureFromConfig applies application configuration to the
// registry, one Configure per enabled backend. The Gemini API key falls
// back to GEMINI_API_KEY when the config leaves it empty, so keys stay
// out of config files.
func ConfigureFromConfig(r *Registry, cfg *config.Config) {
	for name, bc := range cfg.Backends.EnabledBackends() {
		ac := AdapterConfig{
			Name:        name,
			Path:        bc.Path,
			Model:       bc.Model,
			APIKey:      bc.APIKey,
			MaxTokens:   bc.MaxTokens,
			Temperature: bc.Temperature,
			Timeout:     parseTimeout(bc.Timeout),
		}
		if name == "gemini" && ac.APIKey == "" {
			ac.APIKey = os.Getenv("GEMINI_API_KEY")
		}
		r.Configure(name, ac)
	}
}

func parseTimeout(s string) time.Duration {
	if s == "" {
		return 0
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0
	}
	return d
}
