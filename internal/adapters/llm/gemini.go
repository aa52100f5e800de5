package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"github.com/diligent-ai/diligent/internal/core"
	"github.com/diligent-ai/diligent/internal/logging"
)

const defaultGeminiModel = "gemini-1.5-pro"

// GeminiAdapter implements core.Backend over the Gemini API. Unlike the
// CLI adapters it holds a long-lived client; Close releases it.
type GeminiAdapter struct {
	config AdapterConfig
	client *genai.Client
	logger *logging.Logger
}

// NewGeminiAdapter creates a Gemini adapter. The API key comes from
// config or the GEMINI_API_KEY environment variable resolved upstream.
func NewGeminiAdapter(ctx context.Context, cfg AdapterConfig, logger *logging.Logger) (*GeminiAdapter, error) {
	if cfg.APIKey == "" {
		return nil, core.ErrAuth("gemini api key not configured")
	}
	if cfg.Model == "" {
		cfg.Model = defaultGeminiModel
	}
	cfg.Name = "gemini"

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiAdapter{
		config: cfg,
		client: client,
		logger: logger.WithBackend("gemini"),
	}, nil
}

// Name returns the backend identifier.
func (g *GeminiAdapter) Name() string { return "gemini" }

// Ping verifies the API key by listing a single model page.
func (g *GeminiAdapter) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()

	it := g.client.ListModels(ctx)
	if _, err := it.Next(); err != nil {
		return g.classifyAPIError(err)
	}
	return nil
}

// Generate runs a prompt through the Gemini API.
func (g *GeminiAdapter) Generate(ctx context.Context, opts core.GenerateOptions) (*core.GenerateResult, error) {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	modelName := opts.Model
	if modelName == "" {
		modelName = g.config.Model
	}

	model := g.client.GenerativeModel(modelName)
	if opts.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(opts.MaxTokens))
	}
	model.SetTemperature(float32(opts.Temperature))
	if opts.SystemPrompt != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(opts.SystemPrompt)},
		}
	}

	start := time.Now()
	resp, err := model.GenerateContent(ctx, genai.Text(opts.Prompt))
	duration := time.Since(start)

	if err != nil {
		if ctx.Err() == context.DeadlineExceeded {
			return nil, core.ErrTimeout(fmt.Sprintf("gemini request timed out after %v", opts.Timeout))
		}
		g.logger.Error("gemini request failed", "model", modelName, "duration", duration, "error", err)
		return nil, g.classifyAPIError(err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, core.ErrBackend("gemini", "empty response from model")
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	result := &core.GenerateResult{
		Output:   sb.String(),
		Model:    modelName,
		Duration: duration,
	}
	if resp.UsageMetadata != nil {
		result.TokensIn = int(resp.UsageMetadata.PromptTokenCount)
		result.TokensOut = int(resp.UsageMetadata.CandidatesTokenCount)
	}

	g.logger.Debug("gemini request completed",
		"model", modelName,
		"duration", duration,
		"tokens_out", result.TokensOut)
	return result, nil
}

// Close releases the underlying API client.
func (g *GeminiAdapter) Close() error {
	return g.client.Close()
}

func (g *GeminiAdapter) classifyAPIError(err error) error {
	msg := strings.ToLower(err.Error())
	switch {
	case containsAny(msg, []string{"rate limit", "429", "quota", "resource exhausted"}):
		return core.ErrRateLimit(err.Error())
	case containsAny(msg, []string{"api key", "unauthenticated", "permission denied", "401", "403"}):
		return core.ErrAuth(err.Error())
	default:
		return core.ErrBackend("gemini", err.Error())
	}
}
