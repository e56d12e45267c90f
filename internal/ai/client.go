package ai

import (
	"context"
	"fmt"
	"time"

	"github.com/aigcpilot/harvester/internal/config"
)

// Generator sends one prompt to a text-generation service and returns the raw reply,
// which is expected to be a JSON object, possibly inside a markdown fence.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// NewGenerator builds the generator selected by AI_PROVIDER.
func NewGenerator(cfg *config.Config) (Generator, error) {
	timeout := cfg.AITimeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	switch cfg.AIProvider {
	case config.ProviderDeepSeek, "":
		return NewDeepSeekClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, timeout), nil
	case config.ProviderGemini:
		return NewGeminiClient(cfg.AIApiKey, cfg.AIModel, cfg.AIBaseURL, timeout), nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.AIProvider)
	}
}
