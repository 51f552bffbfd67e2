package ai

import (
	"context"
	"fmt"
	"log"

	"receiptserver/internal/config"
)

// NewClientFromConfig builds the model backend selected by the gateway
// configuration. Provider "disabled" returns nil, which the gateway treats
// as a permanently unavailable backend.
func NewClientFromConfig(ctx context.Context, cfg *config.GatewayConfig) (Client, error) {
	if cfg == nil {
		return nil, nil
	}

	retryConfig := RetryConfig{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: cfg.RetryInitialDelay,
		MaxDelay:     cfg.RetryMaxDelay,
	}

	switch cfg.Provider {
	case "ollama":
		client := NewOllamaClient(cfg.OllamaURL, cfg.OllamaModel)
		log.Printf("[AI] Using Ollama backend at %s (model: %s)", cfg.OllamaURL, cfg.OllamaModel)
		return client, nil
	case "openrouter":
		client := NewOpenRouterClient(cfg.OpenRouterAPIKey, cfg.OpenRouterModel, retryConfig)
		if !client.IsEnabled() {
			log.Printf("[AI] OpenRouter selected but OPENROUTER_API_KEY is empty, model stage disabled")
			return nil, nil
		}
		log.Printf("[AI] Using OpenRouter backend (model: %s)", cfg.OpenRouterModel)
		return client, nil
	case "gemini":
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			return nil, fmt.Errorf("gemini backend: %w", err)
		}
		log.Printf("[AI] Using Gemini backend (model: %s)", cfg.GeminiModel)
		return client, nil
	case "", "disabled", "none":
		log.Printf("[AI] Model backend disabled, unresolved names go straight to confirmation")
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown model provider %q", cfg.Provider)
	}
}
