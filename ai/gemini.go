package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient resolves prompts through the Google Gemini API.
type GeminiClient struct {
	client *genai.Client
	model  *genai.GenerativeModel
}

// NewGeminiClient creates a Gemini client. An API key is required; the
// model falls back to gemini-2.0-flash when unset.
func NewGeminiClient(ctx context.Context, apiKey, modelName string) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if modelName == "" {
		modelName = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}

	return &GeminiClient{
		client: client,
		model:  client.GenerativeModel(modelName),
	}, nil
}

// Chat sends one prompt pair and returns the concatenated text parts of the
// first candidate. The system prompt travels as a leading text part because
// the generation request carries no separate role field.
func (g *GeminiClient) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	parts := []genai.Part{
		genai.Text(systemPrompt + "\n\n" + userPrompt),
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("generating content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("no response from gemini")
	}

	var responseText strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			responseText.WriteString(string(text))
		}
	}

	return stripCodeFences(responseText.String()), nil
}

// ChatBatch resolves the prompts one by one.
func (g *GeminiClient) ChatBatch(ctx context.Context, systemPrompt string, userPrompts []string) ([]string, error) {
	return chatSequential(ctx, g, systemPrompt, userPrompts)
}

// ProviderName returns the provider identifier.
func (g *GeminiClient) ProviderName() string {
	return "Gemini"
}

// IsEnabled reports whether the underlying client was created.
func (g *GeminiClient) IsEnabled() bool {
	return g != nil && g.client != nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}
