package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// OllamaClient resolves prompts against a local Ollama instance.
type OllamaClient struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// NewOllamaClient creates a client for the given Ollama base URL and model.
// Empty arguments fall back to the local default instance and llama3.2.
func NewOllamaClient(baseURL, model string) *OllamaClient {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	if model == "" {
		model = "llama3.2"
	}

	return &OllamaClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
	}
}

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaChatResponse struct {
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
}

// Chat sends one prompt pair to /api/chat and returns the completion text
// with markdown fences stripped. Format is pinned to JSON because every
// gateway prompt expects a JSON reply.
func (o *OllamaClient) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	reqBody := ollamaChatRequest{
		Model:  o.model,
		Stream: false,
		Format: "json",
		Messages: []ollamaMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	url := fmt.Sprintf("%s/api/chat", o.baseURL)
	req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := o.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling ollama API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(body))
	}

	var chatResp ollamaChatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chatResp); err != nil {
		return "", fmt.Errorf("decoding response: %w", err)
	}

	return stripCodeFences(chatResp.Message.Content), nil
}

// ChatBatch resolves the prompts one by one; Ollama has no batch endpoint.
func (o *OllamaClient) ChatBatch(ctx context.Context, systemPrompt string, userPrompts []string) ([]string, error) {
	return chatSequential(ctx, o, systemPrompt, userPrompts)
}

// ProviderName returns the provider identifier.
func (o *OllamaClient) ProviderName() string {
	return "Ollama"
}

// IsEnabled reports whether the client is configured.
func (o *OllamaClient) IsEnabled() bool {
	return o != nil && o.baseURL != ""
}

// Close is a no-op for the HTTP client.
func (o *OllamaClient) Close() error {
	return nil
}
