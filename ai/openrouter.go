package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"
	"time"
)

// OpenRouterClient resolves prompts through the OpenRouter chat completions
// API with retry on transient failures.
type OpenRouterClient struct {
	baseURL     string
	apiKey      string
	model       string
	httpClient  *http.Client
	retryConfig RetryConfig
}

// NewOpenRouterClient creates an OpenRouter client. The model falls back to
// a small instruct model when unset.
func NewOpenRouterClient(apiKey, model string, retryConfig RetryConfig) *OpenRouterClient {
	if model == "" {
		model = "meta-llama/llama-3.1-8b-instruct"
	}

	transport := &http.Transport{
		MaxIdleConns:        10,
		MaxConnsPerHost:     5,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	}

	return &OpenRouterClient{
		baseURL: "https://openrouter.ai/api/v1",
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout:   30 * time.Second,
			Transport: transport,
		},
		retryConfig: retryConfig.withDefaults(),
	}
}

type openRouterRequest struct {
	Model    string              `json:"model"`
	Messages []openRouterMessage `json:"messages"`
}

type openRouterMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Chat sends one prompt pair with retry. 429 responses honor Retry-After,
// 5xx responses retry with backoff, quota errors and other client errors
// abort immediately.
func (c *OpenRouterClient) Chat(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	requestBody := openRouterRequest{
		Model: c.model,
		Messages: []openRouterMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt},
		},
	}

	jsonData, err := json.Marshal(requestBody)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/chat/completions", c.baseURL)

	var lastErr error
	delay := c.retryConfig.InitialDelay

	for attempt := 0; attempt <= c.retryConfig.MaxRetries; attempt++ {
		if attempt > 0 {
			log.Printf("[OpenRouter] Retry attempt %d/%d after %v", attempt, c.retryConfig.MaxRetries, delay)
			select {
			case <-ctx.Done():
				return "", fmt.Errorf("context cancelled: %w", ctx.Err())
			case <-time.After(delay):
			}
			delay = c.retryConfig.nextDelay(delay)
		}

		req, err := http.NewRequestWithContext(ctx, "POST", url, bytes.NewBuffer(jsonData))
		if err != nil {
			return "", fmt.Errorf("failed to create request: %w", err)
		}
		if c.apiKey != "" {
			req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.apiKey))
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			lastErr = fmt.Errorf("request failed: %w", err)
			log.Printf("[OpenRouter] Request failed (attempt %d/%d): %v", attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}

		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests {
			if retryAfter := parseRetryAfter(resp); retryAfter > 0 {
				delay = retryAfter
			}
			lastErr = fmt.Errorf("rate limit exceeded (429): %s", string(body))
			log.Printf("[OpenRouter] Rate limit exceeded (attempt %d/%d), retry after %v", attempt+1, c.retryConfig.MaxRetries+1, delay)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			var errorResp struct {
				Error *struct {
					Message string `json:"message"`
					Type    string `json:"type"`
				} `json:"error,omitempty"`
			}
			json.Unmarshal(body, &errorResp)

			errorMsg := string(body)
			if errorResp.Error != nil {
				errorMsg = errorResp.Error.Message
				if isQuotaError(errorMsg) || isQuotaError(errorResp.Error.Type) {
					return "", fmt.Errorf("quota exceeded: %s", errorMsg)
				}
			}

			lastErr = fmt.Errorf("API returned status %d: %s", resp.StatusCode, errorMsg)
			if resp.StatusCode >= 500 {
				log.Printf("[OpenRouter] Server error %d (attempt %d/%d), will retry", resp.StatusCode, attempt+1, c.retryConfig.MaxRetries+1)
				continue
			}
			return "", lastErr
		}

		var response struct {
			Choices []struct {
				Message struct {
					Content string `json:"content"`
				} `json:"message"`
			} `json:"choices"`
			Error *struct {
				Message string `json:"message"`
				Type    string `json:"type"`
			} `json:"error,omitempty"`
		}
		if err := json.Unmarshal(body, &response); err != nil {
			lastErr = fmt.Errorf("failed to decode response: %w", err)
			log.Printf("[OpenRouter] Failed to decode response (attempt %d/%d): %v", attempt+1, c.retryConfig.MaxRetries+1, lastErr)
			continue
		}

		if response.Error != nil {
			return "", fmt.Errorf("API error: %s (type: %s)", response.Error.Message, response.Error.Type)
		}
		if len(response.Choices) == 0 {
			return "", fmt.Errorf("no choices in response")
		}

		return stripCodeFences(response.Choices[0].Message.Content), nil
	}

	return "", fmt.Errorf("all retry attempts failed: %w", lastErr)
}

// ChatBatch resolves the prompts one by one over the pooled transport.
func (c *OpenRouterClient) ChatBatch(ctx context.Context, systemPrompt string, userPrompts []string) ([]string, error) {
	return chatSequential(ctx, c, systemPrompt, userPrompts)
}

// ProviderName returns the provider identifier.
func (c *OpenRouterClient) ProviderName() string {
	return "OpenRouter"
}

// IsEnabled reports whether an API key is configured.
func (c *OpenRouterClient) IsEnabled() bool {
	return c != nil && c.apiKey != ""
}

// Close is a no-op for the HTTP client.
func (c *OpenRouterClient) Close() error {
	return nil
}

// parseRetryAfter reads the Retry-After header as a number of seconds.
func parseRetryAfter(resp *http.Response) time.Duration {
	retryAfter := resp.Header.Get("Retry-After")
	if retryAfter == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(retryAfter); err == nil && seconds > 0 {
		return time.Duration(seconds) * time.Second
	}
	return 0
}
