package llm

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

const (
	DefaultOllamaURL   = "http://localhost:11434"
	DefaultOllamaModel = "deepseek-r1:8b"
	DefaultKeepAlive   = "1s"
)

// OllamaConfig holds settings for a locally hosted Ollama service.
type OllamaConfig struct {
	BaseURL   string
	Model     string
	KeepAlive string
	// Timeout of zero leaves the transport default in place.
	Timeout time.Duration
}

// OllamaClient implements Gateway against the Ollama generate endpoint.
type OllamaClient struct {
	httpClient *http.Client
	baseURL    string
	model      string
	keepAlive  string
}

// NewOllamaClient applies defaults to cfg and returns a ready client.
func NewOllamaClient(cfg OllamaConfig) *OllamaClient {
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultOllamaURL
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = DefaultOllamaModel
	}
	keepAlive := strings.TrimSpace(cfg.KeepAlive)
	if keepAlive == "" {
		keepAlive = DefaultKeepAlive
	}
	return &OllamaClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    baseURL,
		model:      model,
		keepAlive:  keepAlive,
	}
}

// Enabled reports whether the client can make outbound calls.
func (c *OllamaClient) Enabled() bool {
	return c != nil && c.baseURL != "" && c.model != ""
}

// Model returns the model identifier sent with every request.
func (c *OllamaClient) Model() string {
	if c == nil {
		return ""
	}
	return c.model
}

type generateRequest struct {
	Model     string `json:"model"`
	Prompt    string `json:"prompt"`
	Stream    bool   `json:"stream"`
	KeepAlive string `json:"keep_alive,omitempty"`
}

type generateResponse struct {
	Model    string `json:"model"`
	Response string `json:"response"`
	Done     bool   `json:"done"`
}

type serviceError struct {
	Error string `json:"error"`
}

// Generate issues one non-streaming generate request and returns the trimmed completion.
func (c *OllamaClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c == nil || !c.Enabled() {
		return "", ErrDisabled
	}

	body, err := json.Marshal(generateRequest{
		Model:     c.model,
		Prompt:    prompt,
		Stream:    false,
		KeepAlive: c.keepAlive,
	})
	if err != nil {
		return "", fmt.Errorf("%w: marshal request: %v", ErrTransport, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("%w: create request: %v", ErrTransport, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: ollama request: %v", ErrTransport, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: ollama status %d: %s", ErrService, resp.StatusCode, readServiceError(resp.Body))
	}

	var decoded generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", ErrTransport, err)
	}
	return strings.TrimSpace(decoded.Response), nil
}

func readServiceError(r io.Reader) string {
	raw, err := io.ReadAll(io.LimitReader(r, 4096))
	if err != nil {
		return "unreadable error body"
	}
	var payload serviceError
	if err := json.Unmarshal(raw, &payload); err == nil && strings.TrimSpace(payload.Error) != "" {
		return strings.TrimSpace(payload.Error)
	}
	return strings.TrimSpace(string(raw))
}
