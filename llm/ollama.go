package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/lexcodex/reagent/framework"
)

// OllamaClient implements framework.LanguageModel for a local Ollama server,
// so the agent runs without any hosted credentials.
type OllamaClient struct {
	Endpoint string
	Model    string
	client   *http.Client
	Debug    bool
}

type ollamaResponse struct {
	Text       string `json:"text"`
	Response   string `json:"response"`
	DoneReason string `json:"done_reason"`
}

// NewOllamaClient builds a client against the given endpoint (default
// http://localhost:11434).
func NewOllamaClient(endpoint, model string) *OllamaClient {
	if endpoint == "" {
		endpoint = "http://localhost:11434"
	}
	return &OllamaClient{
		Endpoint: endpoint,
		Model:    model,
		client: &http.Client{
			Timeout: 3 * time.Minute,
		},
	}
}

// Complete implements single prompt completion via /api/generate.
func (c *OllamaClient) Complete(ctx context.Context, prompt string, options *framework.CompletionOptions) (string, error) {
	payload := map[string]interface{}{
		"model":  c.model(options),
		"prompt": prompt,
		"stream": false,
	}
	c.applyOptions(payload, options)
	return c.doRequest(ctx, "/api/generate", payload)
}

// SetDebugLogging enables or disables verbose logging for requests/responses.
func (c *OllamaClient) SetDebugLogging(enabled bool) {
	c.Debug = enabled
}

func (c *OllamaClient) getHTTPClient() *http.Client {
	if c.client != nil {
		return c.client
	}
	c.client = &http.Client{Timeout: 60 * time.Second}
	return c.client
}

func (c *OllamaClient) model(options *framework.CompletionOptions) string {
	if options != nil && options.Model != "" {
		return options.Model
	}
	if c.Model != "" {
		return c.Model
	}
	return "llama3"
}

func (c *OllamaClient) applyOptions(payload map[string]interface{}, options *framework.CompletionOptions) {
	if options == nil {
		return
	}
	if options.Temperature != 0 {
		payload["temperature"] = options.Temperature
	}
	if options.MaxTokens != 0 {
		payload["max_tokens"] = options.MaxTokens
	}
	if options.Stop != nil {
		payload["stop"] = options.Stop
	}
}

func (c *OllamaClient) doRequest(ctx context.Context, path string, payload interface{}) (string, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return "", err
	}
	c.logf("request %s payload: %s", path, truncate(string(body), 2048))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.Endpoint+path, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := c.getHTTPClient().Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", framework.ErrModelUnavailable, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		detail := strings.TrimSpace(string(msg))
		if detail != "" {
			return "", fmt.Errorf("%w: ollama: %s: %s", framework.ErrModelUnavailable, resp.Status, detail)
		}
		return "", fmt.Errorf("%w: ollama: %s", framework.ErrModelUnavailable, resp.Status)
	}
	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("%w: %v", framework.ErrModelUnavailable, err)
	}
	c.logf("response %s payload: %s", path, truncate(string(responseBody), 2048))
	var raw ollamaResponse
	if err := json.Unmarshal(responseBody, &raw); err != nil {
		return "", err
	}
	if raw.Text != "" {
		return raw.Text, nil
	}
	return raw.Response, nil
}

func (c *OllamaClient) logf(format string, args ...interface{}) {
	if !c.Debug {
		return
	}
	log.Printf("[ollama] "+format, args...)
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "...(truncated)"
}
