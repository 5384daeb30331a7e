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

	"github.com/go-pkgz/lgr"
)

// OllamaClient talks to a local Ollama server over its native HTTP API.
// Unlike the cloud providers it has no auth and accepts base64 images in a
// dedicated request field.
type OllamaClient struct {
	baseURL string
	client  *http.Client
}

// NewOllamaClient creates a client for the given Ollama base URL
func NewOllamaClient(baseURL string, timeout time.Duration) *OllamaClient {
	return &OllamaClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// HealthCheck reports whether the server answers the tags endpoint
func (c *OllamaClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return false
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the names of locally available models, empty on any error
func (c *OllamaClient) ListModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/tags", http.NoBody)
	if err != nil {
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		lgr.Printf("[DEBUG] ollama list models failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var tags struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		lgr.Printf("[DEBUG] ollama tags decode failed: %v", err)
		return nil
	}

	models := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		models = append(models, m.Name)
	}
	return models
}

// Generate runs a single-turn completion via /api/generate
func (c *OllamaClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	body := map[string]any{
		"model":   req.Model,
		"prompt":  req.Prompt,
		"stream":  false,
		"options": map[string]any{"temperature": req.Temperature},
	}
	if req.System != "" {
		body["system"] = req.System
	}
	if len(req.Images) > 0 {
		body["images"] = req.Images
	}

	var result struct {
		Response string `json:"response"`
	}
	if err := c.post(ctx, "/api/generate", body, &result); err != nil {
		return "", fmt.Errorf("ollama generate: %w", err)
	}
	if strings.TrimSpace(result.Response) == "" {
		return "", fmt.Errorf("ollama generate: empty completion")
	}
	return result.Response, nil
}

// Chat runs a multi-message conversation via /api/chat
func (c *OllamaClient) Chat(ctx context.Context, model string, messages []Message, temperature float32) (string, error) {
	body := map[string]any{
		"model":    model,
		"messages": messages,
		"stream":   false,
		"options":  map[string]any{"temperature": temperature},
	}

	var result struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	}
	if err := c.post(ctx, "/api/chat", body, &result); err != nil {
		return "", fmt.Errorf("ollama chat: %w", err)
	}
	if strings.TrimSpace(result.Message.Content) == "" {
		return "", fmt.Errorf("ollama chat: empty completion")
	}
	return result.Message.Content, nil
}

func (c *OllamaClient) post(ctx context.Context, path string, body, result any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
