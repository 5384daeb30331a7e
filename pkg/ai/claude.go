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

const anthropicVersion = "2023-06-01"

// ClaudeClient talks to the Anthropic Messages REST API. Images travel as
// typed base64 source blocks inside the user message content.
type ClaudeClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewClaudeClient creates a client for the Anthropic API
func NewClaudeClient(baseURL, apiKey string, timeout time.Duration) *ClaudeClient {
	return &ClaudeClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type claudeContentBlock struct {
	Type   string        `json:"type"`
	Text   string        `json:"text,omitempty"`
	Source *claudeSource `json:"source,omitempty"`
}

type claudeSource struct {
	Type      string `json:"type"`
	MediaType string `json:"media_type"`
	Data      string `json:"data"`
}

type claudeMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type claudeRequest struct {
	Model       string          `json:"model"`
	MaxTokens   int             `json:"max_tokens"`
	System      string          `json:"system,omitempty"`
	Temperature float32         `json:"temperature"`
	Messages    []claudeMessage `json:"messages"`
}

type claudeResponse struct {
	Content []claudeContentBlock `json:"content"`
}

// HealthCheck reports whether the models endpoint answers with the given key
func (c *ClaudeClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return false
	}
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListModels returns available model names, empty on any error
func (c *ClaudeClient) ListModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1/models", http.NoBody)
	if err != nil {
		return nil
	}
	c.setHeaders(req)
	resp, err := c.client.Do(req)
	if err != nil {
		lgr.Printf("[DEBUG] claude list models failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var list struct {
		Data []struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil
	}

	models := make([]string, 0, len(list.Data))
	for _, m := range list.Data {
		models = append(models, m.ID)
	}
	return models
}

// Generate runs a single-turn completion via /v1/messages
func (c *ClaudeClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var content any = req.Prompt
	if len(req.Images) > 0 {
		blocks := make([]claudeContentBlock, 0, len(req.Images)+1)
		for _, img := range req.Images {
			blocks = append(blocks, claudeContentBlock{
				Type:   "image",
				Source: &claudeSource{Type: "base64", MediaType: "image/jpeg", Data: img},
			})
		}
		blocks = append(blocks, claudeContentBlock{Type: "text", Text: req.Prompt})
		content = blocks
	}

	body := claudeRequest{
		Model:       req.Model,
		MaxTokens:   1024,
		System:      req.System,
		Temperature: req.Temperature,
		Messages:    []claudeMessage{{Role: "user", Content: content}},
	}
	return c.createMessage(ctx, body)
}

// Chat runs a multi-message conversation. Anthropic carries the system
// prompt as a top-level field, not a message role.
func (c *ClaudeClient) Chat(ctx context.Context, model string, messages []Message, temperature float32) (string, error) {
	body := claudeRequest{
		Model:       model,
		MaxTokens:   1024,
		Temperature: temperature,
	}
	for _, m := range messages {
		if m.Role == "system" {
			body.System = m.Content
			continue
		}
		body.Messages = append(body.Messages, claudeMessage{Role: m.Role, Content: m.Content})
	}
	return c.createMessage(ctx, body)
}

func (c *ClaudeClient) createMessage(ctx context.Context, body claudeRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("claude marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("claude create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("claude request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("claude unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result claudeResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("claude decode response: %w", err)
	}

	var sb strings.Builder
	for _, block := range result.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("claude: empty completion")
	}
	return sb.String(), nil
}

func (c *ClaudeClient) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.apiKey)
	req.Header.Set("anthropic-version", anthropicVersion)
}
