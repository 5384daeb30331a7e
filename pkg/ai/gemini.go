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

// GeminiClient talks to the Google Generative Language REST API.
// Images travel as inline_data parts next to the text part.
type GeminiClient struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewGeminiClient creates a client for the Gemini API
func NewGeminiClient(baseURL, apiKey string, timeout time.Duration) *GeminiClient {
	return &GeminiClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type geminiPart struct {
	Text       string            `json:"text,omitempty"`
	InlineData *geminiInlineData `json:"inline_data,omitempty"`
}

type geminiInlineData struct {
	MimeType string `json:"mime_type"`
	Data     string `json:"data"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiRequest struct {
	Contents          []geminiContent `json:"contents"`
	SystemInstruction *geminiContent  `json:"systemInstruction,omitempty"`
	GenerationConfig  struct {
		Temperature float32 `json:"temperature"`
	} `json:"generationConfig"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

// HealthCheck reports whether the models endpoint answers with the given key
func (c *GeminiClient) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/models?key="+c.apiKey, http.NoBody)
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

// ListModels returns available model names, empty on any error
func (c *GeminiClient) ListModels(ctx context.Context) []string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/v1beta/models?key="+c.apiKey, http.NoBody)
	if err != nil {
		return nil
	}
	resp, err := c.client.Do(req)
	if err != nil {
		lgr.Printf("[DEBUG] gemini list models failed: %v", err)
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil
	}

	var list struct {
		Models []struct {
			Name string `json:"name"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil
	}

	models := make([]string, 0, len(list.Models))
	for _, m := range list.Models {
		models = append(models, strings.TrimPrefix(m.Name, "models/"))
	}
	return models
}

// Generate runs a single-turn completion via generateContent
func (c *GeminiClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	parts := []geminiPart{{Text: req.Prompt}}
	for _, img := range req.Images {
		parts = append(parts, geminiPart{InlineData: &geminiInlineData{MimeType: "image/jpeg", Data: img}})
	}

	body := geminiRequest{Contents: []geminiContent{{Role: "user", Parts: parts}}}
	if req.System != "" {
		body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: req.System}}}
	}
	body.GenerationConfig.Temperature = req.Temperature

	return c.generateContent(ctx, req.Model, body)
}

// Chat runs a multi-message conversation. Gemini uses "model" for the
// assistant role and has no system role inside contents.
func (c *GeminiClient) Chat(ctx context.Context, model string, messages []Message, temperature float32) (string, error) {
	body := geminiRequest{}
	for _, m := range messages {
		switch m.Role {
		case "system":
			body.SystemInstruction = &geminiContent{Parts: []geminiPart{{Text: m.Content}}}
		case "assistant":
			body.Contents = append(body.Contents, geminiContent{Role: "model", Parts: []geminiPart{{Text: m.Content}}})
		default:
			body.Contents = append(body.Contents, geminiContent{Role: "user", Parts: []geminiPart{{Text: m.Content}}})
		}
	}
	body.GenerationConfig.Temperature = temperature

	return c.generateContent(ctx, model, body)
}

func (c *GeminiClient) generateContent(ctx context.Context, model string, body geminiRequest) (string, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return "", fmt.Errorf("gemini marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent?key=%s", c.baseURL, model, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("gemini create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("gemini unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	var result geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return "", fmt.Errorf("gemini decode response: %w", err)
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("gemini: no candidates in response")
	}

	var sb strings.Builder
	for _, p := range result.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	if strings.TrimSpace(sb.String()) == "" {
		return "", fmt.Errorf("gemini: empty completion")
	}
	return sb.String(), nil
}
