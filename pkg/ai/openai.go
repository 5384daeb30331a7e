package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"
	"github.com/sashabaranov/go-openai"
)

// OpenAIClient implements Client over any OpenAI-compatible chat API.
// It backs both the OpenAI cloud provider and a local LM Studio server,
// which exposes the same wire format on a local port.
type OpenAIClient struct {
	client *openai.Client
}

// NewOpenAIClient creates a client for the OpenAI cloud API
func NewOpenAIClient(apiKey string) *OpenAIClient {
	return &OpenAIClient{client: openai.NewClient(apiKey)}
}

// NewLMStudioClient creates a client for a local LM Studio server.
// LM Studio ignores the API key but the SDK requires one.
func NewLMStudioClient(baseURL string) *OpenAIClient {
	clientConfig := openai.DefaultConfig("lm-studio")
	clientConfig.BaseURL = strings.TrimSuffix(baseURL, "/") + "/v1"
	return &OpenAIClient{client: openai.NewClientWithConfig(clientConfig)}
}

// HealthCheck reports whether the models endpoint answers
func (c *OpenAIClient) HealthCheck(ctx context.Context) bool {
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// ListModels returns available model names, empty on any error
func (c *OpenAIClient) ListModels(ctx context.Context) []string {
	resp, err := c.client.ListModels(ctx)
	if err != nil {
		lgr.Printf("[DEBUG] openai list models failed: %v", err)
		return nil
	}
	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.ID)
	}
	return models
}

// Generate runs a single-turn completion. Images are passed as inline
// base64 data URLs in a multi-part user message, the convention for
// vision-capable OpenAI-compatible models.
func (c *OpenAIClient) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	var messages []openai.ChatCompletionMessage
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}

	userMsg := openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser}
	if len(req.Images) == 0 {
		userMsg.Content = req.Prompt
	} else {
		parts := []openai.ChatMessagePart{{Type: openai.ChatMessagePartTypeText, Text: req.Prompt}}
		for _, img := range req.Images {
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: "data:image/jpeg;base64," + img,
				},
			})
		}
		userMsg.MultiContent = parts
	}
	messages = append(messages, userMsg)

	return c.complete(ctx, req.Model, messages, req.Temperature)
}

// Chat runs a multi-message conversation
func (c *OpenAIClient) Chat(ctx context.Context, model string, messages []Message, temperature float32) (string, error) {
	converted := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, m := range messages {
		converted = append(converted, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	return c.complete(ctx, model, converted, temperature)
}

func (c *OpenAIClient) complete(ctx context.Context, model string, messages []openai.ChatCompletionMessage, temperature float32) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       model,
		Temperature: temperature,
		Messages:    messages,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion: no choices in response")
	}
	content := resp.Choices[0].Message.Content
	if strings.TrimSpace(content) == "" {
		return "", fmt.Errorf("chat completion: empty completion")
	}
	return content, nil
}
