package ai

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/config"
)

// Provider identifies one of the supported AI backends
type Provider string

// supported providers
const (
	ProviderOllama   Provider = "ollama"
	ProviderLMStudio Provider = "lmstudio"
	ProviderOpenAI   Provider = "openai"
	ProviderGemini   Provider = "gemini"
	ProviderClaude   Provider = "claude"
)

// ErrMissingAPIKey indicates a cloud provider was selected without credentials
var ErrMissingAPIKey = errors.New("missing api key")

// UnknownProviderError indicates a provider name outside the supported set
type UnknownProviderError struct {
	Name string
}

func (e *UnknownProviderError) Error() string {
	return fmt.Sprintf("unknown ai provider %q, supported: %s", e.Name, strings.Join(ProviderNames(), ", "))
}

// ParseProvider resolves a provider name, accepting the common aliases
// lm_studio and anthropic.
func ParseProvider(name string) (Provider, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ollama":
		return ProviderOllama, nil
	case "lmstudio", "lm_studio", "lm-studio":
		return ProviderLMStudio, nil
	case "openai":
		return ProviderOpenAI, nil
	case "gemini", "google":
		return ProviderGemini, nil
	case "claude", "anthropic":
		return ProviderClaude, nil
	}
	return "", &UnknownProviderError{Name: name}
}

// ProviderNames returns the canonical names of all supported providers, sorted
func ProviderNames() []string {
	names := make([]string, 0, len(builders))
	for p := range builders {
		names = append(names, string(p))
	}
	sort.Strings(names)
	return names
}

// Bundle packages the client and processors built for one provider
type Bundle struct {
	Provider Provider
	Client   Client
	Text     *TextProcessor
	Vision   *VisionProcessor
}

type builderFunc func(settings config.ProviderConfig, ai config.AIConfig) (Client, error)

// builders maps each provider to its client constructor. Adding a provider
// means adding a constant, a config block and an entry here.
var builders = map[Provider]builderFunc{
	ProviderOllama: func(s config.ProviderConfig, ai config.AIConfig) (Client, error) {
		return NewOllamaClient(s.BaseURL, ai.Timeout), nil
	},
	ProviderLMStudio: func(s config.ProviderConfig, _ config.AIConfig) (Client, error) {
		return NewLMStudioClient(s.BaseURL), nil
	},
	ProviderOpenAI: func(s config.ProviderConfig, _ config.AIConfig) (Client, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("openai: %w", ErrMissingAPIKey)
		}
		return NewOpenAIClient(s.APIKey), nil
	},
	ProviderGemini: func(s config.ProviderConfig, ai config.AIConfig) (Client, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("gemini: %w", ErrMissingAPIKey)
		}
		return NewGeminiClient(s.BaseURL, s.APIKey, ai.Timeout), nil
	},
	ProviderClaude: func(s config.ProviderConfig, ai config.AIConfig) (Client, error) {
		if s.APIKey == "" {
			return nil, fmt.Errorf("claude: %w", ErrMissingAPIKey)
		}
		return NewClaudeClient(s.BaseURL, s.APIKey, ai.Timeout), nil
	},
}

// New builds the client and processors for the provider named in cfg.AI.
// Unknown provider names and missing credentials fail loudly; nothing is
// constructed half-way.
func New(cfg *config.Config) (*Bundle, error) {
	return newBundle(cfg, cfg.AI.Provider)
}

// NewWithFallback builds the configured provider, falling back to a local
// Ollama exactly once when construction fails. No fallback happens when
// Ollama itself was the configured provider, and an unknown provider name
// is a config typo that stays a hard error.
func NewWithFallback(cfg *config.Config) (*Bundle, error) {
	bundle, err := New(cfg)
	if err == nil {
		return bundle, nil
	}

	provider, perr := ParseProvider(cfg.AI.Provider)
	if perr != nil || provider == ProviderOllama {
		return nil, err
	}

	lgr.Printf("[WARN] provider %s unavailable, falling back to ollama: %v", cfg.AI.Provider, err)
	return newBundle(cfg, string(ProviderOllama))
}

func newBundle(cfg *config.Config, name string) (*Bundle, error) {
	provider, err := ParseProvider(name)
	if err != nil {
		return nil, err
	}

	settings, ok := cfg.AI.ProviderSettings(string(provider))
	if !ok {
		return nil, &UnknownProviderError{Name: name}
	}

	client, err := builders[provider](settings, cfg.AI)
	if err != nil {
		return nil, fmt.Errorf("create %s client: %w", provider, err)
	}

	text := NewTextProcessor(client, TextProcessorConfig{
		Model:            settings.TextModel,
		Temperatures:     cfg.AI.Temperatures,
		ClickbaitAuthors: cfg.Classify.ClickbaitAuthors,
		MaxArticleLength: cfg.Process.MaxArticleLength,
		MaxSummaryLength: cfg.Process.MaxSummaryLength,
	})
	vision := NewVisionProcessor(client, settings.VisionModel, cfg.AI.Temperatures)

	lgr.Printf("[INFO] ai provider %s ready, text model %s, vision model %s", provider, settings.TextModel, settings.VisionModel)
	return &Bundle{Provider: provider, Client: client, Text: text, Vision: vision}, nil
}
