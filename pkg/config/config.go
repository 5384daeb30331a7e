package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

//go:generate go run ../../cmd/schema/main.go schema.json

// Config holds the full application configuration. It is resolved once at
// startup (compiled-in defaults overridden by the user file, then by CLI
// flags) and never mutated afterwards.
type Config struct {
	AI       AIConfig       `yaml:"ai" json:"ai" jsonschema:"description=AI provider configuration"`
	HTTP     HTTPConfig     `yaml:"http" json:"http" jsonschema:"description=Outbound HTTP settings"`
	Process  ProcessConfig  `yaml:"process" json:"process" jsonschema:"description=Feed processing settings"`
	Classify ClassifyConfig `yaml:"classify" json:"classify" jsonschema:"description=Feed classification tables and caches"`
	Output   OutputConfig   `yaml:"output" json:"output" jsonschema:"description=Digest output settings"`
	Server   ServerConfig   `yaml:"server" json:"server" jsonschema:"description=Preview server settings"`
}

// ProviderConfig holds connection settings for one AI provider
type ProviderConfig struct {
	BaseURL     string `yaml:"base_url" json:"base_url" jsonschema:"description=Base URL for local HTTP providers"`
	APIKey      string `yaml:"api_key" json:"api_key" jsonschema:"description=API key (supports ${ENV} expansion)"`
	TextModel   string `yaml:"text_model" json:"text_model" jsonschema:"description=Default model for text operations"`
	VisionModel string `yaml:"vision_model" json:"vision_model" jsonschema:"description=Default model for vision operations"`
}

// Temperatures holds per-operation generation temperatures. Classification
// style operations run cold for reproducible one-word answers.
type Temperatures struct {
	Summary   float32 `yaml:"summary" json:"summary" jsonschema:"default=0.3"`
	Title     float32 `yaml:"title" json:"title" jsonschema:"default=0.2"`
	Vision    float32 `yaml:"vision" json:"vision" jsonschema:"default=0.1"`
	FeedType  float32 `yaml:"feed_type" json:"feed_type" jsonschema:"default=0.1"`
	Clickbait float32 `yaml:"clickbait" json:"clickbait" jsonschema:"default=0.1"`
	Language  float32 `yaml:"language" json:"language" jsonschema:"default=0.1"`
}

// AIConfig selects the active provider and carries per-provider settings
type AIConfig struct {
	Provider     string         `yaml:"provider" json:"provider" jsonschema:"default=ollama,description=Active provider: ollama lmstudio openai gemini or claude"`
	Ollama       ProviderConfig `yaml:"ollama" json:"ollama"`
	LMStudio     ProviderConfig `yaml:"lmstudio" json:"lmstudio"`
	OpenAI       ProviderConfig `yaml:"openai" json:"openai"`
	Gemini       ProviderConfig `yaml:"gemini" json:"gemini"`
	Claude       ProviderConfig `yaml:"claude" json:"claude"`
	Temperatures Temperatures   `yaml:"temperatures" json:"temperatures"`
	Timeout      time.Duration  `yaml:"timeout" json:"timeout" jsonschema:"default=60s,description=Per-request timeout for provider calls"`
}

// ProviderSettings returns the settings block for the named provider,
// false if the name is unknown.
func (a AIConfig) ProviderSettings(name string) (ProviderConfig, bool) {
	switch name {
	case "ollama":
		return a.Ollama, true
	case "lmstudio", "lm_studio":
		return a.LMStudio, true
	case "openai":
		return a.OpenAI, true
	case "gemini":
		return a.Gemini, true
	case "claude", "anthropic":
		return a.Claude, true
	}
	return ProviderConfig{}, false
}

// HTTPConfig holds outbound HTTP settings shared by feed fetching,
// article extraction and image downloads.
type HTTPConfig struct {
	UserAgent  string        `yaml:"user_agent" json:"user_agent"`
	Timeout    time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s"`
	MaxRetries int           `yaml:"max_retries" json:"max_retries" jsonschema:"default=3"`
	RetryDelay time.Duration `yaml:"retry_delay" json:"retry_delay" jsonschema:"default=2s"`
}

// ProcessConfig holds feed processing settings
type ProcessConfig struct {
	MaxWorkers       int           `yaml:"max_workers" json:"max_workers" jsonschema:"default=10,description=Maximum concurrent feed workers"`
	FeedTimeout      time.Duration `yaml:"feed_timeout" json:"feed_timeout" jsonschema:"default=2m,description=Per-feed processing timeout"`
	TimeFilterHours  int           `yaml:"time_filter_hours" json:"time_filter_hours" jsonschema:"default=24,description=Only news entries newer than this are processed"`
	MaxArticleLength int           `yaml:"max_article_length" json:"max_article_length" jsonschema:"default=10000,description=Article text cap in characters before summarization"`
	MaxSummaryLength int           `yaml:"max_summary_length" json:"max_summary_length" jsonschema:"default=500,description=Summary cap in characters"`
	ValidateImages   bool          `yaml:"validate_images" json:"validate_images" jsonschema:"default=false,description=Validate downloaded comic images with the vision model"`
	MinImageSize     int           `yaml:"min_image_size" json:"min_image_size" jsonschema:"default=100,description=Minimum image dimension in pixels"`
}

// ClassifyConfig holds the static classification tables and the paths of
// the cache and override files.
type ClassifyConfig struct {
	FeedTypes         map[string]string `yaml:"feed_types" json:"feed_types" jsonschema:"description=Domain substring to comic/news mapping"`
	SpecialHandlers   map[string]string `yaml:"special_handlers" json:"special_handlers" jsonschema:"description=Domain substring to extraction handler tag"`
	ClickbaitAuthors  []string          `yaml:"clickbait_authors" json:"clickbait_authors" jsonschema:"description=Authors whose articles always get the skeptical summarization prompt"`
	TypeCache         string            `yaml:"type_cache" json:"type_cache"`
	TypeOverrides     string            `yaml:"type_overrides" json:"type_overrides"`
	LanguageCache     string            `yaml:"language_cache" json:"language_cache"`
	LanguageOverrides string            `yaml:"language_overrides" json:"language_overrides"`
}

// OutputConfig holds digest output settings
type OutputConfig struct {
	Dir       string `yaml:"dir" json:"dir" jsonschema:"default=output"`
	FeedsFile string `yaml:"feeds_file" json:"feeds_file" jsonschema:"default=rss.txt"`
	PageTitle string `yaml:"page_title" json:"page_title" jsonschema:"default=DailyFeedSanity"`
}

// ServerConfig holds settings for the optional preview server
type ServerConfig struct {
	Listen  string        `yaml:"listen" json:"listen" jsonschema:"default=:8080"`
	Timeout time.Duration `yaml:"timeout" json:"timeout" jsonschema:"default=30s"`
}

// Default returns the compiled-in configuration, matching the shipped
// defaults for providers, known sites and model parameters.
func Default() *Config {
	return &Config{
		AI: AIConfig{
			Provider: "ollama",
			Ollama: ProviderConfig{
				BaseURL:     "http://localhost:11434",
				TextModel:   "granite4:tiny-h",
				VisionModel: "qwen3-vl:4b",
			},
			LMStudio: ProviderConfig{
				BaseURL:     "http://localhost:1234",
				TextModel:   "qwen/qwen3-vl-4b",
				VisionModel: "qwen/qwen3-vl-4b",
			},
			OpenAI: ProviderConfig{
				APIKey:      os.Getenv("OPENAI_API_KEY"),
				TextModel:   "gpt-4o-mini",
				VisionModel: "gpt-4o",
			},
			Gemini: ProviderConfig{
				BaseURL:     "https://generativelanguage.googleapis.com",
				APIKey:      firstEnv("GEMINI_API_KEY", "GOOGLE_API_KEY"),
				TextModel:   "gemini-1.5-flash",
				VisionModel: "gemini-1.5-flash",
			},
			Claude: ProviderConfig{
				BaseURL:     "https://api.anthropic.com",
				APIKey:      os.Getenv("ANTHROPIC_API_KEY"),
				TextModel:   "claude-3-5-haiku-20241022",
				VisionModel: "claude-3-5-haiku-20241022",
			},
			Temperatures: Temperatures{
				Summary:   0.3,
				Title:     0.2,
				Vision:    0.1,
				FeedType:  0.1,
				Clickbait: 0.1,
				Language:  0.1,
			},
			Timeout: 60 * time.Second,
		},
		HTTP: HTTPConfig{
			UserAgent:  "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:    30 * time.Second,
			MaxRetries: 3,
			RetryDelay: 2 * time.Second,
		},
		Process: ProcessConfig{
			MaxWorkers:       10,
			FeedTimeout:      2 * time.Minute,
			TimeFilterHours:  24,
			MaxArticleLength: 10000,
			MaxSummaryLength: 500,
			MinImageSize:     100,
		},
		Classify: ClassifyConfig{
			FeedTypes: map[string]string{
				"questionablecontent.net": "comic",
				"penny-arcade.com":        "comic",
				"savestatecomic.com":      "comic",
				"wondermark.com":          "comic",
				"xkcd.com":                "comic",
				"widdershinscomic.com":    "comic",
				"gunnerkrigg.com":         "comic",
				"oglaf.com":               "comic",
				"evil-inc.com":            "comic",
				"irovedout.com":           "comic",
				"totempole666.com":        "comic",
				"buttsmithy.com":          "comic",
				"macitynet.it":            "news",
				"feedburner.com":          "news",
			},
			SpecialHandlers: map[string]string{
				"penny-arcade.com":     "penny_arcade",
				"widdershinscomic.com": "widdershins",
				"gunnerkrigg.com":      "gunnerkrigg",
				"oglaf.com":            "oglaf",
				"savestatecomic.com":   "savestate",
				"wondermark.com":       "wondermark",
				"evil-inc.com":         "evil_inc",
				"buttsmithy.com":       "incase",
			},
			ClickbaitAuthors:  []string{"Francesca Testa"},
			TypeCache:         ".feed_type_cache.json",
			TypeOverrides:     "feed_type_overrides.txt",
			LanguageCache:     ".feed_language_cache.json",
			LanguageOverrides: "feed_language_overrides.txt",
		},
		Output: OutputConfig{
			Dir:       "output",
			FeedsFile: "rss.txt",
			PageTitle: "DailyFeedSanity",
		},
		Server: ServerConfig{
			Listen:  ":8080",
			Timeout: 30 * time.Second,
		},
	}
}

// Load reads the user configuration file and overlays it on the compiled-in
// defaults. A missing file is not an error; the defaults are returned as is.
func Load(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // file path comes from CLI flag
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config file: %w", err)
	}

	// expand environment variables
	expanded := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks configuration for correctness
func (c *Config) Validate() error {
	if _, ok := c.AI.ProviderSettings(c.AI.Provider); !ok {
		return fmt.Errorf("ai.provider %q is not one of ollama, lmstudio, openai, gemini, claude", c.AI.Provider)
	}
	for _, ft := range c.Classify.FeedTypes {
		if ft != "comic" && ft != "news" {
			return fmt.Errorf("classify.feed_types value %q must be comic or news", ft)
		}
	}
	if c.Process.MaxWorkers < 1 {
		return fmt.Errorf("process.max_workers must be at least 1")
	}
	if c.Process.FeedTimeout < time.Second {
		return fmt.Errorf("process.feed_timeout must be at least 1 second")
	}
	if c.Process.MaxSummaryLength < 50 {
		return fmt.Errorf("process.max_summary_length must be at least 50")
	}
	if c.Server.Timeout < time.Second {
		return fmt.Errorf("server timeout must be at least 1 second")
	}
	return nil
}

// GetServerConfig returns preview server configuration
func (c *Config) GetServerConfig() (listen string, timeout time.Duration) {
	return c.Server.Listen, c.Server.Timeout
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}
