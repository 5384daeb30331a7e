package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/config"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

const (
	languageExcerptLen  = 2000
	clickbaitExcerptLen = 1000
	maxTitleLen         = 80
	defaultLanguage     = "English"
)

// TextProcessor builds text prompts (clickbait detection, language
// detection, summarization, title generation) on top of a provider Client.
// Detection helpers degrade to safe defaults on failure; only summary
// generation itself is allowed to fail the whole call.
type TextProcessor struct {
	client           Client
	model            string
	temps            config.Temperatures
	clickbaitAuthors map[string]struct{}
	maxArticleLen    int
	maxSummaryLen    int
}

// TextProcessorConfig holds construction parameters for TextProcessor
type TextProcessorConfig struct {
	Model            string
	Temperatures     config.Temperatures
	ClickbaitAuthors []string
	MaxArticleLength int
	MaxSummaryLength int
}

// NewTextProcessor creates a text processor over the given client
func NewTextProcessor(client Client, cfg TextProcessorConfig) *TextProcessor {
	authors := make(map[string]struct{}, len(cfg.ClickbaitAuthors))
	for _, a := range cfg.ClickbaitAuthors {
		authors[a] = struct{}{}
	}
	if cfg.MaxArticleLength == 0 {
		cfg.MaxArticleLength = 10000
	}
	if cfg.MaxSummaryLength == 0 {
		cfg.MaxSummaryLength = 500
	}
	return &TextProcessor{
		client:           client,
		model:            cfg.Model,
		temps:            cfg.Temperatures,
		clickbaitAuthors: authors,
		maxArticleLen:    cfg.MaxArticleLength,
		maxSummaryLen:    cfg.MaxSummaryLength,
	}
}

// DetectLanguage returns the language name of the given text, "English" on
// any failure. The reply is constrained to a bare language name; anything
// longer than 50 characters is treated as malformed.
func (p *TextProcessor) DetectLanguage(ctx context.Context, text string) string {
	if strings.TrimSpace(text) == "" {
		return defaultLanguage
	}

	system := "You are a language detection expert. " +
		"Respond with ONLY the language name, nothing else. " +
		"Examples: English, Italian, Spanish, French, German, Portuguese, Japanese, Chinese, etc."
	prompt := fmt.Sprintf("What language is this text written in? Respond with only the language name:\n\n%s",
		truncateRunes(text, languageExcerptLen))

	resp, err := p.client.Generate(ctx, GenerateRequest{
		Model:       p.model,
		Prompt:      prompt,
		System:      system,
		Temperature: p.temps.Language,
	})
	if err != nil {
		lgr.Printf("[WARN] language detection failed, defaulting to English: %v", err)
		return defaultLanguage
	}

	language := NormalizeLanguage(resp)
	if language == "" {
		lgr.Printf("[WARN] unexpected language detection response: %.50s", resp)
		return defaultLanguage
	}
	return language
}

// DetectClickbait reports whether the title/text pair looks like clickbait,
// false on any failure.
func (p *TextProcessor) DetectClickbait(ctx context.Context, title, text string) bool {
	if title == "" || text == "" {
		return false
	}

	system := "You are a clickbait detection expert. " +
		"Analyze the article title and excerpt to determine if it is clickbait. " +
		"Clickbait indicators include: sensationalized or exaggerated headlines, " +
		"misleading titles that don't match the content, emotional manipulation tactics, " +
		"exaggerated claims or promises, " +
		"'You won't believe...', 'This one trick...', 'Shocking...' type language, " +
		"withholding key information to force clicks, overly dramatic or provocative language. " +
		"Respond with ONLY 'yes' if it is clickbait, or 'no' if it is not."
	prompt := fmt.Sprintf("Title: %s\n\nExcerpt: %s\n\nIs this clickbait?", title, truncateRunes(text, clickbaitExcerptLen))

	resp, err := p.client.Generate(ctx, GenerateRequest{
		Model:       p.model,
		Prompt:      prompt,
		System:      system,
		Temperature: p.temps.Clickbait,
	})
	if err != nil {
		lgr.Printf("[WARN] clickbait detection failed, falling back to author list only: %v", err)
		return false
	}

	if strings.Contains(strings.ToLower(resp), "yes") {
		lgr.Printf("[INFO] clickbait detected: %.50s", title)
		return true
	}
	return false
}

// GenerateSummary produces a summary and a fresh title for the article text.
// An empty language triggers detection; the result is always written in the
// article's own language. Returns an error when the model produced no usable
// summary, with no partial result.
func (p *TextProcessor) GenerateSummary(ctx context.Context, text, title, author, language string) (*domain.SummaryResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty text for summarization")
	}

	_, byAuthor := p.clickbaitAuthors[author]
	byAI := false
	if title != "" {
		byAI = p.DetectClickbait(ctx, title, text)
	}

	detectedBy := domain.ClickbaitByNone
	switch {
	case byAuthor && byAI:
		detectedBy = domain.ClickbaitByBoth
	case byAuthor:
		detectedBy = domain.ClickbaitByAuthor
	case byAI:
		detectedBy = domain.ClickbaitByAI
	}
	isClickbait := byAuthor || byAI

	if language == "" {
		language = p.DetectLanguage(ctx, text)
	}

	system := p.standardPrompt()
	if isClickbait {
		system = p.skepticalPrompt()
	}
	prompt := fmt.Sprintf("IMPORTANT: You MUST respond in %s. Summarize the following article:\n\n%s",
		language, truncateRunes(text, p.maxArticleLen))

	summary, err := p.client.Generate(ctx, GenerateRequest{
		Model:       p.model,
		Prompt:      prompt,
		System:      system,
		Temperature: p.temps.Summary,
	})
	if err != nil {
		return nil, fmt.Errorf("generate summary: %w", err)
	}

	summary = truncateAtSentence(strings.TrimSpace(summary), p.maxSummaryLen)

	return &domain.SummaryResult{
		Summary:     summary,
		Title:       p.GenerateTitle(ctx, summary, language),
		IsClickbait: isClickbait,
		DetectedBy:  detectedBy,
	}, nil
}

// GenerateTitle produces a short non-clickbait headline from the summary,
// in the same language. Degrades to a generic title on failure.
func (p *TextProcessor) GenerateTitle(ctx context.Context, summary, language string) string {
	if language == "" {
		language = p.DetectLanguage(ctx, summary)
	}

	system := "You are a professional headline writer. " +
		"Generate a clear, concise, and informative headline (max 80 characters) " +
		"based on the provided summary. " +
		"Do not use clickbait language or sensationalism."
	prompt := fmt.Sprintf("IMPORTANT: You MUST respond in %s. Generate a headline for this summary:\n\n%s", language, summary)

	title, err := p.client.Generate(ctx, GenerateRequest{
		Model:       p.model,
		Prompt:      prompt,
		System:      system,
		Temperature: p.temps.Title,
	})
	if err != nil {
		lgr.Printf("[WARN] title generation failed: %v", err)
		return "Article Summary"
	}

	title = strings.Trim(strings.TrimSpace(title), `"'`)
	if runes := []rune(title); len(runes) > maxTitleLen {
		title = string(runes[:maxTitleLen-3]) + "..."
	}
	return title
}

// SummarizeArticle summarizes extracted article content
func (p *TextProcessor) SummarizeArticle(ctx context.Context, article domain.Article, language string) (*domain.SummaryResult, error) {
	lgr.Printf("[INFO] summarizing article: %.50s", article.Title)
	return p.GenerateSummary(ctx, article.Text, article.Title, article.Author, language)
}

func (p *TextProcessor) standardPrompt() string {
	return "You are a professional news summarizer. " +
		"Provide clear, concise, and objective summaries of articles. " +
		"Focus on the key facts, main points, and important details. " +
		"Maintain a neutral, professional tone. " +
		"Keep summaries between 100-300 words."
}

func (p *TextProcessor) skepticalPrompt() string {
	return "This article shows signs of clickbait or sensationalism. " +
		"Provide an objective, factual summary that strips away dramatic language " +
		"and focuses on verifiable facts only. " +
		"If no substantial facts exist, state 'Clickbait article with no substantial content.' " +
		"Maintain a neutral, skeptical tone and avoid amplifying sensationalism."
}

// NormalizeLanguage cleans a model reply down to a bare language name,
// empty when the reply is too long to be one.
func NormalizeLanguage(resp string) string {
	language := strings.Trim(strings.TrimSpace(resp), "\"'.,")
	if language == "" || len([]rune(language)) > 50 {
		return ""
	}
	// capitalize first letter for consistent cache keys
	runes := []rune(language)
	return strings.ToUpper(string(runes[0])) + string(runes[1:])
}

// truncateRunes cuts s to at most n runes
func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}

// truncateAtSentence cuts s to at most maxLen runes, preferring the last
// sentence boundary when that keeps at least 80% of the budget.
func truncateAtSentence(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	cut := runes[:maxLen]
	if idx := strings.LastIndex(string(cut), "."); idx >= 0 {
		boundary := []rune(string(cut)[:idx+1])
		if len(boundary) > maxLen*4/5 {
			return string(boundary)
		}
	}
	return string(cut)
}
