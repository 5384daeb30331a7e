package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/ai"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

const languagePromptEntries = 3

// LanguageDetector decides the language of a feed. Feeds from the same
// domain share a language, so overrides and the cache are keyed by bare
// domain rather than full feed URL.
type LanguageDetector struct {
	client    ai.Client
	model     string
	temp      float32
	cache     *Cache
	overrides map[string]string
}

// NewLanguageDetector creates a detector with the given domain overrides
func NewLanguageDetector(client ai.Client, model string, temp float32, cache *Cache, overrides map[string]string) *LanguageDetector {
	if overrides == nil {
		overrides = map[string]string{}
	}
	return &LanguageDetector{client: client, model: model, temp: temp, cache: cache, overrides: overrides}
}

// Detect returns the feed language, "English" when nothing better is
// known. Resolution order: manual override, cache, AI detection on a
// sample of entries.
func (d *LanguageDetector) Detect(ctx context.Context, feedURL string, feed *domain.ParsedFeed) string {
	dom := ExtractDomain(feedURL)

	if language, ok := d.overrides[dom]; ok {
		return language
	}
	if language, ok := d.cache.Get(dom); ok {
		return language
	}

	language := d.detectWithAI(ctx, feed)
	if language == "" {
		return "English"
	}

	d.cache.Set(dom, language)
	lgr.Printf("[INFO] detected language %s for %s", language, dom)
	return language
}

func (d *LanguageDetector) detectWithAI(ctx context.Context, feed *domain.ParsedFeed) string {
	if feed == nil || len(feed.Entries) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s\n", feed.Title)
	count := min(len(feed.Entries), languagePromptEntries)
	for i := 0; i < count; i++ {
		e := feed.Entries[i]
		fmt.Fprintf(&sb, "%s\n%s\n", e.Title, truncate(strings.TrimSpace(e.Description), 300))
	}

	resp, err := d.client.Generate(ctx, ai.GenerateRequest{
		Model: d.model,
		Prompt: "What language is this feed written in? Respond with only the language name:\n\n" +
			sb.String(),
		System: "You are a language detection expert. " +
			"Respond with ONLY the language name, nothing else.",
		Temperature: d.temp,
	})
	if err != nil {
		lgr.Printf("[WARN] language detection failed for %s: %v", feed.URL, err)
		return ""
	}
	return ai.NormalizeLanguage(resp)
}
