package classify

import (
	"context"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/ai"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/config"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// Classifier resolves the type, language and special handler of a feed.
// Type resolution walks a fixed priority chain: manual override (exact
// feed URL), static domain table (substring match), persistent cache,
// AI detection, and finally the comic default. Earlier sources always win
// so a user override can never be shadowed by a stale cache entry.
type Classifier struct {
	feedTypes       map[string]string
	specialHandlers map[string]string
	typeOverrides   map[string]domain.FeedType
	typeDetector    *TypeDetector
	langDetector    *LanguageDetector
}

// New builds a classifier from config tables, override files and caches.
// Override and cache files are read here once; missing files are fine.
func New(cfg config.ClassifyConfig, client ai.Client, model string, temps config.Temperatures) *Classifier {
	typeCache := NewCache(cfg.TypeCache)
	langCache := NewCache(cfg.LanguageCache)
	lgr.Printf("[DEBUG] classifier ready, %d cached types, %d cached languages", typeCache.Len(), langCache.Len())

	return &Classifier{
		feedTypes:       cfg.FeedTypes,
		specialHandlers: cfg.SpecialHandlers,
		typeOverrides:   LoadTypeOverrides(cfg.TypeOverrides),
		typeDetector:    NewTypeDetector(client, model, temps.FeedType, typeCache),
		langDetector: NewLanguageDetector(client, model, temps.Language, langCache,
			LoadLanguageOverrides(cfg.LanguageOverrides)),
	}
}

// FeedType resolves the type of the feed at feedURL. The parsed feed may
// be nil; AI detection is then skipped and unknown feeds default to comic.
func (c *Classifier) FeedType(ctx context.Context, feedURL string, feed *domain.ParsedFeed) domain.FeedType {
	if ft, ok := c.typeOverrides[feedURL]; ok {
		lgr.Printf("[DEBUG] type override %s for %s", ft, feedURL)
		return ft
	}

	lower := strings.ToLower(feedURL)
	for dom, ft := range c.feedTypes {
		if strings.Contains(lower, strings.ToLower(dom)) {
			return domain.FeedType(ft)
		}
	}

	if ft, ok := c.typeDetector.Detect(ctx, feedURL, feed); ok {
		return ft
	}

	lgr.Printf("[DEBUG] no type source for %s, defaulting to comic", feedURL)
	return domain.FeedTypeComic
}

// Language resolves the feed language, "English" when unknown
func (c *Classifier) Language(ctx context.Context, feedURL string, feed *domain.ParsedFeed) string {
	return c.langDetector.Detect(ctx, feedURL, feed)
}

// SpecialHandler returns the extraction handler tag for the feed URL,
// empty when the default extractor applies.
func (c *Classifier) SpecialHandler(feedURL string) string {
	lower := strings.ToLower(feedURL)
	for dom, handler := range c.specialHandlers {
		if strings.Contains(lower, strings.ToLower(dom)) {
			return handler
		}
	}
	return ""
}

// Classify resolves everything known about a feed in one call
func (c *Classifier) Classify(ctx context.Context, feedURL string, feed *domain.ParsedFeed) *domain.ClassifiedFeed {
	result := &domain.ClassifiedFeed{
		Feed:           feed,
		Name:           FeedName(feedURL, feed),
		Type:           c.FeedType(ctx, feedURL, feed),
		SpecialHandler: c.SpecialHandler(feedURL),
	}
	if result.Type == domain.FeedTypeNews {
		result.Language = c.Language(ctx, feedURL, feed)
	}
	return result
}

// FeedName derives a human-friendly feed name: the feed title when
// present, the bare domain otherwise.
func FeedName(feedURL string, feed *domain.ParsedFeed) string {
	if feed != nil && strings.TrimSpace(feed.Title) != "" {
		return strings.TrimSpace(feed.Title)
	}
	if dom := ExtractDomain(feedURL); dom != "" {
		return dom
	}
	return feedURL
}
