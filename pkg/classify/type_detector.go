package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/ai"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

const typePromptEntries = 5

// TypeDetector decides whether a feed is a comic or a news feed by asking
// the model about a sample of entries. Results are cached by feed URL so
// each feed is classified at most once across runs.
type TypeDetector struct {
	client ai.Client
	model  string
	temp   float32
	cache  *Cache
}

// NewTypeDetector creates a detector writing through to the given cache
func NewTypeDetector(client ai.Client, model string, temp float32, cache *Cache) *TypeDetector {
	return &TypeDetector{client: client, model: model, temp: temp, cache: cache}
}

// Detect returns the feed type for the given feed, false when detection is
// not possible (provider down, unparseable answer). The cache is consulted
// again here so callers racing on the same URL do one model call at most.
func (d *TypeDetector) Detect(ctx context.Context, feedURL string, feed *domain.ParsedFeed) (domain.FeedType, bool) {
	if cached, ok := d.cache.Get(feedURL); ok {
		if ft := domain.FeedType(cached); ft.Valid() {
			return ft, true
		}
	}

	if feed == nil || len(feed.Entries) == 0 {
		return "", false
	}

	if !d.client.HealthCheck(ctx) {
		lgr.Printf("[WARN] ai provider unavailable, skipping type detection for %s", feedURL)
		return "", false
	}

	resp, err := d.client.Generate(ctx, ai.GenerateRequest{
		Model:       d.model,
		Prompt:      d.buildPrompt(feed),
		System:      "You are a feed classification expert. Respond with ONLY one word: 'comic' or 'news'.",
		Temperature: d.temp,
	})
	if err != nil {
		lgr.Printf("[WARN] type detection failed for %s: %v", feedURL, err)
		return "", false
	}

	feedType, ok := parseTypeAnswer(resp)
	if !ok {
		lgr.Printf("[WARN] unparseable type answer for %s: %.80s", feedURL, resp)
		return "", false
	}

	d.cache.Set(feedURL, string(feedType))
	lgr.Printf("[INFO] detected feed type %s for %s", feedType, feedURL)
	return feedType, true
}

func (d *TypeDetector) buildPrompt(feed *domain.ParsedFeed) string {
	var sb strings.Builder
	sb.WriteString("Classify this RSS feed as either a webcomic feed or a news feed.\n\n")
	fmt.Fprintf(&sb, "Feed title: %s\n", feed.Title)
	fmt.Fprintf(&sb, "Feed link: %s\n\nRecent entries:\n", feed.Link)

	count := min(len(feed.Entries), typePromptEntries)
	for i := 0; i < count; i++ {
		e := feed.Entries[i]
		fmt.Fprintf(&sb, "- %s", e.Title)
		if desc := strings.TrimSpace(e.Description); desc != "" {
			fmt.Fprintf(&sb, ": %s", truncate(desc, 200))
		}
		sb.WriteString("\n")
	}
	sb.WriteString("\nIs this a 'comic' feed or a 'news' feed? Answer with one word.")
	return sb.String()
}

// parseTypeAnswer extracts comic/news from a model reply. A reply that
// mentions exactly one of the two words wins; when it mentions both or
// neither, the first token gets a chance before giving up.
func parseTypeAnswer(resp string) (domain.FeedType, bool) {
	lower := strings.ToLower(strings.TrimSpace(resp))
	hasComic := strings.Contains(lower, "comic")
	hasNews := strings.Contains(lower, "news")

	switch {
	case hasComic && !hasNews:
		return domain.FeedTypeComic, true
	case hasNews && !hasComic:
		return domain.FeedTypeNews, true
	}

	fields := strings.FieldsFunc(lower, func(r rune) bool {
		return r == ' ' || r == '\n' || r == '.' || r == ',' || r == '\'' || r == '"'
	})
	if len(fields) > 0 {
		if ft := domain.FeedType(fields[0]); ft.Valid() {
			return ft, true
		}
	}
	return "", false
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
