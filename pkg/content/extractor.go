// Package content extracts and cleans article text for summarization.
package content

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/markusmobius/go-trafilatura"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// HTTPExtractor extracts article content from URLs using trafilatura
type HTTPExtractor struct {
	client    *http.Client
	userAgent string
	cleaner   *Cleaner
}

// NewHTTPExtractor creates a new content extractor
func NewHTTPExtractor(timeout time.Duration, userAgent string) *HTTPExtractor {
	return &HTTPExtractor{
		client:    &http.Client{Timeout: timeout},
		userAgent: userAgent,
		cleaner:   NewCleaner(),
	}
}

// Extract retrieves the page at urlStr and returns the cleaned article.
// Title and author come from trafilatura metadata when the page carries
// them; the entry-level values are better and callers should prefer those.
func (e *HTTPExtractor) Extract(ctx context.Context, urlStr string) (*domain.Article, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("parse URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid URL: %s", urlStr)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", e.userAgent)
	addBrowserHeaders(req)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch URL %s: %w", urlStr, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code %d for URL %s", resp.StatusCode, urlStr)
	}

	opts := trafilatura.Options{
		EnableFallback:  true,
		ExcludeComments: true,
		ExcludeTables:   false,
		IncludeImages:   false,
		IncludeLinks:    false,
		Deduplicate:     true,
		OriginalURL:     parsedURL,
	}

	result, err := trafilatura.Extract(resp.Body, opts)
	if err != nil {
		return nil, fmt.Errorf("extract content from %s: %w", urlStr, err)
	}
	if result == nil || strings.TrimSpace(result.ContentText) == "" {
		return nil, fmt.Errorf("no text content extracted from %s", urlStr)
	}

	article := &domain.Article{
		URL:    urlStr,
		Title:  result.Metadata.Title,
		Author: result.Metadata.Author,
		Text:   e.cleaner.Clean(result.ContentText),
	}
	if strings.TrimSpace(article.Text) == "" {
		return nil, fmt.Errorf("nothing left after cleaning %s", urlStr)
	}
	return article, nil
}
