// Package news turns classified news feeds into summarized articles.
package news

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/content"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// Extractor retrieves article content from a URL
type Extractor interface {
	Extract(ctx context.Context, url string) (*domain.Article, error)
}

// Summarizer produces summaries from article text
type Summarizer interface {
	SummarizeArticle(ctx context.Context, article domain.Article, language string) (*domain.SummaryResult, error)
}

// Processor summarizes the entries of news feeds. Extraction failures fall
// back to the entry's own content, so feeds that inline full articles
// still work when the site blocks scraping.
type Processor struct {
	extractor  Extractor
	summarizer Summarizer
	cleaner    *content.Cleaner
}

// NewProcessor creates a news processor
func NewProcessor(extractor Extractor, summarizer Summarizer) *Processor {
	return &Processor{
		extractor:  extractor,
		summarizer: summarizer,
		cleaner:    content.NewCleaner(),
	}
}

// ProcessEntry extracts and summarizes a single news entry
func (p *Processor) ProcessEntry(ctx context.Context, feed *domain.ClassifiedFeed, entry domain.Entry) (*domain.ArticleResult, error) {
	article, err := p.extractor.Extract(ctx, entry.Link)
	if err != nil {
		lgr.Printf("[DEBUG] extraction failed for %s, trying feed content: %v", entry.Link, err)
		article = p.articleFromEntry(entry)
		if article == nil {
			return nil, fmt.Errorf("no usable content for %s: %w", entry.Link, err)
		}
	}

	// feed-level metadata beats whatever the page scraper guessed
	if strings.TrimSpace(entry.Title) != "" {
		article.Title = entry.Title
	}
	if strings.TrimSpace(entry.Author) != "" {
		article.Author = entry.Author
	}

	summary, err := p.summarizer.SummarizeArticle(ctx, *article, feed.Language)
	if err != nil {
		return nil, fmt.Errorf("summarize %s: %w", entry.Link, err)
	}

	return &domain.ArticleResult{
		FeedName:      feed.Name,
		OriginalTitle: entry.Title,
		URL:           entry.Link,
		Author:        article.Author,
		Language:      feed.Language,
		Published:     entry.Published,
		Summary:       *summary,
	}, nil
}

// ProcessFeed summarizes all selected entries of a news feed. Per-entry
// failures are collected, not fatal; the feed yields whatever succeeded.
func (p *Processor) ProcessFeed(ctx context.Context, feed *domain.ClassifiedFeed) ([]domain.ArticleResult, []error) {
	var results []domain.ArticleResult
	var errs []error

	for _, entry := range feed.Entries {
		if ctx.Err() != nil {
			errs = append(errs, ctx.Err())
			break
		}

		res, err := p.ProcessEntry(ctx, feed, entry)
		if err != nil {
			lgr.Printf("[WARN] %v", err)
			errs = append(errs, err)
			continue
		}
		results = append(results, *res)
	}

	lgr.Printf("[INFO] feed %s: %d articles summarized, %d failed", feed.Name, len(results), len(errs))
	return results, errs
}

// articleFromEntry builds an article from inline feed content, nil when
// the entry carries nothing usable
func (p *Processor) articleFromEntry(entry domain.Entry) *domain.Article {
	raw := entry.Content
	if strings.TrimSpace(raw) == "" {
		raw = entry.Description
	}

	text := p.cleaner.Clean(raw)
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return &domain.Article{
		URL:    entry.Link,
		Title:  entry.Title,
		Author: entry.Author,
		Text:   text,
	}
}
