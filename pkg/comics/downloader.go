package comics

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"
	"github.com/go-pkgz/repeater/v2"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// Validator checks a downloaded image
type Validator interface {
	ValidateComicImage(ctx context.Context, path string, useAI bool) domain.ValidationResult
}

// Downloader extracts and downloads the images of a comic feed into the
// output directory, optionally validating what it saved.
type Downloader struct {
	fetcher    *Fetcher
	pages      PageCounter
	validator  Validator
	retries    int
	retryDelay time.Duration
	validateAI bool
}

// DownloaderParams holds construction parameters for Downloader
type DownloaderParams struct {
	Fetcher    *Fetcher
	Pages      PageCounter // nil disables multi-page detection
	Validator  Validator   // nil disables validation
	Retries    int
	RetryDelay time.Duration
	ValidateAI bool // run the vision model on downloaded images
}

// NewDownloader creates a comic downloader
func NewDownloader(params DownloaderParams) *Downloader {
	if params.Retries < 1 {
		params.Retries = 3
	}
	if params.RetryDelay <= 0 {
		params.RetryDelay = 2 * time.Second
	}
	return &Downloader{
		fetcher:    params.Fetcher,
		pages:      params.Pages,
		validator:  params.Validator,
		retries:    params.Retries,
		retryDelay: params.RetryDelay,
		validateAI: params.ValidateAI,
	}
}

// Download processes one comic feed: the newest selected entry is
// extracted and its images saved under outputDir. Feeds whose newest
// entry turns out not to be a comic (e.g. a news post) yield an empty
// result, not an error.
func (d *Downloader) Download(ctx context.Context, feed *domain.ClassifiedFeed, outputDir string) (*domain.ComicResult, error) {
	if len(feed.Entries) == 0 {
		return nil, fmt.Errorf("no entries for feed %s", feed.Name)
	}
	entry := feed.Entries[0]
	lgr.Printf("[INFO] downloading comic %s: %s", feed.Name, entry.Title)

	extractor := ForHandler(feed.SpecialHandler, d.fetcher, d.pages)
	urls, err := extractor.ImageURLs(ctx, entry)
	if err != nil {
		return nil, fmt.Errorf("extract images for %s: %w", feed.Name, err)
	}

	result := &domain.ComicResult{FeedName: feed.Name, Title: entry.Title, Link: entry.Link}
	if len(urls) == 0 {
		lgr.Printf("[INFO] no comic images for %s, skipping", feed.Name)
		return result, nil
	}

	if err := os.MkdirAll(outputDir, 0o750); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	for i, imageURL := range urls {
		name := imageFileName(feed.Name, imageURL, i, len(urls))
		dest := filepath.Join(outputDir, name)

		retrier := repeater.NewBackoff(d.retries, d.retryDelay, repeater.WithMaxDelay(30*time.Second))
		err := retrier.Do(ctx, func() error {
			return d.fetcher.Download(ctx, imageURL, dest)
		})
		if err != nil {
			lgr.Printf("[WARN] failed to download %s: %v", imageURL, err)
			continue
		}
		lgr.Printf("[INFO] downloaded %s -> %s", imageURL, name)
		result.Images = append(result.Images, name)

		if d.validator != nil {
			validation := d.validator.ValidateComicImage(ctx, dest, d.validateAI)
			result.Validations = append(result.Validations, validation)
			if !validation.Valid {
				lgr.Printf("[WARN] validation failed for %s: %s", name, validation.Reason)
			}
		}
	}

	if len(result.Images) == 0 {
		return nil, fmt.Errorf("all downloads failed for %s", feed.Name)
	}
	return result, nil
}

// imageFileName builds the output file name: feed name for a single
// image, feed name plus panel number for multi-image comics. The
// extension follows the source URL, jpg when it has none.
func imageFileName(feedName, imageURL string, idx, total int) string {
	ext := ".jpg"
	if u, err := url.Parse(imageURL); err == nil {
		if e := strings.ToLower(path.Ext(u.Path)); e != "" {
			ext = e
		}
	}

	base := sanitizeName(feedName)
	if total > 1 {
		return fmt.Sprintf("%s-p%d%s", base, idx+1, ext)
	}
	return base + ext
}
