package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/config"
	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"

	_ "image/gif"  // registered for validation decode
	_ "image/jpeg" // registered for validation decode
	_ "image/png"  // registered for validation decode

	_ "golang.org/x/image/webp" // registered for validation decode
)

// MinImageSize is the smallest dimension accepted for comic images,
// small enough to exclude icons and tracking pixels.
const MinImageSize = 100

var allowedFormats = map[string]struct{}{
	"jpeg": {},
	"png":  {},
	"gif":  {},
	"webp": {},
}

var digitsRe = regexp.MustCompile(`\d+`)

// VisionProcessor runs image prompts (comic validation, page counting,
// description) on top of a vision-capable provider Client.
type VisionProcessor struct {
	client     Client
	model      string
	temps      config.Temperatures
	httpClient *http.Client
}

// NewVisionProcessor creates a vision processor over the given client
func NewVisionProcessor(client Client, model string, temps config.Temperatures) *VisionProcessor {
	return &VisionProcessor{
		client:     client,
		model:      model,
		temps:      temps,
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
}

// AnalyzeImage answers a free-form prompt about an image given as either
// an http(s) URL or a local file path.
func (p *VisionProcessor) AnalyzeImage(ctx context.Context, source, prompt string) (string, error) {
	encoded, err := p.encode(ctx, source)
	if err != nil {
		return "", err
	}

	resp, err := p.client.Generate(ctx, GenerateRequest{
		Model:       p.model,
		Prompt:      prompt,
		Temperature: p.temps.Vision,
		Images:      []string{encoded},
	})
	if err != nil {
		return "", fmt.Errorf("analyze image: %w", err)
	}
	return strings.TrimSpace(resp), nil
}

// DetectOglafPages counts the pages of a multi-page comic from its first
// page. The reply is free text; the LAST run of digits wins, so "page 1 of 3"
// yields 3. Defaults to 1 on any failure.
func (p *VisionProcessor) DetectOglafPages(ctx context.Context, source string) int {
	prompt := "Look at this comic image. If it shows a page indicator like '1/3' or 'page 1 of 2', " +
		"respond with the total number of pages. If there is no page indicator, respond with '1'. " +
		"Respond with only a number."

	resp, err := p.AnalyzeImage(ctx, source, prompt)
	if err != nil {
		lgr.Printf("[WARN] page count detection failed, assuming single page: %v", err)
		return 1
	}

	matches := digitsRe.FindAllString(resp, -1)
	if len(matches) == 0 {
		return 1
	}
	pages, err := strconv.Atoi(matches[len(matches)-1])
	if err != nil || pages < 1 {
		return 1
	}
	return pages
}

// ValidateComicImage checks a downloaded image in two stages: a cheap local
// decode of format and dimensions, then an optional AI pass. The AI can only
// confirm an image as a comic, never reject one the cheap stage accepted.
func (p *VisionProcessor) ValidateComicImage(ctx context.Context, path string, useAI bool) domain.ValidationResult {
	f, err := os.Open(path) //nolint:gosec // path comes from our own download step
	if err != nil {
		return domain.ValidationResult{Reason: fmt.Sprintf("open image: %v", err)}
	}
	defer f.Close()

	cfg, format, err := image.DecodeConfig(f)
	if err != nil {
		return domain.ValidationResult{Reason: fmt.Sprintf("decode image: %v", err)}
	}

	result := domain.ValidationResult{Format: strings.ToUpper(format), Width: cfg.Width, Height: cfg.Height}
	if _, ok := allowedFormats[format]; !ok {
		result.Reason = fmt.Sprintf("unsupported format %s", result.Format)
		return result
	}
	if cfg.Width < MinImageSize || cfg.Height < MinImageSize {
		result.Reason = fmt.Sprintf("image too small: %dx%d", cfg.Width, cfg.Height)
		return result
	}
	result.Valid = true

	if !useAI {
		return result
	}

	prompt := "Is this image a comic strip or comic page? " +
		"Look for panels, speech bubbles, illustrated characters, or cartoon artwork. " +
		"Respond with ONLY 'yes' or 'no'."
	resp, err := p.AnalyzeImage(ctx, path, prompt)
	if err != nil {
		lgr.Printf("[WARN] ai comic check failed for %s, keeping dimension check result: %v", path, err)
		return result
	}
	if strings.Contains(strings.ToLower(resp), "yes") {
		result.IsComic = true
	}
	return result
}

// DescribeImage returns a short textual description of an image
func (p *VisionProcessor) DescribeImage(ctx context.Context, source string) (string, error) {
	return p.AnalyzeImage(ctx, source, "Describe this image in one or two sentences.")
}

func (p *VisionProcessor) encode(ctx context.Context, source string) (string, error) {
	if strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://") {
		return p.encodeFromURL(ctx, source)
	}
	return encodeFromFile(source)
}

func (p *VisionProcessor) encodeFromURL(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return "", fmt.Errorf("create image request: %w", err)
	}

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch image %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch image %s: unexpected status %d", url, resp.StatusCode)
	}

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, io.LimitReader(resp.Body, 20*1024*1024)); err != nil {
		return "", fmt.Errorf("read image body: %w", err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

func encodeFromFile(path string) (string, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from our own download step
	if err != nil {
		return "", fmt.Errorf("read image file: %w", err)
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
