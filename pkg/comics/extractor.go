package comics

import (
	"context"
	"fmt"
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// Extractor finds comic image URLs for a feed entry
type Extractor interface {
	ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error)
}

// PageCounter detects how many pages a multi-page comic has from its
// first page image.
type PageCounter interface {
	DetectOglafPages(ctx context.Context, source string) int
}

// ForHandler returns the extractor registered for the handler tag. An
// empty or unknown tag gets the default img-src extractor. The page
// counter may be nil; multi-page detection is then skipped.
func ForHandler(handler string, fetcher *Fetcher, pages PageCounter) Extractor {
	switch handler {
	case "penny_arcade":
		return &pennyArcadeExtractor{fetcher: fetcher}
	case "oglaf":
		return &oglafExtractor{fetcher: fetcher, pages: pages}
	case "widdershins":
		return &widdershinsExtractor{fetcher: fetcher}
	case "gunnerkrigg":
		return &gunnerkriggExtractor{fetcher: fetcher}
	case "savestate":
		return &savestateExtractor{}
	case "wondermark":
		return &wondermarkExtractor{fetcher: fetcher}
	case "evil_inc":
		return &evilIncExtractor{fetcher: fetcher}
	case "incase":
		return &incaseExtractor{fetcher: fetcher}
	}
	return &defaultExtractor{}
}

// wpSizeRe matches WordPress thumbnail dimension suffixes like -300x200
var wpSizeRe = regexp.MustCompile(`-\d+x\d+(\.(?:png|jpe?g|gif))`)

// defaultExtractor pulls the first img tag out of the entry's own
// content; most WordPress comic feeds inline the strip.
type defaultExtractor struct{}

func (e *defaultExtractor) ImageURLs(_ context.Context, entry domain.Entry) ([]string, error) {
	content := entry.Content
	if strings.TrimSpace(content) == "" {
		content = entry.Description
	}
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("entry %q has no content", entry.Title)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse entry content: %w", err)
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return nil, fmt.Errorf("no image in entry %q", entry.Title)
	}

	// strip WordPress thumbnail dimensions to get the full-size image
	src = wpSizeRe.ReplaceAllString(src, "$1")
	return []string{src}, nil
}

var pennyArcadeNewRe = regexp.MustCompile(`https://assets\.penny-arcade\.com/comics/\d{8}-[a-zA-Z0-9]+\.jpg`)
var pennyArcadeOldRe = regexp.MustCompile(`src="(https://assets\.penny-arcade\.com/comics/.*?p1.*?)"`)

// pennyArcadeExtractor scrapes the comic page. The feed mixes news posts
// and comics; non-comic entries yield no images rather than an error.
type pennyArcadeExtractor struct {
	fetcher *Fetcher
}

func (e *pennyArcadeExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	if !strings.Contains(entry.Link, "/comic/") {
		lgr.Printf("[DEBUG] skipping non-comic penny arcade entry: %s", entry.Link)
		return nil, nil
	}

	html, err := e.fetcher.Page(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	if m := pennyArcadeNewRe.FindString(html); m != "" {
		return []string{m}, nil
	}

	// old three-panel format, p2 and p3 derived from p1
	if m := pennyArcadeOldRe.FindStringSubmatch(html); m != nil {
		p1 := m[1]
		return []string{p1, strings.Replace(p1, "p1", "p2", 1), strings.Replace(p1, "p1", "p3", 1)}, nil
	}

	return nil, fmt.Errorf("no comic image on %s", entry.Link)
}

var oglafImageRe = regexp.MustCompile(`https?://media\.oglaf\.com/comic/[^"]+\.jpg`)

// oglafExtractor scrapes comic images from the story page. Title cards
// share the directory but start with tt, so they are filtered out. When
// a page counter is available, pages beyond the first are scraped from
// the /2/, /3/... page URLs.
type oglafExtractor struct {
	fetcher *Fetcher
	pages   PageCounter
}

func (e *oglafExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	pageURL := entry.Link
	if pageURL == "" {
		pageURL = "https://www.oglaf.com/"
	}

	images, err := e.pageImages(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if len(images) == 0 {
		return nil, fmt.Errorf("no comic image on %s", pageURL)
	}

	if e.pages == nil || len(images) > 1 {
		return images, nil
	}

	total := e.pages.DetectOglafPages(ctx, images[0])
	for p := 2; p <= total; p++ {
		more, err := e.pageImages(ctx, fmt.Sprintf("%s%d/", ensureTrailingSlash(pageURL), p))
		if err != nil {
			lgr.Printf("[WARN] can't fetch oglaf page %d: %v", p, err)
			break
		}
		images = append(images, more...)
	}
	return images, nil
}

func (e *oglafExtractor) pageImages(ctx context.Context, pageURL string) ([]string, error) {
	html, err := e.fetcher.Page(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	seen := map[string]struct{}{}
	var images []string
	for _, m := range oglafImageRe.FindAllString(html, -1) {
		// tt prefix marks title cards, not comic pages
		if strings.HasPrefix(path.Base(m), "tt") {
			continue
		}
		if _, ok := seen[m]; ok {
			continue
		}
		seen[m] = struct{}{}
		images = append(images, m)
	}
	return images, nil
}

func ensureTrailingSlash(s string) string {
	if strings.HasSuffix(s, "/") {
		return s
	}
	return s + "/"
}

var widdershinsLinkRe = regexp.MustCompile(`<a\s+href="([^"]+)">`)
var widdershinsImageRe = regexp.MustCompile(`https?://(?:www\.)?widdershinscomic\.com/comics/\d+-\d+\.png`)
var widdershinsFallbackRe = regexp.MustCompile(`(?:src|href)="(https?://(?:www\.)?widdershinscomic\.com/comics/[^"]+\.png)"`)

// widdershinsExtractor follows the comic page link in the entry
// description, falling back to the entry link.
type widdershinsExtractor struct {
	fetcher *Fetcher
}

func (e *widdershinsExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	pageURL := entry.Link
	if m := widdershinsLinkRe.FindStringSubmatch(entry.Description); m != nil {
		pageURL = m[1]
	}
	if pageURL == "" {
		return nil, fmt.Errorf("no comic page url for entry %q", entry.Title)
	}

	html, err := e.fetcher.Page(ctx, pageURL)
	if err != nil {
		return nil, err
	}

	if m := widdershinsImageRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	if m := widdershinsFallbackRe.FindStringSubmatch(html); m != nil {
		return []string{m[1]}, nil
	}
	return nil, fmt.Errorf("no comic image on %s", pageURL)
}

// gunnerkriggExtractor scrapes the comic page for the img.comic_image
// element; the site serves root-relative image paths.
type gunnerkriggExtractor struct {
	fetcher *Fetcher
}

func (e *gunnerkriggExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	if entry.Link == "" {
		return nil, fmt.Errorf("no link for entry %q", entry.Title)
	}

	html, err := e.fetcher.Page(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, fmt.Errorf("parse comic page: %w", err)
	}

	src, ok := doc.Find("img.comic_image").First().Attr("src")
	if !ok || src == "" {
		return nil, fmt.Errorf("no comic image on %s", entry.Link)
	}
	if !strings.HasPrefix(src, "http") {
		src = "https://www.gunnerkrigg.com" + src
	}
	return []string{src}, nil
}

// savestateExtractor works from the entry content like the default one
// but always strips dimension suffixes, with or without extension match.
type savestateExtractor struct{}

var savestateSizeRe = regexp.MustCompile(`-\d+x\d+`)

func (e *savestateExtractor) ImageURLs(_ context.Context, entry domain.Entry) ([]string, error) {
	content := entry.Content
	if strings.TrimSpace(content) == "" {
		content = entry.Description
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("parse entry content: %w", err)
	}

	src, ok := doc.Find("img").First().Attr("src")
	if !ok || src == "" {
		return nil, fmt.Errorf("no image in entry %q", entry.Title)
	}
	return []string{savestateSizeRe.ReplaceAllString(src, "")}, nil
}

var wondermarkImageRe = regexp.MustCompile(`https?://wondermark\.com/wp-content/uploads/\d{4}/\d{2}/\d{4}-\d{2}-\d{2}-\d+[a-z]+\.png`)
var wondermarkFallbackRe = regexp.MustCompile(`https?://wondermark\.com/wp-content/uploads/[^"]+\.png`)

// wondermarkExtractor scrapes the comic page for its dated upload
type wondermarkExtractor struct {
	fetcher *Fetcher
}

func (e *wondermarkExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	if entry.Link == "" {
		return nil, fmt.Errorf("no link for entry %q", entry.Title)
	}

	html, err := e.fetcher.Page(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	if m := wondermarkImageRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	if m := wondermarkFallbackRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	return nil, fmt.Errorf("no comic image on %s", entry.Link)
}

var evilIncCompositeRe = regexp.MustCompile(`https?://[^"]*wp-content/uploads/\d{4}/\d{2}/\d{8}_evil\.jpg`)
var evilIncRelativeRe = regexp.MustCompile(`wp-content/uploads/(\d{4}/\d{2}/\d{8}_evil\.jpg)`)

// evilIncExtractor wants the YYYYMMDD_evil.jpg composite of all panels,
// not the individual evil01..evil06 panel files.
type evilIncExtractor struct {
	fetcher *Fetcher
}

func (e *evilIncExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	if entry.Link == "" {
		return nil, fmt.Errorf("no link for entry %q", entry.Title)
	}

	html, err := e.fetcher.Page(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	if m := evilIncCompositeRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	if m := evilIncRelativeRe.FindStringSubmatch(html); m != nil {
		return []string{"https://www.evil-inc.com/wp-content/uploads/" + m[1]}, nil
	}
	return nil, fmt.Errorf("no composite comic image on %s", entry.Link)
}

var incaseImageRe = regexp.MustCompile(`https?://incase\.buttsmithy\.com/wp-content/uploads/\d{4}/\d{2}/[^"]+\.jpg`)
var incaseFallbackRe = regexp.MustCompile(`https?://incase\.buttsmithy\.com/wp-content/uploads/[^"]+\.jpg`)

// incaseExtractor scrapes the comic page for its sequential upload
type incaseExtractor struct {
	fetcher *Fetcher
}

func (e *incaseExtractor) ImageURLs(ctx context.Context, entry domain.Entry) ([]string, error) {
	if entry.Link == "" {
		return nil, fmt.Errorf("no link for entry %q", entry.Title)
	}

	html, err := e.fetcher.Page(ctx, entry.Link)
	if err != nil {
		return nil, err
	}

	if m := incaseImageRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	if m := incaseFallbackRe.FindString(html); m != "" {
		return []string{m}, nil
	}
	return nil, fmt.Errorf("no comic image on %s", entry.Link)
}
