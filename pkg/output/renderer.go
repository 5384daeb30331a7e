// Package output renders the daily digest page.
package output

import (
	"embed"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"time"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

//go:embed templates/*.tmpl
var templatesFS embed.FS

// Renderer writes the digest HTML for one run
type Renderer struct {
	pageTitle string
	tmpl      *template.Template
}

// NewRenderer parses the embedded digest template
func NewRenderer(pageTitle string) (*Renderer, error) {
	tmpl, err := template.New("digest.html.tmpl").Funcs(template.FuncMap{
		"badge": clickbaitBadge,
	}).ParseFS(templatesFS, "templates/digest.html.tmpl")
	if err != nil {
		return nil, fmt.Errorf("parse digest template: %w", err)
	}
	return &Renderer{pageTitle: pageTitle, tmpl: tmpl}, nil
}

// DatedDir returns the per-day output directory for the given time
func DatedDir(baseDir string, t time.Time) string {
	return filepath.Join(baseDir, t.Format("2006-01-02"))
}

type feedArticles struct {
	FeedName string
	Articles []domain.ArticleResult
}

type digestData struct {
	Title    string
	Date     string
	DateTime string
	Comics   []domain.ComicResult
	Articles []domain.ArticleResult
	Feeds    []feedArticles
	Errors   []domain.FeedError
}

// Render writes index.html for the report into dir and returns its path.
// Image paths in the report are relative to dir, so the page works from
// the file system and from the preview server alike.
func (r *Renderer) Render(report *domain.Report, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	now := time.Now()
	data := digestData{
		Title:    r.pageTitle,
		Date:     now.Format("Monday, January 2, 2006"),
		DateTime: now.Format("2006-01-02 15:04:05"),
		Comics:   report.Comics,
		Articles: report.Articles,
		Feeds:    groupArticles(report.Articles),
		Errors:   report.Errors,
	}

	path := filepath.Join(dir, "index.html")
	f, err := os.Create(path) //nolint:gosec // output path comes from config
	if err != nil {
		return "", fmt.Errorf("create digest file: %w", err)
	}

	if err := r.tmpl.Execute(f, data); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("render digest: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close digest file: %w", err)
	}

	lgr.Printf("[INFO] digest written to %s", path)
	return path, nil
}

// groupArticles keeps feed order as articles arrived, articles grouped
// under their feed
func groupArticles(articles []domain.ArticleResult) []feedArticles {
	index := map[string]int{}
	var groups []feedArticles
	for _, a := range articles {
		i, ok := index[a.FeedName]
		if !ok {
			i = len(groups)
			index[a.FeedName] = i
			groups = append(groups, feedArticles{FeedName: a.FeedName})
		}
		groups[i].Articles = append(groups[i].Articles, a)
	}
	return groups
}

func clickbaitBadge(source domain.ClickbaitSource) string {
	switch source {
	case domain.ClickbaitByBoth:
		return "CLICKBAIT (AI + Author)"
	case domain.ClickbaitByAI:
		return "CLICKBAIT (AI Detected)"
	case domain.ClickbaitByAuthor:
		return "CLICKBAIT (Known Author)"
	}
	return ""
}
