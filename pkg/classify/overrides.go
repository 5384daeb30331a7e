package classify

import (
	"bufio"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"

	"github.com/Alexthestampede/DailyFeedSanity/pkg/domain"
)

// parseOverrideLines reads a line-oriented "key = value" file. Blank lines
// and # comments are skipped; malformed lines are logged with their line
// number and dropped. A missing file yields an empty map.
func parseOverrideLines(path string) map[string]string {
	result := map[string]string{}

	f, err := os.Open(path) //nolint:gosec // override path comes from config
	if err != nil {
		if !os.IsNotExist(err) {
			lgr.Printf("[WARN] can't read overrides %s: %v", path, err)
		}
		return result
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		key, value, found := strings.Cut(line, "=")
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if !found || key == "" || value == "" {
			lgr.Printf("[WARN] malformed override at %s:%d: %q", path, lineNum, line)
			continue
		}
		result[key] = value
	}
	if err := scanner.Err(); err != nil {
		lgr.Printf("[WARN] error reading overrides %s: %v", path, err)
	}
	return result
}

// LoadTypeOverrides reads manual feed type overrides keyed by exact feed
// URL. Values outside comic/news are logged and dropped.
func LoadTypeOverrides(path string) map[string]domain.FeedType {
	raw := parseOverrideLines(path)
	result := make(map[string]domain.FeedType, len(raw))
	for url, value := range raw {
		ft := domain.FeedType(strings.ToLower(value))
		if !ft.Valid() {
			lgr.Printf("[WARN] invalid feed type %q for %s in %s, must be comic or news", value, url, path)
			continue
		}
		result[url] = ft
	}
	if len(result) > 0 {
		lgr.Printf("[INFO] loaded %d feed type overrides from %s", len(result), path)
	}
	return result
}

// LoadLanguageOverrides reads manual language overrides. Keys may be bare
// domains or full URLs; they are normalized to the domain form used as the
// language cache key.
func LoadLanguageOverrides(path string) map[string]string {
	raw := parseOverrideLines(path)
	result := make(map[string]string, len(raw))
	for key, language := range raw {
		result[ExtractDomain(key)] = language
	}
	if len(result) > 0 {
		lgr.Printf("[INFO] loaded %d language overrides from %s", len(result), path)
	}
	return result
}

// ExtractDomain normalizes a URL or host to its bare domain: scheme, path,
// port and a leading www. are stripped, the rest lowercased.
func ExtractDomain(rawURL string) string {
	s := strings.TrimSpace(rawURL)
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.ToLower(s)
	return strings.TrimPrefix(s, "www.")
}
