package feed

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/go-pkgz/lgr"
)

// LoadList reads the feed list file: one URL per line, blank lines and
// # comments skipped. Lines that don't look like URLs are logged and
// dropped so one typo doesn't kill the run.
func LoadList(path string) ([]string, error) {
	f, err := os.Open(path) //nolint:gosec // feed list path comes from CLI flag
	if err != nil {
		return nil, fmt.Errorf("open feed list: %w", err)
	}
	defer f.Close()

	var urls []string
	seen := map[string]struct{}{}
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			lgr.Printf("[WARN] skipping non-url line %s:%d: %q", path, lineNum, line)
			continue
		}
		if _, ok := seen[line]; ok {
			continue
		}
		seen[line] = struct{}{}
		urls = append(urls, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read feed list: %w", err)
	}

	lgr.Printf("[INFO] loaded %d feeds from %s", len(urls), path)
	return urls, nil
}
