package content

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

// boilerplate lines that survive extraction on some sites; matched against
// whole lines, case-insensitive
var boilerplateRe = []*regexp.Regexp{
	regexp.MustCompile(`(?i)^(read more|continue reading|click here).*$`),
	regexp.MustCompile(`(?i)^share (this|on).*$`),
	regexp.MustCompile(`(?i)^(advertisement|sponsored content)$`),
	regexp.MustCompile(`(?i)^subscribe to our newsletter.*$`),
	regexp.MustCompile(`(?i)^(l'articolo|the post) .* (proviene da|appeared first on) .*$`),
	regexp.MustCompile(`(?i)^follow us on .*$`),
	regexp.MustCompile(`(?i)^©\s?\d{4}.*$`),
}

var multiSpaceRe = regexp.MustCompile(`[ \t]{2,}`)
var multiNewlineRe = regexp.MustCompile(`\n{3,}`)

// Cleaner strips markup and boilerplate from extracted article text.
// Feed entries often carry raw HTML in description/content fields, so the
// cleaner accepts both plain text and HTML input.
type Cleaner struct {
	policy *bluemonday.Policy
}

// NewCleaner creates a cleaner with a strip-everything HTML policy
func NewCleaner() *Cleaner {
	return &Cleaner{policy: bluemonday.StrictPolicy()}
}

// Clean strips tags, drops boilerplate lines and normalizes whitespace
func (c *Cleaner) Clean(text string) string {
	// tags to whitespace first so "<p>a</p><p>b</p>" doesn't glue words
	text = strings.ReplaceAll(text, "><", "> <")
	text = c.policy.Sanitize(text)
	text = html.UnescapeString(text)

	var kept []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(multiSpaceRe.ReplaceAllString(line, " "))
		if line == "" {
			kept = append(kept, "")
			continue
		}
		if isBoilerplate(line) {
			continue
		}
		kept = append(kept, line)
	}

	result := strings.Join(kept, "\n")
	result = multiNewlineRe.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

func isBoilerplate(line string) bool {
	for _, re := range boilerplateRe {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}
