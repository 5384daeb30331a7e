package domain

import "time"

// FeedType classifies a feed by the kind of content it carries
type FeedType string

// Known feed types. Comics are processed by downloading images,
// news by extracting and summarizing article text.
const (
	FeedTypeComic FeedType = "comic"
	FeedTypeNews  FeedType = "news"
)

// Valid reports whether the type is one of the known values
func (t FeedType) Valid() bool {
	return t == FeedTypeComic || t == FeedTypeNews
}

// ParsedFeed represents a normalized RSS/Atom feed
type ParsedFeed struct {
	URL     string
	Title   string
	Link    string
	Entries []Entry
}

// Entry represents a single item within a feed
type Entry struct {
	Title       string
	Link        string
	Description string
	Content     string
	Author      string
	Published   time.Time
}

// ClassifiedFeed couples a parsed feed with its classification outcome
// and the entries selected for downstream processing.
type ClassifiedFeed struct {
	Feed           *ParsedFeed
	Name           string
	Type           FeedType
	SpecialHandler string
	Language       string
	Entries        []Entry
}
