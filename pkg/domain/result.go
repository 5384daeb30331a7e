package domain

import "time"

// ValidationResult describes the outcome of comic image validation.
// The cheap local stage (format, dimensions) fills Valid and Reason;
// the optional AI stage can only add a positive IsComic flag.
type ValidationResult struct {
	Valid   bool
	Format  string
	Width   int
	Height  int
	IsComic bool
	Reason  string
}

// ComicResult is the outcome of downloading one comic feed
type ComicResult struct {
	FeedName    string
	Title       string
	Link        string
	Images      []string // paths relative to the output directory
	Validations []ValidationResult
}

// ArticleResult is the outcome of summarizing one news entry
type ArticleResult struct {
	FeedName      string
	OriginalTitle string
	URL           string
	Author        string
	Language      string
	Published     time.Time
	Summary       SummaryResult
}

// FeedError records a per-feed failure without aborting the run
type FeedError struct {
	FeedURL string
	Message string
}

// Report aggregates the outcome of a single run
type Report struct {
	Comics   []ComicResult
	Articles []ArticleResult
	Errors   []FeedError
	Started  time.Time
	Finished time.Time
}

// AddError appends a per-feed error to the report
func (r *Report) AddError(feedURL, msg string) {
	r.Errors = append(r.Errors, FeedError{FeedURL: feedURL, Message: msg})
}
