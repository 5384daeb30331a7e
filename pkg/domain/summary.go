package domain

// ClickbaitSource identifies which detector(s) flagged an article
type ClickbaitSource string

// Clickbait detection sources. Both is set only when the static author
// list and the AI detector independently flagged the same article.
const (
	ClickbaitByAuthor ClickbaitSource = "author"
	ClickbaitByAI     ClickbaitSource = "ai"
	ClickbaitByBoth   ClickbaitSource = "both"
	ClickbaitByNone   ClickbaitSource = ""
)

// SummaryResult is the output of article summarization
type SummaryResult struct {
	Summary     string
	Title       string
	IsClickbait bool
	DetectedBy  ClickbaitSource
}

// Article holds extracted article content ready for summarization
type Article struct {
	URL    string
	Title  string
	Author string
	Text   string
}
