package models

import "time"

// RawItem is one collected unit from any platform, normalized so that
// downstream analysis never has to know which platform it came from.
type RawItem struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"`  // "twitter", "facebook", "linkedin", "instagram", "web"
	Keyword   string          `json:"keyword"` // Keyword that produced this item
	Text      string          `json:"text"`    // May be empty, never absent
	Title     string          `json:"title,omitempty"`
	Author    string          `json:"author,omitempty"`
	URL       string          `json:"url,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	Likes     int             `json:"likes,omitempty"`
	Shares    int             `json:"shares,omitempty"`
	Sentiment *SentimentScore `json:"sentiment,omitempty"`
	PainPoint string          `json:"pain_point,omitempty"`
	Struggle  string          `json:"struggle,omitempty"`
}

// PageRecord is one fetched page from a website crawl.
type PageRecord struct {
	URL             string    `json:"url"`
	Title           string    `json:"title"`
	MetaDescription string    `json:"meta_description"`
	Content         string    `json:"content"`      // Rendered text with script/style/nav/header/footer stripped
	ContentHash     string    `json:"content_hash"` // Pure function of Content
	Depth           int       `json:"depth"`
	FetchedAt       time.Time `json:"fetched_at"`
}

// SentimentScore holds VADER-style sentiment proportions. Positive,
// Negative and Neutral sum to 1 (modulo rounding); Compound is in [-1, 1].
type SentimentScore struct {
	Positive float64 `json:"positive"`
	Negative float64 `json:"negative"`
	Neutral  float64 `json:"neutral"`
	Compound float64 `json:"compound"`
}

// CollectionResult is the output of one collection run: ordered items per
// social platform plus crawled pages per seed website.
type CollectionResult struct {
	Social   map[string][]RawItem    `json:"social_media"`
	Websites map[string][]PageRecord `json:"websites"`
}

// ReportMetadata describes the parameters and scope of one research run.
type ReportMetadata struct {
	Keywords   []string  `json:"keywords"`
	Websites   []string  `json:"websites"`
	DaysBack   int       `json:"days_back"`
	MaxItems   int       `json:"max_items"`
	Timestamp  time.Time `json:"timestamp"`
	TotalItems int       `json:"total_items"`
}

// KeywordStat counts how often one keyword surfaced, broken down by platform.
type KeywordStat struct {
	Total     int            `json:"total"`
	Platforms map[string]int `json:"platforms"`
}

// TermCount is one entry of a word-frequency ranking.
type TermCount struct {
	Term  string `json:"term"`
	Count int    `json:"count"`
}

// Analytics aggregates the analyzer output over a whole collection run.
type Analytics struct {
	PlatformStats    map[string]int         `json:"platform_stats"`
	KeywordStats     map[string]KeywordStat `json:"keyword_stats"`
	AverageSentiment SentimentScore         `json:"average_sentiment"`
	PainPoints       map[string]int         `json:"pain_points"`
	Struggles        map[string]int         `json:"struggles"`
	TopTerms         []TermCount            `json:"top_terms"`
	Topics           [][]string             `json:"topics,omitempty"`
}

// Report is the persisted result document of one research run.
type Report struct {
	Metadata  ReportMetadata   `json:"metadata"`
	Data      CollectionResult `json:"data"`
	Analytics *Analytics       `json:"analytics,omitempty"`
}

// TotalItems counts every collected unit, social items and pages alike.
func (c CollectionResult) TotalItems() int {
	total := 0
	for _, items := range c.Social {
		total += len(items)
	}
	for _, pages := range c.Websites {
		total += len(pages)
	}
	return total
}
