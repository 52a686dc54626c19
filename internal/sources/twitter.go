package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// TwitterSource implements the Twitter/X recent search API source
type TwitterSource struct {
	cfg    config.TwitterConfig
	client *resty.Client
	log    *logrus.Entry
}

type twitterSearchResponse struct {
	Data []twitterTweet `json:"data"`
	Meta struct {
		ResultCount int    `json:"result_count"`
		NextToken   string `json:"next_token"`
	} `json:"meta"`
}

type twitterTweet struct {
	ID            string `json:"id"`
	Text          string `json:"text"`
	AuthorID      string `json:"author_id"`
	CreatedAt     string `json:"created_at"`
	PublicMetrics struct {
		RetweetCount int `json:"retweet_count"`
		LikeCount    int `json:"like_count"`
		ReplyCount   int `json:"reply_count"`
	} `json:"public_metrics"`
	ReferencedTweets []struct {
		Type string `json:"type"`
		ID   string `json:"id"`
	} `json:"referenced_tweets"`
}

// NewTwitterSource creates a new Twitter source
func NewTwitterSource(cfg config.TwitterConfig, log *logrus.Entry) *TwitterSource {
	return &TwitterSource{
		cfg: cfg,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "InsightPipe-Scout/1.0"),
		log: log,
	}
}

func (t *TwitterSource) GetName() string {
	return "twitter"
}

func (t *TwitterSource) IsEnabled() bool {
	return t.cfg.Enabled && t.cfg.BearerToken != ""
}

func (t *TwitterSource) Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error) {
	if !t.IsEnabled() {
		return nil, ErrUnavailable
	}

	var items []models.RawItem

	for i, keyword := range keywords {
		if len(items) >= limit {
			break
		}

		// Delay between keyword searches to respect rate limits
		if i > 0 {
			if err := pause(ctx, t.cfg.RateLimit); err != nil {
				return items, err
			}
		}

		batch, err := t.searchKeyword(ctx, keyword, since, limit-len(items))
		if err != nil {
			t.log.Errorf("Failed to search Twitter for keyword '%s': %v", keyword, err)
			// Continue with other keywords instead of failing completely
			continue
		}

		t.log.Infof("Found %d tweets for keyword '%s'", len(batch), keyword)
		items = append(items, batch...)
	}

	return deduplicate(items), nil
}

func (t *TwitterSource) searchKeyword(ctx context.Context, keyword string, since time.Time, remaining int) ([]models.RawItem, error) {
	query := url.QueryEscape(searchPhrase(keyword))
	searchURL := fmt.Sprintf("https://api.twitter.com/2/tweets/search/recent?query=%s&start_time=%s&max_results=%d&tweet.fields=created_at,author_id,public_metrics,referenced_tweets",
		query, since.UTC().Format(time.RFC3339), clampMaxResults(t.cfg.BatchSize))

	resp, err := t.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+t.cfg.BearerToken).
		Get(searchURL)

	if err != nil {
		return nil, err
	}

	// Rate limited: skip this keyword rather than stalling the whole run
	if resp.StatusCode() == 429 {
		t.log.Warnf("Twitter API rate limit hit for keyword '%s' - skipping", keyword)
		return []models.RawItem{}, nil
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("twitter API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp twitterSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Twitter response: %w", err)
	}

	var items []models.RawItem

	for _, tweet := range searchResp.Data {
		// Skip retweets to avoid duplicates
		if t.isRetweet(tweet) {
			continue
		}

		createdAt, err := time.Parse(time.RFC3339, tweet.CreatedAt)
		if err != nil {
			t.log.Errorf("Failed to parse Twitter timestamp: %v", err)
			continue
		}

		items = append(items, models.RawItem{
			ID:        fmt.Sprintf("twitter_%s", tweet.ID),
			Source:    "twitter",
			Keyword:   keyword,
			Text:      tweet.Text,
			Author:    tweet.AuthorID,
			URL:       fmt.Sprintf("https://twitter.com/i/status/%s", tweet.ID),
			CreatedAt: createdAt,
			Likes:     tweet.PublicMetrics.LikeCount,
			Shares:    tweet.PublicMetrics.RetweetCount,
		})
	}

	// The API wants max_results in [10,100], so the remaining-items cap is
	// applied here instead
	if len(items) > remaining {
		items = items[:remaining]
	}

	return items, nil
}

// searchPhrase wraps the keyword in plain double quotes for exact-phrase
// search. The query language knows nothing of backslash escapes, so the
// keyword goes in verbatim.
func searchPhrase(keyword string) string {
	return `"` + keyword + `"`
}

// clampMaxResults keeps the recent-search page size inside the API's
// accepted range of 10 to 100.
func clampMaxResults(n int) int {
	if n < 10 {
		return 10
	}
	if n > 100 {
		return 100
	}
	return n
}

func (t *TwitterSource) isRetweet(tweet twitterTweet) bool {
	for _, ref := range tweet.ReferencedTweets {
		if ref.Type == "retweeted" {
			return true
		}
	}
	return false
}
