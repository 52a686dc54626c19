package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// facebookTimeLayout matches Graph API created_time values like
// 2024-03-01T12:30:00+0000.
const facebookTimeLayout = "2006-01-02T15:04:05-0700"

// FacebookSource implements the Facebook Graph API post search source
type FacebookSource struct {
	cfg    config.FacebookConfig
	client *resty.Client
	log    *logrus.Entry
}

type facebookSearchResponse struct {
	Data   []facebookPost `json:"data"`
	Paging struct {
		Next string `json:"next"`
	} `json:"paging"`
}

type facebookPost struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Story       string `json:"story"`
	CreatedTime string `json:"created_time"`
	From        struct {
		Name string `json:"name"`
	} `json:"from"`
}

// NewFacebookSource creates a new Facebook source
func NewFacebookSource(cfg config.FacebookConfig, log *logrus.Entry) *FacebookSource {
	return &FacebookSource{
		cfg: cfg,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "InsightPipe-Scout/1.0"),
		log: log,
	}
}

func (f *FacebookSource) GetName() string {
	return "facebook"
}

func (f *FacebookSource) IsEnabled() bool {
	return f.cfg.Enabled && f.cfg.AccessToken != ""
}

func (f *FacebookSource) Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error) {
	if !f.IsEnabled() {
		return nil, ErrUnavailable
	}

	var items []models.RawItem

	for i, keyword := range keywords {
		if len(items) >= limit {
			break
		}

		if i > 0 {
			if err := pause(ctx, f.cfg.RateLimit); err != nil {
				return items, err
			}
		}

		batch, err := f.searchKeyword(ctx, keyword, since, limit-len(items))
		if err != nil {
			f.log.Errorf("Failed to search Facebook for keyword '%s': %v", keyword, err)
			continue
		}

		f.log.Infof("Found %d Facebook posts for keyword '%s'", len(batch), keyword)
		items = append(items, batch...)
	}

	return deduplicate(items), nil
}

func (f *FacebookSource) searchKeyword(ctx context.Context, keyword string, since time.Time, remaining int) ([]models.RawItem, error) {
	searchLimit := f.cfg.BatchSize
	if remaining < searchLimit {
		searchLimit = remaining
	}

	resp, err := f.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"type":         "post",
			"q":            keyword,
			"limit":        strconv.Itoa(searchLimit),
			"fields":       "id,message,story,created_time,from",
			"access_token": f.cfg.AccessToken,
		}).
		Get("https://graph.facebook.com/v18.0/search")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("facebook API returned status %d: %s", resp.StatusCode(), string(resp.Body()))
	}

	var searchResp facebookSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse Facebook response: %w", err)
	}

	var items []models.RawItem

	for _, post := range searchResp.Data {
		createdAt, err := time.Parse(facebookTimeLayout, post.CreatedTime)
		if err != nil {
			f.log.Errorf("Failed to parse Facebook timestamp '%s': %v", post.CreatedTime, err)
			continue
		}

		// The Graph API has no start_time filter for post search, so the
		// day window is applied here
		if createdAt.Before(since) {
			continue
		}

		text := post.Message
		if text == "" {
			text = post.Story
		}

		items = append(items, models.RawItem{
			ID:        fmt.Sprintf("facebook_%s", post.ID),
			Source:    "facebook",
			Keyword:   keyword,
			Text:      text,
			Author:    post.From.Name,
			URL:       fmt.Sprintf("https://www.facebook.com/%s", post.ID),
			CreatedAt: createdAt,
		})
	}

	return items, nil
}
