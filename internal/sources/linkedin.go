package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// LinkedInSource implements a LinkedIn content search source. LinkedIn has
// no public search API, so this client drives the same Voyager endpoints the
// web app uses, authenticated with a member session.
//
// The content search surface exposes no date filter, so the day window is
// not applied for this platform.
type LinkedInSource struct {
	cfg       config.LinkedInConfig
	client    *resty.Client
	log       *logrus.Entry
	csrfToken string
}

type linkedinSearchResponse struct {
	Elements []linkedinPost `json:"elements"`
	Paging   struct {
		Total int `json:"total"`
	} `json:"paging"`
}

type linkedinPost struct {
	Urn        string `json:"urn"`
	Commentary struct {
		Text string `json:"text"`
	} `json:"commentary"`
	Actor struct {
		Name string `json:"name"`
	} `json:"actor"`
}

// NewLinkedInSource creates a new LinkedIn source
func NewLinkedInSource(cfg config.LinkedInConfig, log *logrus.Entry) *LinkedInSource {
	return &LinkedInSource{
		cfg: cfg,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "InsightPipe-Scout/1.0"),
		log: log,
	}
}

func (l *LinkedInSource) GetName() string {
	return "linkedin"
}

func (l *LinkedInSource) IsEnabled() bool {
	return l.cfg.Enabled && l.cfg.Email != "" && l.cfg.Password != ""
}

func (l *LinkedInSource) Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error) {
	if !l.IsEnabled() {
		return nil, ErrUnavailable
	}

	if err := l.authenticate(ctx); err != nil {
		return nil, fmt.Errorf("linkedin authentication failed: %w", err)
	}

	var items []models.RawItem

	for i, keyword := range keywords {
		if len(items) >= limit {
			break
		}

		if i > 0 {
			if err := pause(ctx, l.cfg.RateLimit); err != nil {
				return items, err
			}
		}

		batch, err := l.searchKeyword(ctx, keyword, limit-len(items))
		if err != nil {
			l.log.Errorf("Failed to search LinkedIn for keyword '%s': %v", keyword, err)
			continue
		}

		l.log.Infof("Found %d LinkedIn posts for keyword '%s'", len(batch), keyword)
		items = append(items, batch...)
	}

	return deduplicate(items), nil
}

// authenticate opens a member session. The cookie jar keeps the session
// cookies; the JSESSIONID value doubles as the CSRF token on every
// subsequent Voyager call.
func (l *LinkedInSource) authenticate(ctx context.Context) error {
	if l.csrfToken != "" {
		return nil
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetFormData(map[string]string{
			"session_key":      l.cfg.Email,
			"session_password": l.cfg.Password,
		}).
		Post("https://www.linkedin.com/uas/authenticate")

	if err != nil {
		return err
	}

	if resp.StatusCode() != 200 {
		return fmt.Errorf("linkedin returned status %d", resp.StatusCode())
	}

	for _, cookie := range resp.Cookies() {
		if cookie.Name == "JSESSIONID" {
			l.csrfToken = strings.Trim(cookie.Value, `"`)
			break
		}
	}

	if l.csrfToken == "" {
		return fmt.Errorf("linkedin session cookie missing")
	}

	return nil
}

func (l *LinkedInSource) searchKeyword(ctx context.Context, keyword string, remaining int) ([]models.RawItem, error) {
	count := l.cfg.BatchSize
	if remaining < count {
		count = remaining
	}

	resp, err := l.client.R().
		SetContext(ctx).
		SetHeader("csrf-token", l.csrfToken).
		SetHeader("accept", "application/vnd.linkedin.normalized+json+2.1").
		SetQueryParams(map[string]string{
			"keywords": keyword,
			"filters":  "List(resultType->CONTENT)",
			"count":    strconv.Itoa(count),
			"start":    "0",
		}).
		Get("https://www.linkedin.com/voyager/api/search/content")

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("linkedin API returned status %d", resp.StatusCode())
	}

	var searchResp linkedinSearchResponse
	if err := json.Unmarshal(resp.Body(), &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse LinkedIn response: %w", err)
	}

	var items []models.RawItem

	for _, post := range searchResp.Elements {
		if post.Urn == "" {
			continue
		}

		items = append(items, models.RawItem{
			ID:      fmt.Sprintf("linkedin_%s", post.Urn),
			Source:  "linkedin",
			Keyword: keyword,
			Text:    post.Commentary.Text,
			Author:  post.Actor.Name,
			URL:     fmt.Sprintf("https://www.linkedin.com/feed/update/%s/", post.Urn),
		})
	}

	return items, nil
}
