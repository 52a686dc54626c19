package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// InstagramSource implements an Instagram hashtag feed source using the web
// endpoints behind a logged-in session. Keywords are mapped to hashtags by
// stripping the '#' sigil.
//
// The hashtag feed exposes no date filter, so the day window is not applied
// for this platform.
type InstagramSource struct {
	cfg      config.InstagramConfig
	client   *resty.Client
	log      *logrus.Entry
	loggedIn bool
}

type instagramLoginResponse struct {
	Authenticated bool   `json:"authenticated"`
	Status        string `json:"status"`
}

type instagramTagResponse struct {
	GraphQL struct {
		Hashtag struct {
			Name  string `json:"name"`
			Media struct {
				Edges []struct {
					Node instagramMediaNode `json:"node"`
				} `json:"edges"`
			} `json:"edge_hashtag_to_media"`
		} `json:"hashtag"`
	} `json:"graphql"`
}

type instagramMediaNode struct {
	ID        string `json:"id"`
	Shortcode string `json:"shortcode"`
	TakenAt   int64  `json:"taken_at_timestamp"`
	Caption   struct {
		Edges []struct {
			Node struct {
				Text string `json:"text"`
			} `json:"node"`
		} `json:"edges"`
	} `json:"edge_media_to_caption"`
	LikedBy struct {
		Count int `json:"count"`
	} `json:"edge_liked_by"`
}

// NewInstagramSource creates a new Instagram source
func NewInstagramSource(cfg config.InstagramConfig, log *logrus.Entry) *InstagramSource {
	return &InstagramSource{
		cfg: cfg,
		client: resty.New().
			SetTimeout(30*time.Second).
			SetHeader("User-Agent", "InsightPipe-Scout/1.0"),
		log: log,
	}
}

func (s *InstagramSource) GetName() string {
	return "instagram"
}

func (s *InstagramSource) IsEnabled() bool {
	return s.cfg.Enabled && s.cfg.Username != "" && s.cfg.Password != ""
}

func (s *InstagramSource) Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error) {
	if !s.IsEnabled() {
		return nil, ErrUnavailable
	}

	if err := s.login(ctx); err != nil {
		return nil, fmt.Errorf("instagram login failed: %w", err)
	}

	var items []models.RawItem

	for i, keyword := range keywords {
		if len(items) >= limit {
			break
		}

		// Media endpoints are throttled harder than text search, hence the
		// longer default delay for this platform
		if i > 0 {
			if err := pause(ctx, s.cfg.RateLimit); err != nil {
				return items, err
			}
		}

		batch, err := s.fetchHashtag(ctx, keyword, limit-len(items))
		if err != nil {
			s.log.Errorf("Failed to fetch Instagram hashtag for keyword '%s': %v", keyword, err)
			continue
		}

		s.log.Infof("Found %d Instagram posts for keyword '%s'", len(batch), keyword)
		items = append(items, batch...)
	}

	return deduplicate(items), nil
}

// login performs the two-step web login: fetch the login page for the CSRF
// cookie, then post the credentials with that token.
func (s *InstagramSource) login(ctx context.Context) error {
	if s.loggedIn {
		return nil
	}

	resp, err := s.client.R().
		SetContext(ctx).
		Get("https://www.instagram.com/accounts/login/")
	if err != nil {
		return err
	}

	csrfToken := ""
	for _, cookie := range resp.Cookies() {
		if cookie.Name == "csrftoken" {
			csrfToken = cookie.Value
			break
		}
	}
	if csrfToken == "" {
		return fmt.Errorf("instagram csrf cookie missing")
	}

	encPassword := fmt.Sprintf("#PWD_INSTAGRAM_BROWSER:0:%d:%s", time.Now().Unix(), s.cfg.Password)

	loginResp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-CSRFToken", csrfToken).
		SetFormData(map[string]string{
			"username":     s.cfg.Username,
			"enc_password": encPassword,
		}).
		Post("https://www.instagram.com/accounts/login/ajax/")
	if err != nil {
		return err
	}

	if loginResp.StatusCode() != 200 {
		return fmt.Errorf("instagram returned status %d", loginResp.StatusCode())
	}

	var result instagramLoginResponse
	if err := json.Unmarshal(loginResp.Body(), &result); err != nil {
		return fmt.Errorf("failed to parse Instagram login response: %w", err)
	}

	if !result.Authenticated {
		return fmt.Errorf("instagram rejected the credentials")
	}

	s.loggedIn = true
	return nil
}

func (s *InstagramSource) fetchHashtag(ctx context.Context, keyword string, remaining int) ([]models.RawItem, error) {
	tag := strings.ReplaceAll(keyword, "#", "")

	resp, err := s.client.R().
		SetContext(ctx).
		SetHeader("X-IG-App-ID", "936619743392459").
		Get(fmt.Sprintf("https://www.instagram.com/explore/tags/%s/?__a=1&__d=dis", url.PathEscape(tag)))

	if err != nil {
		return nil, err
	}

	if resp.StatusCode() != 200 {
		return nil, fmt.Errorf("instagram API returned status %d", resp.StatusCode())
	}

	var tagResp instagramTagResponse
	if err := json.Unmarshal(resp.Body(), &tagResp); err != nil {
		return nil, fmt.Errorf("failed to parse Instagram response: %w", err)
	}

	max := s.cfg.BatchSize
	if remaining < max {
		max = remaining
	}

	var items []models.RawItem

	for _, edge := range tagResp.GraphQL.Hashtag.Media.Edges {
		if len(items) >= max {
			break
		}

		node := edge.Node
		caption := ""
		if len(node.Caption.Edges) > 0 {
			caption = node.Caption.Edges[0].Node.Text
		}

		items = append(items, models.RawItem{
			ID:        fmt.Sprintf("instagram_%s", node.ID),
			Source:    "instagram",
			Keyword:   keyword,
			Text:      caption,
			URL:       fmt.Sprintf("https://www.instagram.com/p/%s/", node.Shortcode),
			CreatedAt: time.Unix(node.TakenAt, 0).UTC(),
			Likes:     node.LikedBy.Count,
		})
	}

	return items, nil
}
