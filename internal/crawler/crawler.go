package crawler

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/net/publicsuffix"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/models"
)

// Crawler walks one website breadth-first from a seed URL, bounded by depth
// and a per-domain page cap. Only links under the seed's registrable domain
// are followed, and no URL is fetched twice within a crawl.
type Crawler struct {
	cfg     config.WebScraperConfig
	fetcher Fetcher
	log     *logrus.Entry
}

type frontierEntry struct {
	url   string
	depth int
}

// New creates a crawler around the given fetcher
func New(cfg config.WebScraperConfig, fetcher Fetcher, log *logrus.Entry) *Crawler {
	return &Crawler{cfg: cfg, fetcher: fetcher, log: log}
}

// Crawl fetches the seed page and follows same-domain links up to the
// configured depth. Failed page fetches are logged and skipped; the crawl
// keeps going with whatever remains in the frontier.
func (c *Crawler) Crawl(ctx context.Context, seedURL string) ([]models.PageRecord, error) {
	seed, err := url.Parse(seedURL)
	if err != nil {
		return nil, fmt.Errorf("invalid seed URL %q: %w", seedURL, err)
	}
	if (seed.Scheme != "http" && seed.Scheme != "https") || seed.Hostname() == "" {
		return nil, fmt.Errorf("invalid seed URL %q", seedURL)
	}

	scope := registrableDomain(seed.Hostname())
	visited := make(map[string]bool)
	queue := []frontierEntry{{url: normalizeURL(seed), depth: 0}}

	var pages []models.PageRecord

	for len(queue) > 0 {
		if err := ctx.Err(); err != nil {
			return pages, err
		}
		if len(visited) >= c.cfg.MaxPagesPerDomain {
			c.log.Infof("Page cap reached for %s after %d URLs", scope, len(visited))
			break
		}

		entry := queue[0]
		queue = queue[1:]

		// The visited check runs here rather than at enqueue time, so a URL
		// discovered on two pages is still fetched only once
		if entry.depth > c.cfg.MaxDepth || visited[entry.url] {
			continue
		}
		visited[entry.url] = true

		if len(visited) > 1 {
			if err := c.pause(ctx); err != nil {
				return pages, err
			}
		}

		html, err := c.fetcher.FetchHTML(ctx, entry.url)
		if err != nil {
			c.log.Errorf("Failed to fetch %s: %v", entry.url, err)
			continue
		}

		pageURL, err := url.Parse(entry.url)
		if err != nil {
			continue
		}

		content, err := extractPage(html, pageURL)
		if err != nil {
			c.log.Errorf("Failed to extract content from %s: %v", entry.url, err)
			continue
		}

		pages = append(pages, models.PageRecord{
			URL:             entry.url,
			Title:           content.title,
			MetaDescription: content.metaDesc,
			Content:         content.text,
			ContentHash:     contentHash(content.text),
			Depth:           entry.depth,
			FetchedAt:       time.Now().UTC(),
		})

		if entry.depth >= c.cfg.MaxDepth {
			continue
		}

		for _, link := range content.links {
			if visited[link] {
				continue
			}
			if !inScope(link, scope) {
				continue
			}
			queue = append(queue, frontierEntry{url: link, depth: entry.depth + 1})
		}
	}

	c.log.Infof("Crawl of %s finished: %d pages from %d visited URLs", seedURL, len(pages), len(visited))
	return pages, nil
}

func (c *Crawler) pause(ctx context.Context) error {
	delay := time.Duration(c.cfg.RequestDelay * float64(time.Second))
	if delay <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(delay):
		return nil
	}
}

func inScope(link, scope string) bool {
	u, err := url.Parse(link)
	if err != nil {
		return false
	}
	return registrableDomain(u.Hostname()) == scope
}

// registrableDomain reduces a host to its eTLD+1, so sub.example.com and
// example.com count as the same site. IP addresses are compared whole: the
// public suffix list would happily split one on its dots and treat the last
// two octets as a domain. Other hosts the list cannot split (localhost) are
// used as-is.
func registrableDomain(host string) string {
	host = strings.ToLower(host)
	if net.ParseIP(host) != nil {
		return host
	}
	if domain, err := publicsuffix.EffectiveTLDPlusOne(host); err == nil {
		return domain
	}
	return host
}

func normalizeURL(u *url.URL) string {
	normalized := *u
	normalized.Fragment = ""
	return normalized.String()
}
