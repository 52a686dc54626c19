package crawler

import (
	"crypto/sha256"
	"fmt"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// pageContent is the distilled form of one rendered page.
type pageContent struct {
	title    string
	metaDesc string
	text     string
	links    []string
}

// extractPage pulls the title, meta description, readable text and outgoing
// links out of rendered HTML. Boilerplate containers are removed before the
// text is collected, so navigation chrome never pollutes the stored content.
func extractPage(html string, base *url.URL) (pageContent, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return pageContent{}, fmt.Errorf("failed to parse HTML: %w", err)
	}

	content := pageContent{
		title:    strings.TrimSpace(doc.Find("title").First().Text()),
		metaDesc: strings.TrimSpace(doc.Find(`meta[name="description"]`).AttrOr("content", "")),
	}

	doc.Find("a[href]").Each(func(_ int, sel *goquery.Selection) {
		href, ok := sel.Attr("href")
		if !ok {
			return
		}
		resolved := resolveLink(base, href)
		if resolved != "" {
			content.links = append(content.links, resolved)
		}
	})

	doc.Find("script, style, nav, header, footer").Remove()
	content.text = strings.Join(strings.Fields(doc.Find("body").Text()), " ")

	return content, nil
}

// resolveLink turns an href into an absolute http(s) URL without fragment,
// or "" when the href is not crawlable (mailto:, javascript:, malformed).
func resolveLink(base *url.URL, href string) string {
	ref, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return ""
	}

	resolved := base.ResolveReference(ref)
	if resolved.Scheme != "http" && resolved.Scheme != "https" {
		return ""
	}
	resolved.Fragment = ""

	return resolved.String()
}

// contentHash is a pure digest of the page content, used for de-duplication
// and change detection across fetches.
func contentHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return fmt.Sprintf("%x", hash)
}
