package crawler

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insightpipe/scout/internal/config"
)

type stubFetcher struct {
	pages map[string]string
	calls []string
}

func (s *stubFetcher) FetchHTML(_ context.Context, pageURL string) (string, error) {
	s.calls = append(s.calls, pageURL)
	html, ok := s.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no page for %s", pageURL)
	}
	return html, nil
}

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func testConfig() config.WebScraperConfig {
	return config.WebScraperConfig{
		MaxDepth:          1,
		MaxPagesPerDomain: 100,
		RequestDelay:      0,
		Timeout:           30,
	}
}

func htmlPage(title string, links ...string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>")
	b.WriteString(title)
	b.WriteString("</title></head><body>")
	for _, link := range links {
		fmt.Fprintf(&b, `<a href="%s">link</a>`, link)
	}
	b.WriteString("<p>Body text for ")
	b.WriteString(title)
	b.WriteString("</p></body></html>")
	return b.String()
}

func TestCrawlStaysOnSameDomain(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test": htmlPage("Home",
			"https://example.test/about",
			"https://example.test/products",
			"https://other.test/elsewhere",
		),
		"https://example.test/about":    htmlPage("About"),
		"https://example.test/products": htmlPage("Products"),
	}}

	c := New(testConfig(), fetcher, testLogger())
	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)

	require.Len(t, pages, 3)
	for _, page := range pages {
		u, err := url.Parse(page.URL)
		require.NoError(t, err)
		assert.Equal(t, "example.test", registrableDomain(u.Hostname()))
	}
	assert.NotContains(t, fetcher.calls, "https://other.test/elsewhere")
}

func TestCrawlNeverFetchesTwice(t *testing.T) {
	// Every page links back to the others
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test":   htmlPage("Home", "https://example.test/a", "https://example.test/b"),
		"https://example.test/a": htmlPage("A", "https://example.test", "https://example.test/b"),
		"https://example.test/b": htmlPage("B", "https://example.test", "https://example.test/a"),
	}}

	cfg := testConfig()
	cfg.MaxDepth = 3
	c := New(cfg, fetcher, testLogger())

	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)
	assert.Len(t, pages, 3)

	seen := make(map[string]int)
	for _, call := range fetcher.calls {
		seen[call]++
	}
	for call, count := range seen {
		assert.Equal(t, 1, count, "URL %s fetched more than once", call)
	}
}

func TestCrawlDepthBound(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test":      htmlPage("Home", "https://example.test/deep"),
		"https://example.test/deep": htmlPage("Deep", "https://example.test/deeper"),
	}}

	cfg := testConfig()
	cfg.MaxDepth = 0
	c := New(cfg, fetcher, testLogger())

	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)

	require.Len(t, pages, 1)
	assert.Equal(t, "https://example.test", pages[0].URL)
	assert.Equal(t, 0, pages[0].Depth)
	assert.Len(t, fetcher.calls, 1)
}

func TestCrawlRecordsDepth(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test":       htmlPage("Home", "https://example.test/child"),
		"https://example.test/child": htmlPage("Child"),
	}}

	c := New(testConfig(), fetcher, testLogger())
	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, 0, pages[0].Depth)
	assert.Equal(t, 1, pages[1].Depth)
}

func TestCrawlPageCap(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test": htmlPage("Home",
			"https://example.test/1",
			"https://example.test/2",
			"https://example.test/3",
		),
		"https://example.test/1": htmlPage("One"),
		"https://example.test/2": htmlPage("Two"),
		"https://example.test/3": htmlPage("Three"),
	}}

	cfg := testConfig()
	cfg.MaxPagesPerDomain = 2
	c := New(cfg, fetcher, testLogger())

	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)

	assert.Len(t, pages, 2)
	assert.Len(t, fetcher.calls, 2)
}

func TestCrawlIPSeedStaysOnHost(t *testing.T) {
	// 10.20.0.1 shares its last two dot-labels with 127.0.0.1; splitting the
	// address like a domain name would put both in scope
	fetcher := &stubFetcher{pages: map[string]string{
		"http://127.0.0.1:8080": htmlPage("Home",
			"http://127.0.0.1:8080/status",
			"http://10.20.0.1/away",
		),
		"http://127.0.0.1:8080/status": htmlPage("Status"),
	}}

	c := New(testConfig(), fetcher, testLogger())
	pages, err := c.Crawl(context.Background(), "http://127.0.0.1:8080")
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.NotContains(t, fetcher.calls, "http://10.20.0.1/away")
}

func TestCrawlSubdomainInScope(t *testing.T) {
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.com":           htmlPage("Home", "https://blog.example.com/post"),
		"https://blog.example.com/post": htmlPage("Post"),
	}}

	c := New(testConfig(), fetcher, testLogger())
	pages, err := c.Crawl(context.Background(), "https://example.com")
	require.NoError(t, err)

	assert.Len(t, pages, 2)
	assert.Contains(t, fetcher.calls, "https://blog.example.com/post")
}

func TestCrawlContinuesAfterFetchFailure(t *testing.T) {
	// /broken is linked but has no stub entry, so its fetch fails
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test": htmlPage("Home",
			"https://example.test/broken",
			"https://example.test/ok",
		),
		"https://example.test/ok": htmlPage("OK"),
	}}

	c := New(testConfig(), fetcher, testLogger())
	pages, err := c.Crawl(context.Background(), "https://example.test")
	require.NoError(t, err)

	require.Len(t, pages, 2)
	assert.Equal(t, "https://example.test", pages[0].URL)
	assert.Equal(t, "https://example.test/ok", pages[1].URL)
	assert.Contains(t, fetcher.calls, "https://example.test/broken")
}

func TestCrawlInvalidSeed(t *testing.T) {
	c := New(testConfig(), &stubFetcher{}, testLogger())

	for _, seed := range []string{"", "not a url", "ftp://example.test", "https://"} {
		_, err := c.Crawl(context.Background(), seed)
		assert.Error(t, err, "seed %q should be rejected", seed)
	}
}

func TestCrawlCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test": htmlPage("Home"),
	}}
	c := New(testConfig(), fetcher, testLogger())

	_, err := c.Crawl(ctx, "https://example.test")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestExtractPage(t *testing.T) {
	html := `<html>
<head>
	<title>Widget Shop</title>
	<meta name="description" content="All kinds of widgets">
	<script>var tracking = true;</script>
	<style>body { color: red; }</style>
</head>
<body>
	<nav>Home | Products | Contact</nav>
	<header>Welcome banner</header>
	<p>Our widgets are the best widgets.</p>
	<a href="/about">About</a>
	<a href="https://example.test/pricing#plans">Pricing</a>
	<a href="mailto:sales@example.test">Email us</a>
	<a href="javascript:void(0)">Noop</a>
	<footer>Copyright 2024</footer>
</body>
</html>`

	base, err := url.Parse("https://example.test")
	require.NoError(t, err)

	content, err := extractPage(html, base)
	require.NoError(t, err)

	assert.Equal(t, "Widget Shop", content.title)
	assert.Equal(t, "All kinds of widgets", content.metaDesc)

	assert.Contains(t, content.text, "Our widgets are the best widgets.")
	assert.NotContains(t, content.text, "tracking")
	assert.NotContains(t, content.text, "color: red")
	assert.NotContains(t, content.text, "Welcome banner")
	assert.NotContains(t, content.text, "Copyright 2024")
	assert.NotContains(t, content.text, "Home | Products | Contact")

	assert.Equal(t, []string{
		"https://example.test/about",
		"https://example.test/pricing",
	}, content.links)
}

func TestContentHash(t *testing.T) {
	first := contentHash("identical page content")
	second := contentHash("identical page content")
	assert.Equal(t, first, second)

	changed := contentHash("identical page content, updated")
	assert.NotEqual(t, first, changed)
	assert.Len(t, first, 64)
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host     string
		expected string
	}{
		{"example.com", "example.com"},
		{"blog.example.com", "example.com"},
		{"shop.example.co.uk", "example.co.uk"},
		{"Example.COM", "example.com"},
		{"localhost", "localhost"},
		{"127.0.0.1", "127.0.0.1"},
		{"10.20.0.1", "10.20.0.1"},
		{"::1", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			assert.Equal(t, tt.expected, registrableDomain(tt.host))
		})
	}
}
