package crawler

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/config"
)

// Fetcher returns the rendered HTML of one page. Pages are rendered through
// a browser so content produced by client-side scripts is captured.
type Fetcher interface {
	FetchHTML(ctx context.Context, pageURL string) (string, error)
}

// RenderFetcher is the chromedp-backed Fetcher. The browser process starts
// lazily on the first fetch and stays up for the lifetime of the fetcher;
// every page gets its own tab.
type RenderFetcher struct {
	cfg config.WebScraperConfig
	log *logrus.Entry

	initOnce   sync.Once
	initErr    error
	browserCtx context.Context
	shutdown   func()
}

// NewRenderFetcher creates a new browser-backed fetcher
func NewRenderFetcher(cfg config.WebScraperConfig, log *logrus.Entry) *RenderFetcher {
	return &RenderFetcher{cfg: cfg, log: log}
}

func (f *RenderFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f.initOnce.Do(f.startBrowser)
	if f.initErr != nil {
		return "", f.initErr
	}

	tabCtx, cancelTab := chromedp.NewContext(f.browserCtx)
	defer cancelTab()

	tabCtx, cancelTimeout := context.WithTimeout(tabCtx, time.Duration(f.cfg.Timeout)*time.Second)
	defer cancelTimeout()

	var html string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(pageURL),
		// Give client-side scripts a moment to populate the DOM
		chromedp.Sleep(2*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("failed to render %s: %w", pageURL, err)
	}

	return html, nil
}

func (f *RenderFetcher) startBrowser() {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent(f.cfg.UserAgent),
	)
	if bin := findChromeBinary(); bin != "" {
		f.log.Debugf("Using browser binary: %s", bin)
		opts = append(opts, chromedp.ExecPath(bin))
	}

	allocCtx, cancelAlloc := chromedp.NewExecAllocator(context.Background(), opts...)

	// Suppress chromedp log noise
	browserCtx, cancelBrowser := chromedp.NewContext(allocCtx, chromedp.WithLogf(func(string, ...interface{}) {}))

	if err := chromedp.Run(browserCtx); err != nil {
		f.initErr = fmt.Errorf("failed to start browser: %w", err)
		cancelBrowser()
		cancelAlloc()
		return
	}

	f.browserCtx = browserCtx
	f.shutdown = func() {
		cancelBrowser()
		cancelAlloc()
	}
}

// Close tears down the browser process, if one was started.
func (f *RenderFetcher) Close() {
	if f.shutdown != nil {
		f.shutdown()
	}
}

// findChromeBinary locates a Chrome/Chromium binary.
func findChromeBinary() string {
	if bin := os.Getenv("CHROME_BIN"); bin != "" {
		return bin
	}

	names := []string{"google-chrome-stable", "google-chrome", "chromium", "chromium-browser"}
	for _, name := range names {
		if path, err := exec.LookPath(name); err == nil {
			return path
		}
	}

	return ""
}
