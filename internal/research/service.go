package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/insightpipe/scout/internal/analysis"
	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/crawler"
	"github.com/insightpipe/scout/internal/models"
	"github.com/insightpipe/scout/internal/notifications"
	"github.com/insightpipe/scout/internal/sources"
	"github.com/insightpipe/scout/internal/storage"
)

var (
	// ErrNoKeywords is returned when a run is requested without any keyword.
	ErrNoKeywords = errors.New("at least one keyword is required")

	// ErrInvalidWebsite is returned when a requested website URL has no
	// http(s) scheme or no host. Both validation errors fire before any
	// source is contacted.
	ErrInvalidWebsite = errors.New("invalid website URL")
)

// Params are the inputs of one research run. Zero DaysBack and MaxItems
// fall back to the configured research defaults.
type Params struct {
	Keywords []string
	Websites []string
	DaysBack int
	MaxItems int
}

// Service drives the whole pipeline: fan keywords out across the enabled
// platforms, crawl the requested websites, analyze the collected text and
// persist one report. Sources and keywords are visited sequentially; a
// failing source degrades to an empty result rather than failing the run.
type Service struct {
	cfg      *config.Config
	store    storage.StorageInterface
	archive  storage.StorageInterface
	notifier notifications.Notifier
	analyzer *analysis.Analyzer
	log      *logrus.Entry

	metrics *Metrics

	// Per-run factories: every run gets fresh source clients and its own
	// browser fetcher, so nothing stateful is shared across runs. Tests
	// swap these for stubs.
	newSources func(log *logrus.Entry) []sources.Source
	newFetcher func(log *logrus.Entry) crawler.Fetcher
}

// NewService wires the pipeline. Archive and notifier may be nil; both are
// best-effort after a report has been persisted.
func NewService(cfg *config.Config, store storage.StorageInterface, archive storage.StorageInterface, notifier notifications.Notifier, log *logrus.Entry) *Service {
	s := &Service{
		cfg:      cfg,
		store:    store,
		archive:  archive,
		notifier: notifier,
		analyzer: analysis.New(log.WithField("component", "analysis")),
		log:      log,
		metrics:  newMetrics(),
	}

	s.newSources = func(runLog *logrus.Entry) []sources.Source {
		// Fixed configuration order: the aggregator visits platforms in
		// this sequence on every run
		return []sources.Source{
			sources.NewTwitterSource(cfg.SocialMedia.Twitter, runLog.WithField("source", "twitter")),
			sources.NewFacebookSource(cfg.SocialMedia.Facebook, runLog.WithField("source", "facebook")),
			sources.NewLinkedInSource(cfg.SocialMedia.LinkedIn, runLog.WithField("source", "linkedin")),
			sources.NewInstagramSource(cfg.SocialMedia.Instagram, runLog.WithField("source", "instagram")),
		}
	}
	s.newFetcher = func(runLog *logrus.Entry) crawler.Fetcher {
		return crawler.NewRenderFetcher(cfg.WebScraper, runLog.WithField("component", "fetcher"))
	}

	return s
}

// Run executes one full research cycle: validate, collect, analyze,
// assemble and persist. The returned report matches the persisted document.
// A run with zero successful sources still succeeds with an empty report;
// only validation and persistence failures surface as errors.
func (s *Service) Run(ctx context.Context, params Params) (*models.Report, error) {
	start := time.Now()
	params = s.applyDefaults(params)

	if err := validate(params); err != nil {
		return nil, err
	}

	runLog := s.log.WithField("run_id", start.UTC().Format("20060102_150405"))
	runLog.Infof("Starting research run: keywords=%v websites=%v days_back=%d max_items=%d",
		params.Keywords, params.Websites, params.DaysBack, params.MaxItems)

	result, errorCount := s.collect(ctx, runLog, params)

	analytics := s.analyze(runLog, result)

	report := assembleReport(params, result, analytics, start.UTC())

	filename, err := s.persist(report)
	if err != nil {
		runLog.Errorf("Failed to persist report: %v", err)
		return nil, err
	}
	runLog.Infof("Persisted report %s (%d items)", filename, report.Metadata.TotalItems)

	s.deliver(runLog, report, filename)
	s.metrics.update(report, time.Since(start), errorCount)

	runLog.Infof("Research run completed in %v", time.Since(start))
	return report, nil
}

// Collect runs validation and the collection fan-out without analysis or
// persistence. It is the raw entry point the report pipeline builds on.
func (s *Service) Collect(ctx context.Context, params Params) (*models.CollectionResult, error) {
	params = s.applyDefaults(params)
	if err := validate(params); err != nil {
		return nil, err
	}

	result, _ := s.collect(ctx, s.log, params)
	return result, nil
}

func (s *Service) applyDefaults(params Params) Params {
	if params.DaysBack <= 0 {
		params.DaysBack = s.cfg.Research.DaysBack
	}
	if params.MaxItems <= 0 {
		params.MaxItems = s.cfg.Research.MaxItems
	}
	return params
}

// validate rejects bad run parameters before any source is contacted.
func validate(params Params) error {
	keywords := 0
	for _, keyword := range params.Keywords {
		if strings.TrimSpace(keyword) != "" {
			keywords++
		}
	}
	if keywords == 0 {
		return ErrNoKeywords
	}

	for _, site := range params.Websites {
		u, err := url.Parse(site)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Hostname() == "" {
			return fmt.Errorf("%w: %q", ErrInvalidWebsite, site)
		}
	}

	return nil
}

// collect fans the keywords out across the enabled platforms in
// configuration order, then crawls each requested website. Every failure is
// isolated: the failing source or site contributes an empty list and the
// run keeps going.
func (s *Service) collect(ctx context.Context, runLog *logrus.Entry, params Params) (*models.CollectionResult, int) {
	result := &models.CollectionResult{
		Social:   make(map[string][]models.RawItem),
		Websites: make(map[string][]models.PageRecord),
	}

	since := time.Now().UTC().AddDate(0, 0, -params.DaysBack)
	errorCount := 0

	for _, source := range s.newSources(runLog) {
		name := source.GetName()
		if !source.IsEnabled() {
			// A platform switched on in config that still reports itself
			// unavailable is missing credentials. That demotion is an
			// error; a plainly disabled source is not.
			if s.configEnabled(name) {
				runLog.Errorf("Source %s is enabled but missing credentials, skipping", name)
			} else {
				runLog.Debugf("Source %s is disabled, skipping", name)
			}
			continue
		}

		items, err := source.Fetch(ctx, params.Keywords, since, params.MaxItems)
		if err != nil {
			runLog.Errorf("Collection from %s failed: %v", name, err)
			errorCount++
		}
		if items == nil {
			items = []models.RawItem{}
		}

		runLog.Infof("Collected %d items from %s", len(items), name)
		result.Social[name] = items
	}

	if len(params.Websites) > 0 {
		fetcher := s.newFetcher(runLog)
		defer closeFetcher(fetcher)

		for _, site := range params.Websites {
			frontier := crawler.New(s.cfg.WebScraper, fetcher, runLog.WithField("component", "crawler"))

			pages, err := frontier.Crawl(ctx, site)
			if err != nil {
				runLog.Errorf("Crawl of %s failed: %v", site, err)
				errorCount++
			}
			if pages == nil {
				pages = []models.PageRecord{}
			}

			runLog.Infof("Collected %d pages from %s", len(pages), site)
			result.Websites[siteKey(site)] = pages
		}
	}

	return result, errorCount
}

// configEnabled reports whether the platform is switched on in config,
// regardless of whether its credentials are present.
func (s *Service) configEnabled(name string) bool {
	switch name {
	case "twitter":
		return s.cfg.SocialMedia.Twitter.Enabled
	case "facebook":
		return s.cfg.SocialMedia.Facebook.Enabled
	case "linkedin":
		return s.cfg.SocialMedia.LinkedIn.Enabled
	case "instagram":
		return s.cfg.SocialMedia.Instagram.Enabled
	default:
		return false
	}
}

func closeFetcher(fetcher crawler.Fetcher) {
	if closer, ok := fetcher.(interface{ Close() }); ok {
		closer.Close()
	}
}

// siteKey reduces a validated website URL to its host, the key its pages
// are reported under.
func siteKey(site string) string {
	u, err := url.Parse(site)
	if err != nil || u.Hostname() == "" {
		return site
	}
	return u.Hostname()
}

// analyze enriches every collected item in place with sentiment and
// complaint categories, then derives the run-level analytics. Sources and
// sites are walked in sorted order so topic extraction sees the corpus in a
// stable sequence.
func (s *Service) analyze(runLog *logrus.Entry, result *models.CollectionResult) *models.Analytics {
	if !s.cfg.Analysis.EnableSentiment {
		return nil
	}

	var corpus []string

	for _, name := range sortedKeys(result.Social) {
		items := result.Social[name]
		for i := range items {
			score := s.analyzer.Score(items[i].Text)
			items[i].Sentiment = &score

			if category, ok := s.analyzer.ClassifyPainPoint(items[i].Text); ok {
				items[i].PainPoint = category
			}
			if category, ok := s.analyzer.ClassifyStruggle(items[i].Text); ok {
				items[i].Struggle = category
			}

			if strings.TrimSpace(items[i].Text) != "" {
				corpus = append(corpus, items[i].Text)
			}
		}
	}

	for _, host := range sortedKeys(result.Websites) {
		for _, page := range result.Websites[host] {
			if page.Content != "" {
				corpus = append(corpus, page.Content)
			}
		}
	}

	analytics := buildAnalytics(result)
	if len(corpus) == 0 {
		return analytics
	}

	analytics.TopTerms = s.analyzer.TopTerms(corpus, topTermCount)

	if s.cfg.Analysis.EnableTopics {
		topics, err := s.analyzer.ExtractTopics(corpus, s.cfg.Analysis.TopicCount)
		if err != nil {
			runLog.Errorf("Topic extraction failed: %v", err)
		} else {
			analytics.Topics = topics
		}
	}

	return analytics
}

// persist writes the report as one complete JSON document and returns the
// filename. Write failures surface to the caller: a finished run that could
// not be saved must be visible as a failure.
func (s *Service) persist(report *models.Report) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode report: %w", err)
	}

	filename := fmt.Sprintf("research_results_%s.json", report.Metadata.Timestamp.Format("20060102_150405"))
	if err := s.store.Store(filename, data); err != nil {
		return "", fmt.Errorf("failed to persist report: %w", err)
	}

	return filename, nil
}

// deliver archives and announces a persisted report. Both channels are
// best-effort: the report is already on disk.
func (s *Service) deliver(runLog *logrus.Entry, report *models.Report, filename string) {
	if s.archive != nil {
		data, err := json.Marshal(report)
		if err == nil {
			err = s.archive.Store(filename, data)
		}
		if err != nil {
			runLog.Errorf("Failed to archive report %s: %v", filename, err)
		}
	}

	if s.notifier != nil {
		if err := s.notifier.SendReport(report); err != nil {
			runLog.Errorf("Failed to send report notification: %v", err)
		}
	}
}

// RunScheduled executes one research cycle with the configured default
// parameters. The scheduler and the daemon's trigger endpoint both call it.
func (s *Service) RunScheduled(ctx context.Context) error {
	_, err := s.Run(ctx, Params{
		Keywords: s.cfg.Research.Keywords,
		Websites: s.cfg.Research.Websites,
		DaysBack: s.cfg.Research.DaysBack,
		MaxItems: s.cfg.Research.MaxItems,
	})
	return err
}

// ListReports returns the persisted report filenames, oldest first.
func (s *Service) ListReports() ([]string, error) {
	return s.store.List("research_results_")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for key := range m {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
