package research

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/insightpipe/scout/internal/config"
	"github.com/insightpipe/scout/internal/crawler"
	"github.com/insightpipe/scout/internal/models"
	"github.com/insightpipe/scout/internal/sources"
)

func testLogger() *logrus.Entry {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return logrus.NewEntry(logger)
}

func testConfig() *config.Config {
	return &config.Config{
		Research:   config.ResearchConfig{DaysBack: 7, MaxItems: 100},
		WebScraper: config.WebScraperConfig{MaxDepth: 2, MaxPagesPerDomain: 100},
		Analysis:   config.AnalysisConfig{EnableSentiment: true, EnableTopics: false, TopicCount: 3},
	}
}

// stubSource is a scripted sources.Source that counts its Fetch calls.
type stubSource struct {
	name    string
	enabled bool
	items   []models.RawItem
	err     error
	calls   int
}

var _ sources.Source = (*stubSource)(nil)

func (s *stubSource) GetName() string { return s.name }
func (s *stubSource) IsEnabled() bool { return s.enabled }

func (s *stubSource) Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error) {
	s.calls++
	return s.items, s.err
}

// stubFetcher serves canned HTML per URL without a browser.
type stubFetcher struct {
	pages map[string]string
	calls []string
}

var _ crawler.Fetcher = (*stubFetcher)(nil)

func (f *stubFetcher) FetchHTML(ctx context.Context, pageURL string) (string, error) {
	f.calls = append(f.calls, pageURL)
	html, ok := f.pages[pageURL]
	if !ok {
		return "", fmt.Errorf("no such page: %s", pageURL)
	}
	return html, nil
}

// mockStorage is a testify mock over the storage interface.
type mockStorage struct {
	mock.Mock
}

func (m *mockStorage) Store(filename string, data []byte) error {
	args := m.Called(filename, data)
	return args.Error(0)
}

func (m *mockStorage) Retrieve(filename string) ([]byte, error) {
	args := m.Called(filename)
	return args.Get(0).([]byte), args.Error(1)
}

func (m *mockStorage) List(prefix string) ([]string, error) {
	args := m.Called(prefix)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockStorage) Delete(filename string) error {
	args := m.Called(filename)
	return args.Error(0)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) SendReport(report *models.Report) error {
	args := m.Called(report)
	return args.Error(0)
}

func newTestService(store *mockStorage, srcs ...sources.Source) *Service {
	svc := NewService(testConfig(), store, nil, nil, testLogger())
	svc.newSources = func(*logrus.Entry) []sources.Source { return srcs }
	return svc
}

func tweet(id, keyword, text string) models.RawItem {
	return models.RawItem{
		ID:        "twitter_" + id,
		Source:    "twitter",
		Keyword:   keyword,
		Text:      text,
		CreatedAt: time.Now().UTC(),
	}
}

func TestRun_EndToEnd(t *testing.T) {
	twitter := &stubSource{name: "twitter", enabled: true, items: []models.RawItem{
		tweet("1", "camera", "This camera is great, love the quality"),
		tweet("2", "camera", "Terrible camera, awful quality and bad support"),
		tweet("3", "camera", "Just bought a new camera"),
	}}

	store := &mockStorage{}
	var persisted []byte
	store.On("Store", mock.MatchedBy(func(name string) bool {
		return len(name) == len("research_results_20060102_150405.json")
	}), mock.Anything).Run(func(args mock.Arguments) {
		persisted = args.Get(1).([]byte)
	}).Return(nil)

	svc := newTestService(store, twitter)

	report, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	store.AssertExpectations(t)

	require.Len(t, report.Data.Social["twitter"], 3)
	for _, item := range report.Data.Social["twitter"] {
		assert.Equal(t, "camera", item.Keyword)
		require.NotNil(t, item.Sentiment)
	}
	assert.Equal(t, 3, report.Metadata.TotalItems)
	assert.Equal(t, []string{"camera"}, report.Metadata.Keywords)
	assert.Equal(t, 7, report.Metadata.DaysBack)
	assert.Equal(t, 100, report.Metadata.MaxItems)

	require.NotNil(t, report.Analytics)
	assert.Equal(t, 3, report.Analytics.PlatformStats["twitter"])
	assert.Equal(t, 3, report.Analytics.KeywordStats["camera"].Total)
	assert.Equal(t, 3, report.Analytics.KeywordStats["camera"].Platforms["twitter"])

	// The persisted document is the same report
	var onDisk models.Report
	require.NoError(t, json.Unmarshal(persisted, &onDisk))
	assert.Equal(t, 3, onDisk.Metadata.TotalItems)
	assert.Len(t, onDisk.Data.Social["twitter"], 3)
}

func TestRun_FailureIsolation(t *testing.T) {
	failing := &stubSource{name: "twitter", enabled: true, err: errors.New("api down")}
	healthy := &stubSource{name: "facebook", enabled: true, items: []models.RawItem{
		{ID: "facebook_1", Source: "facebook", Keyword: "camera", Text: "nice"},
	}}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, failing, healthy)

	report, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)

	assert.Equal(t, []models.RawItem{}, report.Data.Social["twitter"])
	assert.Len(t, report.Data.Social["facebook"], 1)
	assert.Equal(t, 1, healthy.calls)
}

func TestRun_AllSourcesFailingStillSucceeds(t *testing.T) {
	a := &stubSource{name: "twitter", enabled: true, err: errors.New("down")}
	b := &stubSource{name: "facebook", enabled: true, err: errors.New("down")}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, a, b)

	report, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	assert.Equal(t, 0, report.Metadata.TotalItems)
	assert.Equal(t, []models.RawItem{}, report.Data.Social["twitter"])
	assert.Equal(t, []models.RawItem{}, report.Data.Social["facebook"])
}

func TestRun_DisabledSourceNeverQueried(t *testing.T) {
	disabled := &stubSource{name: "twitter", enabled: false}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, disabled)

	report, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	assert.Equal(t, 0, disabled.calls)
	_, present := report.Data.Social["twitter"]
	assert.False(t, present)
}

func TestRun_MissingCredentialsLoggedAsError(t *testing.T) {
	// Enabled in config, but the client reports itself unavailable
	source := &stubSource{name: "twitter", enabled: false}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	logger, hook := logtest.NewNullLogger()

	cfg := testConfig()
	cfg.SocialMedia.Twitter.Enabled = true

	svc := NewService(cfg, store, nil, nil, logrus.NewEntry(logger))
	svc.newSources = func(*logrus.Entry) []sources.Source { return []sources.Source{source} }

	_, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	assert.Equal(t, 0, source.calls)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Level == logrus.ErrorLevel && strings.Contains(entry.Message, "missing credentials") {
			logged = true
		}
	}
	assert.True(t, logged, "credential-less enabled source should be logged at error level")
}

func TestRun_ValidationBeforeAnySourceCall(t *testing.T) {
	source := &stubSource{name: "twitter", enabled: true}
	store := &mockStorage{}

	svc := newTestService(store, source)

	_, err := svc.Run(context.Background(), Params{Keywords: nil})
	assert.ErrorIs(t, err, ErrNoKeywords)

	_, err = svc.Run(context.Background(), Params{Keywords: []string{"  "}})
	assert.ErrorIs(t, err, ErrNoKeywords)

	_, err = svc.Run(context.Background(), Params{
		Keywords: []string{"camera"},
		Websites: []string{"ftp://example.test"},
	})
	assert.ErrorIs(t, err, ErrInvalidWebsite)

	_, err = svc.Run(context.Background(), Params{
		Keywords: []string{"camera"},
		Websites: []string{"not a url"},
	})
	assert.ErrorIs(t, err, ErrInvalidWebsite)

	assert.Equal(t, 0, source.calls)
	store.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestRun_PersistenceFailureSurfaces(t *testing.T) {
	source := &stubSource{name: "twitter", enabled: true, items: []models.RawItem{
		tweet("1", "camera", "fine"),
	}}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(errors.New("disk full"))

	svc := newTestService(store, source)

	_, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "disk full")
}

func TestRun_WebsiteCrawl(t *testing.T) {
	seed := "https://example.test"
	fetcher := &stubFetcher{pages: map[string]string{
		"https://example.test": `<html><head><title>Home</title></head><body>
			<a href="/about">About</a>
			<a href="https://example.test/contact">Contact</a>
			<a href="https://other.test/away">Away</a>
			Welcome</body></html>`,
		"https://example.test/about":   `<html><head><title>About</title></head><body>About us</body></html>`,
		"https://example.test/contact": `<html><head><title>Contact</title></head><body>Reach out</body></html>`,
	}}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store)
	svc.cfg.WebScraper.MaxDepth = 1
	svc.newFetcher = func(*logrus.Entry) crawler.Fetcher { return fetcher }

	report, err := svc.Run(context.Background(), Params{
		Keywords: []string{"x"},
		Websites: []string{seed},
	})
	require.NoError(t, err)

	pages := report.Data.Websites["example.test"]
	require.Len(t, pages, 3)
	assert.Len(t, fetcher.calls, 3)
	assert.NotContains(t, fetcher.calls, "https://other.test/away")
	assert.Equal(t, 3, report.Metadata.TotalItems)
	assert.Equal(t, 3, report.Analytics.PlatformStats["web:example.test"])
}

func TestRun_NotifierAndArchiveAreBestEffort(t *testing.T) {
	source := &stubSource{name: "twitter", enabled: true, items: []models.RawItem{
		tweet("1", "camera", "fine"),
	}}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	archive := &mockStorage{}
	archive.On("Store", mock.Anything, mock.Anything).Return(errors.New("blob unavailable"))

	notifier := &mockNotifier{}
	notifier.On("SendReport", mock.Anything).Return(errors.New("webhook down"))

	svc := NewService(testConfig(), store, archive, notifier, testLogger())
	svc.newSources = func(*logrus.Entry) []sources.Source { return []sources.Source{source} }

	_, err := svc.Run(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	archive.AssertExpectations(t)
	notifier.AssertExpectations(t)
}

func TestCollect_ReturnsRawResult(t *testing.T) {
	source := &stubSource{name: "twitter", enabled: true, items: []models.RawItem{
		tweet("1", "camera", "raw text untouched"),
	}}

	svc := newTestService(&mockStorage{}, source)

	result, err := svc.Collect(context.Background(), Params{Keywords: []string{"camera"}})
	require.NoError(t, err)
	require.Len(t, result.Social["twitter"], 1)
	assert.Nil(t, result.Social["twitter"][0].Sentiment)
}

func TestRunScheduled_UsesConfiguredDefaults(t *testing.T) {
	source := &stubSource{name: "twitter", enabled: true}

	store := &mockStorage{}
	store.On("Store", mock.Anything, mock.Anything).Return(nil)

	svc := newTestService(store, source)
	svc.cfg.Research.Keywords = []string{"camera"}

	require.NoError(t, svc.RunScheduled(context.Background()))
	assert.Equal(t, 1, source.calls)
}

func TestListReports(t *testing.T) {
	store := &mockStorage{}
	store.On("List", "research_results_").Return([]string{"research_results_20250101_090000.json"}, nil)

	svc := newTestService(store)

	names, err := svc.ListReports()
	require.NoError(t, err)
	assert.Len(t, names, 1)
	store.AssertExpectations(t)
}
