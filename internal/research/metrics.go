package research

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/insightpipe/scout/internal/models"
)

// Metrics tracks the outcome of the most recent research run, exposed by
// the daemon's /metrics endpoint.
type Metrics struct {
	mu sync.RWMutex

	TotalItems         int            `json:"total_items"`
	LastRun            time.Time      `json:"last_run"`
	LastRunDuration    string         `json:"last_run_duration"`
	SourceMetrics      map[string]int `json:"source_metrics"`
	SentimentBreakdown map[string]int `json:"sentiment_breakdown"`
	ErrorCount         int            `json:"error_count"`
}

func newMetrics() *Metrics {
	return &Metrics{
		SourceMetrics:      make(map[string]int),
		SentimentBreakdown: make(map[string]int),
	}
}

func (m *Metrics) update(report *models.Report, duration time.Duration, errorCount int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalItems = report.Metadata.TotalItems
	m.LastRun = time.Now().UTC()
	m.LastRunDuration = duration.String()
	m.ErrorCount = errorCount

	m.SourceMetrics = make(map[string]int)
	m.SentimentBreakdown = make(map[string]int)

	for platform, items := range report.Data.Social {
		m.SourceMetrics[platform] = len(items)
		for _, item := range items {
			m.SentimentBreakdown[sentimentLabel(item.Sentiment)]++
		}
	}
	for host, pages := range report.Data.Websites {
		m.SourceMetrics["web:"+host] = len(pages)
	}
}

// sentimentLabel collapses a compound score into the three standard buckets.
func sentimentLabel(score *models.SentimentScore) string {
	switch {
	case score == nil:
		return "unscored"
	case score.Compound >= 0.05:
		return "positive"
	case score.Compound <= -0.05:
		return "negative"
	default:
		return "neutral"
	}
}

// MetricsJSON renders the current metrics for the HTTP surface.
func (s *Service) MetricsJSON() string {
	s.metrics.mu.RLock()
	defer s.metrics.mu.RUnlock()

	data, _ := json.MarshalIndent(s.metrics, "", "  ")
	return string(data)
}
