package research

import (
	"time"

	"github.com/insightpipe/scout/internal/models"
)

// topTermCount bounds the word-frequency ranking carried in run analytics.
const topTermCount = 20

// assembleReport merges the collection output and the computed analytics
// into the persisted document. Pure assembly: nothing here calls the
// analyzer or touches the network.
func assembleReport(params Params, result *models.CollectionResult, analytics *models.Analytics, timestamp time.Time) *models.Report {
	return &models.Report{
		Metadata: models.ReportMetadata{
			Keywords:   params.Keywords,
			Websites:   params.Websites,
			DaysBack:   params.DaysBack,
			MaxItems:   params.MaxItems,
			Timestamp:  timestamp,
			TotalItems: result.TotalItems(),
		},
		Data:      *result,
		Analytics: analytics,
	}
}

// buildAnalytics derives the summary counters in one pass over the
// collected items: per-platform counts, per-keyword per-platform breakdown,
// average sentiment and complaint-category frequencies. Sentiment must
// already be attached to the items.
func buildAnalytics(result *models.CollectionResult) *models.Analytics {
	analytics := &models.Analytics{
		PlatformStats: make(map[string]int),
		KeywordStats:  make(map[string]models.KeywordStat),
		PainPoints:    make(map[string]int),
		Struggles:     make(map[string]int),
	}

	var sum models.SentimentScore
	scored := 0

	for platform, items := range result.Social {
		analytics.PlatformStats[platform] = len(items)

		for _, item := range items {
			stat, ok := analytics.KeywordStats[item.Keyword]
			if !ok {
				stat = models.KeywordStat{Platforms: make(map[string]int)}
			}
			stat.Total++
			stat.Platforms[platform]++
			analytics.KeywordStats[item.Keyword] = stat

			if item.Sentiment != nil {
				sum.Positive += item.Sentiment.Positive
				sum.Negative += item.Sentiment.Negative
				sum.Neutral += item.Sentiment.Neutral
				sum.Compound += item.Sentiment.Compound
				scored++
			}
			if item.PainPoint != "" {
				analytics.PainPoints[item.PainPoint]++
			}
			if item.Struggle != "" {
				analytics.Struggles[item.Struggle]++
			}
		}
	}

	for host, pages := range result.Websites {
		analytics.PlatformStats["web:"+host] = len(pages)
	}

	if scored > 0 {
		analytics.AverageSentiment = models.SentimentScore{
			Positive: sum.Positive / float64(scored),
			Negative: sum.Negative / float64(scored),
			Neutral:  sum.Neutral / float64(scored),
			Compound: sum.Compound / float64(scored),
		}
	}

	return analytics
}
