package notifications

import "github.com/insightpipe/scout/internal/models"

// Notifier delivers a finished research report summary over the configured
// channels. Delivery is best-effort: the research run has already been
// persisted by the time a notifier sees it.
type Notifier interface {
	SendReport(report *models.Report) error
}
