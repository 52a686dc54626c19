package sources

import (
	"context"
	"errors"
	"time"

	"github.com/insightpipe/scout/internal/models"
)

// ErrUnavailable is returned by Fetch when the client cannot operate at all,
// typically because required credentials are missing or the source is
// disabled. Per-keyword call failures are handled inside the client instead:
// they are logged and the remaining keywords are still attempted, so partial
// results win over no results.
var ErrUnavailable = errors.New("source is not available")

// Source interface defines the contract for all platform clients
type Source interface {
	GetName() string
	Fetch(ctx context.Context, keywords []string, since time.Time, limit int) ([]models.RawItem, error)
	IsEnabled() bool
}

// pause blocks for the platform's rate-limit delay, or returns early when
// the context is cancelled.
func pause(ctx context.Context, seconds int) error {
	if seconds <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(time.Duration(seconds) * time.Second):
		return nil
	}
}

// deduplicate drops repeated item IDs while preserving discovery order.
// Overlapping keywords routinely surface the same post twice.
func deduplicate(items []models.RawItem) []models.RawItem {
	seen := make(map[string]bool)
	var unique []models.RawItem

	for _, item := range items {
		if !seen[item.ID] {
			seen[item.ID] = true
			unique = append(unique, item)
		}
	}

	return unique
}
