package health

import (
	"context"
	"fmt"
	"time"

	"github.com/felixgeelhaar/smartplan/internal/catalog"
)

// CatalogChecker reports whether a usable template catalog is loaded.
type CatalogChecker struct {
	store *catalog.Store
}

// NewCatalogChecker checks the catalog currently held by store.
func NewCatalogChecker(store *catalog.Store) *CatalogChecker {
	return &CatalogChecker{store: store}
}

func (c *CatalogChecker) Name() string { return CatalogCheckName }

func (c *CatalogChecker) Check(ctx context.Context) *Result {
	cat := c.store.Current()
	if cat == nil {
		return Unhealthy("no template catalog loaded")
	}
	if cat.Fallback() == nil {
		return Unhealthy("template catalog has no fallback category").
			WithDetail("version", cat.Version)
	}
	return Healthy(fmt.Sprintf("%d categories loaded", len(cat.Templates))).
		WithDetail("version", cat.Version).
		WithDetail("digest", cat.Digest).
		WithDetail("source", cat.Source).
		WithDetail("loaded_at", c.store.LoadedAt().UTC().Format(time.RFC3339))
}

// QueueStats is implemented by events.Dispatcher.
type QueueStats interface {
	Pending() int
	Capacity() int
	Dropped() int64
}

// queueHighWater is the fill ratio above which the queue is degraded.
const queueHighWater = 0.9

// EventsChecker reports event queue pressure. A full queue drops events but
// never blocks plan creation, so it is at worst degraded.
type EventsChecker struct {
	queue QueueStats
}

// NewEventsChecker checks q.
func NewEventsChecker(q QueueStats) *EventsChecker {
	return &EventsChecker{queue: q}
}

func (c *EventsChecker) Name() string { return "event-dispatcher" }

func (c *EventsChecker) Check(ctx context.Context) *Result {
	pending, capacity := c.queue.Pending(), c.queue.Capacity()

	var r *Result
	if capacity > 0 && float64(pending)/float64(capacity) >= queueHighWater {
		r = Degraded(fmt.Sprintf("event queue nearly full (%d/%d)", pending, capacity))
	} else {
		r = Healthy("event queue accepting events")
	}
	return r.
		WithDetail("pending", pending).
		WithDetail("capacity", capacity).
		WithDetail("dropped", c.queue.Dropped())
}
