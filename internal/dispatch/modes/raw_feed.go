package modes

import (
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/dispatch"
	"github.com/riftline/geodispatch/internal/eventsource"
	"github.com/riftline/geodispatch/internal/models"
)

// RawFeedMode carries opaque per-event payloads straight through the
// priority overlay — clustering is skipped so the payload on each event is
// never discarded by a merge — and leaves the round remainder untouched by
// normal dispatch, mirroring the source's payload-preserving mode.
type RawFeedMode struct {
	Source         eventsource.Source
	UpdateInterval time.Duration
}

func (RawFeedMode) Name() string { return "raw_feed" }

func (r RawFeedMode) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	if r.Source == nil {
		return nil, nil
	}
	return r.Source.RetrieveLatestPriorityQueue(ctx)
}

func (RawFeedMode) OnStart(m *dispatch.Manager) {}
func (RawFeedMode) OnQuit(m *dispatch.Manager)  {}

func (RawFeedMode) GetCoordsPostInit(ctx context.Context) ([]models.Location, error) {
	return nil, nil
}

func (RawFeedMode) CheckCoordsBeforeReturning(m *dispatch.Manager, lat, lng float64) bool {
	return !m.IsIgnored(models.Location{Lat: lat, Lng: lng})
}

func (RawFeedMode) RecalcRouteForWorkerType(m *dispatch.Manager) error {
	return m.RecalcQuick()
}

func (RawFeedMode) GetCoordsAfterFinishRoute() bool { return false }

func (RawFeedMode) ClusterPriorityQueueCriteria() dispatch.ClusterCriteria {
	return dispatch.ClusterCriteria{}
}

func (r RawFeedMode) PriorityQueueUpdateInterval() time.Duration {
	return r.UpdateInterval
}

func (RawFeedMode) DeleteCoordAfterFetch() bool { return false }

func (RawFeedMode) SkipClustering() bool { return true }
