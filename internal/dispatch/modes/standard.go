// Package modes ships the four concrete dispatch.Mode implementations:
// StandardMode, PriorityOverlayMode, RawFeedMode and RollingMode. Each
// stands in for one of the source's enumerated (and otherwise opaque)
// worker-type modes.
package modes

import (
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/dispatch"
	"github.com/riftline/geodispatch/internal/models"
)

// StandardMode consumes coordinates from the round remainder with no
// priority overlay: the plain traversal case.
type StandardMode struct{}

func (StandardMode) Name() string { return "standard" }

func (StandardMode) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	return nil, nil
}

func (StandardMode) OnStart(m *dispatch.Manager) {}
func (StandardMode) OnQuit(m *dispatch.Manager)  {}

func (StandardMode) GetCoordsPostInit(ctx context.Context) ([]models.Location, error) {
	return nil, nil
}

func (StandardMode) CheckCoordsBeforeReturning(m *dispatch.Manager, lat, lng float64) bool {
	return !m.IsIgnored(models.Location{Lat: lat, Lng: lng})
}

func (StandardMode) RecalcRouteForWorkerType(m *dispatch.Manager) error {
	return m.Recalc()
}

func (StandardMode) GetCoordsAfterFinishRoute() bool { return false }

func (StandardMode) ClusterPriorityQueueCriteria() dispatch.ClusterCriteria {
	return dispatch.ClusterCriteria{}
}

func (StandardMode) PriorityQueueUpdateInterval() time.Duration { return 0 }

func (StandardMode) DeleteCoordAfterFetch() bool { return true }

func (StandardMode) SkipClustering() bool { return true }
