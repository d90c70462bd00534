package modes

import (
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/dispatch"
	"github.com/riftline/geodispatch/internal/eventsource"
	"github.com/riftline/geodispatch/internal/models"
)

// PriorityOverlayMode layers a clustered, time-windowed priority queue on
// top of normal round-remainder consumption.
type PriorityOverlayMode struct {
	Source            eventsource.Source
	Criteria          dispatch.ClusterCriteria
	UpdateInterval    time.Duration
	PostInitProvider  func(ctx context.Context) ([]models.Location, error)
}

func (PriorityOverlayMode) Name() string { return "priority_overlay" }

func (p PriorityOverlayMode) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	if p.Source == nil {
		return nil, nil
	}
	return p.Source.RetrieveLatestPriorityQueue(ctx)
}

func (PriorityOverlayMode) OnStart(m *dispatch.Manager) {}
func (PriorityOverlayMode) OnQuit(m *dispatch.Manager)  {}

func (p PriorityOverlayMode) GetCoordsPostInit(ctx context.Context) ([]models.Location, error) {
	if p.PostInitProvider == nil {
		return nil, nil
	}
	return p.PostInitProvider(ctx)
}

func (PriorityOverlayMode) CheckCoordsBeforeReturning(m *dispatch.Manager, lat, lng float64) bool {
	return !m.IsIgnored(models.Location{Lat: lat, Lng: lng})
}

func (PriorityOverlayMode) RecalcRouteForWorkerType(m *dispatch.Manager) error {
	return m.Recalc()
}

func (PriorityOverlayMode) GetCoordsAfterFinishRoute() bool { return false }

func (p PriorityOverlayMode) ClusterPriorityQueueCriteria() dispatch.ClusterCriteria {
	return p.Criteria
}

func (p PriorityOverlayMode) PriorityQueueUpdateInterval() time.Duration {
	return p.UpdateInterval
}

func (PriorityOverlayMode) DeleteCoordAfterFetch() bool { return true }

func (PriorityOverlayMode) SkipClustering() bool { return false }
