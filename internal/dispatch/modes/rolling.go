package modes

import (
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/dispatch"
	"github.com/riftline/geodispatch/internal/models"
)

// RollingMode never lets the dispatcher give up on a drained route: instead
// of returning none, it requests a fresh coordinate batch and keeps going.
// GetCoordsAfterFinishRoute is always true.
type RollingMode struct {
	// RefillProvider supplies a fresh coordinate batch when the route drains.
	RefillProvider func(ctx context.Context) ([]models.Location, error)
}

func (RollingMode) Name() string { return "rolling" }

func (RollingMode) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	return nil, nil
}

func (RollingMode) OnStart(m *dispatch.Manager) {}
func (RollingMode) OnQuit(m *dispatch.Manager)  {}

func (r RollingMode) GetCoordsPostInit(ctx context.Context) ([]models.Location, error) {
	if r.RefillProvider == nil {
		return nil, nil
	}
	return r.RefillProvider(ctx)
}

func (RollingMode) CheckCoordsBeforeReturning(m *dispatch.Manager, lat, lng float64) bool {
	return !m.IsIgnored(models.Location{Lat: lat, Lng: lng})
}

func (r RollingMode) RecalcRouteForWorkerType(m *dispatch.Manager) error {
	if r.RefillProvider != nil {
		if coords, err := r.RefillProvider(context.Background()); err == nil && len(coords) > 0 {
			m.SetCoordsRaw(coords)
		}
	}
	return m.Recalc()
}

// GetCoordsAfterFinishRoute is always true: this mode keeps serving past a
// drained route rather than returning none.
func (RollingMode) GetCoordsAfterFinishRoute() bool { return true }

func (RollingMode) ClusterPriorityQueueCriteria() dispatch.ClusterCriteria {
	return dispatch.ClusterCriteria{}
}

func (RollingMode) PriorityQueueUpdateInterval() time.Duration { return 0 }

func (RollingMode) DeleteCoordAfterFetch() bool { return true }

func (RollingMode) SkipClustering() bool { return true }
