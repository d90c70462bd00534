package dispatch

import (
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/models"
)

// ClusterCriteria is the (time, distance) window the priority queue manager
// passes to the clustering helper on each tick.
type ClusterCriteria struct {
	WindowSeconds float64
	WindowMeters  float64
}

// Mode is the per-area contract a concrete dispatch mode fills in. A
// Manager is mode-agnostic; everything it needs to know about "what kind of
// area is this" goes through these hooks.
type Mode interface {
	// Name identifies the mode for logs and the administrative Mode() query.
	Name() string

	// RetrieveLatestPriorityQueue returns the current batch of priority
	// events, or nil if the mode has no priority overlay.
	RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error)

	// OnStart performs one-time mode-specific startup. Idempotent; the
	// manager only calls it once per Start(). Most modes no-op here since
	// the manager itself owns the generic priority tick goroutine.
	OnStart(m *Manager)

	// OnQuit tears down mode-specific resources (e.g. closes a scraper).
	OnQuit(m *Manager)

	// GetCoordsPostInit returns the coordinate set that replaces the
	// calibration coords once the init phase completes.
	GetCoordsPostInit(ctx context.Context) ([]models.Location, error)

	// CheckCoordsBeforeReturning permits or filters a dispatch candidate.
	CheckCoordsBeforeReturning(m *Manager, lat, lng float64) bool

	// RecalcRouteForWorkerType triggers a route recalculation appropriate
	// to the mode (e.g. always "quick" for a mode with opaque payloads).
	RecalcRouteForWorkerType(m *Manager) error

	// GetCoordsAfterFinishRoute reports whether dispatch should keep
	// serving past a drained route rather than returning none.
	GetCoordsAfterFinishRoute() bool

	// ClusterPriorityQueueCriteria parameterizes the clustering helper.
	ClusterPriorityQueueCriteria() ClusterCriteria

	// PriorityQueueUpdateInterval is the background refresh tick period;
	// zero disables the background goroutine entirely.
	PriorityQueueUpdateInterval() time.Duration

	// DeleteCoordAfterFetch reports whether normal dispatch consumes
	// coordinates from the round remainder as it serves them.
	DeleteCoordAfterFetch() bool

	// SkipClustering reports whether the priority tick should bypass the
	// clustering helper to preserve opaque per-event payloads.
	SkipClustering() bool
}
