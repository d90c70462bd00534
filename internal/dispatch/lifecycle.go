package dispatch

import (
	"context"

	"github.com/riftline/geodispatch/internal/models"
	"github.com/riftline/geodispatch/internal/planner"
)

// roundBoundaryLocked reports whether the current round has just drained:
// every coordinate in the route has been served and the remainder is due
// for a refill. Caller must hold managerMu.
func (m *Manager) roundBoundaryLocked() bool {
	return len(m.route) > 0 && len(m.currentRoundRemainder) == 0
}

// bumpRoundsLocked increments every registered worker's completed-round
// counter. Caller must already hold both workersMu and managerMu.
func (m *Manager) bumpRoundsLocked(workers []string) {
	for _, w := range workers {
		m.rounds[w]++
	}
	m.logf("round complete for %d worker(s)", len(workers))
}

// refillRemainderLocked resets the round remainder back to a full copy of
// the route. Caller must hold managerMu.
func (m *Manager) refillRemainderLocked() {
	m.currentRoundRemainder = append([]models.Location(nil), m.route...)
}

// Recalc re-plans the route from coordsRaw using the manager's configured
// algorithm and resets the round remainder. It manages its own locking and
// must not be called while the caller holds managerMu or workersMu, since
// planner.Plan may block on I/O.
func (m *Manager) Recalc() error {
	return m.recalcWithAlgorithm(m.calctype)
}

// RecalcQuick forces AlgorithmQuick for one recalculation, matching the
// source's overwriteCalculation one-shot override.
func (m *Manager) RecalcQuick() error {
	return m.recalcWithAlgorithm(planner.AlgorithmQuick)
}

func (m *Manager) recalcWithAlgorithm(algo planner.Algorithm) error {
	m.managerMu.Lock()
	m.startCalc = true
	coordsRaw := append([]models.Location(nil), m.coordsRaw...)
	m.managerMu.Unlock()

	fenced := m.geofenceHelper.GetGeofencedCoordinates(coordsRaw)
	route, err := m.planner.Plan(fenced, m.maxRadius, m.maxPerCluster, algo)

	m.managerMu.Lock()
	m.startCalc = false
	if err != nil {
		m.managerMu.Unlock()
		m.logf("route recalculation failed, keeping previous route: %v", err)
		return err
	}
	m.route = route
	m.refillRemainderLocked()
	m.managerMu.Unlock()

	// Recompute every worker's subroute against the refilled remainder.
	m.workersMu.Lock()
	m.rebalance(m.workersSnapshotLocked())
	m.workersMu.Unlock()
	return nil
}

// SetCoordsRaw replaces the source coordinate pool without recomputing the
// route; callers typically follow up with Recalc.
func (m *Manager) SetCoordsRaw(coords []models.Location) {
	m.managerMu.Lock()
	m.coordsRaw = append([]models.Location(nil), coords...)
	m.managerMu.Unlock()
}

// completeInitPhase fetches the post-calibration coordinate set, recomputes
// the route, flips init off, and persists that flip for the area. It must
// be called with neither lock held.
func (m *Manager) completeInitPhase(ctx context.Context) error {
	coords, err := m.mode.GetCoordsPostInit(ctx)
	if err != nil {
		m.logf("init-phase completion: GetCoordsPostInit failed: %v", err)
		return err
	}
	m.SetCoordsRaw(coords)

	if err := m.mode.RecalcRouteForWorkerType(m); err != nil {
		m.logf("init-phase completion: recalc failed: %v", err)
		return err
	}

	m.managerMu.Lock()
	m.init = false
	m.initRoundsDone = 0
	m.managerMu.Unlock()

	if m.areaConfig != nil {
		if err := m.areaConfig.SetInit(m.name, false); err != nil {
			m.logf("persisting init=false failed: %v", err)
		}
	}
	m.logf("init phase complete, %d coords installed", len(coords))
	return nil
}
