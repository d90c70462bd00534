package dispatch

import (
	"container/heap"
	"context"
	"time"

	"github.com/riftline/geodispatch/internal/models"
)

// Next returns the next location origin should visit, or (zero, false) if
// none is available right now. It may block inside the availability wait
// loop (step 5), bounded by ctx.
func (m *Manager) Next(ctx context.Context, origin string) (models.Location, bool) {
	// Step 1: an empty route means this is the very first dispatch, or a
	// prior recalc never produced anything — try once more.
	m.managerMu.Lock()
	routeEmpty := len(m.route) == 0
	m.managerMu.Unlock()
	if routeEmpty {
		if err := m.mode.RecalcRouteForWorkerType(m); err != nil {
			m.logf("next(%s): recalculating empty route failed: %v", origin, err)
		}
	}

	// Step 2: make sure origin has a routepool entry, auto-registering it
	// if some caller dispatches without going through Register first.
	workers := m.ensureRoutePoolEntry(origin)

	// Step 3: lazily start the manager on first dispatch.
	if !m.IsStarted() {
		m.Start()
	}

	// Step 4: a recalculation is in flight; nothing to hand out this tick.
	m.managerMu.Lock()
	startCalc := m.startCalc
	m.managerMu.Unlock()
	if startCalc {
		return models.Location{}, false
	}

	// Step 5: availability wait loop, skipped during the init calibration
	// phase (init mode always has something queued by construction).
	for {
		m.managerMu.Lock()
		routeDrained := len(m.currentRoundRemainder) == 0 && len(m.prioHeap) == 0
		originQueueEmpty := true
		if entry, ok := m.routePool[origin]; ok {
			originQueueEmpty = entry.Queue.Len() == 0
		}
		started := m.started
		initMode := m.init
		m.managerMu.Unlock()

		if initMode || !(routeDrained && originQueueEmpty) {
			break
		}
		if !started || !m.mode.GetCoordsAfterFinishRoute() {
			return models.Location{}, false
		}
		// Ask the mode for fresh coordinates before waiting to retry.
		if err := m.mode.RecalcRouteForWorkerType(m); err != nil {
			m.logf("next(%s): recalculating drained route failed: %v", origin, err)
		}
		select {
		case <-ctx.Done():
			return models.Location{}, false
		case <-time.After(time.Second):
		}
	}

	// Steps 6-7: priority vs. normal branch. rounds lives under workersMu,
	// route/queue state under managerMu, so both are held together here.
	m.workersMu.Lock()
	m.managerMu.Lock()
	candidate, ok, needsInitComplete, needsRecalc := m.dispatchLocked(origin, workers)
	m.managerMu.Unlock()
	m.workersMu.Unlock()

	if needsInitComplete {
		if err := m.completeInitPhase(ctx); err != nil {
			return models.Location{}, false
		}
		return m.Next(ctx, origin)
	}
	if needsRecalc {
		if err := m.Recalc(); err != nil {
			return models.Location{}, false
		}
		return m.Next(ctx, origin)
	}
	if !ok {
		return models.Location{}, false
	}

	// Step 8: pre-return check, run with no lock held.
	if !m.mode.CheckCoordsBeforeReturning(m, candidate.Lat, candidate.Lng) {
		return m.Next(ctx, origin)
	}
	return candidate, true
}

// ensureRoutePoolEntry auto-registers origin if it dispatched without a
// prior Register call, and ensures it has a routepool entry, rebalancing
// if one had to be created. It returns a snapshot of the registered workers.
func (m *Manager) ensureRoutePoolEntry(origin string) []string {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()

	registered := false
	for _, w := range m.workersRegistered {
		if w == origin {
			registered = true
			break
		}
	}
	if !registered {
		m.workersRegistered = append(m.workersRegistered, origin)
		m.rounds[origin] = 0
		m.positionType[origin] = PositionNormal
	}

	m.managerMu.Lock()
	_, hasEntry := m.routePool[origin]
	m.managerMu.Unlock()

	if !registered || !hasEntry {
		m.rebalance(m.workersSnapshotLocked())
	}
	return m.workersSnapshotLocked()
}

// dispatchLocked picks the next candidate for origin: priority overlay first,
// then the normal route. Caller must hold both workersMu and managerMu. It
// never blocks and never calls a mode hook directly; any work that requires
// releasing the lock is signaled back via the two bool return values for
// Next to perform after unlocking.
func (m *Manager) dispatchLocked(origin string, workers []string) (candidate models.Location, ok, needsInitComplete, needsRecalc bool) {
	now := m.now()

	if m.settings.PrioritizedEnabled() {
		if due, has := m.prioHeap.peek(); has {
			starved := !m.lastRoundPrio[origin] || m.settings.StarveRoute
			if starved && due.DueAt < now {
				item := heap.Pop(&m.prioHeap).(prioHeapItem)
				m.positionType[origin] = PositionPriority
				m.lastRoundPrio[origin] = true
				return item.event.Location, true, false, false
			}
		}
	}

	m.positionType[origin] = PositionNormal

	roundBoundary := m.roundBoundaryLocked()
	if roundBoundary {
		m.bumpRoundsLocked(workers)
		started := time.Unix(0, int64(now*1e9))
		m.roundStartedAt = &started
	}

	if m.init {
		entry := m.routePool[origin]
		originQueueEmpty := entry == nil || entry.Queue.Len() == 0
		if roundBoundary && originQueueEmpty {
			m.initRoundsDone++
			if m.initRoundsDone >= m.settings.InitModeRounds {
				return models.Location{}, false, true, false
			}
		}
	}

	if roundBoundary {
		m.refillRemainderLocked()
	}

	entry, has := m.routePool[origin]
	if !has {
		return models.Location{}, false, false, false
	}
	if entry.Queue.Len() == 0 {
		m.rebalanceLocked(workers)
		entry, has = m.routePool[origin]
		if !has || entry.Queue.Len() == 0 {
			if len(m.route) == 0 {
				return models.Location{}, false, false, true
			}
			return models.Location{}, false, false, false
		}
	}

	candidate = entry.Queue.PopFront()
	entry.LastAccess = now
	m.lastRoundPrio[origin] = false

	if m.mode.DeleteCoordAfterFetch() {
		if idx := locationIndex(m.currentRoundRemainder, candidate); idx >= 0 {
			m.currentRoundRemainder = append(m.currentRoundRemainder[:idx], m.currentRoundRemainder[idx+1:]...)
		}
	}

	return candidate, true, false, false
}
