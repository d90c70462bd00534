package dispatch

import "github.com/riftline/geodispatch/internal/models"

// rebalance recomputes every worker's subroute from the current round
// remainder and reconciles routePool accordingly. Callers must already hold
// workersMu (it only touches managerMu-guarded state); workers is a snapshot
// of the registered-worker set.
func (m *Manager) rebalance(workers []string) {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	m.rebalanceLocked(workers)
}

// rebalanceLocked is the same operation assuming managerMu is already held
// by the caller (used from inside the dispatcher's own critical section,
// where re-acquiring managerMu would deadlock).
func (m *Manager) rebalanceLocked(workers []string) {
	n := len(workers)
	newPool := make(map[string]*models.RoutePoolEntry, n)
	if n == 0 {
		m.routePool = newPool
		m.pruneLastRoundPrio(workers)
		return
	}

	remainder := m.currentRoundRemainder
	subroutes := partitionSlices(remainder, n)

	for i, origin := range workers {
		newSubroute := subroutes[i]
		existing, had := m.routePool[origin]
		if !had || len(existing.Subroute) == 0 {
			newPool[origin] = models.NewRoutePoolEntry(m.now(), newSubroute)
			continue
		}
		newPool[origin] = reconcileEntry(existing, newSubroute)
	}

	m.routePool = newPool
	m.pruneLastRoundPrio(workers)
}

func (m *Manager) pruneLastRoundPrio(workers []string) {
	keep := make(map[string]struct{}, len(workers))
	for _, w := range workers {
		keep[w] = struct{}{}
	}
	for origin := range m.lastRoundPrio {
		if _, ok := keep[origin]; !ok {
			delete(m.lastRoundPrio, origin)
		}
	}
}

// partitionSlices splits remainder into n contiguous, near-equal slices.
// It faithfully reproduces the source's odd-length asymmetry: when
// len(remainder) is odd, one element is dropped off the end of every slice,
// so the partition under-covers the remainder by up to n elements. This is
// a known source quirk and is not fixed here — fixing it would change which
// coordinates get served.
func partitionSlices(remainder []models.Location, n int) [][]models.Location {
	out := make([][]models.Location, n)
	m := len(remainder)
	if n == 0 {
		return out
	}
	chunk := (m + n - 1) / n
	odd := m%2 == 1
	for i := 0; i < n; i++ {
		start := i * chunk
		end := (i + 1) * chunk
		if start > m {
			start = m
		}
		if end > m {
			end = m
		}
		if odd && end > start {
			end--
		}
		if end < start {
			end = start
		}
		out[i] = append([]models.Location(nil), remainder[start:end]...)
	}
	return out
}

// reconcileEntry rebuilds entry's queue against newSubroute, preserving as
// much in-flight work as possible.
func reconcileEntry(entry *models.RoutePoolEntry, newSubroute []models.Location) *models.RoutePoolEntry {
	old := entry.Subroute
	queue := entry.QueueSlice()

	switch {
	case len(newSubroute) == len(old):
		// Unchanged length: leave the queue as-is.
	case len(newSubroute) < len(old):
		queue = reconcileShrunk(queue, newSubroute)
	default:
		queue = reconcileGrown(queue, old, newSubroute)
	}

	if len(queue) == 0 {
		queue = append([]models.Location(nil), newSubroute...)
	}

	entry.Subroute = append([]models.Location(nil), newSubroute...)
	entry.ResetQueue(queue)
	return entry
}

// reconcileShrunk handles a worker joining: another origin's slice ate into
// this one's range from the front.
func reconcileShrunk(queue, newSubroute []models.Location) []models.Location {
	if len(newSubroute) == 0 {
		return nil
	}
	head := newSubroute[0]
	for len(queue) > 0 && !queue[0].Equal(head) {
		queue = queue[1:]
	}
	if len(queue) == 0 {
		return append([]models.Location(nil), newSubroute...)
	}
	tail := queue[len(queue)-1]
	if idx := locationIndex(newSubroute, tail); idx >= 0 && idx+1 < len(newSubroute) {
		queue = append(append([]models.Location(nil), queue...), newSubroute[idx+1:]...)
	}
	return queue
}

// reconcileGrown handles a worker leaving: this origin's slice was extended.
func reconcileGrown(queue, old, newSubroute []models.Location) []models.Location {
	if len(newSubroute) == 0 {
		return queue
	}
	lastNew := newSubroute[len(newSubroute)-1]
	if idx := locationIndex(queue, lastNew); idx >= 0 {
		return append([]models.Location(nil), queue[:idx+1]...)
	}
	if len(old) == 0 {
		return queue
	}
	oldLast := old[len(old)-1]
	if idx := locationIndex(newSubroute, oldLast); idx >= 0 && idx+1 < len(newSubroute) {
		return append(append([]models.Location(nil), queue...), newSubroute[idx+1:]...)
	}
	return queue
}

func locationIndex(locs []models.Location, target models.Location) int {
	for i, l := range locs {
		if l.Equal(target) {
			return i
		}
	}
	return -1
}
