package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/riftline/geodispatch/internal/clustering"
	"github.com/riftline/geodispatch/internal/models"
)

// Start transitions the manager into the started state, runs the mode's
// one-time startup hook, and launches the priority-queue background
// goroutine if the mode enables one. Idempotent: calling it twice is a
// no-op.
func (m *Manager) Start() {
	m.managerMu.Lock()
	if m.started {
		m.managerMu.Unlock()
		return
	}
	m.started = true
	m.stopCh = make(chan struct{})
	m.tickDone = make(chan struct{})
	stopCh := m.stopCh
	tickDone := m.tickDone
	m.managerMu.Unlock()
	m.stopOnce = sync.Once{}

	m.mode.OnStart(m)

	interval := m.mode.PriorityQueueUpdateInterval()
	if interval <= 0 {
		close(tickDone)
		return
	}
	go m.runPriorityTick(stopCh, tickDone, interval)
}

// quitIfStarted stops the background tick and runs the mode's teardown
// hook, but only if the manager is currently started.
func (m *Manager) quitIfStarted() {
	m.managerMu.Lock()
	if !m.started {
		m.managerMu.Unlock()
		return
	}
	m.started = false
	stopCh := m.stopCh
	tickDone := m.tickDone
	m.managerMu.Unlock()

	m.stopOnce.Do(func() {
		if stopCh != nil {
			close(stopCh)
		}
	})
	if tickDone != nil {
		<-tickDone
	}
	m.mode.OnQuit(m)
}

// IsStarted reports whether the manager is currently started.
func (m *Manager) IsStarted() bool {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	return m.started
}

// runPriorityTick is the background priority-queue refresh loop: an
// interruptible sleep followed by a refresh-and-reap cycle, repeated until
// stopCh closes.
func (m *Manager) runPriorityTick(stopCh <-chan struct{}, tickDone chan<- struct{}, interval time.Duration) {
	defer close(tickDone)
	for {
		select {
		case <-stopCh:
			return
		case <-time.After(interval):
		}
		m.Tick(context.Background())
	}
}

// Tick runs one priority-queue-refresh-and-idle-reap cycle. It is exported
// so tests and the HTTP layer can drive it deterministically instead of
// waiting on the background goroutine's interval.
func (m *Manager) Tick(ctx context.Context) {
	m.refreshPriorityQueue(ctx)
	m.reapIdle()
}

// refreshPriorityQueue runs one refresh of the priority queue: fetch, filter,
// cluster, replace. A failed fetch leaves the prior heap untouched.
func (m *Manager) refreshPriorityQueue(ctx context.Context) {
	events, err := m.mode.RetrieveLatestPriorityQueue(ctx)
	if err != nil {
		m.logf("priority queue refresh failed, keeping prior queue: %v", err)
		return
	}

	events = filterValid(events)

	now := m.now()
	if m.settings.RemoveFromQueueBacklog > 0 {
		events = filterStale(events, now, m.settings.RemoveFromQueueBacklog)
	}

	if !m.mode.SkipClustering() {
		crit := m.mode.ClusterPriorityQueueCriteria()
		clusterer := clustering.NewWindowClusterer(m.maxRadius, m.maxPerCluster, crit.WindowSeconds, crit.WindowMeters)
		events = clusterer.GetClustered(events)
	}

	m.replacePrioHeap(events)
}

func filterValid(events []models.PriorityEvent) []models.PriorityEvent {
	out := make([]models.PriorityEvent, 0, len(events))
	for _, e := range events {
		if e.Location.Valid() {
			out = append(out, e)
		}
	}
	return out
}

func filterStale(events []models.PriorityEvent, now, backlog float64) []models.PriorityEvent {
	cutoff := now - backlog
	out := make([]models.PriorityEvent, 0, len(events))
	for _, e := range events {
		if e.DueAt >= cutoff {
			out = append(out, e)
		}
	}
	return out
}

// reapIdle evicts any registered worker whose routepool entry has not been
// touched within the configured idle timeout.
func (m *Manager) reapIdle() {
	timeout := m.settings.idleTimeout().Seconds()
	now := m.now()

	m.workersMu.Lock()
	defer m.workersMu.Unlock()

	m.managerMu.Lock()
	var evicted []string
	for _, origin := range m.workersRegistered {
		entry, ok := m.routePool[origin]
		if ok && now-entry.LastAccess > timeout {
			evicted = append(evicted, origin)
		}
	}
	m.managerMu.Unlock()

	if len(evicted) == 0 {
		return
	}

	evictSet := make(map[string]struct{}, len(evicted))
	for _, o := range evicted {
		evictSet[o] = struct{}{}
	}
	remaining := m.workersRegistered[:0:0]
	for _, origin := range m.workersRegistered {
		if _, out := evictSet[origin]; out {
			continue
		}
		remaining = append(remaining, origin)
	}
	m.workersRegistered = remaining
	for _, o := range evicted {
		delete(m.rounds, o)
		delete(m.positionType, o)
		m.logf("evicting idle worker %q", o)
	}

	m.rebalance(m.workersSnapshotLocked())
}
