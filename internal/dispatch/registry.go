package dispatch

// WorkerStopNotifier is invoked once per worker origin when StopWorkers
// unregisters it, giving the caller a chance to signal the live connection
// to actually stop. The core here only ever sees an origin string, never a
// worker handle, so it cannot "stop" anything itself.
type WorkerStopNotifier func(origin string)

// Register adds origin to the worker pool. It is idempotent: a second
// Register for the same origin returns false and changes nothing.
func (m *Manager) Register(origin string) bool {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()

	for _, w := range m.workersRegistered {
		if w == origin {
			return false
		}
	}
	m.workersRegistered = append(m.workersRegistered, origin)
	m.rounds[origin] = 0
	m.positionType[origin] = PositionNormal

	m.rebalance(m.workersSnapshotLocked())
	return true
}

// Unregister removes origin from the worker pool. If it was the last
// registered worker and the manager had started, the route is quit.
func (m *Manager) Unregister(origin string) bool {
	m.workersMu.Lock()

	idx := -1
	for i, w := range m.workersRegistered {
		if w == origin {
			idx = i
			break
		}
	}
	if idx < 0 {
		m.workersMu.Unlock()
		m.logf("unregister: %q was not registered", origin)
		return false
	}
	m.workersRegistered = append(m.workersRegistered[:idx], m.workersRegistered[idx+1:]...)
	delete(m.rounds, origin)
	delete(m.positionType, origin)

	m.rebalance(m.workersSnapshotLocked())
	empty := len(m.workersRegistered) == 0
	m.workersMu.Unlock()

	if empty {
		m.quitIfStarted()
	}
	return true
}

// StopWorkers unregisters every worker, invoking notify once per origin so
// the caller can tear down the underlying connection.
func (m *Manager) StopWorkers(notify WorkerStopNotifier) {
	m.workersMu.Lock()
	workers := append([]string(nil), m.workersRegistered...)
	m.workersRegistered = nil
	m.rounds = make(map[string]int)
	m.positionType = make(map[string]PositionType)
	m.rebalance(nil)
	m.workersMu.Unlock()

	m.quitIfStarted()

	if notify == nil {
		return
	}
	for _, w := range workers {
		notify(w)
	}
}

// RegisteredWorkers returns a snapshot of the currently registered origins.
func (m *Manager) RegisteredWorkers() []string {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()
	return m.workersSnapshotLocked()
}

// workersSnapshotLocked copies workersRegistered. Caller must hold workersMu.
func (m *Manager) workersSnapshotLocked() []string {
	return append([]string(nil), m.workersRegistered...)
}
