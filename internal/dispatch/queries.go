package dispatch

import "github.com/riftline/geodispatch/internal/models"

// RoundsUnknown is returned by Rounds for an origin that is not registered.
const RoundsUnknown = 999

// RouteStatus reports how many of the current round's coordinates have
// already been served area-wide, against the round's total length. The
// result does not depend on origin. An empty route reports (1, 1).
func (m *Manager) RouteStatus(origin string) (served, total int) {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	total = len(m.route)
	if total == 0 {
		return 1, 1
	}
	served = total - len(m.currentRoundRemainder)
	return served, total
}

// Rounds returns origin's completed-round count, or RoundsUnknown if it is
// not currently registered.
func (m *Manager) Rounds(origin string) int {
	m.workersMu.Lock()
	defer m.workersMu.Unlock()
	if n, ok := m.rounds[origin]; ok {
		return n
	}
	return RoundsUnknown
}

// CurrentRoute returns a copy of the canonical cyclic traversal.
func (m *Manager) CurrentRoute() []models.Location {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	return append([]models.Location(nil), m.route...)
}

// CurrentPriorityRoute returns a copy of the pending priority events,
// unordered (heap array order, not due_at order).
func (m *Manager) CurrentPriorityRoute() []models.PriorityEvent {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	out := make([]models.PriorityEvent, len(m.prioHeap))
	for i, item := range m.prioHeap {
		out[i] = item.event
	}
	return out
}

// PositionType returns the position type most recently assigned to origin.
func (m *Manager) PositionType(origin string) PositionType {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	return m.positionType[origin]
}

// Init reports whether the manager is still in its calibration phase.
func (m *Manager) Init() bool {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	return m.init
}

// Mode returns the name of the configured mode.
func (m *Manager) Mode() string {
	return m.mode.Name()
}

// Settings returns the manager's configured settings.
func (m *Manager) Settings() Settings {
	return m.settings
}

// GeofenceHelper exposes the manager's geofence collaborator, mainly so
// administrative tooling can inspect which polygons are active.
func (m *Manager) GeofenceHelper() any {
	return m.geofenceHelper
}
