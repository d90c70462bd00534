package dispatch

import (
	"container/heap"
	"log"
	"sync"
	"time"

	"github.com/riftline/geodispatch/internal/areaconfig"
	"github.com/riftline/geodispatch/internal/geofence"
	"github.com/riftline/geodispatch/internal/models"
	"github.com/riftline/geodispatch/internal/planner"
)

// Manager holds all per-area dispatch state: the worker registry, the route
// and its round remainder, the priority heap and the routepool. One Manager
// exists per geofenced area; it is safe for concurrent use by many worker
// goroutines calling Next plus its own background tick.
type Manager struct {
	name     string
	mode     Mode
	settings Settings

	geofenceHelper geofence.Helper
	planner        planner.Planner
	maxRadius      float64
	maxPerCluster  int
	calctype       planner.Algorithm

	areaConfig *areaconfig.Store

	// clock is injectable so tests can control "now" without sleeping.
	clock func() time.Time

	// managerMu guards route, currentRoundRemainder, prioHeap, routePool,
	// lastRoundPrio, positionType, coordsToIgnore and coordsRaw.
	managerMu sync.Mutex
	// workersMu guards workersRegistered and rounds. Acquired before
	// managerMu when both are needed.
	workersMu sync.Mutex
	// fillupMu is reserved for a future bulk-rebalance gate; unused today.
	fillupMu sync.Mutex

	coordsRaw             []models.Location
	route                 []models.Location
	currentRoundRemainder []models.Location
	prioHeap              prioHeap
	prioSeq               int

	routePool         map[string]*models.RoutePoolEntry
	workersRegistered []string
	rounds            map[string]int
	positionType      map[string]PositionType
	lastRoundPrio     map[string]bool
	roundStartedAt    *time.Time
	coordsToIgnore    map[models.Location]struct{}

	init           bool
	initRoundsDone int
	started        bool
	startCalc      bool

	overwriteCalculation bool

	stopCh   chan struct{}
	stopOnce sync.Once
	tickDone chan struct{}
}

// Config bundles the construction-time parameters for NewManager.
type Config struct {
	Name           string
	Mode           Mode
	Settings       Settings
	GeofenceHelper geofence.Helper
	Planner        planner.Planner
	MaxRadius      float64
	MaxPerCluster  int
	Calctype       planner.Algorithm
	CoordsRaw      []models.Location
	AreaConfig     *areaconfig.Store
	Init           bool
}

// NewManager builds a Manager from cfg. The route is not planned until the
// first Next call or an explicit Recalc.
func NewManager(cfg Config) *Manager {
	return &Manager{
		name:           cfg.Name,
		mode:           cfg.Mode,
		settings:       cfg.Settings,
		geofenceHelper: cfg.GeofenceHelper,
		planner:        cfg.Planner,
		maxRadius:      cfg.MaxRadius,
		maxPerCluster:  cfg.MaxPerCluster,
		calctype:       cfg.Calctype,
		areaConfig:     cfg.AreaConfig,
		coordsRaw:      append([]models.Location(nil), cfg.CoordsRaw...),
		clock:          time.Now,
		routePool:      make(map[string]*models.RoutePoolEntry),
		rounds:         make(map[string]int),
		positionType:   make(map[string]PositionType),
		lastRoundPrio:  make(map[string]bool),
		coordsToIgnore: make(map[models.Location]struct{}),
		init:           cfg.Init,
	}
}

// Name returns the area name this manager serves.
func (m *Manager) Name() string { return m.name }

// now returns the manager's notion of the current time as a float of
// seconds since the Unix epoch, matching the source's timestamp semantics.
func (m *Manager) now() float64 {
	return float64(m.clock().UnixNano()) / 1e9
}

// IgnoreCoord adds loc to the permanent ignore set.
func (m *Manager) IgnoreCoord(loc models.Location) {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	m.coordsToIgnore[loc] = struct{}{}
}

func (m *Manager) isIgnored(loc models.Location) bool {
	_, ok := m.coordsToIgnore[loc]
	return ok
}

// IsIgnored reports whether loc is in the permanent ignore set. Safe to call
// without holding managerMu.
func (m *Manager) IsIgnored(loc models.Location) bool {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()
	return m.isIgnored(loc)
}

// heapPush pushes an event onto the manager's priority heap. Caller holds
// managerMu.
func (m *Manager) heapPush(evt models.PriorityEvent) {
	heap.Push(&m.prioHeap, prioHeapItem{event: evt, seq: m.prioSeq})
	m.prioSeq++
}

// replacePrioHeap atomically swaps in a freshly fetched+clustered batch,
// heapifying it in one pass.
func (m *Manager) replacePrioHeap(events []models.PriorityEvent) {
	m.managerMu.Lock()
	defer m.managerMu.Unlock()

	h := make(prioHeap, 0, len(events))
	seq := 0
	for _, e := range events {
		h = append(h, prioHeapItem{event: e, seq: seq})
		seq++
	}
	heap.Init(&h)
	m.prioHeap = h
	m.prioSeq = seq
}

func (m *Manager) logf(format string, args ...any) {
	log.Printf("[%s] "+format, append([]any{m.name}, args...)...)
}
