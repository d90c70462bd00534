package dispatch

import (
	"context"
	"testing"
	"time"

	"github.com/riftline/geodispatch/internal/geofence"
	"github.com/riftline/geodispatch/internal/models"
	"github.com/riftline/geodispatch/internal/planner"
)

// fakeMode is a minimal, fully-configurable Mode for exercising the
// dispatcher without any real planner/geofence/eventsource collaborators.
type fakeMode struct {
	name           string
	prioEvents     []models.PriorityEvent
	postInit       []models.Location
	updateInterval time.Duration
	criteria       ClusterCriteria
	deleteOnFetch  bool
	keepGoing      bool
	skipCluster    bool
	ignore         map[models.Location]bool
}

func (f *fakeMode) Name() string { return f.name }

func (f *fakeMode) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	return f.prioEvents, nil
}
func (f *fakeMode) OnStart(m *Manager) {}
func (f *fakeMode) OnQuit(m *Manager)  {}
func (f *fakeMode) GetCoordsPostInit(ctx context.Context) ([]models.Location, error) {
	return f.postInit, nil
}
func (f *fakeMode) CheckCoordsBeforeReturning(m *Manager, lat, lng float64) bool {
	if f.ignore == nil {
		return true
	}
	return !f.ignore[models.Location{Lat: lat, Lng: lng}]
}
func (f *fakeMode) RecalcRouteForWorkerType(m *Manager) error { return m.Recalc() }
func (f *fakeMode) GetCoordsAfterFinishRoute() bool           { return f.keepGoing }
func (f *fakeMode) ClusterPriorityQueueCriteria() ClusterCriteria {
	return f.criteria
}
func (f *fakeMode) PriorityQueueUpdateInterval() time.Duration { return f.updateInterval }
func (f *fakeMode) DeleteCoordAfterFetch() bool                { return f.deleteOnFetch }
func (f *fakeMode) SkipClustering() bool                       { return f.skipCluster }

func newTestManager(t *testing.T, coords []models.Location, mode Mode, settings Settings) *Manager {
	t.Helper()
	m := NewManager(Config{
		Name:           "test-area",
		Mode:           mode,
		Settings:       settings,
		GeofenceHelper: geofence.NewPolygonHelper(nil, nil),
		Planner:        planner.GreedyPlanner{},
		MaxRadius:      100,
		MaxPerCluster:  10,
		Calctype:       planner.AlgorithmQuick,
		CoordsRaw:      coords,
	})
	return m
}

func loc(lat, lng float64) models.Location { return models.Location{Lat: lat, Lng: lng} }

func TestRegister_IdempotentAndRebalances(t *testing.T) {
	m := newTestManager(t, []models.Location{loc(1, 1), loc(2, 2)}, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	if !m.Register("w1") {
		t.Fatal("first register should succeed")
	}
	if m.Register("w1") {
		t.Fatal("second register of the same origin should be a no-op")
	}
	if len(m.RegisteredWorkers()) != 1 {
		t.Fatalf("expected 1 registered worker, got %v", m.RegisteredWorkers())
	}
	if _, ok := m.routePool["w1"]; !ok {
		t.Fatal("expected register to rebalance the routepool and create an entry for w1")
	}
}

func TestNext_SingleWorkerNoPriority(t *testing.T) {
	coords := []models.Location{loc(1, 1), loc(2, 2), loc(3, 3), loc(4, 4)}
	m := newTestManager(t, coords, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	m.Register("w1")

	ctx := context.Background()
	seen := map[models.Location]bool{}
	for i := 0; i < len(coords); i++ {
		got, ok := m.Next(ctx, "w1")
		if !ok {
			t.Fatalf("expected a location at step %d", i)
		}
		seen[got] = true
	}
	for _, c := range coords {
		if !seen[c] {
			t.Fatalf("coordinate %v was never dispatched", c)
		}
	}
	if rounds := m.Rounds("w1"); rounds != 0 {
		t.Fatalf("expected 0 completed rounds right after serving the first one, got %d", rounds)
	}
}

// TestNext_WrapsAroundAfterRouteDrains drives one call past the end of the
// route and confirms the worker keeps being served (round remainder gets
// refilled) instead of permanently returning ok==false.
func TestNext_WrapsAroundAfterRouteDrains(t *testing.T) {
	coords := []models.Location{loc(1, 1), loc(2, 2), loc(3, 3)}
	m := newTestManager(t, coords, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	m.Register("w1")

	ctx := context.Background()
	for i := 0; i < len(coords); i++ {
		if _, ok := m.Next(ctx, "w1"); !ok {
			t.Fatalf("expected a location at step %d of the first round", i)
		}
	}

	wrapped, ok := m.Next(ctx, "w1")
	if !ok {
		t.Fatal("expected the worker to keep receiving locations after the route wrapped")
	}
	if !wrapped.Equal(coords[0]) {
		t.Fatalf("expected the route to restart at %v, got %v", coords[0], wrapped)
	}
	if rounds := m.Rounds("w1"); rounds != 1 {
		t.Fatalf("expected 1 completed round right after the wrap, got %d", rounds)
	}

	// The second round must serve all three coordinates again, not just
	// whatever stuck around from a stale remainder.
	seen := map[models.Location]bool{wrapped: true}
	for i := 0; i < len(coords)-1; i++ {
		got, ok := m.Next(ctx, "w1")
		if !ok {
			t.Fatalf("expected a location at step %d of the second round", i)
		}
		seen[got] = true
	}
	for _, c := range coords {
		if !seen[c] {
			t.Fatalf("coordinate %v was never dispatched in the second round", c)
		}
	}
}

func TestNext_TwoWorkersFairSplit(t *testing.T) {
	coords := []models.Location{loc(0, 0), loc(0, 1), loc(0, 2), loc(0, 3)}
	m := newTestManager(t, coords, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	m.Register("w1")
	m.Register("w2")

	ctx := context.Background()
	served := map[string]int{}
	for i := 0; i < 4; i++ {
		if _, ok := m.Next(ctx, "w1"); ok {
			served["w1"]++
		}
		if _, ok := m.Next(ctx, "w2"); ok {
			served["w2"]++
		}
	}
	if served["w1"] == 0 || served["w2"] == 0 {
		t.Fatalf("expected both workers to be served, got %v", served)
	}
}

func TestPartitionSlices_OddLengthUnderCoverage(t *testing.T) {
	remainder := []models.Location{loc(0, 0), loc(0, 1), loc(0, 2)}
	slices := partitionSlices(remainder, 1)
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	if total >= len(remainder) {
		t.Fatalf("expected the odd-length asymmetry to under-cover the remainder, got %d of %d", total, len(remainder))
	}
}

func TestPartitionSlices_EvenLengthFullCoverage(t *testing.T) {
	remainder := []models.Location{loc(0, 0), loc(0, 1), loc(0, 2), loc(0, 3)}
	slices := partitionSlices(remainder, 2)
	total := 0
	for _, s := range slices {
		total += len(s)
	}
	if total != len(remainder) {
		t.Fatalf("expected full coverage for an even-length remainder, got %d of %d", total, len(remainder))
	}
}

func TestNext_PriorityPreemptionWithoutStarvation(t *testing.T) {
	coords := []models.Location{loc(0, 0), loc(0, 1), loc(0, 2)}
	delay := 0.0
	mode := &fakeMode{
		name:       "priority_overlay",
		prioEvents: nil,
	}
	m := newTestManager(t, coords, mode, Settings{DelayAfterPrioEvent: &delay, StarveRoute: false})
	m.Register("w1")

	now := m.now()
	m.replacePrioHeap([]models.PriorityEvent{{DueAt: now - 10, Location: loc(9, 9)}})

	ctx := context.Background()
	first, ok := m.Next(ctx, "w1")
	if !ok || !first.Equal(loc(9, 9)) {
		t.Fatalf("expected the due priority event first, got %v ok=%v", first, ok)
	}
	if m.PositionType("w1") != PositionPriority {
		t.Fatalf("expected position type priority, got %v", m.PositionType("w1"))
	}

	// Without starve_route, the same origin cannot be served priority twice
	// in a row even if another event is due.
	m.replacePrioHeap([]models.PriorityEvent{{DueAt: now - 5, Location: loc(8, 8)}})
	second, ok := m.Next(ctx, "w1")
	if !ok {
		t.Fatal("expected a normal-route location")
	}
	if second.Equal(loc(8, 8)) {
		t.Fatal("priority branch should not have fired twice in a row without starve_route")
	}
}

func TestNext_StarveRoutePreemptsRepeatedly(t *testing.T) {
	coords := []models.Location{loc(0, 0), loc(0, 1)}
	delay := 0.0
	mode := &fakeMode{name: "priority_overlay"}
	m := newTestManager(t, coords, mode, Settings{DelayAfterPrioEvent: &delay, StarveRoute: true})
	m.Register("w1")

	now := m.now()
	m.replacePrioHeap([]models.PriorityEvent{
		{DueAt: now - 10, Location: loc(9, 9)},
		{DueAt: now - 9, Location: loc(8, 8)},
	})

	ctx := context.Background()
	first, _ := m.Next(ctx, "w1")
	second, _ := m.Next(ctx, "w1")
	if !first.Equal(loc(9, 9)) || !second.Equal(loc(8, 8)) {
		t.Fatalf("expected both priority events back to back under starve_route, got %v then %v", first, second)
	}
}

func TestUnregister_UnknownOriginIsNotFatal(t *testing.T) {
	m := newTestManager(t, []models.Location{loc(0, 0)}, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	if m.Unregister("ghost") {
		t.Fatal("unregistering an unknown origin should report false")
	}
}

func TestIdleReaper_EvictsStaleWorker(t *testing.T) {
	coords := []models.Location{loc(0, 0), loc(0, 1)}
	m := newTestManager(t, coords, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{IdleTimeout: time.Millisecond})
	m.Register("w1")
	m.Next(context.Background(), "w1")

	time.Sleep(5 * time.Millisecond)
	m.reapIdle()

	if len(m.RegisteredWorkers()) != 0 {
		t.Fatalf("expected the idle worker to be evicted, still registered: %v", m.RegisteredWorkers())
	}
}

func TestRoundsUnknownForUnregisteredOrigin(t *testing.T) {
	m := newTestManager(t, []models.Location{loc(0, 0)}, &fakeMode{name: "standard", deleteOnFetch: true}, Settings{})
	if got := m.Rounds("never-registered"); got != RoundsUnknown {
		t.Fatalf("expected RoundsUnknown, got %d", got)
	}
}
