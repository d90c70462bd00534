package planner

import (
	"path/filepath"
	"testing"

	"github.com/riftline/geodispatch/internal/models"
)

func TestGreedyPlanner_Quick_PreservesOrder(t *testing.T) {
	coords := []models.Location{{Lat: 3, Lng: 3}, {Lat: 1, Lng: 1}, {Lat: 2, Lng: 2}}
	got, err := GreedyPlanner{}.Plan(coords, 100, 10, AlgorithmQuick)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	for i, c := range coords {
		if got[i] != c {
			t.Fatalf("quick plan reordered input at %d: got %v want %v", i, got[i], c)
		}
	}
}

func TestGreedyPlanner_Optimized_VisitsEveryCoord(t *testing.T) {
	coords := []models.Location{{Lat: 0, Lng: 0}, {Lat: 5, Lng: 5}, {Lat: 1, Lng: 1}, {Lat: 10, Lng: 10}}
	got, err := GreedyPlanner{}.Plan(coords, 100, 10, AlgorithmOptimized)
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(got) != len(coords) {
		t.Fatalf("expected %d coords, got %d", len(coords), len(got))
	}
	seen := map[models.Location]bool{}
	for _, c := range got {
		seen[c] = true
	}
	for _, c := range coords {
		if !seen[c] {
			t.Fatalf("optimized plan dropped coordinate %v", c)
		}
	}
	// Nearest-neighbor from (0,0) should visit (1,1) before (5,5).
	idx := func(loc models.Location) int {
		for i, c := range got {
			if c == loc {
				return i
			}
		}
		return -1
	}
	if idx(models.Location{Lat: 1, Lng: 1}) > idx(models.Location{Lat: 5, Lng: 5}) {
		t.Fatalf("expected nearest coordinate to be visited first: %v", got)
	}
}

func TestFileCachingPlanner_CachesAcrossCalls(t *testing.T) {
	dir := t.TempDir()
	routeFile := filepath.Join(dir, "myarea")

	calls := 0
	counting := plannerFunc(func(coords []models.Location, maxRadius float64, maxPerCluster int, algorithm Algorithm) ([]models.Location, error) {
		calls++
		return coords, nil
	})

	cp := NewFileCachingPlanner(counting, routeFile)
	coords := []models.Location{{Lat: 1, Lng: 1}}

	if _, err := cp.Plan(coords, 1, 1, AlgorithmOptimized); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if _, err := cp.Plan(coords, 1, 1, AlgorithmOptimized); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if calls != 1 {
		t.Fatalf("expected inner planner invoked once (second call served from cache), got %d", calls)
	}

	if err := cp.InvalidateCache(); err != nil {
		t.Fatalf("InvalidateCache: %v", err)
	}
	if _, err := cp.Plan(coords, 1, 1, AlgorithmOptimized); err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if calls != 2 {
		t.Fatalf("expected inner planner invoked again after cache invalidation, got %d", calls)
	}
}

type plannerFunc func([]models.Location, float64, int, Algorithm) ([]models.Location, error)

func (f plannerFunc) Plan(coords []models.Location, maxRadius float64, maxPerCluster int, algorithm Algorithm) ([]models.Location, error) {
	return f(coords, maxRadius, maxPerCluster, algorithm)
}
