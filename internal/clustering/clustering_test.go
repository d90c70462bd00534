package clustering

import (
	"testing"

	"github.com/riftline/geodispatch/internal/models"
)

func TestGetClustered_MergesNearbyEvents(t *testing.T) {
	c := NewWindowClusterer(1000, 10, 60, 1000)
	events := []models.PriorityEvent{
		{DueAt: 100, Location: models.Location{Lat: 1, Lng: 1}},
		{DueAt: 110, Location: models.Location{Lat: 1.001, Lng: 1.001}},
		{DueAt: 500, Location: models.Location{Lat: 50, Lng: 50}},
	}
	got := c.GetClustered(events)
	if len(got) != 2 {
		t.Fatalf("expected 2 clusters, got %d: %v", len(got), got)
	}
	if got[0].DueAt != 100 {
		t.Fatalf("expected earlier-due event to represent the cluster, got %v", got[0])
	}
}

func TestGetClustered_ZeroWindowDisablesMerging(t *testing.T) {
	c := NewWindowClusterer(1000, 10, 0, 0)
	events := []models.PriorityEvent{
		{DueAt: 100, Location: models.Location{Lat: 1, Lng: 1}},
		{DueAt: 100, Location: models.Location{Lat: 1, Lng: 1}},
	}
	got := c.GetClustered(events)
	if len(got) != 2 {
		t.Fatalf("expected no merging with zero window, got %d", len(got))
	}
}
