package geofence

import (
	"testing"

	"github.com/riftline/geodispatch/internal/models"
)

func square(minLat, minLng, maxLat, maxLng float64) Ring {
	return Ring{
		{Lat: minLat, Lng: minLng},
		{Lat: minLat, Lng: maxLng},
		{Lat: maxLat, Lng: maxLng},
		{Lat: maxLat, Lng: minLng},
	}
}

func TestGetGeofencedCoordinates_IncludeOnly(t *testing.T) {
	h := NewPolygonHelper([]Ring{square(0, 0, 10, 10)}, nil)

	coords := []models.Location{
		{Lat: 5, Lng: 5},   // inside
		{Lat: 20, Lng: 20}, // outside
	}
	got := h.GetGeofencedCoordinates(coords)
	if len(got) != 1 || got[0].Lat != 5 {
		t.Fatalf("expected only the inside coordinate, got %v", got)
	}
}

func TestGetGeofencedCoordinates_ExcludeCarvesHole(t *testing.T) {
	h := NewPolygonHelper([]Ring{square(0, 0, 10, 10)}, []Ring{square(4, 4, 6, 6)})

	coords := []models.Location{
		{Lat: 5, Lng: 5}, // inside include, inside exclude
		{Lat: 1, Lng: 1}, // inside include, outside exclude
	}
	got := h.GetGeofencedCoordinates(coords)
	if len(got) != 1 || got[0].Lat != 1 {
		t.Fatalf("expected the excluded hole to be removed, got %v", got)
	}
}

func TestGetGeofencedCoordinates_DropsInvalid(t *testing.T) {
	h := NewPolygonHelper(nil, nil)
	coords := []models.Location{
		{Lat: 200, Lng: 0},
		{Lat: 10, Lng: 10},
	}
	got := h.GetGeofencedCoordinates(coords)
	if len(got) != 1 {
		t.Fatalf("expected invalid coordinate dropped, got %v", got)
	}
}
