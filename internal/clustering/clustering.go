// Package clustering reduces a batch of priority events by merging entries
// that are co-located and co-temporal.
package clustering

import (
	"math"

	"github.com/riftline/geodispatch/internal/models"
)

// Clusterer merges priority events within a time/distance window.
type Clusterer interface {
	GetClustered(events []models.PriorityEvent) []models.PriorityEvent
}

// WindowClusterer is the reference Clusterer: two events merge when they are
// within WindowSeconds of due time and WindowMeters (equirectangular
// approximation, converted from degrees to meters) of each other. The earlier-due
// event of a merged pair survives as the representative.
type WindowClusterer struct {
	MaxRadius      float64
	MaxPerCluster  int
	WindowSeconds  float64
	WindowMeters   float64
}

// NewWindowClusterer builds a clusterer from the (maxRadius, maxPerCluster,
// criteria) tuple the spec's Clustering interface is constructed with.
func NewWindowClusterer(maxRadius float64, maxPerCluster int, windowSeconds, windowMeters float64) *WindowClusterer {
	return &WindowClusterer{
		MaxRadius:     maxRadius,
		MaxPerCluster: maxPerCluster,
		WindowSeconds: windowSeconds,
		WindowMeters:  windowMeters,
	}
}

// GetClustered merges events within the configured window. A zero window
// (both WindowSeconds and WindowMeters are 0) disables merging entirely.
func (c *WindowClusterer) GetClustered(events []models.PriorityEvent) []models.PriorityEvent {
	if c.WindowSeconds == 0 && c.WindowMeters == 0 {
		out := make([]models.PriorityEvent, len(events))
		copy(out, events)
		return out
	}

	merged := make([]models.PriorityEvent, 0, len(events))
	used := make([]bool, len(events))

	for i := range events {
		if used[i] {
			continue
		}
		representative := events[i]
		used[i] = true
		for j := i + 1; j < len(events); j++ {
			if used[j] {
				continue
			}
			if !c.withinWindow(representative, events[j]) {
				continue
			}
			used[j] = true
			if events[j].DueAt < representative.DueAt {
				representative = events[j]
			}
		}
		merged = append(merged, representative)
	}
	return merged
}

func (c *WindowClusterer) withinWindow(a, b models.PriorityEvent) bool {
	if c.WindowSeconds > 0 {
		diff := a.DueAt - b.DueAt
		if diff < 0 {
			diff = -diff
		}
		if diff > c.WindowSeconds {
			return false
		}
	}
	if c.WindowMeters > 0 {
		const metersPerDegree = 111320.0
		meanLat := (a.Location.Lat + b.Location.Lat) / 2 * math.Pi / 180
		dLat := (a.Location.Lat - b.Location.Lat) * metersPerDegree
		dLng := (a.Location.Lng - b.Location.Lng) * metersPerDegree * math.Cos(meanLat)
		distSq := dLat*dLat + dLng*dLng
		thresholdSq := c.WindowMeters * c.WindowMeters
		if distSq > thresholdSq {
			return false
		}
	}
	return true
}
