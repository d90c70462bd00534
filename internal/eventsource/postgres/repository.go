package postgres

import (
	"context"

	"github.com/riftline/geodispatch/internal/models"
)

// Repository defines the Postgres-backed operations for priority events.
// All methods are safe for concurrent use.
type Repository interface {
	// GetLatest retrieves every unconsumed priority event, ordered by due
	// time ascending. Returns an empty slice if none are pending.
	GetLatest(ctx context.Context) ([]models.PriorityEvent, error)
}
