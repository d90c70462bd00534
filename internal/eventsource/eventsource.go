// Package eventsource declares the external collaborator that feeds the
// priority queue manager: it returns the latest batch of priority events
// from wherever they are produced.
package eventsource

import (
	"context"

	"github.com/riftline/geodispatch/internal/models"
)

// Source returns the current batch of priority events, or an error if the
// fetch failed. A failed fetch must leave the caller's prior heap intact —
// that policy lives in the priority queue manager, not here.
type Source interface {
	RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error)
}
