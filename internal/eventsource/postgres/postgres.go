package postgres

import (
	"context"

	"github.com/riftline/geodispatch/internal/models"
)

// PostgresRepository implements Repository using PostgreSQL (lib/pq).
type PostgresRepository struct {
	db DBConn
}

// NewPostgresRepository creates a new PostgreSQL priority-event repository.
func NewPostgresRepository(db DBConn) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// GetLatest retrieves all unconsumed priority events.
func (r *PostgresRepository) GetLatest(ctx context.Context) ([]models.PriorityEvent, error) {
	rows, err := r.db.QueryContext(ctx, queryGetLatest)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []models.PriorityEvent
	for rows.Next() {
		var e models.PriorityEvent
		if err := rows.Scan(&e.DueAt, &e.Location.Lat, &e.Location.Lng); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return events, nil
}

// Source adapts a Repository to the eventsource.Source interface expected by
// the priority queue manager.
type Source struct {
	repo Repository
}

// NewSource wraps repo as an eventsource.Source.
func NewSource(repo Repository) *Source {
	return &Source{repo: repo}
}

// RetrieveLatestPriorityQueue implements eventsource.Source.
func (s *Source) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	return s.repo.GetLatest(ctx)
}
