package postgres

const (
	// queryGetLatest retrieves every unconsumed priority event, most urgent
	// first. Age-based filtering (remove_from_queue_backlog) is applied by
	// the priority queue manager, not here, so this query stays a full scan
	// of the open backlog.
	// Index: due_at for ordering, consumed_at IS NULL for the open-backlog filter.
	queryGetLatest = `
		SELECT due_at, lat, lng
		FROM geodispatch.priority_events
		WHERE consumed_at IS NULL
		ORDER BY due_at
	`
)
