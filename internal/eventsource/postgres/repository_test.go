package postgres_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/riftline/geodispatch/internal/eventsource/postgres"
)

func TestPostgresRepository_GetLatest(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"due_at", "lat", "lng"}).
		AddRow(100.0, 44.3672, -121.1423).
		AddRow(200.0, 47.8203, -121.5565)

	mock.ExpectQuery("SELECT (.+) FROM geodispatch.priority_events").
		WillReturnRows(rows)

	repo := postgres.NewPostgresRepository(db)
	result, err := repo.GetLatest(context.Background())
	if err != nil {
		t.Fatalf("GetLatest() error = %v", err)
	}

	if len(result) != 2 {
		t.Fatalf("GetLatest() returned %d events, want 2", len(result))
	}
	if result[0].DueAt != 100.0 {
		t.Errorf("GetLatest() first event due_at = %v, want 100.0", result[0].DueAt)
	}
	if result[1].Location.Lat != 47.8203 {
		t.Errorf("GetLatest() second event lat = %v, want 47.8203", result[1].Location.Lat)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unfulfilled expectations: %v", err)
	}
}

func TestSource_RetrieveLatestPriorityQueue(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create mock: %v", err)
	}
	defer db.Close()

	rows := sqlmock.NewRows([]string{"due_at", "lat", "lng"}).AddRow(50.0, 1.0, 1.0)
	mock.ExpectQuery("SELECT (.+) FROM geodispatch.priority_events").WillReturnRows(rows)

	src := postgres.NewSource(postgres.NewPostgresRepository(db))
	events, err := src.RetrieveLatestPriorityQueue(context.Background())
	if err != nil {
		t.Fatalf("RetrieveLatestPriorityQueue() error = %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
}
