package remotefeed

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRetrieveLatestPriorityQueue_DropsInvalidLocations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(feedResponse{Events: []feedEvent{
			{DueAt: 1, Lat: 10, Lng: 10},
			{DueAt: 2, Lat: 999, Lng: 10},
		}})
	}))
	defer srv.Close()

	s := &Source{client: srv.Client(), feedURL: srv.URL}
	events, err := s.RetrieveLatestPriorityQueue(t.Context())
	if err != nil {
		t.Fatalf("RetrieveLatestPriorityQueue: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("expected 1 valid event, got %d", len(events))
	}
}

func TestRetrieveLatestPriorityQueue_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	s := &Source{client: srv.Client(), feedURL: srv.URL}
	if _, err := s.RetrieveLatestPriorityQueue(t.Context()); err == nil {
		t.Fatal("expected an error for a non-200 response")
	}
}
