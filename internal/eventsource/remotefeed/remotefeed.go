// Package remotefeed implements a priority event source backed by an
// OAuth2-authenticated HTTP JSON feed, authenticating the same way a
// satellite-imagery metadata client would.
package remotefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/riftline/geodispatch/internal/models"
)

// Config holds the OAuth2 client-credentials parameters and feed endpoint.
type Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	FeedURL      string
}

// Source polls FeedURL with an OAuth2 client-credentials token attached.
type Source struct {
	client  *http.Client
	feedURL string
}

// New builds a Source from cfg. The returned *http.Client lazily mints and
// refreshes its bearer token via the standard oauth2 transport.
func New(cfg Config) *Source {
	ccConfig := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	return &Source{
		client:  ccConfig.Client(context.Background()),
		feedURL: cfg.FeedURL,
	}
}

type feedEvent struct {
	DueAt float64 `json:"due_at"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

type feedResponse struct {
	Events []feedEvent `json:"events"`
}

// RetrieveLatestPriorityQueue implements eventsource.Source.
func (s *Source) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, fmt.Errorf("remotefeed: building request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remotefeed: fetching %s: %w", s.feedURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("remotefeed: %s returned status %d", s.feedURL, resp.StatusCode)
	}

	var body feedResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("remotefeed: decoding response: %w", err)
	}

	events := make([]models.PriorityEvent, 0, len(body.Events))
	for _, e := range body.Events {
		loc := models.Location{Lat: e.Lat, Lng: e.Lng}
		if !loc.Valid() {
			continue
		}
		events = append(events, models.PriorityEvent{DueAt: e.DueAt, Location: loc})
	}
	return events, nil
}
