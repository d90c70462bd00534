// Package browserfeed implements a priority event source for upstream sites
// that expose no stable API — it drives a headless browser instead, in the
// same vein as a Cloudflare-gated site scraper, adapted here to scrape a
// live incident/events board.
package browserfeed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/riftline/geodispatch/internal/models"
)

// Source scrapes a JS-rendered events board for due/location pairs.
type Source struct {
	url          string
	allocCtx     context.Context
	allocCancel  context.CancelFunc
	pageSettle   time.Duration
	extractorJS  string
}

// rawEvent mirrors the shape the page's extractor script emits.
type rawEvent struct {
	DueAt float64 `json:"due_at"`
	Lat   float64 `json:"lat"`
	Lng   float64 `json:"lng"`
}

// defaultExtractorJS reads a `window.__EVENTS__` array the target page is
// expected to populate; real deployments point this at whatever selector or
// global the scraped site actually exposes.
const defaultExtractorJS = `JSON.stringify(window.__EVENTS__ || [])`

// New builds a browser-driven Source targeting url.
func New(url string) *Source {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.UserAgent("Mozilla/5.0 (X11; Linux x86_64) geodispatch-browserfeed"),
	)
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &Source{
		url:         url,
		allocCtx:    allocCtx,
		allocCancel: allocCancel,
		pageSettle:  3 * time.Second,
		extractorJS: defaultExtractorJS,
	}
}

// Close releases the underlying browser allocator.
func (s *Source) Close() {
	s.allocCancel()
}

// RetrieveLatestPriorityQueue implements eventsource.Source.
func (s *Source) RetrieveLatestPriorityQueue(ctx context.Context) ([]models.PriorityEvent, error) {
	tabCtx, cancel := chromedp.NewContext(s.allocCtx)
	defer cancel()

	var raw string
	err := chromedp.Run(tabCtx,
		chromedp.Navigate(s.url),
		chromedp.Sleep(s.pageSettle),
		chromedp.Evaluate(s.extractorJS, &raw),
	)
	if err != nil {
		return nil, fmt.Errorf("browserfeed: scraping %s: %w", s.url, err)
	}

	var rawEvents []rawEvent
	if err := json.Unmarshal([]byte(raw), &rawEvents); err != nil {
		return nil, fmt.Errorf("browserfeed: decoding extracted events: %w", err)
	}

	events := make([]models.PriorityEvent, 0, len(rawEvents))
	for _, r := range rawEvents {
		loc := models.Location{Lat: r.Lat, Lng: r.Lng}
		if !loc.Valid() {
			continue
		}
		events = append(events, models.PriorityEvent{DueAt: r.DueAt, Location: loc})
	}
	return events, nil
}
