package sources

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/telemetry"
)

// drugAlertFeed is the JSON shape of the drug alert API family.
type drugAlertFeed struct {
	Results []drugAlertEntry `json:"results"`
}

type drugAlertEntry struct {
	AlertID     string `json:"alert_id"`
	Title       string `json:"title"`
	Summary     string `json:"summary"`
	Detail      string `json:"detail"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url"`
	PublishedAt string `json:"published_at"` // RFC 3339
}

// DrugAlertAdapter handles JSON drug alert APIs. Same fallback contract
// as the feed adapter: one secondary attempt, only on zero usable items.
type DrugAlertAdapter struct {
	source      domain.Source
	url         string
	fallbackURL string
	fetcher     Fetcher
	logger      logger.Logger
	telemetry   *telemetry.Provider
}

// NewDrugAlertAdapter creates a drug alert API adapter for source. A nil
// telemetry provider disables fallback metrics.
func NewDrugAlertAdapter(source domain.Source, url, fallbackURL string, fetcher Fetcher, log logger.Logger, provider *telemetry.Provider) *DrugAlertAdapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &DrugAlertAdapter{
		source:      source,
		url:         url,
		fallbackURL: fallbackURL,
		fetcher:     fetcher,
		logger:      log.With(logger.String("source", string(source))),
		telemetry:   provider,
	}
}

// Source returns the adapter's source identity.
func (a *DrugAlertAdapter) Source() domain.Source {
	return a.source
}

// Fetch retrieves and maps the alert feed.
func (a *DrugAlertAdapter) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	items, err := a.fetchURL(ctx, a.url)
	if len(items) > 0 {
		return items, nil
	}

	if a.fallbackURL == "" {
		return items, err
	}

	a.logger.Debug("primary alert endpoint yielded no items, trying fallback",
		logger.String("fallback_url", a.fallbackURL))
	if a.telemetry != nil {
		a.telemetry.RecordFallback(string(a.source))
	}

	fallbackItems, fallbackErr := a.fetchURL(ctx, a.fallbackURL)
	if len(fallbackItems) > 0 {
		return fallbackItems, nil
	}
	if err != nil {
		return nil, err
	}
	return nil, fallbackErr
}

func (a *DrugAlertAdapter) fetchURL(ctx context.Context, url string) ([]domain.NewsItem, error) {
	body, err := a.fetcher.Get(ctx, a.source, url)
	if err != nil {
		return nil, err
	}

	var feed drugAlertFeed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("parse alert feed for %s: %w", a.source, err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Results))
	for i := range feed.Results {
		item, ok := a.mapEntry(&feed.Results[i])
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (a *DrugAlertAdapter) mapEntry(entry *drugAlertEntry) (domain.NewsItem, bool) {
	title := strings.TrimSpace(entry.Title)
	url := strings.TrimSpace(entry.URL)
	if title == "" || url == "" {
		return domain.NewsItem{}, false
	}

	var published *time.Time
	if entry.PublishedAt != "" {
		if parsed, err := time.Parse(time.RFC3339, entry.PublishedAt); err == nil {
			published = &parsed
		}
		// Unparseable dates stay unknown; the item is still usable.
	}

	return domain.NewsItem{
		ID:          itemID(a.source, entry.AlertID, url),
		Title:       title,
		Description: strings.TrimSpace(entry.Summary),
		Content:     strings.TrimSpace(entry.Detail),
		URL:         url,
		ImageURL:    strings.TrimSpace(entry.ImageURL),
		PublishedAt: normalizePublished(published),
		Source:      a.source,
	}, true
}
