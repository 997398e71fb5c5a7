package sources

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmcdole/gofeed"

	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/telemetry"
)

// FeedAdapter handles RSS and Atom feeds. A configured fallback URL is
// tried at most once per fetch, and only when the primary yields zero
// usable items.
type FeedAdapter struct {
	source      domain.Source
	url         string
	fallbackURL string
	fetcher     Fetcher
	logger      logger.Logger
	telemetry   *telemetry.Provider
}

// NewFeedAdapter creates an RSS/Atom adapter for source. A nil telemetry
// provider disables fallback metrics.
func NewFeedAdapter(source domain.Source, url, fallbackURL string, fetcher Fetcher, log logger.Logger, provider *telemetry.Provider) *FeedAdapter {
	if log == nil {
		log = logger.NewNop()
	}
	return &FeedAdapter{
		source:      source,
		url:         url,
		fallbackURL: fallbackURL,
		fetcher:     fetcher,
		logger:      log.With(logger.String("source", string(source))),
		telemetry:   provider,
	}
}

// Source returns the adapter's source identity.
func (a *FeedAdapter) Source() domain.Source {
	return a.source
}

// Fetch retrieves and maps the feed. Malformed entries are skipped
// individually; a transport or parse failure of the primary URL falls
// through to the fallback URL when one is configured.
func (a *FeedAdapter) Fetch(ctx context.Context) ([]domain.NewsItem, error) {
	items, err := a.fetchURL(ctx, a.url)
	if len(items) > 0 {
		return items, nil
	}

	if a.fallbackURL == "" {
		return items, err
	}

	a.logger.Debug("primary feed yielded no items, trying fallback",
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

func (a *FeedAdapter) fetchURL(ctx context.Context, url string) ([]domain.NewsItem, error) {
	body, err := a.fetcher.Get(ctx, a.source, url)
	if err != nil {
		return nil, err
	}

	// gofeed parsers initialize translator state lazily on first use,
	// so a shared instance is not safe under concurrent fetches.
	feed, err := gofeed.NewParser().ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse feed for %s: %w", a.source, err)
	}

	items := make([]domain.NewsItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		item, ok := a.mapEntry(entry)
		if !ok {
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

// mapEntry converts one feed entry; entries without a title or link are
// dropped, never fatal.
func (a *FeedAdapter) mapEntry(entry *gofeed.Item) (domain.NewsItem, bool) {
	title := strings.TrimSpace(entry.Title)
	link := strings.TrimSpace(entry.Link)
	if title == "" || link == "" {
		return domain.NewsItem{}, false
	}

	published := entry.PublishedParsed
	if published == nil {
		published = entry.UpdatedParsed
	}

	return domain.NewsItem{
		ID:          itemID(a.source, entry.GUID, link),
		Title:       title,
		Description: strings.TrimSpace(entry.Description),
		Content:     strings.TrimSpace(entry.Content),
		URL:         link,
		ImageURL:    entryImage(entry),
		PublishedAt: normalizePublished(published),
		Source:      a.source,
	}, true
}

// entryImage extracts an image URL from the entry's image, enclosures,
// or media extension, in that order. Empty when none is present.
func entryImage(entry *gofeed.Item) string {
	if entry.Image != nil && entry.Image.URL != "" {
		return entry.Image.URL
	}
	for _, enclosure := range entry.Enclosures {
		if enclosure == nil {
			continue
		}
		if strings.HasPrefix(enclosure.Type, "image/") && enclosure.URL != "" {
			return enclosure.URL
		}
	}
	if media, ok := entry.Extensions["media"]; ok {
		for _, content := range media["content"] {
			if url := content.Attrs["url"]; url != "" {
				return url
			}
		}
	}
	return ""
}
