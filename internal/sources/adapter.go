package sources

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/medwire/newscore/internal/config"
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/telemetry"
)

// Adapter fetches raw items from one upstream source. Implementations
// skip malformed entries individually and only return an error for
// whole-fetch failures (transport, parse); the aggregator treats those
// as soft failures.
type Adapter interface {
	Source() domain.Source
	Fetch(ctx context.Context) ([]domain.NewsItem, error)
}

// Fetcher abstracts the shared HTTP client for tests.
type Fetcher interface {
	Get(ctx context.Context, source domain.Source, url string) ([]byte, error)
}

// Registry holds the adapters in their fixed merge order. The order is
// the configuration order, which makes dedup tiebreaks reproducible
// across runs.
type Registry struct {
	adapters []Adapter
}

// NewRegistry builds adapters from configuration.
func NewRegistry(cfg config.SourcesConfig, fetcher Fetcher, log logger.Logger, provider *telemetry.Provider) (*Registry, error) {
	if log == nil {
		log = logger.NewNop()
	}

	adapters := make([]Adapter, 0, len(cfg.Feeds))
	for _, feed := range cfg.Feeds {
		source := domain.Source(feed.Name)
		if !source.Valid() {
			return nil, fmt.Errorf("unknown source %q", feed.Name)
		}

		switch feed.Type {
		case "rss":
			adapters = append(adapters, NewFeedAdapter(source, feed.URL, feed.FallbackURL, fetcher, log, provider))
		case "drug_alerts":
			adapters = append(adapters, NewDrugAlertAdapter(source, feed.URL, feed.FallbackURL, fetcher, log, provider))
		default:
			return nil, fmt.Errorf("source %q: unsupported type %q", feed.Name, feed.Type)
		}
	}

	return &Registry{adapters: adapters}, nil
}

// NewRegistryFromAdapters wraps pre-built adapters, preserving order.
func NewRegistryFromAdapters(adapters ...Adapter) *Registry {
	return &Registry{adapters: adapters}
}

// Adapters returns the adapters in merge order.
func (r *Registry) Adapters() []Adapter {
	return r.adapters
}

// futureSkew is the allowance for upstream clock skew. Published dates
// further in the future than this are treated as unknown.
const futureSkew = 24 * time.Hour

// normalizePublished validates an upstream publish date: nil stays nil,
// and dates more than futureSkew ahead of now become unknown rather
// than future.
func normalizePublished(published *time.Time) *time.Time {
	if published == nil {
		return nil
	}
	if published.After(time.Now().Add(futureSkew)) {
		return nil
	}
	return published
}

// itemID derives a stable item id from the source plus the upstream
// guid, falling back to the link when no guid is present.
func itemID(source domain.Source, guid, link string) string {
	ref := strings.TrimSpace(guid)
	if ref == "" {
		ref = strings.TrimSpace(link)
	}
	sum := sha1.Sum([]byte(ref))
	return string(source) + "-" + hex.EncodeToString(sum[:6])
}
