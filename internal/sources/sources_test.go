package sources

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/telemetry"
)

// fakeFetcher serves canned bodies per URL and records fetch order.
type fakeFetcher struct {
	bodies map[string][]byte
	errs   map[string]error

	mu    sync.Mutex
	calls []string
}

func (f *fakeFetcher) Get(ctx context.Context, source domain.Source, url string) ([]byte, error) {
	f.mu.Lock()
	f.calls = append(f.calls, url)
	f.mu.Unlock()
	if err, ok := f.errs[url]; ok {
		return nil, err
	}
	body, ok := f.bodies[url]
	if !ok {
		return nil, fmt.Errorf("no canned body for %s", url)
	}
	return body, nil
}

func rssBody(entries string) []byte {
	return []byte(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0"><channel><title>Test Feed</title>` + entries + `</channel></rss>`)
}

func TestFeedAdapter_MapsEntries(t *testing.T) {
	published := time.Now().Add(-2 * time.Hour).Format(time.RFC1123Z)
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item>
				<title>FDA approves oncology drug</title>
				<link>https://feed.example/articles/1</link>
				<guid>guid-1</guid>
				<description>Approval news.</description>
				<pubDate>` + published + `</pubDate>
				<enclosure url="https://feed.example/img/1.jpg" type="image/jpeg" length="1"/>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourceFiercePharma, "https://feed.example/rss", "", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	item := items[0]
	assert.Equal(t, "FDA approves oncology drug", item.Title)
	assert.Equal(t, "https://feed.example/articles/1", item.URL)
	assert.Equal(t, "https://feed.example/img/1.jpg", item.ImageURL)
	assert.Equal(t, domain.SourceFiercePharma, item.Source)
	assert.NotNil(t, item.PublishedAt)
	assert.NotEmpty(t, item.ID)
}

func TestFeedAdapter_SkipsMalformedEntries(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item><title>No link entry</title></item>
			<item><link>https://feed.example/no-title</link></item>
			<item>
				<title>Valid entry</title>
				<link>https://feed.example/articles/2</link>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourceEndpoints, "https://feed.example/rss", "", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Valid entry", items[0].Title)
}

func TestFeedAdapter_FutureDateTreatedAsUnknown(t *testing.T) {
	future := time.Now().Add(72 * time.Hour).Format(time.RFC1123Z)
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item>
				<title>Item from the future</title>
				<link>https://feed.example/articles/3</link>
				<pubDate>` + future + `</pubDate>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourceEndpoints, "https://feed.example/rss", "", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].PublishedAt)
}

func TestFeedAdapter_FallbackOnlyOnZeroItems(t *testing.T) {
	fetcher := &fakeFetcher{
		bodies: map[string][]byte{
			"https://feed.example/fallback": rssBody(`
				<item>
					<title>Fallback item</title>
					<link>https://feed.example/articles/4</link>
				</item>`),
		},
		errs: map[string]error{
			"https://feed.example/rss": errors.New("status 503"),
		},
	}

	adapter := NewFeedAdapter(domain.SourcePharmaTimes,
		"https://feed.example/rss", "https://feed.example/fallback", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Fallback item", items[0].Title)
	assert.Equal(t, []string{"https://feed.example/rss", "https://feed.example/fallback"}, fetcher.calls)
}

func TestFeedAdapter_NoFallbackWhenPrimarySucceeds(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item>
				<title>Primary item</title>
				<link>https://feed.example/articles/5</link>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourcePharmaTimes,
		"https://feed.example/rss", "https://feed.example/fallback", fetcher, logger.NewNop(), nil)

	_, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	assert.Equal(t, []string{"https://feed.example/rss"}, fetcher.calls)
}

func TestFeedAdapter_BothAttemptsFailReturnsError(t *testing.T) {
	fetcher := &fakeFetcher{errs: map[string]error{
		"https://feed.example/rss":      errors.New("status 500"),
		"https://feed.example/fallback": errors.New("timeout"),
	}}

	adapter := NewFeedAdapter(domain.SourcePharmaTimes,
		"https://feed.example/rss", "https://feed.example/fallback", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	assert.Error(t, err)
	assert.Empty(t, items)
	// At most one fallback attempt per call.
	assert.Len(t, fetcher.calls, 2)
}

func TestDrugAlertAdapter_MapsEntries(t *testing.T) {
	published := time.Now().Add(-3 * time.Hour).Format(time.RFC3339)
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://alerts.example/api": []byte(`{"results": [
			{
				"alert_id": "RA-100",
				"title": "Recall: contaminated lot",
				"summary": "Class I recall.",
				"url": "https://alerts.example/alerts/ra-100",
				"published_at": "` + published + `"
			},
			{
				"alert_id": "RA-101",
				"title": "",
				"url": "https://alerts.example/alerts/ra-101"
			}
		]}`),
	}}

	adapter := NewDrugAlertAdapter(domain.SourceFDADrugAlerts, "https://alerts.example/api", "", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "Recall: contaminated lot", items[0].Title)
	assert.Equal(t, domain.SourceFDADrugAlerts, items[0].Source)
	assert.NotNil(t, items[0].PublishedAt)
}

func TestDrugAlertAdapter_UnparseableDateStaysUnknown(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://alerts.example/api": []byte(`{"results": [
			{
				"alert_id": "RA-102",
				"title": "Alert with bad date",
				"url": "https://alerts.example/alerts/ra-102",
				"published_at": "not-a-date"
			}
		]}`),
	}}

	adapter := NewDrugAlertAdapter(domain.SourceFDADrugAlerts, "https://alerts.example/api", "", fetcher, logger.NewNop(), nil)

	items, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Nil(t, items[0].PublishedAt)
}

func TestItemID_StableAndGuidPreferred(t *testing.T) {
	withGUID := itemID(domain.SourceEndpoints, "guid-1", "https://a.example/1")
	withGUIDAgain := itemID(domain.SourceEndpoints, "guid-1", "https://a.example/other")
	linkOnly := itemID(domain.SourceEndpoints, "", "https://a.example/1")

	assert.Equal(t, withGUID, withGUIDAgain, "guid wins over link")
	assert.NotEqual(t, withGUID, linkOnly)
	assert.Contains(t, withGUID, string(domain.SourceEndpoints))
}

func TestRegistry_RejectsUnknownSource(t *testing.T) {
	_, err := NewRegistry(configWithFeed("not-a-source", "rss"), &fakeFetcher{}, logger.NewNop(), nil)
	assert.Error(t, err)
}

func TestRegistry_PreservesConfigOrder(t *testing.T) {
	cfg := configWithFeed(string(domain.SourceEndpoints), "rss")
	cfg.Feeds = append(cfg.Feeds, feedConfig(string(domain.SourceFiercePharma), "rss"))

	registry, err := NewRegistry(cfg, &fakeFetcher{}, logger.NewNop(), nil)

	require.NoError(t, err)
	adapters := registry.Adapters()
	require.Len(t, adapters, 2)
	assert.Equal(t, domain.SourceEndpoints, adapters[0].Source())
	assert.Equal(t, domain.SourceFiercePharma, adapters[1].Source())
}

func TestFeedAdapter_FallbackCounter(t *testing.T) {
	provider := telemetry.NewProviderWith(prometheus.NewRegistry())
	fetcher := &fakeFetcher{
		bodies: map[string][]byte{
			"https://feed.example/fallback": rssBody(`
			<item>
				<title>Fallback item</title>
				<link>https://feed.example/articles/9</link>
			</item>`),
		},
		errs: map[string]error{
			"https://feed.example/rss": errors.New("status 503"),
		},
	}

	adapter := NewFeedAdapter(domain.SourcePharmaTimes,
		"https://feed.example/rss", "https://feed.example/fallback", fetcher, logger.NewNop(), provider)

	_, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	counter := provider.Metrics.FallbackTried.WithLabelValues(string(domain.SourcePharmaTimes))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter))
}

func TestFeedAdapter_NoFallbackCounterWhenPrimarySucceeds(t *testing.T) {
	provider := telemetry.NewProviderWith(prometheus.NewRegistry())
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item>
				<title>Primary item</title>
				<link>https://feed.example/articles/10</link>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourcePharmaTimes,
		"https://feed.example/rss", "https://feed.example/fallback", fetcher, logger.NewNop(), provider)

	_, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	counter := provider.Metrics.FallbackTried.WithLabelValues(string(domain.SourcePharmaTimes))
	assert.Equal(t, 0.0, testutil.ToFloat64(counter))
}

func TestDrugAlertAdapter_FallbackCounter(t *testing.T) {
	provider := telemetry.NewProviderWith(prometheus.NewRegistry())
	fetcher := &fakeFetcher{
		bodies: map[string][]byte{
			"https://alerts.example/backup": []byte(`{"results": [
				{"alert_id": "RA-200", "title": "Backup alert", "url": "https://alerts.example/alerts/ra-200"}
			]}`),
		},
		errs: map[string]error{
			"https://alerts.example/api": errors.New("status 502"),
		},
	}

	adapter := NewDrugAlertAdapter(domain.SourceFDADrugAlerts,
		"https://alerts.example/api", "https://alerts.example/backup", fetcher, logger.NewNop(), provider)

	_, err := adapter.Fetch(context.Background())

	require.NoError(t, err)
	counter := provider.Metrics.FallbackTried.WithLabelValues(string(domain.SourceFDADrugAlerts))
	assert.Equal(t, 1.0, testutil.ToFloat64(counter))
}

// One adapter instance serves all requests in production, so parallel
// fetches must be safe. Run with the race detector to catch regressions
// toward shared parser state.
func TestFeedAdapter_ConcurrentFetch(t *testing.T) {
	fetcher := &fakeFetcher{bodies: map[string][]byte{
		"https://feed.example/rss": rssBody(`
			<item>
				<title>Shared adapter item</title>
				<link>https://feed.example/articles/11</link>
			</item>`),
	}}

	adapter := NewFeedAdapter(domain.SourceEndpoints, "https://feed.example/rss", "", fetcher, logger.NewNop(), nil)

	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			items, err := adapter.Fetch(context.Background())
			if err == nil && len(items) != 1 {
				err = fmt.Errorf("expected 1 item, got %d", len(items))
			}
			errs[i] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
}
