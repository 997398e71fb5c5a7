// Package aggregator fans out to every registered source adapter,
// merges and deduplicates the results, and produces classified,
// filtered, paginated news responses.
package aggregator

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/trace"

	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/sources"
	"github.com/medwire/newscore/internal/telemetry"
)

// Aggregator orchestrates the fetch-merge-classify pipeline.
type Aggregator struct {
	registry      *sources.Registry
	classifier    *classifier.Classifier
	sourceTimeout time.Duration
	logger        logger.Logger
	telemetry     *telemetry.Provider
}

// New creates an aggregator. telemetryProvider may be nil.
func New(
	registry *sources.Registry,
	newsClassifier *classifier.Classifier,
	sourceTimeout time.Duration,
	log logger.Logger,
	telemetryProvider *telemetry.Provider,
) *Aggregator {
	if log == nil {
		log = logger.NewNop()
	}
	return &Aggregator{
		registry:      registry,
		classifier:    newsClassifier,
		sourceTimeout: sourceTimeout,
		logger:        log,
		telemetry:     telemetryProvider,
	}
}

// Aggregate runs the full pipeline and returns one page of results.
// Upstream failures degrade the result set; they never fail the call.
// The only error path is an invalid filter.
func (a *Aggregator) Aggregate(ctx context.Context, filter *domain.NewsFilter) (domain.NewsResponse, error) {
	if filter == nil {
		filter = &domain.NewsFilter{}
	}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		return domain.NewsResponse{}, err
	}

	items := a.Collect(ctx)

	filtered := FilterItems(items, filter)
	SortChronological(filtered)

	page := Paginate(filtered, filter.Page, filter.PageSize)

	return domain.NewsResponse{
		Items:    page,
		Total:    len(filtered),
		Page:     filter.Page,
		PageSize: filter.PageSize,
	}, nil
}

// Collect fetches all sources concurrently, merges, deduplicates and
// classifies. Total upstream failure yields an empty slice, not an
// error: a degraded result is still a result.
func (a *Aggregator) Collect(ctx context.Context) []domain.NewsItem {
	if a.telemetry != nil {
		var span trace.Span
		ctx, span = a.telemetry.StartSpan(ctx, "aggregator.collect")
		defer span.End()
	}

	start := time.Now()
	adapters := a.registry.Adapters()

	// One goroutine per adapter, each with its own timeout. Results land
	// at the adapter's index so the later merge runs in registry order
	// no matter which source finished first.
	results := make([][]domain.NewsItem, len(adapters))
	var wg sync.WaitGroup

	for i, adapter := range adapters {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = a.fetchOne(ctx, adapter)
		}()
	}
	wg.Wait()

	var candidates int
	merged := make([]domain.NewsItem, 0, 64)
	seen := make(map[string]bool)

	for _, items := range results {
		for i := range items {
			item := items[i]
			candidates++
			if item.Title == "" || item.URL == "" {
				continue
			}
			key := item.DedupKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			merged = append(merged, item)
		}
	}

	for i := range merged {
		a.classifier.Annotate(&merged[i])
	}

	if a.telemetry != nil {
		a.telemetry.RecordMerge(candidates, len(merged), time.Since(start))
	}
	a.logger.Info("aggregation complete",
		logger.Int("sources", len(adapters)),
		logger.Int("candidates", candidates),
		logger.Int("merged", len(merged)),
		logger.Duration("elapsed", time.Since(start)),
	)

	return merged
}

// fetchOne runs one adapter inside its own timeout bulkhead. Failures
// are logged and contribute zero items.
func (a *Aggregator) fetchOne(ctx context.Context, adapter sources.Adapter) []domain.NewsItem {
	fetchCtx, cancel := context.WithTimeout(ctx, a.sourceTimeout)
	defer cancel()

	start := time.Now()
	items, err := adapter.Fetch(fetchCtx)
	elapsed := time.Since(start)

	source := string(adapter.Source())
	if err != nil {
		result := "error"
		if fetchCtx.Err() == context.DeadlineExceeded {
			result = "timeout"
		}
		if a.telemetry != nil {
			a.telemetry.RecordFetch(source, result, 0, elapsed)
		}
		a.logger.Warn("source fetch failed",
			logger.String("source", source),
			logger.String("result", result),
			logger.Error(err),
		)
		return nil
	}

	if a.telemetry != nil {
		a.telemetry.RecordFetch(source, "ok", len(items), elapsed)
	}
	a.logger.Debug("source fetch complete",
		logger.String("source", source),
		logger.Int("items", len(items)),
		logger.Duration("elapsed", elapsed),
	)
	return items
}

// FilterItems returns the items passing the filter's predicates.
// Pagination is not applied here.
func FilterItems(items []domain.NewsItem, filter *domain.NewsFilter) []domain.NewsItem {
	if filter == nil {
		return items
	}
	filtered := make([]domain.NewsItem, 0, len(items))
	for i := range items {
		if filter.Matches(&items[i]) {
			filtered = append(filtered, items[i])
		}
	}
	return filtered
}

// SortChronological sorts in place by publish date descending; items
// with unknown dates sort last, ties keep insertion order.
func SortChronological(items []domain.NewsItem) {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].PublishedAt, items[j].PublishedAt
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.After(*b)
		}
	})
}

// Paginate returns the 1-indexed page of items. Total always refers to
// the pre-pagination count, which callers report separately.
func Paginate[T any](items []T, page, pageSize int) []T {
	start := (page - 1) * pageSize
	if start >= len(items) || start < 0 {
		return []T{}
	}
	end := start + pageSize
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}
