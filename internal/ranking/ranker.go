// Package ranking orders classified items chronologically or by personal
// relevance, and computes the adaptive "highly recommended" threshold for
// a result set.
package ranking

import (
	"sort"
	"sync"
	"time"

	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/scoring"
	"github.com/medwire/newscore/internal/telemetry"
)

// Mode selects the sort order.
type Mode string

const (
	// ModeChronological sorts by publish date, newest first.
	ModeChronological Mode = "chronological"
	// ModeRelevance scores every item and sorts by score, dropping
	// items that score zero.
	ModeRelevance Mode = "relevance"
)

// Config holds the adaptive threshold parameters. The breakpoints are
// empirically tuned and preserved for behavioral compatibility; treat
// them as configuration, not law.
type Config struct {
	// PercentileMinimum is the set size at which the percentile rule
	// takes over from the max-ratio rule.
	PercentileMinimum int
	// TopPercentile is the descending-rank cutoff, e.g. 0.2 flags the
	// top 20% of scores.
	TopPercentile float64
	// SmallSetRatio is applied to the max score for sets below
	// PercentileMinimum.
	SmallSetRatio float64
	// ThresholdFloor is the absolute minimum threshold, so uniformly
	// low-relevance sets never get flagged wholesale.
	ThresholdFloor float64
	// Workers bounds the scoring worker pool.
	Workers int
}

// DefaultConfig returns the production threshold parameters.
func DefaultConfig() Config {
	return Config{
		PercentileMinimum: 5,
		TopPercentile:     0.2,
		SmallSetRatio:     0.85,
		ThresholdFloor:    40,
		Workers:           8,
	}
}

// Ranker sorts and flags items.
type Ranker struct {
	cfg       Config
	scorer    *scoring.Scorer
	telemetry *telemetry.Provider
}

// New creates a ranker around the given scorer. A nil telemetry provider
// disables scoring metrics.
func New(scorer *scoring.Scorer, cfg Config, provider *telemetry.Provider) *Ranker {
	if cfg.Workers <= 0 {
		cfg.Workers = DefaultConfig().Workers
	}
	return &Ranker{cfg: cfg, scorer: scorer, telemetry: provider}
}

// Result is the outcome of one ranking pass.
type Result struct {
	Items                []domain.ScoredItem
	RecommendedThreshold float64
}

// Rank orders items per mode. In relevance mode every item is scored
// against the profile, zero-score items are dropped, and items at or
// above the adaptive threshold are flagged Recommended. The flag never
// affects sort order.
func (r *Ranker) Rank(items []domain.NewsItem, profile *domain.PreferenceProfile, mode Mode) Result {
	if mode != ModeRelevance || profile == nil {
		return Result{Items: sortChronological(items)}
	}

	start := time.Now()
	scored := r.scoreAll(items, profile)
	if r.telemetry != nil {
		r.telemetry.RecordScoring(len(items), time.Since(start))
	}

	kept := scored[:0]
	for _, item := range scored {
		if item.Score > 0 {
			kept = append(kept, item)
		}
	}
	scored = kept

	threshold := r.Threshold(scores(scored))

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return publishedAfter(scored[i].PublishedAt, scored[j].PublishedAt)
	})

	for i := range scored {
		scored[i].Recommended = scored[i].Score >= threshold
	}

	return Result{Items: scored, RecommendedThreshold: threshold}
}

// scoreAll scores items in parallel. Scoring is pure and per-item
// independent, so the order of completion does not matter; results land
// at their input index.
func (r *Ranker) scoreAll(items []domain.NewsItem, profile *domain.PreferenceProfile) []domain.ScoredItem {
	scored := make([]domain.ScoredItem, len(items))

	workers := r.cfg.Workers
	if workers > len(items) {
		workers = len(items)
	}
	if workers <= 1 {
		for i := range items {
			scored[i] = r.scoreOne(&items[i], profile)
		}
		return scored
	}

	var wg sync.WaitGroup
	indexes := make(chan int)

	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range indexes {
				scored[i] = r.scoreOne(&items[i], profile)
			}
		}()
	}

	for i := range items {
		indexes <- i
	}
	close(indexes)
	wg.Wait()

	return scored
}

func (r *Ranker) scoreOne(item *domain.NewsItem, profile *domain.PreferenceProfile) domain.ScoredItem {
	score, breakdown := r.scorer.Score(item, profile)
	return domain.ScoredItem{
		NewsItem:    *item,
		Score:       score,
		ScoreDetail: breakdown,
	}
}

// Threshold computes the adaptive recommended threshold for a set of
// scores: the 20th-percentile rank of the descending order for sets of
// at least PercentileMinimum, SmallSetRatio times the max otherwise,
// floored at ThresholdFloor in all cases.
func (r *Ranker) Threshold(scores []float64) float64 {
	if len(scores) == 0 {
		return r.cfg.ThresholdFloor
	}

	desc := make([]float64, len(scores))
	copy(desc, scores)
	sort.Sort(sort.Reverse(sort.Float64Slice(desc)))

	var threshold float64
	if len(desc) >= r.cfg.PercentileMinimum {
		rank := int(float64(len(desc)) * r.cfg.TopPercentile)
		if rank >= len(desc) {
			rank = len(desc) - 1
		}
		threshold = desc[rank]
	} else {
		threshold = desc[0] * r.cfg.SmallSetRatio
	}

	if threshold < r.cfg.ThresholdFloor {
		threshold = r.cfg.ThresholdFloor
	}
	return threshold
}

func scores(items []domain.ScoredItem) []float64 {
	out := make([]float64, len(items))
	for i, item := range items {
		out[i] = item.Score
	}
	return out
}

// sortChronological returns items newest first, unknown dates last,
// ties kept in insertion order.
func sortChronological(items []domain.NewsItem) []domain.ScoredItem {
	out := make([]domain.ScoredItem, len(items))
	for i, item := range items {
		out[i] = domain.ScoredItem{NewsItem: item}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return publishedAfter(out[i].PublishedAt, out[j].PublishedAt)
	})
	return out
}

// publishedAfter orders by publish date descending with nil (unknown)
// dates sorting last.
func publishedAfter(a, b *time.Time) bool {
	switch {
	case a == nil:
		return false
	case b == nil:
		return true
	default:
		return a.After(*b)
	}
}
