// Package domain defines the core types shared by the newscore pipeline.
package domain

import (
	"strings"
	"time"
)

// Source identifies one upstream feed. The enumeration order in AllSources
// is the order adapters are merged in, which makes deduplication
// deterministic across runs.
type Source string

// Known upstream sources.
const (
	SourceFiercePharma  Source = "fiercepharma"
	SourceEndpoints     Source = "endpoints"
	SourcePharmaTimes   Source = "pharmatimes"
	SourceTrialSiteNews Source = "trialsitenews"
	SourceFDADrugAlerts Source = "fda_drug_alerts"
	SourceEMAUpdates    Source = "ema_updates"
	SourceBioSpace      Source = "biospace"
	SourceMedPageToday  Source = "medpagetoday"
)

// AllSources lists every known source in fixed merge order.
var AllSources = []Source{
	SourceFiercePharma,
	SourceEndpoints,
	SourcePharmaTimes,
	SourceTrialSiteNews,
	SourceFDADrugAlerts,
	SourceEMAUpdates,
	SourceBioSpace,
	SourceMedPageToday,
}

// Valid reports whether s is a known source.
func (s Source) Valid() bool {
	for _, known := range AllSources {
		if s == known {
			return true
		}
	}
	return false
}

// NewsItem is the normalized representation of one upstream entry.
// Items are created fresh per aggregation request and discarded after the
// response is built; nothing here is persisted.
type NewsItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url"`
	ImageURL    string `json:"image_url,omitempty"`
	// PublishedAt is nil when the upstream date was absent or unparseable.
	PublishedAt *time.Time `json:"published_at,omitempty"`
	Source      Source     `json:"source"`
	Categories  []string   `json:"categories"`
	Tags        []string   `json:"tags,omitempty"`
}

// AllText returns the concatenated searchable text of the item.
func (n *NewsItem) AllText() string {
	return strings.ToLower(n.Title + " " + n.Description + " " + n.Content)
}

// DedupKey returns the merge key for deduplication: the normalized URL,
// falling back to title plus published date when the URL is missing.
func (n *NewsItem) DedupKey() string {
	if u := NormalizeURL(n.URL); u != "" {
		return u
	}
	key := strings.ToLower(strings.TrimSpace(n.Title))
	if n.PublishedAt != nil {
		key += "|" + n.PublishedAt.UTC().Format(time.RFC3339)
	}
	return key
}

// NormalizeURL canonicalizes a URL for use as a dedup key: lowercased
// scheme/host, trailing slash and fragment stripped.
func NormalizeURL(raw string) string {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ""
	}
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSuffix(raw, "/")

	// Lowercase scheme and host only; path and query stay case-sensitive.
	rest := raw
	var scheme string
	if i := strings.Index(raw, "://"); i >= 0 {
		scheme = strings.ToLower(raw[:i+3])
		rest = raw[i+3:]
	}
	if i := strings.IndexByte(rest, '/'); i >= 0 {
		return scheme + strings.ToLower(rest[:i]) + rest[i:]
	}
	return scheme + strings.ToLower(rest)
}

// ScoredItem pairs a news item with its relevance score. The factor
// breakdown is carried alongside the item rather than mutated into it.
type ScoredItem struct {
	NewsItem
	Score       float64            `json:"score"`
	ScoreDetail map[string]float64 `json:"score_details,omitempty"`
	Recommended bool               `json:"recommended"`
}

// NewsResponse is the paginated result of one aggregation request.
type NewsResponse struct {
	Items    []NewsItem `json:"items"`
	Total    int        `json:"total"`
	Page     int        `json:"page"`
	PageSize int        `json:"page_size"`
}

// RankedResponse is the paginated result of one personalized request.
type RankedResponse struct {
	Items                []ScoredItem `json:"items"`
	Total                int          `json:"total"`
	Page                 int          `json:"page"`
	PageSize             int          `json:"page_size"`
	RecommendedThreshold float64      `json:"recommended_threshold"`
}
