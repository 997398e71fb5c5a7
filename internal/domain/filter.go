package domain

import (
	"errors"
	"fmt"
)

// Pagination defaults and caps.
const (
	DefaultPage     = 1
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// NewsFilter narrows an aggregation result. All fields are optional;
// the zero value matches everything on page 1.
type NewsFilter struct {
	Sources     []Source `json:"sources,omitempty" form:"sources"`
	Categories  []string `json:"categories,omitempty" form:"categories"`
	Tags        []string `json:"tags,omitempty" form:"tags"`
	SearchQuery string   `json:"search_query,omitempty" form:"q"`
	Page        int      `json:"page,omitempty" form:"page"`
	PageSize    int      `json:"page_size,omitempty" form:"page_size"`
}

// ErrInvalidFilter marks caller errors, as opposed to upstream soft
// failures which never surface to the API.
var ErrInvalidFilter = errors.New("invalid filter")

// Normalize applies pagination defaults in place.
func (f *NewsFilter) Normalize() {
	if f.Page == 0 {
		f.Page = DefaultPage
	}
	if f.PageSize == 0 {
		f.PageSize = DefaultPageSize
	}
}

// Validate rejects invalid pagination and unknown sources. Call after
// Normalize so zero values have already been defaulted.
func (f *NewsFilter) Validate() error {
	if f.Page < 1 {
		return fmt.Errorf("%w: page must be >= 1", ErrInvalidFilter)
	}
	if f.PageSize < 1 {
		return fmt.Errorf("%w: page_size must be >= 1", ErrInvalidFilter)
	}
	if f.PageSize > MaxPageSize {
		return fmt.Errorf("%w: page_size must be <= %d", ErrInvalidFilter, MaxPageSize)
	}
	for _, s := range f.Sources {
		if !s.Valid() {
			return fmt.Errorf("%w: unknown source %q", ErrInvalidFilter, s)
		}
	}
	return nil
}

// Matches reports whether the classified item passes the filter's
// source, category, tag and free-text predicates. Pagination is applied
// separately.
func (f *NewsFilter) Matches(item *NewsItem) bool {
	if len(f.Sources) > 0 && !containsSource(f.Sources, item.Source) {
		return false
	}
	if len(f.Categories) > 0 && !intersects(f.Categories, item.Categories) {
		return false
	}
	if len(f.Tags) > 0 && !intersects(f.Tags, item.Tags) {
		return false
	}
	if f.SearchQuery != "" && !containsFold(item.AllText(), f.SearchQuery) {
		return false
	}
	return true
}

func containsSource(haystack []Source, needle Source) bool {
	for _, s := range haystack {
		if s == needle {
			return true
		}
	}
	return false
}

func intersects(want, have []string) bool {
	for _, w := range want {
		for _, h := range have {
			if equalFold(w, h) {
				return true
			}
		}
	}
	return false
}
