package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"plain", "https://example.com/story", "https://example.com/story"},
		{"trailing slash", "https://example.com/story/", "https://example.com/story"},
		{"fragment", "https://example.com/story#utm_source=feed", "https://example.com/story"},
		{"fragment and slash", "https://example.com/story/#top", "https://example.com/story"},
		{"upper host", "HTTPS://Example.COM/Story", "https://example.com/Story"},
		{"path case kept", "https://example.com/Story/Path", "https://example.com/Story/Path"},
		{"query kept", "https://example.com/story?id=1", "https://example.com/story?id=1"},
		{"whitespace", "  https://example.com/story  ", "https://example.com/story"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeURL(tt.in))
		})
	}
}

func TestDedupKeyVariantsCollide(t *testing.T) {
	a := NewsItem{URL: "https://example.com/story/"}
	b := NewsItem{URL: "https://example.com/story#ref"}
	assert.Equal(t, a.DedupKey(), b.DedupKey())
}

func TestDedupKeyFallsBackToTitleAndDate(t *testing.T) {
	published := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	a := NewsItem{Title: "Phase 3 Readout", PublishedAt: &published}
	b := NewsItem{Title: "  phase 3 readout ", PublishedAt: &published}
	assert.Equal(t, a.DedupKey(), b.DedupKey())

	later := published.Add(time.Hour)
	c := NewsItem{Title: "Phase 3 Readout", PublishedAt: &later}
	assert.NotEqual(t, a.DedupKey(), c.DedupKey())

	undated := NewsItem{Title: "Phase 3 Readout"}
	assert.NotEqual(t, a.DedupKey(), undated.DedupKey())
}

func TestSourceValid(t *testing.T) {
	for _, s := range AllSources {
		assert.True(t, s.Valid(), string(s))
	}
	assert.False(t, Source("reuters").Valid())
	assert.False(t, Source("").Valid())
}

func TestAllText(t *testing.T) {
	item := NewsItem{Title: "FDA Approves", Description: "New Drug", Content: "Details"}
	assert.Equal(t, "fda approves new drug details", item.AllText())
}
