// vocabulary.go implements Aho-Corasick based tag extraction against the
// controlled domain vocabulary.
package classifier

import (
	"sort"
	"strings"
	"sync"
	"unicode"

	ahocorasick "github.com/cloudflare/ahocorasick"
)

// MaxTags caps the number of tags attached to one item.
const MaxTags = 10

// tagVocabulary is the controlled vocabulary scanned against item text.
// Order matters: extracted tags are returned in vocabulary order, not
// discovery order, so results are stable across texts.
var tagVocabulary = []string{
	// Therapeutic areas. Listed first so area tags survive the MaxTags
	// cap on term-dense items; relevance scoring matches them against
	// profile area keys.
	"oncology",
	"cardiology",
	"neurology",
	"immunology",
	"infectious disease",
	"rare disease",
	"endocrinology",
	"respiratory",
	// Trial phases
	"preclinical",
	"phase 1",
	"phase 2",
	"phase 3",
	"phase 4",
	// Study status terms
	"recruiting",
	"enrolling",
	"enrollment",
	"completed",
	"terminated",
	"suspended",
	"topline results",
	"interim analysis",
	"primary endpoint",
	// Drug class terms
	"monoclonal antibody",
	"checkpoint inhibitor",
	"kinase inhibitor",
	"antibody-drug conjugate",
	"gene therapy",
	"cell therapy",
	"car-t",
	"mrna",
	"sirna",
	"vaccine",
	"biosimilar",
	"small molecule",
	"immunotherapy",
	"chemotherapy",
	// Regulatory terms
	"fda approval",
	"breakthrough designation",
	"orphan drug",
	"fast track",
	"priority review",
	"accelerated approval",
	"black box warning",
	"recall",
}

// TagMatcher scans text for controlled-vocabulary tags in a single pass.
type TagMatcher struct {
	matcher *ahocorasick.Matcher
	terms   []string
}

var (
	defaultMatcherOnce sync.Once
	defaultMatcher     *TagMatcher
)

// NewTagMatcher builds the Aho-Corasick automaton over the given terms.
func NewTagMatcher(terms []string) *TagMatcher {
	normalized := make([]string, len(terms))
	for i, t := range terms {
		normalized[i] = normalizeText(t)
	}
	return &TagMatcher{
		matcher: ahocorasick.NewStringMatcher(normalized),
		terms:   terms,
	}
}

// DefaultTagMatcher returns the process-wide matcher over tagVocabulary.
func DefaultTagMatcher() *TagMatcher {
	defaultMatcherOnce.Do(func() {
		defaultMatcher = NewTagMatcher(tagVocabulary)
	})
	return defaultMatcher
}

// Extract returns the vocabulary terms found in text, in vocabulary
// order, capped at max.
func (m *TagMatcher) Extract(text string, max int) []string {
	hits := m.matcher.Match([]byte(normalizeText(text)))
	if len(hits) == 0 {
		return nil
	}

	sort.Ints(hits)

	tags := make([]string, 0, len(hits))
	seen := make(map[int]bool, len(hits))
	for _, idx := range hits {
		if idx >= len(m.terms) || seen[idx] {
			continue
		}
		seen[idx] = true
		tags = append(tags, m.terms[idx])
		if len(tags) >= max {
			break
		}
	}
	return tags
}

// normalizeText lowercases and replaces non-alphanumeric runes with
// spaces, preserving word boundaries for the matcher.
func normalizeText(text string) string {
	text = strings.ToLower(text)

	var result strings.Builder
	result.Grow(len(text))

	for _, r := range text {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			result.WriteRune(r)
		} else {
			result.WriteByte(' ')
		}
	}

	return result.String()
}
