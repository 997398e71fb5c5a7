// Package classifier assigns topical categories and controlled-vocabulary
// tags to normalized news items. Classification is a pure function of the
// item's text plus its source identity.
package classifier

import (
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
)

// Classifier annotates items with categories and tags.
type Classifier struct {
	tags   *TagMatcher
	logger logger.Logger
}

// New creates a classifier using the default controlled vocabulary.
func New(log logger.Logger) *Classifier {
	if log == nil {
		log = logger.NewNop()
	}
	return &Classifier{
		tags:   DefaultTagMatcher(),
		logger: log,
	}
}

// Classify returns the categories and tags for the item. The category
// set is never empty: source defaults are seeded first, pattern matches
// are added on top, and a deterministic per-source fallback covers the
// rest.
func (c *Classifier) Classify(item *domain.NewsItem) (categories, tags []string) {
	text := item.Title + " " + item.Description + " " + item.Content

	seen := make(map[string]bool)
	for _, cat := range sourceDefaultCategories[item.Source] {
		if !seen[cat] {
			seen[cat] = true
			categories = append(categories, cat)
		}
	}

	for _, rule := range categoryRules {
		if seen[rule.category] {
			continue
		}
		for _, p := range rule.patterns {
			if p.MatchString(text) {
				seen[rule.category] = true
				categories = append(categories, rule.category)
				break
			}
		}
	}

	if len(categories) == 0 {
		categories = append(categories, fallbackCategory(item.Source))
	}

	tags = c.tags.Extract(text, MaxTags)

	c.logger.Debug("item classified",
		logger.String("item_id", item.ID),
		logger.Strings("categories", categories),
		logger.Int("tags", len(tags)),
	)

	return categories, tags
}

// Annotate classifies the item and writes the result onto it.
func (c *Classifier) Annotate(item *domain.NewsItem) {
	item.Categories, item.Tags = c.Classify(item)
}
