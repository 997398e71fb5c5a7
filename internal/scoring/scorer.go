// Package scoring computes the personal relevance score of a news item
// against a preference profile. The score is a sum of independently
// weighted factors; the per-factor breakdown is returned alongside the
// score for explainability and never attached to the item.
package scoring

import (
	"strings"
	"time"

	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/domain"
)

// Factor names used in score breakdowns.
const (
	FactorTherapeuticArea = "therapeutic_area"
	FactorPhase           = "phase"
	FactorStatus          = "status"
	FactorCategoryBonus   = "category_bonus"
	FactorRecency         = "recency"
	FactorReadPenalty     = "read_penalty"
)

// Config holds the scoring weights. The defaults are tuned empirically;
// callers may adjust them, which is why they are configuration rather
// than constants.
type Config struct {
	AreaWeight          float64
	AreaExactBonus      float64
	AreaKeywordRatio    float64
	AreaDrugClassRatio  float64
	PhaseWeight         float64
	PhaseKeywordRatio   float64
	StatusWeight        float64
	StatusKeywordRatio  float64
	SourceAffinityBonus float64
	ApprovalBonus       float64
	SafetyAlertBonus    float64
	RecencyWeight       float64
	ReadPenalty         float64
	TitleMultiplier     float64
}

// DefaultConfig returns the production scoring weights.
func DefaultConfig() Config {
	return Config{
		AreaWeight:          35,
		AreaExactBonus:      10,
		AreaKeywordRatio:    0.7,
		AreaDrugClassRatio:  0.5,
		PhaseWeight:         25,
		PhaseKeywordRatio:   0.6,
		StatusWeight:        20,
		StatusKeywordRatio:  0.6,
		SourceAffinityBonus: 5,
		ApprovalBonus:       15,
		SafetyAlertBonus:    20,
		RecencyWeight:       15,
		ReadPenalty:         10,
		TitleMultiplier:     1.5,
	}
}

// Breakdown maps factor name to its contribution to the final score.
type Breakdown map[string]float64

// Scorer scores items against preference profiles. Scoring is pure and
// safe for concurrent use.
type Scorer struct {
	cfg Config
	now func() time.Time
}

// New creates a scorer with the given weights.
func New(cfg Config) *Scorer {
	return &Scorer{cfg: cfg, now: time.Now}
}

// NewDefault creates a scorer with the default weights.
func NewDefault() *Scorer {
	return New(DefaultConfig())
}

// Score returns the relevance score of item for profile, clamped at 0,
// plus the per-factor breakdown.
func (s *Scorer) Score(item *domain.NewsItem, profile *domain.PreferenceProfile) (float64, Breakdown) {
	title := strings.ToLower(item.Title)
	allText := item.AllText()

	breakdown := make(Breakdown)

	if pts := s.scoreAreas(item, profile, title, allText); pts != 0 {
		breakdown[FactorTherapeuticArea] = pts
	}
	if pts := s.scorePhases(item, profile, title, allText); pts != 0 {
		breakdown[FactorPhase] = pts
	}
	if pts := s.scoreStatuses(item, profile, title, allText); pts != 0 {
		breakdown[FactorStatus] = pts
	}
	if pts := s.scoreCategoryBonuses(item, profile, allText); pts != 0 {
		breakdown[FactorCategoryBonus] = pts
	}
	if pts := s.scoreRecency(item); pts != 0 {
		breakdown[FactorRecency] = pts
	}
	if profile.HasRead(item.ID) {
		breakdown[FactorReadPenalty] = -s.cfg.ReadPenalty
	}

	var total float64
	for _, pts := range breakdown {
		total += pts
	}
	if total < 0 {
		total = 0
	}
	return total, breakdown
}

// scoreAreas accumulates the therapeutic-area factor. An item can match
// several areas and several keyword tiers at once; everything adds up.
func (s *Scorer) scoreAreas(item *domain.NewsItem, profile *domain.PreferenceProfile, title, allText string) float64 {
	var pts float64
	for _, area := range profile.TherapeuticAreas {
		key := strings.ToLower(strings.TrimSpace(area))
		ap, curated := therapeuticAreas[key]
		if !curated {
			// Unknown area: fall back to matching the area name itself.
			ap = areaProfile{keywords: []string{key}}
		}

		if hasTag(item, areaTag(key)) {
			pts += s.cfg.AreaWeight + s.cfg.AreaExactBonus
		}
		if tier := s.matchTier(title, allText, ap.keywords); tier > 0 {
			pts += s.cfg.AreaWeight * s.cfg.AreaKeywordRatio * tier
		}
		if tier := s.matchTier(title, allText, ap.drugClasses); tier > 0 {
			pts += s.cfg.AreaWeight * s.cfg.AreaDrugClassRatio * tier
		}
		if sourceIn(ap.preferredSources, item.Source) {
			pts += s.cfg.SourceAffinityBonus
		}
	}
	return pts
}

func (s *Scorer) scorePhases(item *domain.NewsItem, profile *domain.PreferenceProfile, title, allText string) float64 {
	var pts float64
	for _, phase := range profile.Phases {
		key := strings.ToUpper(strings.TrimSpace(phase))

		if hasTag(item, phaseTag(key)) {
			pts += s.cfg.PhaseWeight
		}
		if tier := s.matchTier(title, allText, phaseKeywords[key]); tier > 0 {
			pts += s.cfg.PhaseWeight * s.cfg.PhaseKeywordRatio * tier
		}
		if sourceIn(phasePreferredSources[key], item.Source) {
			pts += s.cfg.SourceAffinityBonus
		}
	}
	return pts
}

func (s *Scorer) scoreStatuses(item *domain.NewsItem, profile *domain.PreferenceProfile, title, allText string) float64 {
	var pts float64
	for _, status := range profile.Statuses {
		key := strings.ToUpper(strings.TrimSpace(status))

		if hasTag(item, strings.ToLower(key)) {
			pts += s.cfg.StatusWeight
		}
		if tier := s.matchTier(title, allText, statusKeywords[key]); tier > 0 {
			pts += s.cfg.StatusWeight * s.cfg.StatusKeywordRatio * tier
		}
		if sourceIn(statusPreferredSources[key], item.Source) {
			pts += s.cfg.SourceAffinityBonus
		}
	}
	return pts
}

// scoreCategoryBonuses awards the drug-approval bonus when the profile
// includes a late-stage phase, and the safety-alert bonus only when the
// alert's text matches one of the profile's therapeutic areas. Safety
// alerts are boosted when topically relevant, not unconditionally.
func (s *Scorer) scoreCategoryBonuses(item *domain.NewsItem, profile *domain.PreferenceProfile, allText string) float64 {
	var pts float64
	if hasCategory(item, classifier.CategoryDrugApproval) && profile.HasLateStagePhase() {
		pts += s.cfg.ApprovalBonus
	}
	if hasCategory(item, classifier.CategorySafetyAlert) && s.matchesAnyArea(profile, allText) {
		pts += s.cfg.SafetyAlertBonus
	}
	return pts
}

func (s *Scorer) matchesAnyArea(profile *domain.PreferenceProfile, allText string) bool {
	for _, area := range profile.TherapeuticAreas {
		key := strings.ToLower(strings.TrimSpace(area))
		ap, curated := therapeuticAreas[key]
		if !curated {
			ap = areaProfile{keywords: []string{key}}
		}
		for _, kw := range ap.keywords {
			if strings.Contains(allText, kw) {
				return true
			}
		}
	}
	return false
}

// scoreRecency converts item age in whole days into a recency bonus.
// Items with unknown publish dates get zero, not an error.
func (s *Scorer) scoreRecency(item *domain.NewsItem) float64 {
	if item.PublishedAt == nil {
		return 0
	}
	age := s.now().Sub(*item.PublishedAt)
	if age < 0 {
		age = 0
	}
	days := int(age.Hours() / 24)

	switch {
	case days <= 1:
		return s.cfg.RecencyWeight
	case days <= 3:
		return s.cfg.RecencyWeight * 0.8
	case days <= 7:
		return s.cfg.RecencyWeight * 0.5
	case days <= 14:
		return s.cfg.RecencyWeight * 0.3
	default:
		return 0
	}
}

// matchTier reports how a keyword group matched: 0 for no match, 1 for a
// body match, TitleMultiplier when any keyword appears in the title.
func (s *Scorer) matchTier(title, allText string, keywords []string) float64 {
	tier := 0.0
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		if strings.Contains(title, kw) {
			return s.cfg.TitleMultiplier
		}
		if strings.Contains(allText, kw) {
			tier = 1.0
		}
	}
	return tier
}

func hasTag(item *domain.NewsItem, tag string) bool {
	for _, t := range item.Tags {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func hasCategory(item *domain.NewsItem, category string) bool {
	for _, c := range item.Categories {
		if strings.EqualFold(c, category) {
			return true
		}
	}
	return false
}

// areaTag maps a profile area key to its vocabulary tag form,
// e.g. "infectious_disease" -> "infectious disease".
func areaTag(key string) string {
	return strings.ReplaceAll(key, "_", " ")
}

// phaseTag maps a profile phase string to its vocabulary tag form,
// e.g. PHASE3 -> "phase 3".
func phaseTag(phase string) string {
	switch phase {
	case "PHASE1":
		return "phase 1"
	case "PHASE2":
		return "phase 2"
	case "PHASE3":
		return "phase 3"
	case "PHASE4":
		return "phase 4"
	case "PRECLINICAL":
		return "preclinical"
	default:
		return strings.ToLower(phase)
	}
}
