//nolint:testpackage // Internal access needed to pin the clock
package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
)

func fixedScorer(now time.Time) *Scorer {
	s := NewDefault()
	s.now = func() time.Time { return now }
	return s
}

func oncologyProfile() *domain.PreferenceProfile {
	return &domain.PreferenceProfile{
		UserID:           "u1",
		TherapeuticAreas: []string{"oncology"},
		Phases:           []string{"PHASE3"},
		Statuses:         []string{"RECRUITING"},
	}
}

func TestScore_NonNegative(t *testing.T) {
	s := NewDefault()

	item := &domain.NewsItem{
		ID:     "read-item",
		Title:  "Unrelated gardening news",
		Source: domain.SourceBioSpace,
	}
	profile := &domain.PreferenceProfile{
		UserID:       "u1",
		ReadArticles: []string{"read-item"},
	}

	score, breakdown := s.Score(item, profile)

	// Only the read penalty fires, so the raw total is negative; the
	// returned score must still clamp at zero.
	assert.Equal(t, 0.0, score)
	assert.Equal(t, -s.cfg.ReadPenalty, breakdown[FactorReadPenalty])
}

func TestScore_KeywordMonotonicity(t *testing.T) {
	s := NewDefault()
	profile := oncologyProfile()

	without := &domain.NewsItem{
		ID:          "a",
		Title:       "Company reports quarterly earnings",
		Description: "Financial results for the quarter.",
		Source:      domain.SourceFiercePharma,
	}
	with := &domain.NewsItem{
		ID:          "b",
		Title:       without.Title,
		Description: without.Description + " New oncology pipeline update.",
		Source:      domain.SourceFiercePharma,
	}

	scoreWithout, _ := s.Score(without, profile)
	scoreWith, _ := s.Score(with, profile)

	assert.GreaterOrEqual(t, scoreWith, scoreWithout,
		"adding a matching area keyword must never decrease the score")
}

func TestScore_ReadPenalty(t *testing.T) {
	s := NewDefault()

	item := &domain.NewsItem{
		ID:          "seen-1",
		Title:       "Oncology drug shows promise in phase 3",
		Description: "Cancer treatment results.",
		Source:      domain.SourceEndpoints,
	}

	unread := oncologyProfile()
	read := oncologyProfile()
	read.ReadArticles = []string{"seen-1"}

	unreadScore, _ := s.Score(item, unread)
	readScore, readBreakdown := s.Score(item, read)

	assert.LessOrEqual(t, readScore, unreadScore)
	assert.Equal(t, -s.cfg.ReadPenalty, readBreakdown[FactorReadPenalty])
}

func TestScore_TitleMatchOutweighsBodyMatch(t *testing.T) {
	s := NewDefault()
	profile := &domain.PreferenceProfile{
		UserID:           "u1",
		TherapeuticAreas: []string{"oncology"},
	}

	inTitle := &domain.NewsItem{
		ID:     "t",
		Title:  "Cancer therapy advances",
		Source: domain.SourcePharmaTimes,
	}
	inBody := &domain.NewsItem{
		ID:          "b",
		Title:       "Therapy advances",
		Description: "A new cancer treatment.",
		Source:      domain.SourcePharmaTimes,
	}

	titleScore, _ := s.Score(inTitle, profile)
	bodyScore, _ := s.Score(inBody, profile)

	assert.Greater(t, titleScore, bodyScore)
}

func TestScore_RecencyBreakpoints(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	s := fixedScorer(now)
	profile := oncologyProfile()

	tests := []struct {
		name     string
		ageDays  int
		expected float64
	}{
		{"same day", 0, 15},
		{"one day", 1, 15},
		{"three days", 3, 12},
		{"a week", 7, 7.5},
		{"two weeks", 14, 4.5},
		{"a month", 30, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			published := now.Add(-time.Duration(tt.ageDays) * 24 * time.Hour)
			item := &domain.NewsItem{
				ID:          "r",
				Title:       "Oncology update",
				PublishedAt: &published,
				Source:      domain.SourceEndpoints,
			}
			_, breakdown := s.Score(item, profile)
			assert.InDelta(t, tt.expected, breakdown[FactorRecency], 0.001)
		})
	}
}

func TestScore_UnknownDateGetsNoRecency(t *testing.T) {
	s := NewDefault()
	item := &domain.NewsItem{
		ID:     "nodate",
		Title:  "Oncology update",
		Source: domain.SourceEndpoints,
	}

	_, breakdown := s.Score(item, oncologyProfile())
	assert.Zero(t, breakdown[FactorRecency])
}

func TestScore_SafetyAlertBonusRequiresTopicalRelevance(t *testing.T) {
	s := NewDefault()
	profile := oncologyProfile()

	relevant := &domain.NewsItem{
		ID:         "s1",
		Title:      "Recall issued for cancer drug",
		Categories: []string{classifier.CategorySafetyAlert},
		Source:     domain.SourceFDADrugAlerts,
	}
	irrelevant := &domain.NewsItem{
		ID:         "s2",
		Title:      "Recall issued for blood pressure drug",
		Categories: []string{classifier.CategorySafetyAlert},
		Source:     domain.SourceFDADrugAlerts,
	}

	_, relevantBreakdown := s.Score(relevant, profile)
	_, irrelevantBreakdown := s.Score(irrelevant, profile)

	assert.Equal(t, s.cfg.SafetyAlertBonus, relevantBreakdown[FactorCategoryBonus])
	assert.Zero(t, irrelevantBreakdown[FactorCategoryBonus])
}

func TestScore_ApprovalBonusRequiresLateStageInterest(t *testing.T) {
	s := NewDefault()

	item := &domain.NewsItem{
		ID:         "a1",
		Title:      "New therapy approved",
		Categories: []string{classifier.CategoryDrugApproval},
		Source:     domain.SourceFiercePharma,
	}

	lateStage := &domain.PreferenceProfile{UserID: "u1", Phases: []string{"PHASE3"}}
	earlyStage := &domain.PreferenceProfile{UserID: "u2", Phases: []string{"PHASE1"}}

	_, lateBreakdown := s.Score(item, lateStage)
	_, earlyBreakdown := s.Score(item, earlyStage)

	assert.Equal(t, s.cfg.ApprovalBonus, lateBreakdown[FactorCategoryBonus])
	assert.Zero(t, earlyBreakdown[FactorCategoryBonus])
}

// The reference scenario: a fresh phase 3 oncology approval against an
// oncology/phase-3 profile must comfortably clear the default threshold
// floor of 40.
func TestScore_ReferenceScenario(t *testing.T) {
	now := time.Now()
	s := fixedScorer(now)

	item := &domain.NewsItem{
		ID:          "scenario",
		Title:       "Phase 3 trial for oncology drug approved by FDA",
		PublishedAt: &now,
		Source:      domain.SourceEndpoints,
		Categories:  []string{classifier.CategoryDrugApproval, classifier.CategoryClinicalTrials},
		Tags:        []string{"phase 3", "fda approval"},
	}
	profile := &domain.PreferenceProfile{
		UserID:           "u1",
		TherapeuticAreas: []string{"oncology"},
		Phases:           []string{"PHASE3"},
	}

	score, breakdown := s.Score(item, profile)

	require.NotEmpty(t, breakdown)
	assert.Positive(t, breakdown[FactorTherapeuticArea], "oncology keyword in title")
	assert.Positive(t, breakdown[FactorPhase], "phase 3 tag and keyword")
	assert.Equal(t, s.cfg.ApprovalBonus, breakdown[FactorCategoryBonus])
	assert.Equal(t, s.cfg.RecencyWeight, breakdown[FactorRecency])
	assert.Greater(t, score, 40.0, "scenario item must clear the default threshold floor")
}

// Classification alone must unlock the exact area tier: an item that
// goes through Annotate picks up the area tag, and the scorer awards
// the full weight plus the exact bonus for it.
func TestScore_ExactAreaTagFromClassification(t *testing.T) {
	s := NewDefault()
	c := classifier.New(logger.NewNop())

	item := &domain.NewsItem{
		ID:     "classified",
		Title:  "Oncology readout: tumor regression reported",
		Source: domain.SourceEMAUpdates,
	}
	c.Annotate(item)

	require.Contains(t, item.Tags, "oncology")

	_, breakdown := s.Score(item, &domain.PreferenceProfile{
		UserID:           "u1",
		TherapeuticAreas: []string{"oncology"},
	})

	assert.GreaterOrEqual(t, breakdown[FactorTherapeuticArea],
		s.cfg.AreaWeight+s.cfg.AreaExactBonus,
		"exact tag tier must fire on a classified item")
}

// Profile area keys use underscores where the vocabulary uses spaces;
// the exact tier must match across that difference.
func TestScore_UnderscoredAreaKeyMatchesTag(t *testing.T) {
	s := NewDefault()

	item := &domain.NewsItem{
		ID:     "id-item",
		Title:  "Hospital systems brace for winter",
		Tags:   []string{"infectious disease"},
		Source: domain.SourceMedPageToday,
	}
	profile := &domain.PreferenceProfile{
		UserID:           "u1",
		TherapeuticAreas: []string{"infectious_disease"},
	}

	_, breakdown := s.Score(item, profile)

	assert.GreaterOrEqual(t, breakdown[FactorTherapeuticArea],
		s.cfg.AreaWeight+s.cfg.AreaExactBonus)
}

func TestScore_AccumulatesAcrossAreas(t *testing.T) {
	s := NewDefault()

	item := &domain.NewsItem{
		ID:          "multi",
		Title:       "Cancer and heart failure pipeline review",
		Description: "Coverage of oncology and cardiovascular programs.",
		Source:      domain.SourceFiercePharma,
	}

	single := &domain.PreferenceProfile{UserID: "u", TherapeuticAreas: []string{"oncology"}}
	double := &domain.PreferenceProfile{UserID: "u", TherapeuticAreas: []string{"oncology", "cardiology"}}

	singleScore, _ := s.Score(item, single)
	doubleScore, _ := s.Score(item, double)

	assert.Greater(t, doubleScore, singleScore, "matching areas accumulate")
}
