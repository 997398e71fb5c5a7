package domain

import "time"

// PreferenceProfile is a user's stated research interests. It is owned by
// the external preferences service; newscore only reads it. Read tracking
// is written back through that service, never mutated here.
type PreferenceProfile struct {
	UserID           string    `json:"user_id"`
	TherapeuticAreas []string  `json:"therapeutic_areas"`
	Phases           []string  `json:"phases"`
	Statuses         []string  `json:"statuses"`
	ReadArticles     []string  `json:"read_articles,omitempty"`
	LastUpdated      time.Time `json:"last_updated"`
}

// HasRead reports whether the item id has already been shown as read.
func (p *PreferenceProfile) HasRead(itemID string) bool {
	for _, id := range p.ReadArticles {
		if id == itemID {
			return true
		}
	}
	return false
}

// HasLateStagePhase reports whether the profile includes a phase 3 or
// phase 4 interest.
func (p *PreferenceProfile) HasLateStagePhase() bool {
	for _, phase := range p.Phases {
		if equalFold(phase, "PHASE3") || equalFold(phase, "PHASE4") {
			return true
		}
	}
	return false
}

// DefaultProfile is the degraded-mode profile used when the preferences
// service is unavailable. Deterministic so ranking stays defined.
func DefaultProfile(userID string) *PreferenceProfile {
	return &PreferenceProfile{
		UserID:           userID,
		TherapeuticAreas: []string{"oncology", "cardiology"},
		Phases:           []string{"PHASE3"},
		Statuses:         []string{"RECRUITING"},
	}
}
