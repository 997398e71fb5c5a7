package api

import (
	"github.com/medwire/newscore/internal/domain"
)

// ScoreRequest asks for one item to be scored against a profile. The
// profile is supplied inline so the endpoint stays stateless.
type ScoreRequest struct {
	Item    *domain.NewsItem          `json:"item" binding:"required"`
	Profile *domain.PreferenceProfile `json:"profile" binding:"required"`
}

// ScoreResponse carries the score and its per-factor breakdown.
type ScoreResponse struct {
	ItemID      string             `json:"item_id"`
	Score       float64            `json:"score"`
	ScoreDetail map[string]float64 `json:"score_details"`
}

// ClassifyRequest asks for categories and tags for one item.
type ClassifyRequest struct {
	Item *domain.NewsItem `json:"item" binding:"required"`
}

// ClassifyResponse carries the assigned categories and extracted tags.
type ClassifyResponse struct {
	ItemID     string   `json:"item_id"`
	Categories []string `json:"categories"`
	Tags       []string `json:"tags"`
}

// PersonalizedQuery binds the personalized feed query string.
type PersonalizedQuery struct {
	UserID   string `form:"user_id" binding:"required"`
	Page     int    `form:"page"`
	PageSize int    `form:"page_size"`
}

// ArticleQuery binds the article extraction query string.
type ArticleQuery struct {
	URL string `form:"url" binding:"required"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}
