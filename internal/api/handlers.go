package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/medwire/newscore/internal/aggregator"
	"github.com/medwire/newscore/internal/classifier"
	"github.com/medwire/newscore/internal/domain"
	"github.com/medwire/newscore/internal/logger"
	"github.com/medwire/newscore/internal/preferences"
	"github.com/medwire/newscore/internal/ranking"
	"github.com/medwire/newscore/internal/readability"
	"github.com/medwire/newscore/internal/scoring"
)

// Handler handles HTTP requests for the news API.
type Handler struct {
	aggregator *aggregator.Aggregator
	ranker     *ranking.Ranker
	scorer     *scoring.Scorer
	classifier *classifier.Classifier
	prefs      *preferences.Store
	extractor  *readability.Extractor
	logger     logger.Logger
}

// NewHandler creates an API handler.
func NewHandler(
	agg *aggregator.Aggregator,
	ranker *ranking.Ranker,
	scorer *scoring.Scorer,
	newsClassifier *classifier.Classifier,
	prefs *preferences.Store,
	extractor *readability.Extractor,
	log logger.Logger,
) *Handler {
	if log == nil {
		log = logger.NewNop()
	}
	return &Handler{
		aggregator: agg,
		ranker:     ranker,
		scorer:     scorer,
		classifier: newsClassifier,
		prefs:      prefs,
		extractor:  extractor,
		logger:     log,
	}
}

// GetNews handles GET /api/v1/news.
func (h *Handler) GetNews(c *gin.Context) {
	var filter domain.NewsFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.aggregator.Aggregate(c.Request.Context(), &filter)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidFilter) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.logger.Error("aggregation failed", logger.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "aggregation failed"})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetPersonalizedNews handles GET /api/v1/news/personalized. Results
// are scored against the user's preference profile and sorted by
// relevance; a missing profile degrades to a default rather than
// failing the request.
func (h *Handler) GetPersonalizedNews(c *gin.Context) {
	var query PersonalizedQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "user_id is required"})
		return
	}
	filter := domain.NewsFilter{Page: query.Page, PageSize: query.PageSize}
	filter.Normalize()
	if err := filter.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	ctx := c.Request.Context()
	profile := h.prefs.GetProfile(ctx, query.UserID)
	items := h.aggregator.Collect(ctx)

	result := h.ranker.Rank(items, profile, ranking.ModeRelevance)

	page := aggregator.Paginate(result.Items, filter.Page, filter.PageSize)

	c.JSON(http.StatusOK, domain.RankedResponse{
		Items:                page,
		Total:                len(result.Items),
		Page:                 filter.Page,
		PageSize:             filter.PageSize,
		RecommendedThreshold: result.RecommendedThreshold,
	})
}

// Score handles POST /api/v1/score.
func (h *Handler) Score(c *gin.Context) {
	var req ScoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Scoring consumes categories and tags, so classify first if the
	// caller sent a raw item.
	if len(req.Item.Categories) == 0 && len(req.Item.Tags) == 0 {
		h.classifier.Annotate(req.Item)
	}

	score, breakdown := h.scorer.Score(req.Item, req.Profile)

	c.JSON(http.StatusOK, ScoreResponse{
		ItemID:      req.Item.ID,
		Score:       score,
		ScoreDetail: breakdown,
	})
}

// Classify handles POST /api/v1/classify.
func (h *Handler) Classify(c *gin.Context) {
	var req ClassifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	categories, tags := h.classifier.Classify(req.Item)

	c.JSON(http.StatusOK, ClassifyResponse{
		ItemID:     req.Item.ID,
		Categories: categories,
		Tags:       tags,
	})
}

// GetArticle handles GET /api/v1/article.
func (h *Handler) GetArticle(c *gin.Context) {
	var query ArticleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "url is required"})
		return
	}

	article, err := h.extractor.FetchArticle(c.Request.Context(), query.URL)
	if err != nil {
		if errors.Is(err, readability.ErrExtraction) {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		h.logger.Warn("article fetch failed",
			logger.String("url", query.URL),
			logger.Error(err),
		)
		c.JSON(http.StatusBadGateway, gin.H{"error": "article fetch failed"})
		return
	}

	c.JSON(http.StatusOK, article)
}

// HealthCheck handles GET /health.
func (h *Handler) HealthCheck(serviceName, version string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, HealthResponse{
			Status:  "healthy",
			Service: serviceName,
			Version: version,
		})
	}
}

// ReadyCheck handles GET /ready. The service is ready once its wiring
// exists; upstream sources are allowed to be down.
func (h *Handler) ReadyCheck(c *gin.Context) {
	if h.aggregator == nil || h.ranker == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
