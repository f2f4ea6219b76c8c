package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/cache/redis"
	"github.com/contentpulse/backend/internal/fetch"
	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/internal/scoring/content"
	"github.com/contentpulse/backend/internal/scoring/difficulty"
	"github.com/contentpulse/backend/internal/storage/sqlite"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/utils"
)

type AnalysisHandler struct {
	db               *sqlite.Client
	fetcher          *fetch.Fetcher
	contentScorer    *content.Scorer
	difficultyScorer *difficulty.Scorer
	cache            *redis.Client
	cacheTTL         time.Duration
}

// NewAnalysisHandler wires the scoring endpoints. cache may be nil; every
// cache failure degrades to a recompute.
func NewAnalysisHandler(db *sqlite.Client, fetcher *fetch.Fetcher, cache *redis.Client, cacheTTL time.Duration) *AnalysisHandler {
	return &AnalysisHandler{
		db:               db,
		fetcher:          fetcher,
		contentScorer:    content.NewScorer(),
		difficultyScorer: difficulty.NewScorer(),
		cache:            cache,
		cacheTTL:         cacheTTL,
	}
}

// AnalyzeContent scores one page for quality. The page is fetched unless
// the caller supplies the markup.
func (h *AnalysisHandler) AnalyzeContent(c *fiber.Ctx) error {
	var req struct {
		URL         string `json:"url"`
		HTMLContent string `json:"html_content"`
		Keyword     string `json:"keyword"`
		TopicID     string `json:"topic_id"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.URL == "" {
		return respondBadRequest(c, "url is required")
	}

	urlHash := utils.HashString(req.URL)

	if h.cache != nil && req.HTMLContent == "" {
		cached, hit, err := h.cache.GetContentScore(c.Context(), urlHash)
		if err != nil {
			logger.Warn("Score cache read failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("content_score").Inc()
			return c.JSON(fiber.Map{"score": cached, "cached": true})
		}
		metrics.CacheMisses.WithLabelValues("content_score").Inc()
	}

	html := req.HTMLContent
	if html == "" {
		var err error
		html, err = h.fetcher.Fetch(c.Context(), req.URL)
		if err != nil {
			metrics.PagesFetched.WithLabelValues("failed").Inc()
			return respondError(c, err)
		}
		metrics.PagesFetched.WithLabelValues("ok").Inc()
	}

	started := time.Now()
	score, err := h.contentScorer.Score(req.URL, html, req.Keyword)
	if err != nil {
		metrics.ScoringTotal.WithLabelValues("content", "failed").Inc()
		return respondError(c, err)
	}
	metrics.ScoringDuration.WithLabelValues("content").Observe(time.Since(started).Seconds())
	metrics.ScoringTotal.WithLabelValues("content", "ok").Inc()

	if req.TopicID != "" {
		score.TopicID = &req.TopicID
	}

	id, err := h.db.SaveContentScore(score)
	if err != nil {
		return respondError(c, err)
	}
	score.ID = id

	if h.cache != nil {
		if err := h.cache.SetContentScore(c.Context(), urlHash, score, h.cacheTTL); err != nil {
			logger.Warn("Score cache write failed", zap.Error(err))
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"score": score, "cached": false})
}

// GetContentScore returns the stored quality assessment for a URL.
func (h *AnalysisHandler) GetContentScore(c *fiber.Ctx) error {
	url := c.Query("url")
	if url == "" {
		return respondBadRequest(c, "url is required")
	}

	score, err := h.db.GetContentScore(url)
	if err != nil {
		return respondError(c, err)
	}
	if score == nil {
		return respondNotFound(c, "content score")
	}
	return c.JSON(score)
}

// AnalyzeDifficulty computes ranking difficulty for a topic from its latest
// SERP snapshot and the content scores already collected for the ranking
// pages.
func (h *AnalysisHandler) AnalyzeDifficulty(c *fiber.Ctx) error {
	topicID := c.Params("id")

	var req struct {
		Query string `json:"query"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.Query == "" {
		return respondBadRequest(c, "query is required")
	}

	topic, err := h.db.GetTopic(topicID)
	if err != nil {
		return respondError(c, err)
	}
	if topic == nil {
		return respondNotFound(c, "topic")
	}

	serp, err := h.db.GetLatestSERPSnapshot(topicID, req.Query)
	if err != nil {
		return respondError(c, err)
	}
	if len(serp) == 0 {
		return respondBadRequest(c, "no SERP snapshot for this query; refresh the snapshot first")
	}

	pages := make([]difficulty.CompetitorPage, 0, len(serp))
	for _, r := range serp {
		pages = append(pages, difficulty.CompetitorPage{
			Position: r.Position,
			URL:      r.URL,
			Domain:   r.Domain,
		})
	}

	scores, err := h.db.GetContentScoresForTopic(topicID)
	if err != nil {
		return respondError(c, err)
	}

	started := time.Now()
	analysis, err := h.difficultyScorer.Analyze(topicID, pages, scores)
	if err != nil {
		metrics.ScoringTotal.WithLabelValues("difficulty", "failed").Inc()
		return respondError(c, err)
	}
	metrics.ScoringDuration.WithLabelValues("difficulty").Observe(time.Since(started).Seconds())
	metrics.ScoringTotal.WithLabelValues("difficulty", "ok").Inc()
	metrics.DifficultyScore.Observe(analysis.Score.DifficultyScore)

	id, err := h.db.SaveDifficultyScore(&analysis.Score)
	if err != nil {
		return respondError(c, err)
	}
	analysis.Score.ID = id

	logger.Info("Difficulty analyzed",
		zap.String("topic_id", topicID),
		zap.Float64("difficulty", analysis.Score.DifficultyScore),
	)

	return c.Status(fiber.StatusCreated).JSON(analysis)
}

// GetDifficulty returns the stored difficulty assessment for a topic.
func (h *AnalysisHandler) GetDifficulty(c *fiber.Ctx) error {
	score, err := h.db.GetDifficultyScore(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if score == nil {
		return respondNotFound(c, "difficulty score")
	}
	return c.JSON(score)
}
