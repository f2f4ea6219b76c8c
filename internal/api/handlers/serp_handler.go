package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/cache/redis"
	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/internal/search/web"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
	"github.com/contentpulse/backend/pkg/logger"
	"github.com/contentpulse/backend/pkg/utils"
)

type SERPHandler struct {
	db       *sqlite.Client
	search   *web.Client
	cache    *redis.Client
	cacheTTL time.Duration
}

// NewSERPHandler wires the snapshot endpoints. cache may be nil; snapshot
// reads then always hit the store.
func NewSERPHandler(db *sqlite.Client, search *web.Client, cache *redis.Client, cacheTTL time.Duration) *SERPHandler {
	return &SERPHandler{db: db, search: search, cache: cache, cacheTTL: cacheTTL}
}

func snapshotKey(topicID, query string) string {
	return utils.HashString(topicID + "|" + query)
}

// RefreshSnapshot queries the search provider and persists the ranked
// results as a new snapshot for the topic. Earlier snapshots are kept.
func (h *SERPHandler) RefreshSnapshot(c *fiber.Ctx) error {
	topicID := c.Params("id")

	var req struct {
		Query string `json:"query"`
		Limit int    `json:"limit"`
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

	results, err := h.search.Search(c.Context(), req.Query, req.Limit)
	if err != nil {
		metrics.SearchesPerformed.WithLabelValues("failed").Inc()
		return respondError(c, err)
	}
	metrics.SearchesPerformed.WithLabelValues("ok").Inc()

	searchedAt := time.Now()
	if err := h.db.SaveSERPResults(topicID, req.Query, results, searchedAt); err != nil {
		return respondError(c, err)
	}
	metrics.SERPSnapshots.Inc()

	cost := &models.APICost{
		Provider:  "serpapi",
		Operation: "search",
		CostUSD:   web.CostPerSearchUSD,
		TopicID:   &topicID,
		CreatedAt: searchedAt,
	}
	if err := h.db.RecordAPICost(cost); err != nil {
		logger.Warn("Failed to record search cost", zap.Error(err))
	}

	if h.cache != nil {
		err := h.cache.SetSERPSnapshot(c.Context(), snapshotKey(topicID, req.Query), results, h.cacheTTL)
		if err != nil {
			logger.Warn("Failed to cache SERP snapshot", zap.Error(err))
		}
	}

	logger.Info("SERP snapshot saved",
		zap.String("topic_id", topicID),
		zap.String("query", req.Query),
		zap.Int("results", len(results)),
	)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"topic_id":    topicID,
		"query":       req.Query,
		"searched_at": searchedAt.Unix(),
		"results":     results,
	})
}

// LatestSnapshot returns the most recent snapshot for a topic and query,
// served from the cache when one is configured.
func (h *SERPHandler) LatestSnapshot(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return respondBadRequest(c, "query is required")
	}
	topicID := c.Params("id")

	if h.cache != nil {
		cached, hit, err := h.cache.GetSERPSnapshot(c.Context(), snapshotKey(topicID, query))
		if err != nil {
			logger.Warn("SERP cache read failed", zap.Error(err))
		} else if hit {
			metrics.CacheHits.WithLabelValues("serp").Inc()
			return c.JSON(fiber.Map{"results": cached, "cached": true})
		}
		metrics.CacheMisses.WithLabelValues("serp").Inc()
	}

	results, err := h.db.GetLatestSERPSnapshot(topicID, query)
	if err != nil {
		return respondError(c, err)
	}
	if len(results) == 0 {
		return respondNotFound(c, "snapshot")
	}

	if h.cache != nil {
		err := h.cache.SetSERPSnapshot(c.Context(), snapshotKey(topicID, query), results, h.cacheTTL)
		if err != nil {
			logger.Warn("Failed to cache SERP snapshot", zap.Error(err))
		}
	}

	return c.JSON(fiber.Map{"results": results})
}

// SnapshotHistory returns up to max snapshots, newest first, for rank
// trajectory analysis.
func (h *SERPHandler) SnapshotHistory(c *fiber.Ctx) error {
	query := c.Query("query")
	if query == "" {
		return respondBadRequest(c, "query is required")
	}

	snapshots, err := h.db.GetSERPHistory(c.Params("id"), query, c.QueryInt("max", 10))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"snapshots": snapshots, "count": len(snapshots)})
}
