package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/metrics"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
	"github.com/contentpulse/backend/pkg/logger"
)

type TopicHandler struct {
	db *sqlite.Client
}

func NewTopicHandler(db *sqlite.Client) *TopicHandler {
	return &TopicHandler{db: db}
}

// refreshTopicGauge recounts topics per status after a write. Gauge drift
// on a failed count is tolerable; the next write corrects it.
func (h *TopicHandler) refreshTopicGauge() {
	counts, err := h.db.CountTopicsByStatus()
	if err != nil {
		logger.Warn("Failed to count topics for metrics", zap.Error(err))
		return
	}
	metrics.SetTopicCounts(counts)
}

type topicRequest struct {
	Title           string   `json:"title"`
	Description     string   `json:"description"`
	Source          string   `json:"source"`
	SourceURL       string   `json:"source_url"`
	Domain          string   `json:"domain"`
	Market          string   `json:"market"`
	Language        string   `json:"language"`
	Intent          string   `json:"intent"`
	EngagementScore float64  `json:"engagement_score"`
	TrendingScore   float64  `json:"trending_score"`
	Priority        int      `json:"priority"`
	ResearchReport  string   `json:"research_report"`
	Citations       []string `json:"citations"`
	WordCount       int      `json:"word_count"`
	Status          string   `json:"status"`
}

func (h *TopicHandler) CreateTopic(c *fiber.Ctx) error {
	var req topicRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.Title == "" {
		return respondBadRequest(c, "title is required")
	}

	now := time.Now()
	status := req.Status
	if status == "" {
		status = models.TopicStatusDiscovered
	}

	topic := &models.Topic{
		ID:              uuid.New().String(),
		Title:           req.Title,
		Description:     req.Description,
		Source:          req.Source,
		SourceURL:       req.SourceURL,
		DiscoveredAt:    now,
		Domain:          req.Domain,
		Market:          req.Market,
		Language:        req.Language,
		Intent:          req.Intent,
		EngagementScore: req.EngagementScore,
		TrendingScore:   req.TrendingScore,
		Priority:        req.Priority,
		ResearchReport:  req.ResearchReport,
		Citations:       req.Citations,
		WordCount:       req.WordCount,
		Status:          status,
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := h.db.InsertTopic(topic); err != nil {
		return respondError(c, err)
	}
	h.refreshTopicGauge()

	logger.Info("Topic created", zap.String("id", topic.ID), zap.String("title", topic.Title))
	return c.Status(fiber.StatusCreated).JSON(topic)
}

func (h *TopicHandler) GetTopic(c *fiber.Ctx) error {
	topic, err := h.db.GetTopic(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if topic == nil {
		return respondNotFound(c, "topic")
	}
	return c.JSON(topic)
}

func (h *TopicHandler) UpdateTopic(c *fiber.Ctx) error {
	topic, err := h.db.GetTopic(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if topic == nil {
		return respondNotFound(c, "topic")
	}

	var req topicRequest
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}

	if req.Title != "" {
		topic.Title = req.Title
	}
	if req.Description != "" {
		topic.Description = req.Description
	}
	if req.Intent != "" {
		topic.Intent = req.Intent
	}
	if req.ResearchReport != "" {
		topic.ResearchReport = req.ResearchReport
	}
	if req.Citations != nil {
		topic.Citations = req.Citations
	}
	if req.WordCount > 0 {
		topic.WordCount = req.WordCount
	}
	if req.Priority > 0 {
		topic.Priority = req.Priority
	}
	// Status writes are permissive; the pipeline owns ordering, not the store.
	if req.Status != "" {
		topic.Status = req.Status
		if req.Status == models.TopicStatusPublished && topic.PublishedAt == nil {
			now := time.Now()
			topic.PublishedAt = &now
		}
	}
	topic.UpdatedAt = time.Now()

	if err := h.db.UpdateTopic(topic); err != nil {
		return respondError(c, err)
	}
	h.refreshTopicGauge()

	return c.JSON(topic)
}

func (h *TopicHandler) DeleteTopic(c *fiber.Ctx) error {
	if err := h.db.DeleteTopic(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	h.refreshTopicGauge()
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}

func (h *TopicHandler) ListTopics(c *fiber.Ctx) error {
	filter := sqlite.TopicFilter{
		Status:      c.Query("status"),
		Language:    c.Query("language"),
		MinPriority: c.QueryInt("min_priority"),
		Limit:       c.QueryInt("limit", 50),
	}

	topics, err := h.db.ListTopics(filter)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"topics": topics, "count": len(topics)})
}
