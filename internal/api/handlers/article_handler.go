package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
)

// ArticleHandler receives drafts written back by the generation subsystem
// and exposes the running API spend.
type ArticleHandler struct {
	db *sqlite.Client
}

func NewArticleHandler(db *sqlite.Client) *ArticleHandler {
	return &ArticleHandler{db: db}
}

func (h *ArticleHandler) CreateArticle(c *fiber.Ctx) error {
	var req struct {
		TopicID string `json:"topic_id"`
		Title   string `json:"title"`
		Content string `json:"content"`
		Status  string `json:"status"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.TopicID == "" || req.Title == "" {
		return respondBadRequest(c, "topic_id and title are required")
	}

	topic, err := h.db.GetTopic(req.TopicID)
	if err != nil {
		return respondError(c, err)
	}
	if topic == nil {
		return respondNotFound(c, "topic")
	}

	if req.Status == "" {
		req.Status = "draft"
	}

	now := time.Now()
	article := &models.Article{
		ID:        uuid.New().String(),
		TopicID:   req.TopicID,
		Title:     req.Title,
		Content:   req.Content,
		WordCount: len(strings.Fields(req.Content)),
		Status:    req.Status,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := h.db.InsertArticle(article); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(article)
}

func (h *ArticleHandler) GetArticle(c *fiber.Ctx) error {
	article, err := h.db.GetArticle(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if article == nil {
		return respondNotFound(c, "article")
	}
	return c.JSON(article)
}

func (h *ArticleHandler) ListForTopic(c *fiber.Ctx) error {
	articles, err := h.db.ListArticlesForTopic(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"articles": articles, "count": len(articles)})
}

// Costs reports the accumulated external API spend by provider.
func (h *ArticleHandler) Costs(c *fiber.Ctx) error {
	totals, err := h.db.TotalCostByProvider()
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"totals_usd": totals})
}
