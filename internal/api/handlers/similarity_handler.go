package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contentpulse/backend/internal/similarity"
	"github.com/contentpulse/backend/internal/storage/sqlite"
)

type SimilarityHandler struct {
	db     *sqlite.Client
	engine *similarity.Engine
}

func NewSimilarityHandler(db *sqlite.Client, engine *similarity.Engine) *SimilarityHandler {
	return &SimilarityHandler{db: db, engine: engine}
}

// RelatedTopics ranks previously researched topics by title similarity.
func (h *SimilarityHandler) RelatedTopics(c *fiber.Ctx) error {
	related, err := h.engine.FindRelatedTopics(
		c.Params("id"),
		c.QueryInt("limit", 10),
		c.QueryFloat("min_similarity", 0.1),
	)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"related": related, "count": len(related)})
}

// Synthesis condenses the related research into findings, shared themes
// and unique angles for the writing stage.
func (h *SimilarityHandler) Synthesis(c *fiber.Ctx) error {
	topicID := c.Params("id")

	topic, err := h.db.GetTopic(topicID)
	if err != nil {
		return respondError(c, err)
	}
	if topic == nil {
		return respondNotFound(c, "topic")
	}

	related, err := h.engine.FindRelatedTopics(topicID, c.QueryInt("limit", 10), c.QueryFloat("min_similarity", 0.1))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(h.engine.Synthesize(topic, related))
}

// InternalLinks suggests cross-link targets for a topic's article.
func (h *SimilarityHandler) InternalLinks(c *fiber.Ctx) error {
	suggestions, err := h.engine.SuggestInternalLinks(c.Params("id"), c.QueryInt("max", 5))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"links": suggestions, "count": len(suggestions)})
}
