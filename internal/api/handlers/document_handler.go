package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/contentpulse/backend/internal/ingestion"
	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
)

type DocumentHandler struct {
	db        *sqlite.Client
	processor *ingestion.Processor
}

func NewDocumentHandler(db *sqlite.Client, processor *ingestion.Processor) *DocumentHandler {
	return &DocumentHandler{db: db, processor: processor}
}

// IngestDocument stores one reference page. When html_content is omitted
// the page is fetched first.
func (h *DocumentHandler) IngestDocument(c *fiber.Ctx) error {
	var req struct {
		URL         string `json:"url"`
		HTMLContent string `json:"html_content"`
		Source      string `json:"source"`
		Market      string `json:"market"`
		Vertical    string `json:"vertical"`
	}

	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.URL == "" {
		return respondBadRequest(c, "url is required")
	}
	if req.Source == "" {
		req.Source = "manual"
	}

	var err error
	var doc *models.Document
	if req.HTMLContent != "" {
		doc, err = h.processor.ProcessPage(c.Context(), req.Source, req.URL, req.HTMLContent, req.Market, req.Vertical)
	} else {
		doc, err = h.processor.FetchAndProcess(c.Context(), req.Source, req.URL, req.Market, req.Vertical)
	}
	if err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(doc)
}

func (h *DocumentHandler) GetDocument(c *fiber.Ctx) error {
	doc, err := h.db.GetDocument(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if doc == nil {
		return respondNotFound(c, "document")
	}
	return c.JSON(doc)
}

func (h *DocumentHandler) DeleteDocument(c *fiber.Ctx) error {
	if err := h.db.DeleteDocument(c.Params("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"deleted": c.Params("id")})
}

func (h *DocumentHandler) ListDocuments(c *fiber.Ctx) error {
	docs, err := h.db.ListDocuments(sqlite.DocumentFilter{
		Status:   c.Query("status"),
		Language: c.Query("language"),
		Limit:    c.QueryInt("limit", 50),
	})
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}

// SearchDocuments runs a full-text query over the document index.
func (h *DocumentHandler) SearchDocuments(c *fiber.Ctx) error {
	query := c.Query("q")
	if query == "" {
		return respondBadRequest(c, "q is required")
	}

	docs, err := h.db.SearchDocuments(query, c.QueryInt("limit", 20))
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"documents": docs, "count": len(docs)})
}
