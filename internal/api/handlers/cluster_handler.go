package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/contentpulse/backend/internal/storage/models"
	"github.com/contentpulse/backend/internal/storage/sqlite"
)

type ClusterHandler struct {
	db *sqlite.Client
}

func NewClusterHandler(db *sqlite.Client) *ClusterHandler {
	return &ClusterHandler{db: db}
}

// CreateCluster registers a hub topic and its initial spokes.
func (h *ClusterHandler) CreateCluster(c *fiber.Ctx) error {
	var req struct {
		Name        string   `json:"name"`
		Description string   `json:"description"`
		HubTopicID  string   `json:"hub_topic_id"`
		SpokeIDs    []string `json:"spoke_ids"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.Name == "" || req.HubTopicID == "" {
		return respondBadRequest(c, "name and hub_topic_id are required")
	}

	hub, err := h.db.GetTopic(req.HubTopicID)
	if err != nil {
		return respondError(c, err)
	}
	if hub == nil {
		return respondNotFound(c, "hub topic")
	}

	cluster := &models.Cluster{
		ID:          uuid.New().String(),
		Name:        req.Name,
		Description: req.Description,
		HubTopicID:  req.HubTopicID,
		CreatedAt:   time.Now(),
	}

	if err := h.db.CreateCluster(cluster); err != nil {
		return respondError(c, err)
	}

	for i, spokeID := range req.SpokeIDs {
		if err := h.db.AddClusterSpoke(cluster.ID, spokeID, i+1); err != nil {
			return respondError(c, err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(cluster)
}

// AddSpoke appends one topic to an existing cluster.
func (h *ClusterHandler) AddSpoke(c *fiber.Ctx) error {
	clusterID := c.Params("id")

	var req struct {
		TopicID  string `json:"topic_id"`
		Position int    `json:"position"`
	}
	if err := c.BodyParser(&req); err != nil {
		return respondBadRequest(c, "invalid request body")
	}
	if req.TopicID == "" {
		return respondBadRequest(c, "topic_id is required")
	}

	cluster, err := h.db.GetCluster(clusterID)
	if err != nil {
		return respondError(c, err)
	}
	if cluster == nil {
		return respondNotFound(c, "cluster")
	}

	if req.Position == 0 {
		members, err := h.db.GetClusterMembers(clusterID)
		if err != nil {
			return respondError(c, err)
		}
		req.Position = len(members)
	}

	if err := h.db.AddClusterSpoke(clusterID, req.TopicID, req.Position); err != nil {
		return respondError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"cluster_id": clusterID,
		"topic_id":   req.TopicID,
		"position":   req.Position,
	})
}

// GetCluster returns a cluster with its ordered members, hub first.
func (h *ClusterHandler) GetCluster(c *fiber.Ctx) error {
	cluster, err := h.db.GetCluster(c.Params("id"))
	if err != nil {
		return respondError(c, err)
	}
	if cluster == nil {
		return respondNotFound(c, "cluster")
	}

	members, err := h.db.GetClusterMembers(cluster.ID)
	if err != nil {
		return respondError(c, err)
	}

	return c.JSON(fiber.Map{"cluster": cluster, "members": members})
}
