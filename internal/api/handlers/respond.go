// Package handlers exposes the store and the analytics engines over HTTP.
package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/contentpulse/backend/internal/storage"
	"github.com/contentpulse/backend/pkg/logger"
)

// respondError maps the storage error taxonomy onto HTTP statuses.
// Duplicate keys conflict, bad scoring input is the caller's fault, lock
// timeouts mean the store is briefly unavailable.
func respondError(c *fiber.Ctx, err error) error {
	var dup *storage.DuplicateError
	if errors.As(err, &dup) {
		return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": dup.Error()})
	}

	var invalid *storage.ValidationError
	if errors.As(err, &invalid) {
		return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{"error": invalid.Error()})
	}

	var lock *storage.LockTimeoutError
	if errors.As(err, &lock) {
		logger.Warn("Store lock timeout", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"error": "store busy, retry later"})
	}

	logger.Error("Request failed", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "internal error"})
}

func respondNotFound(c *fiber.Ctx, what string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": what + " not found"})
}

func respondBadRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
