package api

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"studyrag/store"
)

type CheckHandler struct {
	store      store.DBStorer
	embeddings func() bool
	videos     func() bool
}

func NewCheckHandler(st store.DBStorer, embeddings, videos func() bool) *CheckHandler {
	return &CheckHandler{store: st, embeddings: embeddings, videos: videos}
}

func (h CheckHandler) HandleHealthy(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"result": "ok"})
}

// HandleHealth reports database reachability and which external services are configured.
func (h CheckHandler) HandleHealth(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	status, database := "ok", "ok"
	if err := h.store.Ping(ctx); err != nil {
		status, database = "degraded", "unreachable"
	}
	return c.JSON(fiber.Map{
		"status":     status,
		"timestamp":  time.Now().UTC(),
		"database":   database,
		"embeddings": enabled(h.embeddings),
		"videos":     enabled(h.videos),
	})
}

func enabled(f func() bool) string {
	if f != nil && f() {
		return "configured"
	}
	return "disabled"
}
