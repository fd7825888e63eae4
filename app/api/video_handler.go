package api

import (
	"context"

	"github.com/gofiber/fiber/v2"

	"studyrag/app/agent"
	"studyrag/store"
	"studyrag/types"
)

type VideoRecommender interface {
	Recommend(ctx context.Context, doc *types.Document) agent.VideoResult
}

type VideoHandler struct {
	docs  store.DocumentStorer
	video VideoRecommender
}

func NewVideoHandler(docs store.DocumentStorer, video VideoRecommender) *VideoHandler {
	return &VideoHandler{docs: docs, video: video}
}

func (h *VideoHandler) HandleRecommend(c *fiber.Ctx) error {
	id, err := parseID(c, "pdfId")
	if err != nil {
		return err
	}
	doc, err := h.docs.GetDocumentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(h.video.Recommend(c.UserContext(), doc))
}
