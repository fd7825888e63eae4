package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyrag/logger"
	"studyrag/retrieval"
	"studyrag/store"
	"studyrag/types"
)

const (
	defaultChatTitle = "New Conversation"
	titleChars       = 50
)

type ContextBuilder interface {
	Build(ctx context.Context, history []types.ChatMessage, doc *types.Document) (string, retrieval.Mode)
}

type Replier interface {
	Reply(ctx context.Context, system string, history []types.ChatMessage) (string, error)
}

type ChatHandler struct {
	log     *logger.Logger
	docs    store.DocumentStorer
	store   store.ChatStorer
	builder ContextBuilder
	replier Replier
}

func NewChatHandler(log *logger.Logger, docs store.DocumentStorer, st store.ChatStorer, builder ContextBuilder, replier Replier) *ChatHandler {
	return &ChatHandler{log: log, docs: docs, store: st, builder: builder, replier: replier}
}

func (h *ChatHandler) HandleCreate(c *fiber.Ctx) error {
	var params types.CreateChatParams
	if len(c.Body()) > 0 && c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	now := time.Now().UTC()
	chat := &types.Chat{
		ID:        uuid.New(),
		Title:     strings.TrimSpace(params.Title),
		Messages:  []types.ChatMessage{},
		CreatedAt: now,
		UpdatedAt: now,
	}
	if chat.Title == "" {
		chat.Title = defaultChatTitle
	}
	if params.PdfID != nil && *params.PdfID != "" {
		docID := uuid.MustParse(*params.PdfID)
		name := lo.FromPtr(params.PdfName)
		if name == "" {
			doc, err := h.docs.GetDocumentByID(c.UserContext(), docID)
			if err != nil {
				return err
			}
			name = doc.Name
		}
		chat.DocID = &docID
		chat.DocName = &name
	}

	if err := h.store.CreateChat(c.UserContext(), chat); err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Chat created successfully",
		"chat":    chat,
	})
}

type chatSummary struct {
	ID           uuid.UUID `json:"id"`
	Title        string    `json:"title"`
	DocName      *string   `json:"pdfName"`
	MessageCount int       `json:"messageCount"`
	LastMessage  string    `json:"lastMessage"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func lastMessagePreview(msgs []types.ChatMessage) string {
	if len(msgs) == 0 {
		return "No messages yet"
	}
	return types.FirstRunes(msgs[len(msgs)-1].Content, titleChars) + "..."
}

func (h *ChatHandler) HandleList(c *fiber.Ctx) error {
	chats, err := h.store.ListChats(c.UserContext())
	if err != nil {
		return err
	}
	out := lo.Map(chats, func(ch types.Chat, _ int) chatSummary {
		return chatSummary{
			ID:           ch.ID,
			Title:        ch.Title,
			DocName:      ch.DocName,
			MessageCount: len(ch.Messages),
			LastMessage:  lastMessagePreview(ch.Messages),
			UpdatedAt:    ch.UpdatedAt,
		}
	})
	return c.JSON(fiber.Map{"chats": out})
}

func (h *ChatHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	chat, err := h.store.GetChatByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(chat)
}

func (h *ChatHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	if err := h.store.DeleteChat(c.UserContext(), id); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "Chat deleted successfully"})
}

// HandleMessage runs one chat turn. Nothing is stored unless the completion succeeds.
func (h *ChatHandler) HandleMessage(c *fiber.Ctx) error {
	id, err := parseID(c, "chatId")
	if err != nil {
		return err
	}
	var params types.MessageParams
	if c.BodyParser(&params) != nil {
		return ErrBadRequest()
	}
	if errors := types.Validate(&params); len(errors) > 0 {
		return NewValidationError(errors)
	}

	ctx := c.UserContext()
	chat, err := h.store.GetChatByID(ctx, id)
	if err != nil {
		return err
	}

	userMsg := types.ChatMessage{Role: types.RoleUser, Content: params.Message, Timestamp: time.Now().UTC()}
	history := append(chat.Messages, userMsg)

	doc, err := h.boundDocument(ctx, chat)
	if err != nil {
		return err
	}
	system, mode := h.builder.Build(ctx, history, doc)
	h.log.Debug("chat context built", "chat", chat.ID, "mode", mode.String())

	answer, err := h.replier.Reply(ctx, system, history)
	if err != nil {
		return err
	}
	assistantMsg := types.ChatMessage{Role: types.RoleAssistant, Content: answer, Timestamp: time.Now().UTC()}

	title := chat.Title
	if len(chat.Messages) == 0 {
		title = types.FirstRunes(params.Message, titleChars)
		if len([]rune(params.Message)) > titleChars {
			title += "..."
		}
	}
	if err := h.store.AppendMessages(ctx, chat.ID, title, userMsg, assistantMsg); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"message": "Message sent successfully",
		"chat": fiber.Map{
			"id":       chat.ID,
			"title":    title,
			"messages": append(history, assistantMsg),
		},
	})
}

// boundDocument loads the chat's document. A document that no longer exists
// is treated as unbound.
func (h *ChatHandler) boundDocument(ctx context.Context, chat *types.Chat) (*types.Document, error) {
	if chat.DocID == nil {
		return nil, nil
	}
	doc, err := h.docs.GetDocumentByID(ctx, *chat.DocID)
	if errors.Is(err, types.ErrNotFound) {
		h.log.Warn("chat document is gone", "chat", chat.ID, "doc", *chat.DocID)
		return nil, nil
	}
	return doc, err
}
