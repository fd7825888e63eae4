package store

import (
	"context"

	"github.com/google/uuid"

	"studyrag/types"
)

type DocumentStorer interface {
	// CreateDocument stores the document together with doc.Chunks.
	CreateDocument(context.Context, *types.Document) error
	// GetDocumentByID returns the document with its chunks in position order.
	GetDocumentByID(context.Context, uuid.UUID) (*types.Document, error)
	// ListDocuments returns documents newest first, without text or chunks.
	ListDocuments(context.Context) ([]types.Document, error)
	ReplaceChunks(context.Context, uuid.UUID, []types.Chunk) error
	// DeleteDocument removes the document, its chunks, quizzes and attempts.
	DeleteDocument(context.Context, uuid.UUID) error
}

type QuizStorer interface {
	CreateQuiz(context.Context, *types.Quiz) error
	GetQuizByID(context.Context, uuid.UUID) (*types.Quiz, error)
	ListQuizzes(context.Context, *uuid.UUID) ([]types.Quiz, error)
	CreateAttempt(context.Context, *types.QuizAttempt) error
	ListAttempts(context.Context, AttemptFilter) ([]types.QuizAttempt, error)
}

type ChatStorer interface {
	CreateChat(context.Context, *types.Chat) error
	GetChatByID(context.Context, uuid.UUID) (*types.Chat, error)
	// ListChats returns chats ordered by most recent update.
	ListChats(context.Context) ([]types.Chat, error)
	// AppendMessages atomically appends msgs and sets the title and update time.
	AppendMessages(ctx context.Context, id uuid.UUID, title string, msgs ...types.ChatMessage) error
	DeleteChat(context.Context, uuid.UUID) error
}

type DBStorer interface {
	DocumentStorer
	QuizStorer
	ChatStorer
	Ping(context.Context) error
	Close() error
}

// AttemptFilter narrows ListAttempts. A zero Limit means no limit.
type AttemptFilter struct {
	DocID *uuid.UUID
	Limit int
}
