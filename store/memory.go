package store

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/samber/lo"

	"studyrag/types"
)

// MemoryStore keeps everything in process memory. Values are copied on the
// way in and out so callers never share state with the store.
type MemoryStore struct {
	mu       sync.RWMutex
	docs     map[uuid.UUID]types.Document
	quizzes  map[uuid.UUID]types.Quiz
	attempts []types.QuizAttempt
	chats    map[uuid.UUID]types.Chat
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs:    make(map[uuid.UUID]types.Document),
		quizzes: make(map[uuid.UUID]types.Quiz),
		chats:   make(map[uuid.UUID]types.Chat),
	}
}

func (m *MemoryStore) Ping(context.Context) error { return nil }
func (m *MemoryStore) Close() error               { return nil }

func cloneChunks(chunks []types.Chunk) []types.Chunk {
	out := slices.Clone(chunks)
	for i := range out {
		out[i].Embedding = slices.Clone(out[i].Embedding)
	}
	return out
}

func cloneDoc(d types.Document) types.Document {
	d.Chunks = cloneChunks(d.Chunks)
	return d
}

func cloneQuiz(q types.Quiz) types.Quiz {
	q.Questions = slices.Clone(q.Questions)
	for i := range q.Questions {
		q.Questions[i].Options = slices.Clone(q.Questions[i].Options)
	}
	return q
}

func (m *MemoryStore) CreateDocument(_ context.Context, doc *types.Document) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[doc.ID] = cloneDoc(*doc)
	return nil
}

func (m *MemoryStore) GetDocumentByID(_ context.Context, id uuid.UUID) (*types.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	d, ok := m.docs[id]
	if !ok {
		return nil, notFound("document", id)
	}
	d = cloneDoc(d)
	slices.SortStableFunc(d.Chunks, func(a, b types.Chunk) int { return a.Position - b.Position })
	return &d, nil
}

func (m *MemoryStore) ListDocuments(context.Context) ([]types.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	docs := lo.MapToSlice(m.docs, func(_ uuid.UUID, d types.Document) types.Document {
		d.TextContent = ""
		d.Chunks = nil
		return d
	})
	slices.SortFunc(docs, func(a, b types.Document) int { return b.UploadedAt.Compare(a.UploadedAt) })
	return docs, nil
}

func (m *MemoryStore) ReplaceChunks(_ context.Context, docID uuid.UUID, chunks []types.Chunk) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[docID]
	if !ok {
		return notFound("document", docID)
	}
	d.Chunks = cloneChunks(chunks)
	m.docs[docID] = d
	return nil
}

func (m *MemoryStore) DeleteDocument(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return notFound("document", id)
	}
	m.attempts = lo.Reject(m.attempts, func(a types.QuizAttempt, _ int) bool { return a.DocID == id })
	for qid, q := range m.quizzes {
		if q.DocID == id {
			delete(m.quizzes, qid)
		}
	}
	for cid, c := range m.chats {
		if c.DocID != nil && *c.DocID == id {
			c.DocID = nil
			c.DocName = nil
			m.chats[cid] = c
		}
	}
	delete(m.docs, id)
	return nil
}

func (m *MemoryStore) CreateQuiz(_ context.Context, q *types.Quiz) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.quizzes[q.ID] = cloneQuiz(*q)
	return nil
}

func (m *MemoryStore) GetQuizByID(_ context.Context, id uuid.UUID) (*types.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.quizzes[id]
	if !ok {
		return nil, notFound("quiz", id)
	}
	q = cloneQuiz(q)
	return &q, nil
}

func (m *MemoryStore) ListQuizzes(_ context.Context, docID *uuid.UUID) ([]types.Quiz, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []types.Quiz{}
	for _, q := range m.quizzes {
		if docID != nil && q.DocID != *docID {
			continue
		}
		out = append(out, cloneQuiz(q))
	}
	slices.SortFunc(out, func(a, b types.Quiz) int { return b.CreatedAt.Compare(a.CreatedAt) })
	return out, nil
}

func (m *MemoryStore) CreateAttempt(_ context.Context, a *types.QuizAttempt) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *a
	cp.Answers = slices.Clone(a.Answers)
	m.attempts = append(m.attempts, cp)
	return nil
}

func (m *MemoryStore) ListAttempts(_ context.Context, f AttemptFilter) ([]types.QuizAttempt, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := lo.FilterMap(m.attempts, func(a types.QuizAttempt, _ int) (types.QuizAttempt, bool) {
		if f.DocID != nil && a.DocID != *f.DocID {
			return a, false
		}
		a.Answers = slices.Clone(a.Answers)
		return a, true
	})
	slices.SortStableFunc(out, func(a, b types.QuizAttempt) int { return b.CompletedAt.Compare(a.CompletedAt) })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

func cloneChat(c types.Chat) types.Chat {
	c.Messages = slices.Clone(c.Messages)
	if c.Messages == nil {
		c.Messages = []types.ChatMessage{}
	}
	if c.DocID != nil {
		c.DocID = lo.ToPtr(*c.DocID)
	}
	if c.DocName != nil {
		c.DocName = lo.ToPtr(*c.DocName)
	}
	return c
}

func (m *MemoryStore) CreateChat(_ context.Context, c *types.Chat) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.chats[c.ID] = cloneChat(*c)
	return nil
}

func (m *MemoryStore) GetChatByID(_ context.Context, id uuid.UUID) (*types.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.chats[id]
	if !ok {
		return nil, notFound("chat", id)
	}
	c = cloneChat(c)
	return &c, nil
}

func (m *MemoryStore) ListChats(context.Context) ([]types.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	chats := lo.MapToSlice(m.chats, func(_ uuid.UUID, c types.Chat) types.Chat { return cloneChat(c) })
	slices.SortFunc(chats, func(a, b types.Chat) int { return b.UpdatedAt.Compare(a.UpdatedAt) })
	return chats, nil
}

func (m *MemoryStore) AppendMessages(_ context.Context, id uuid.UUID, title string, msgs ...types.ChatMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.chats[id]
	if !ok {
		return notFound("chat", id)
	}
	c.Messages = append(slices.Clone(c.Messages), msgs...)
	c.Title = title
	c.UpdatedAt = time.Now().UTC()
	m.chats[id] = c
	return nil
}

func (m *MemoryStore) DeleteChat(_ context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.chats[id]; !ok {
		return notFound("chat", id)
	}
	delete(m.chats, id)
	return nil
}

var (
	_ DBStorer = (*MemoryStore)(nil)
	_ DBStorer = (*PostgresStore)(nil)
)
