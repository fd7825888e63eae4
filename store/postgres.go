package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"

	"studyrag/types"
)

type PostgresStore struct {
	pool *pgxpool.Pool
	dim  int
}

func NewPostgresStore(ctx context.Context, connStr string, dim int) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &PostgresStore{
		pool: pool,
		dim:  dim,
	}, nil
}

func (p *PostgresStore) Init(ctx context.Context) error {
	return p.createTables(ctx)
}

func (p *PostgresStore) createTables(ctx context.Context) error {
	query := fmt.Sprintf(`
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS documents (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_path TEXT NOT NULL,
		file_size BIGINT NOT NULL DEFAULT 0,
		mime_type TEXT NOT NULL DEFAULT 'application/pdf',
		page_count INT NOT NULL DEFAULT 1,
		text_content TEXT NOT NULL DEFAULT '',
		uploaded_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE TABLE IF NOT EXISTS chunks (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		position INT NOT NULL,
		content TEXT NOT NULL,
		embedding vector(%d),
		page_number INT NOT NULL DEFAULT 1,
		start_index INT NOT NULL,
		end_index INT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_chunks_doc_id ON chunks(doc_id, position);

	CREATE TABLE IF NOT EXISTS quizzes (
		id UUID PRIMARY KEY,
		doc_id UUID NOT NULL REFERENCES documents(id) ON DELETE CASCADE,
		doc_name TEXT NOT NULL,
		questions JSONB NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_quizzes_doc_id ON quizzes(doc_id);

	CREATE TABLE IF NOT EXISTS quiz_attempts (
		id UUID PRIMARY KEY,
		quiz_id UUID NOT NULL REFERENCES quizzes(id) ON DELETE CASCADE,
		doc_id UUID NOT NULL,
		doc_name TEXT NOT NULL,
		answers JSONB NOT NULL,
		score INT NOT NULL,
		total_questions INT NOT NULL,
		percentage INT NOT NULL,
		completed_at TIMESTAMP WITH TIME ZONE NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_attempts_doc_id ON quiz_attempts(doc_id, completed_at DESC);

	CREATE TABLE IF NOT EXISTS chats (
		id UUID PRIMARY KEY,
		title TEXT NOT NULL,
		doc_id UUID REFERENCES documents(id) ON DELETE SET NULL,
		doc_name TEXT,
		messages JSONB NOT NULL DEFAULT '[]'::jsonb,
		created_at TIMESTAMP WITH TIME ZONE NOT NULL,
		updated_at TIMESTAMP WITH TIME ZONE NOT NULL
	);
	`, p.dim)
	_, err := p.pool.Exec(ctx, query)
	return err
}

func (p *PostgresStore) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *PostgresStore) Close() error {
	if p.pool != nil {
		p.pool.Close()
	}
	return nil
}

func notFound(what string, id uuid.UUID) error {
	return fmt.Errorf("%s %s: %w", what, id, types.ErrNotFound)
}

// ---- documents ----

func (p *PostgresStore) CreateDocument(ctx context.Context, doc *types.Document) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `
		INSERT INTO documents (id, name, filename, file_path, file_size, mime_type, page_count, text_content, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
			doc.ID, doc.Name, doc.Filename, doc.FilePath, doc.FileSize, doc.MimeType,
			doc.PageCount, doc.TextContent, doc.UploadedAt,
		)
		if err != nil {
			return fmt.Errorf("insert document: %w", err)
		}
		return insertChunks(ctx, tx, doc.ID, doc.Chunks)
	})
}

func insertChunks(ctx context.Context, tx pgx.Tx, docID uuid.UUID, chunks []types.Chunk) error {
	if len(chunks) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, c := range chunks {
		batch.Queue(`
		INSERT INTO chunks (id, doc_id, position, content, embedding, page_number, start_index, end_index)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			c.ID, docID, c.Position, c.Content, toPgVector(c.Embedding), c.PageNumber, c.StartIndex, c.EndIndex,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return fmt.Errorf("insert chunks: %w", err)
	}
	return nil
}

// toPgVector maps a missing embedding to NULL.
func toPgVector(v []float32) any {
	if len(v) == 0 {
		return nil
	}
	vec := pgvector.NewVector(v)
	return vec
}

func (p *PostgresStore) GetDocumentByID(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	doc := &types.Document{}
	err := p.pool.QueryRow(ctx, `
	SELECT id, name, filename, file_path, file_size, mime_type, page_count, text_content, uploaded_at
	FROM documents WHERE id = $1`, id).Scan(
		&doc.ID, &doc.Name, &doc.Filename, &doc.FilePath, &doc.FileSize, &doc.MimeType,
		&doc.PageCount, &doc.TextContent, &doc.UploadedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("document", id)
	}
	if err != nil {
		return nil, err
	}

	rows, err := p.pool.Query(ctx, `
	SELECT id, doc_id, position, content, embedding::text, page_number, start_index, end_index
	FROM chunks WHERE doc_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var (
			c   types.Chunk
			emb *string
		)
		if err := rows.Scan(&c.ID, &c.DocID, &c.Position, &c.Content, &emb, &c.PageNumber, &c.StartIndex, &c.EndIndex); err != nil {
			return nil, err
		}
		if emb != nil {
			var vec pgvector.Vector
			if err := vec.Scan(*emb); err != nil {
				return nil, fmt.Errorf("chunk %s embedding: %w", c.ID, err)
			}
			c.Embedding = vec.Slice()
		}
		doc.Chunks = append(doc.Chunks, c)
	}
	return doc, rows.Err()
}

func (p *PostgresStore) ListDocuments(ctx context.Context) ([]types.Document, error) {
	rows, err := p.pool.Query(ctx, `
	SELECT id, name, filename, file_size, mime_type, page_count, uploaded_at
	FROM documents ORDER BY uploaded_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	docs := []types.Document{}
	for rows.Next() {
		var d types.Document
		if err := rows.Scan(&d.ID, &d.Name, &d.Filename, &d.FileSize, &d.MimeType, &d.PageCount, &d.UploadedAt); err != nil {
			return nil, err
		}
		docs = append(docs, d)
	}
	return docs, rows.Err()
}

func (p *PostgresStore) ReplaceChunks(ctx context.Context, docID uuid.UUID, chunks []types.Chunk) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM documents WHERE id = $1)`, docID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return notFound("document", docID)
		}
		if _, err := tx.Exec(ctx, `DELETE FROM chunks WHERE doc_id = $1`, docID); err != nil {
			return fmt.Errorf("error deleting old chunks: %w", err)
		}
		return insertChunks(ctx, tx, docID, chunks)
	})
}

func (p *PostgresStore) DeleteDocument(ctx context.Context, id uuid.UUID) error {
	return pgx.BeginFunc(ctx, p.pool, func(tx pgx.Tx) error {
		steps := []string{
			`DELETE FROM quiz_attempts WHERE doc_id = $1`,
			`DELETE FROM quizzes WHERE doc_id = $1`,
			`DELETE FROM chunks WHERE doc_id = $1`,
			`UPDATE chats SET doc_id = NULL, doc_name = NULL WHERE doc_id = $1`,
		}
		for _, q := range steps {
			if _, err := tx.Exec(ctx, q, id); err != nil {
				return err
			}
		}
		tag, err := tx.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return notFound("document", id)
		}
		return nil
	})
}

// ---- quizzes ----

func (p *PostgresStore) CreateQuiz(ctx context.Context, q *types.Quiz) error {
	questions, err := json.Marshal(q.Questions)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
	INSERT INTO quizzes (id, doc_id, doc_name, questions, created_at)
	VALUES ($1, $2, $3, $4, $5)`,
		q.ID, q.DocID, q.DocName, string(questions), q.CreatedAt,
	)
	return err
}

func (p *PostgresStore) GetQuizByID(ctx context.Context, id uuid.UUID) (*types.Quiz, error) {
	row := p.pool.QueryRow(ctx, `
	SELECT id, doc_id, doc_name, questions, created_at FROM quizzes WHERE id = $1`, id)
	q, err := scanQuiz(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("quiz", id)
	}
	return q, err
}

func (p *PostgresStore) ListQuizzes(ctx context.Context, docID *uuid.UUID) ([]types.Quiz, error) {
	rows, err := p.pool.Query(ctx, `
	SELECT id, doc_id, doc_name, questions, created_at FROM quizzes
	WHERE $1::uuid IS NULL OR doc_id = $1
	ORDER BY created_at DESC`, docID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	quizzes := []types.Quiz{}
	for rows.Next() {
		q, err := scanQuiz(rows)
		if err != nil {
			return nil, err
		}
		quizzes = append(quizzes, *q)
	}
	return quizzes, rows.Err()
}

func scanQuiz(row pgx.Row) (*types.Quiz, error) {
	var (
		q         types.Quiz
		questions []byte
	)
	if err := row.Scan(&q.ID, &q.DocID, &q.DocName, &questions, &q.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(questions, &q.Questions); err != nil {
		return nil, fmt.Errorf("quiz %s questions: %w", q.ID, err)
	}
	return &q, nil
}

func (p *PostgresStore) CreateAttempt(ctx context.Context, a *types.QuizAttempt) error {
	answers, err := json.Marshal(a.Answers)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
	INSERT INTO quiz_attempts (id, quiz_id, doc_id, doc_name, answers, score, total_questions, percentage, completed_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.QuizID, a.DocID, a.DocName, string(answers), a.Score, a.TotalQuestions, a.Percentage, a.CompletedAt,
	)
	return err
}

func (p *PostgresStore) ListAttempts(ctx context.Context, f AttemptFilter) ([]types.QuizAttempt, error) {
	limit := any(nil)
	if f.Limit > 0 {
		limit = f.Limit
	}
	rows, err := p.pool.Query(ctx, `
	SELECT id, quiz_id, doc_id, doc_name, answers, score, total_questions, percentage, completed_at
	FROM quiz_attempts
	WHERE $1::uuid IS NULL OR doc_id = $1
	ORDER BY completed_at DESC
	LIMIT $2`, f.DocID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	attempts := []types.QuizAttempt{}
	for rows.Next() {
		var (
			a       types.QuizAttempt
			answers []byte
		)
		if err := rows.Scan(&a.ID, &a.QuizID, &a.DocID, &a.DocName, &answers, &a.Score, &a.TotalQuestions, &a.Percentage, &a.CompletedAt); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(answers, &a.Answers); err != nil {
			return nil, fmt.Errorf("attempt %s answers: %w", a.ID, err)
		}
		attempts = append(attempts, a)
	}
	return attempts, rows.Err()
}

// ---- chats ----

func (p *PostgresStore) CreateChat(ctx context.Context, c *types.Chat) error {
	if c.Messages == nil {
		c.Messages = []types.ChatMessage{}
	}
	msgs, err := json.Marshal(c.Messages)
	if err != nil {
		return err
	}
	_, err = p.pool.Exec(ctx, `
	INSERT INTO chats (id, title, doc_id, doc_name, messages, created_at, updated_at)
	VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		c.ID, c.Title, c.DocID, c.DocName, string(msgs), c.CreatedAt, c.UpdatedAt,
	)
	return err
}

const chatColumns = `id, title, doc_id, doc_name, messages, created_at, updated_at`

func scanChat(row pgx.Row) (*types.Chat, error) {
	var (
		c    types.Chat
		msgs []byte
	)
	if err := row.Scan(&c.ID, &c.Title, &c.DocID, &c.DocName, &msgs, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(msgs, &c.Messages); err != nil {
		return nil, fmt.Errorf("chat %s messages: %w", c.ID, err)
	}
	return &c, nil
}

func (p *PostgresStore) GetChatByID(ctx context.Context, id uuid.UUID) (*types.Chat, error) {
	c, err := scanChat(p.pool.QueryRow(ctx, `SELECT `+chatColumns+` FROM chats WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, notFound("chat", id)
	}
	return c, err
}

func (p *PostgresStore) ListChats(ctx context.Context) ([]types.Chat, error) {
	rows, err := p.pool.Query(ctx, `SELECT `+chatColumns+` FROM chats ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	chats := []types.Chat{}
	for rows.Next() {
		c, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		chats = append(chats, *c)
	}
	return chats, rows.Err()
}

func (p *PostgresStore) AppendMessages(ctx context.Context, id uuid.UUID, title string, msgs ...types.ChatMessage) error {
	payload, err := json.Marshal(msgs)
	if err != nil {
		return err
	}
	tag, err := p.pool.Exec(ctx, `
	UPDATE chats SET messages = messages || $2::jsonb, title = $3, updated_at = $4
	WHERE id = $1`, id, string(payload), title, time.Now().UTC())
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("chat", id)
	}
	return nil
}

func (p *PostgresStore) DeleteChat(ctx context.Context, id uuid.UUID) error {
	tag, err := p.pool.Exec(ctx, `DELETE FROM chats WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return notFound("chat", id)
	}
	return nil
}
