package loader

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"

	"studyrag/logger"
	"studyrag/model"
	"studyrag/store"
	"studyrag/types"
)

// VectorSource is the embedding policy used during ingestion.
type VectorSource interface {
	Configured() bool
	EmbedOrZero(ctx context.Context, text string) []float32
}

// Service turns stored PDF files into documents with chunks.
type Service struct {
	log          *logger.Logger
	store        store.DocumentStorer
	extractor    Extractor
	vectors      VectorSource
	chunkSize    int
	chunkOverlap int
}

func NewService(log *logger.Logger, st store.DocumentStorer, extractor Extractor, vectors VectorSource, chunkSize, chunkOverlap int) *Service {
	return &Service{
		log:          log,
		store:        st,
		extractor:    extractor,
		vectors:      vectors,
		chunkSize:    chunkSize,
		chunkOverlap: chunkOverlap,
	}
}

var _ VectorSource = (*model.Provider)(nil)

// Upload describes a file that is already on disk.
type Upload struct {
	Name     string // original file name
	Filename string // stored file name
	Path     string
	Size     int64
	MimeType string
}

// Ingest extracts text from the file, builds chunks and stores the document.
// Extraction failures are logged and produce an empty single-page document.
func (s *Service) Ingest(ctx context.Context, up Upload) (*types.Document, error) {
	ext := s.extract(up.Path)

	doc := &types.Document{
		ID:          uuid.New(),
		Name:        up.Name,
		Filename:    up.Filename,
		FilePath:    up.Path,
		FileSize:    up.Size,
		MimeType:    up.MimeType,
		PageCount:   ext.PageCount,
		TextContent: ext.Text(),
		UploadedAt:  time.Now().UTC(),
	}
	if doc.MimeType == "" {
		doc.MimeType = "application/pdf"
	}

	chunks, err := s.BuildChunks(ctx, doc.ID, ext)
	if err != nil {
		return nil, err
	}
	doc.Chunks = chunks

	if err := s.store.CreateDocument(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to save document: %w", err)
	}
	s.log.Info("document ingested", "id", doc.ID, "name", doc.Name, "pages", doc.PageCount, "chunks", len(chunks))
	return doc, nil
}

// Reindex rebuilds the chunk sequence of an existing document. It re-reads the
// stored file for page boundaries and falls back to the saved text.
func (s *Service) Reindex(ctx context.Context, id uuid.UUID) (int, error) {
	doc, err := s.store.GetDocumentByID(ctx, id)
	if err != nil {
		return 0, err
	}

	ext := s.extract(doc.FilePath)
	if len(ext.Pages) == 0 || ext.Text() == "" {
		ext = Extraction{PageCount: doc.PageCount, Pages: []string{doc.TextContent}}
	}

	chunks, err := s.BuildChunks(ctx, doc.ID, ext)
	if err != nil {
		return 0, err
	}
	if err := s.store.ReplaceChunks(ctx, doc.ID, chunks); err != nil {
		return 0, err
	}
	s.log.Info("document reindexed", "id", doc.ID, "chunks", len(chunks))
	return len(chunks), nil
}

// BuildChunks splits the extraction into windows, estimates the page of every
// window and embeds it when a backend is configured.
func (s *Service) BuildChunks(ctx context.Context, docID uuid.UUID, ext Extraction) ([]types.Chunk, error) {
	windows, err := Chunk(ext.Text(), s.chunkSize, s.chunkOverlap)
	if err != nil {
		return nil, err
	}

	starts := PageStarts(ext.Pages)
	embed := s.vectors != nil && s.vectors.Configured()

	chunks := make([]types.Chunk, 0, len(windows))
	for i, w := range windows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		c := types.Chunk{
			ID:         uuid.New(),
			DocID:      docID,
			Position:   i,
			Content:    w.Text,
			PageNumber: PageForWord(starts, w.StartIndex),
			StartIndex: w.StartIndex,
			EndIndex:   w.EndIndex,
		}
		if embed {
			c.Embedding = s.vectors.EmbedOrZero(ctx, w.Text)
		}
		chunks = append(chunks, c)
	}
	return chunks, nil
}

func (s *Service) extract(path string) Extraction {
	empty := Extraction{PageCount: 1}
	if s.extractor == nil || path == "" {
		return empty
	}
	data, err := os.ReadFile(path)
	if err != nil {
		s.log.Warn("failed to read PDF", "path", path, "error", err)
		return empty
	}
	ext, err := s.extractor.Extract(bytes.NewReader(data))
	if err != nil {
		s.log.Warn("PDF extraction failed", "path", path, "error", err)
		return empty
	}
	if ext.PageCount < 1 {
		ext.PageCount = 1
	}
	return ext
}
