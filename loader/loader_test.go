package loader

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/logger"
	"studyrag/store"
)

type stubExtractor struct {
	ext Extraction
	err error
}

func (s stubExtractor) Extract(io.ReadSeeker) (Extraction, error) {
	return s.ext, s.err
}

type stubVectors struct {
	configured bool
	calls      int
}

func (s *stubVectors) Configured() bool { return s.configured }

func (s *stubVectors) EmbedOrZero(_ context.Context, text string) []float32 {
	s.calls++
	return []float32{float32(len(text)), 1}
}

func writeFile(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o644))
	return path
}

func TestIngestBuildsChunksWithPages(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	vec := &stubVectors{configured: true}
	ext := stubExtractor{ext: Extraction{PageCount: 2, Pages: []string{"one two three", "four five"}}}
	svc := NewService(logger.Nop(), st, ext, vec, 3, 1)

	doc, err := svc.Ingest(ctx, Upload{Name: "notes.pdf", Filename: "x.pdf", Path: writeFile(t), Size: 13})
	require.NoError(t, err)
	assert.Equal(t, 2, doc.PageCount)
	assert.Equal(t, "one two three\nfour five", doc.TextContent)
	assert.Equal(t, "application/pdf", doc.MimeType)

	stored, err := st.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Chunks, 2)
	assert.Equal(t, "one two three", stored.Chunks[0].Content)
	assert.Equal(t, 1, stored.Chunks[0].PageNumber)
	assert.Equal(t, "three four five", stored.Chunks[1].Content)
	assert.Equal(t, 1, stored.Chunks[1].PageNumber)
	assert.Equal(t, 2, vec.calls)
	assert.True(t, stored.Chunks[0].HasEmbedding())
}

func TestIngestWithoutEmbeddings(t *testing.T) {
	st := store.NewMemoryStore()
	vec := &stubVectors{}
	ext := stubExtractor{ext: Extraction{PageCount: 1, Pages: []string{"a b c d"}}}
	svc := NewService(logger.Nop(), st, ext, vec, 2, 0)

	doc, err := svc.Ingest(context.Background(), Upload{Name: "n.pdf", Path: writeFile(t)})
	require.NoError(t, err)
	require.Len(t, doc.Chunks, 2)
	assert.False(t, doc.Chunks[0].HasEmbedding())
	assert.Zero(t, vec.calls)
}

func TestIngestExtractionFailureIsNotFatal(t *testing.T) {
	st := store.NewMemoryStore()
	svc := NewService(logger.Nop(), st, stubExtractor{err: errors.New("broken xref")}, nil, 3, 1)

	doc, err := svc.Ingest(context.Background(), Upload{Name: "bad.pdf", Path: writeFile(t)})
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount)
	assert.Empty(t, doc.TextContent)
	assert.Empty(t, doc.Chunks)
}

func TestReindexFallsBackToStoredText(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	okExt := stubExtractor{ext: Extraction{PageCount: 1, Pages: []string{"alpha beta gamma delta"}}}
	doc, err := NewService(logger.Nop(), st, okExt, nil, 4, 1).Ingest(ctx, Upload{Name: "a.pdf", Path: writeFile(t)})
	require.NoError(t, err)
	require.Len(t, doc.Chunks, 1)

	vec := &stubVectors{configured: true}
	svc := NewService(logger.Nop(), st, stubExtractor{err: errors.New("gone")}, vec, 2, 1)
	n, err := svc.Reindex(ctx, doc.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	stored, err := st.GetDocumentByID(ctx, doc.ID)
	require.NoError(t, err)
	require.Len(t, stored.Chunks, 3)
	assert.Equal(t, "alpha beta", stored.Chunks[0].Content)
	assert.True(t, stored.Chunks[2].HasEmbedding())
}

func TestBuildChunksRejectsBadWindow(t *testing.T) {
	svc := NewService(logger.Nop(), store.NewMemoryStore(), nil, nil, 2, 2)
	_, err := svc.BuildChunks(context.Background(), uuid.New(), Extraction{Pages: []string{"a b c"}})
	assert.ErrorIs(t, err, ErrInvalidWindow)
}
