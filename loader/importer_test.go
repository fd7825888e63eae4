package loader

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyrag/logger"
	"studyrag/store"
)

func TestImporterIngestsPDFsOnly(t *testing.T) {
	src := t.TempDir()
	uploads := filepath.Join(t.TempDir(), "uploads")
	for _, name := range []string{"a.pdf", "B.PDF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(src, name), []byte("%PDF-1.4"), 0o644))
	}
	require.NoError(t, os.Mkdir(filepath.Join(src, "nested.pdf"), 0o755))

	st := store.NewMemoryStore()
	ext := stubExtractor{ext: Extraction{PageCount: 1, Pages: []string{"one two three"}}}
	im := NewImporter(logger.Nop(), NewService(logger.Nop(), st, ext, nil, 3, 1), uploads)

	res, err := im.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Imported: 2}, res)

	docs, err := st.ListDocuments(context.Background())
	require.NoError(t, err)
	require.Len(t, docs, 2)
	for _, d := range docs {
		assert.FileExists(t, d.FilePath)
		assert.Equal(t, uploads, filepath.Dir(d.FilePath))
		assert.EqualValues(t, 8, d.FileSize)
	}
}

func TestImporterCountsFailures(t *testing.T) {
	src := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(src, "a.pdf"), []byte("%PDF-1.4"), 0o644))

	uploads := t.TempDir()
	// an invalid window makes every ingest fail
	im := NewImporter(logger.Nop(), NewService(logger.Nop(), store.NewMemoryStore(), nil, nil, 2, 2), uploads)

	res, err := im.Run(context.Background(), src)
	require.NoError(t, err)
	assert.Equal(t, ImportResult{Failed: 1}, res)

	left, err := os.ReadDir(uploads)
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestImporterMissingDir(t *testing.T) {
	im := NewImporter(logger.Nop(), NewService(logger.Nop(), store.NewMemoryStore(), nil, nil, 3, 1), t.TempDir())
	_, err := im.Run(context.Background(), filepath.Join(t.TempDir(), "missing"))
	assert.Error(t, err)
}
