package loader

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/google/uuid"

	"studyrag/logger"
)

// Importer feeds every PDF in a directory through the upload pipeline.
type Importer struct {
	log       *logger.Logger
	service   *Service
	uploadDir string
}

func NewImporter(log *logger.Logger, service *Service, uploadDir string) *Importer {
	return &Importer{log: log, service: service, uploadDir: uploadDir}
}

// ImportResult counts the files handled by one run.
type ImportResult struct {
	Imported int
	Failed   int
}

// Run ingests every *.pdf in dir. A failing file is logged and skipped.
func (im *Importer) Run(ctx context.Context, dir string) (ImportResult, error) {
	var res ImportResult

	entries, err := os.ReadDir(dir)
	if err != nil {
		return res, fmt.Errorf("error while reading source directory: %w", err)
	}
	if err := os.MkdirAll(im.uploadDir, 0o755); err != nil {
		return res, fmt.Errorf("failed to create upload directory: %w", err)
	}

	fileChan := make(chan string, 10)
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(fileChan)
		for _, e := range entries {
			if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".pdf") {
				continue
			}
			select {
			case fileChan <- filepath.Join(dir, e.Name()):
			case <-ctx.Done():
				return
			}
		}
	}()

	for path := range fileChan {
		if err := im.importFile(ctx, path); err != nil {
			im.log.Error("import failed", "file", path, "error", err)
			res.Failed++
			continue
		}
		res.Imported++
	}
	wg.Wait()

	im.log.Info("import finished", "dir", dir, "imported", res.Imported, "failed", res.Failed)
	return res, ctx.Err()
}

func (im *Importer) importFile(ctx context.Context, src string) error {
	filename := uuid.NewString() + ".pdf"
	dst := filepath.Join(im.uploadDir, filename)

	size, err := copyFile(src, dst)
	if err != nil {
		return err
	}
	if _, err := im.service.Ingest(ctx, Upload{
		Name:     filepath.Base(src),
		Filename: filename,
		Path:     dst,
		Size:     size,
	}); err != nil {
		os.Remove(dst)
		return err
	}
	return nil
}

func copyFile(src, dst string) (int64, error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(out, in)
	if cerr := out.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(dst)
		return 0, fmt.Errorf("failed to copy %s: %w", src, err)
	}
	return n, nil
}
