package api

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"studyrag/loader"
	"studyrag/logger"
	"studyrag/store"
	"studyrag/types"
)

const pdfMime = "application/pdf"

type DocumentHandler struct {
	log       *logger.Logger
	store     store.DocumentStorer
	ingest    *loader.Service
	uploadDir string
	maxBytes  int64
}

func NewDocumentHandler(log *logger.Logger, st store.DocumentStorer, ingest *loader.Service, uploadDir string, maxUploadMB int) *DocumentHandler {
	return &DocumentHandler{
		log:       log,
		store:     st,
		ingest:    ingest,
		uploadDir: uploadDir,
		maxBytes:  int64(maxUploadMB) << 20,
	}
}

type documentSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Pages      int       `json:"pages"`
	Size       int64     `json:"size"`
	UploadedAt time.Time `json:"uploadedAt"`
}

func summarize(d *types.Document) documentSummary {
	return documentSummary{ID: d.ID, Name: d.Name, Pages: d.PageCount, Size: d.FileSize, UploadedAt: d.UploadedAt}
}

func parseID(c *fiber.Ctx, param string) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params(param))
	if err != nil {
		return uuid.Nil, ErrInvalidID()
	}
	return id, nil
}

// HandleUpload stores an uploaded PDF and ingests it.
func (h *DocumentHandler) HandleUpload(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("pdf")
	if err != nil {
		return NewError(fiber.StatusBadRequest, KindValidation, "No file uploaded")
	}
	if fileHeader.Size > h.maxBytes {
		return NewError(fiber.StatusRequestEntityTooLarge, KindValidation, fmt.Sprintf("file exceeds %d MB", h.maxBytes>>20))
	}
	if !isPDF(fileHeader) {
		return NewError(fiber.StatusBadRequest, KindValidation, "Only PDF files are allowed")
	}

	if err := os.MkdirAll(h.uploadDir, 0o755); err != nil {
		return err
	}
	stored := uuid.NewString() + ".pdf"
	path := filepath.Join(h.uploadDir, stored)
	if err := c.SaveFile(fileHeader, path); err != nil {
		return fmt.Errorf("failed to save upload: %w", err)
	}
	h.log.Info("file saved", "name", fileHeader.Filename, "path", path, "size", fileHeader.Size)

	doc, err := h.ingest.Ingest(c.UserContext(), loader.Upload{
		Name:     fileHeader.Filename,
		Filename: stored,
		Path:     path,
		Size:     fileHeader.Size,
		MimeType: pdfMime,
	})
	if err != nil {
		_ = os.Remove(path)
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "PDF uploaded successfully",
		"pdf":     summarize(doc),
	})
}

// isPDF accepts the declared PDF content type, or a .pdf name whose content
// starts with the PDF magic bytes.
func isPDF(fh *multipart.FileHeader) bool {
	if strings.HasPrefix(fh.Header.Get("Content-Type"), pdfMime) {
		return true
	}
	if !strings.EqualFold(filepath.Ext(fh.Filename), ".pdf") {
		return false
	}
	f, err := fh.Open()
	if err != nil {
		return false
	}
	defer f.Close()
	head := make([]byte, 5)
	if _, err := io.ReadFull(f, head); err != nil {
		return false
	}
	return bytes.Equal(head, []byte("%PDF-"))
}

func (h *DocumentHandler) HandleList(c *fiber.Ctx) error {
	docs, err := h.store.ListDocuments(c.UserContext())
	if err != nil {
		return err
	}
	out := make([]documentSummary, len(docs))
	for i := range docs {
		out[i] = summarize(&docs[i])
	}
	return c.JSON(fiber.Map{"pdfs": out})
}

func (h *DocumentHandler) HandleGet(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.store.GetDocumentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"id":          doc.ID,
		"name":        doc.Name,
		"pages":       doc.PageCount,
		"size":        doc.FileSize,
		"uploadedAt":  doc.UploadedAt,
		"textContent": doc.TextContent,
		"chunks":      len(doc.Chunks),
	})
}

// HandleFile streams the stored PDF inline.
func (h *DocumentHandler) HandleFile(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.store.GetDocumentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	f, err := os.Open(doc.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return NewError(fiber.StatusNotFound, KindNotFound, "PDF file not found on server")
	}
	if err != nil {
		return err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}

	c.Set(fiber.HeaderContentType, pdfMime)
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf("inline; filename=%q", doc.Name))
	return c.SendStream(f, int(info.Size()))
}

func (h *DocumentHandler) HandleDelete(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	doc, err := h.store.GetDocumentByID(c.UserContext(), id)
	if err != nil {
		return err
	}
	if err := h.store.DeleteDocument(c.UserContext(), id); err != nil {
		return err
	}
	if doc.FilePath != "" {
		if err := os.Remove(doc.FilePath); err != nil && !errors.Is(err, os.ErrNotExist) {
			h.log.Warn("failed to remove stored file", "path", doc.FilePath, "error", err)
		}
	}
	h.log.Info("document deleted", "id", id)
	return c.JSON(fiber.Map{"message": "PDF deleted successfully"})
}

func (h *DocumentHandler) HandleReindex(c *fiber.Ctx) error {
	id, err := parseID(c, "id")
	if err != nil {
		return err
	}
	n, err := h.ingest.Reindex(c.UserContext(), id)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"message": "PDF reindexed successfully", "chunks": n})
}
