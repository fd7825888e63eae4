package loader

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Extraction is the text of a PDF split by page.
type Extraction struct {
	PageCount int
	Pages     []string
}

func (e Extraction) Text() string {
	return strings.Join(e.Pages, "\n")
}

// Extractor turns PDF bytes into text.
type Extractor interface {
	Extract(r io.ReadSeeker) (Extraction, error)
}

// PDFExtractor validates and counts pages with pdfcpu and reads page text with
// ledongthuc/pdf, which resolves font encodings and ToUnicode maps.
type PDFExtractor struct {
	conf *model.Configuration
}

func NewPDFExtractor() *PDFExtractor {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return &PDFExtractor{conf: conf}
}

// PageCount reads only the page count.
func (x *PDFExtractor) PageCount(r io.ReadSeeker) (int, error) {
	return api.PageCount(r, x.conf)
}

// Extract returns the text of every page. Pages whose text cannot be decoded
// are left empty.
func (x *PDFExtractor) Extract(r io.ReadSeeker) (Extraction, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read PDF: %w", err)
	}

	n, err := api.PageCount(bytes.NewReader(data), x.conf)
	if err != nil {
		return Extraction{}, fmt.Errorf("failed to read PDF: %w", err)
	}

	pages, err := PageTexts(data)
	if err != nil {
		return Extraction{}, err
	}

	out := Extraction{PageCount: n, Pages: make([]string, n)}
	copy(out.Pages, pages)
	return out, nil
}

// PageTexts returns the plain text of each page in order.
func PageTexts(data []byte) (pages []string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader: %v", r)
		}
	}()

	rd, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("pdf reader: %w", err)
	}

	pages = make([]string, rd.NumPage())
	for i := range pages {
		p := rd.Page(i + 1)
		if p.V.IsNull() {
			continue
		}
		text, err := p.GetPlainText(nil)
		if err != nil {
			continue
		}
		pages[i] = strings.TrimSpace(text)
	}
	return pages, nil
}
