package loader

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildPDF lays out objects 1..n with a valid cross-reference table. Object 1
// must be the catalog.
func buildPDF(objects ...string) []byte {
	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")
	offsets := make([]int, len(objects))
	for i, obj := range objects {
		offsets[i] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n%s\nendobj\n", i+1, obj)
	}
	xref := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n0000000000 65535 f \n", len(objects)+1)
	for _, off := range offsets {
		fmt.Fprintf(&buf, "%010d 00000 n \n", off)
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n", len(objects)+1, xref)
	return buf.Bytes()
}

func stream(content string) string {
	return fmt.Sprintf("<< /Length %d >>\nstream\n%s\nendstream", len(content), content)
}

func twoPagePDF() []byte {
	page := "<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents %d 0 R >>"
	return buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R 5 0 R] /Count 2 >>",
		fmt.Sprintf(page, 6),
		"<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>",
		fmt.Sprintf(page, 7),
		stream("BT /F1 12 Tf 72 712 Td (Hello World) Tj ET"),
		stream("BT /F1 12 Tf 72 712 Td (Second page) Tj ET"),
	)
}

const identityCMap = `/CIDInit /ProcSet findresource begin
12 dict begin
begincmap
/CIDSystemInfo << /Registry (Adobe) /Ordering (UCS) /Supplement 0 >> def
/CMapName /Adobe-Identity-UCS def
/CMapType 2 def
1 begincodespacerange
<0000> <FFFF>
endcodespacerange
3 beginbfchar
<0001> <0043>
<0002> <0065>
<0003> <006C>
endbfchar
endcmap
CMapName currentdict /CMap defineresource pop
end
end`

// identityPDF shows glyph ids through a Type0 Identity-H font, as Word and
// LaTeX exports with subset fonts do.
func identityPDF() []byte {
	return buildPDF(
		"<< /Type /Catalog /Pages 2 0 R >>",
		"<< /Type /Pages /Kids [3 0 R] /Count 1 >>",
		"<< /Type /Page /Parent 2 0 R /MediaBox [0 0 612 792] /Resources << /Font << /F1 4 0 R >> >> /Contents 8 0 R >>",
		"<< /Type /Font /Subtype /Type0 /BaseFont /ABCDEF+Calibri /Encoding /Identity-H /DescendantFonts [5 0 R] /ToUnicode 7 0 R >>",
		"<< /Type /Font /Subtype /CIDFontType2 /BaseFont /ABCDEF+Calibri /CIDSystemInfo << /Registry (Adobe) /Ordering (Identity) /Supplement 0 >> /FontDescriptor 6 0 R /DW 1000 >>",
		"<< /Type /FontDescriptor /FontName /ABCDEF+Calibri /Flags 32 /FontBBox [0 0 1000 1000] /ItalicAngle 0 /Ascent 750 /Descent -250 /CapHeight 700 /StemV 80 >>",
		stream(identityCMap),
		stream("BT /F1 12 Tf 72 712 Td <0001000200030003> Tj ET"),
	)
}

func TestPDFExtractorReadsPages(t *testing.T) {
	ext, err := NewPDFExtractor().Extract(bytes.NewReader(twoPagePDF()))
	require.NoError(t, err)
	assert.Equal(t, 2, ext.PageCount)
	require.Len(t, ext.Pages, 2)
	assert.Contains(t, ext.Pages[0], "Hello World")
	assert.Contains(t, ext.Pages[1], "Second page")
}

func TestPageTextsResolvesToUnicode(t *testing.T) {
	pages, err := PageTexts(identityPDF())
	require.NoError(t, err)
	require.Len(t, pages, 1)
	assert.Contains(t, pages[0], "Cell")
	assert.NotContains(t, pages[0], "\x00")
}

func TestPDFExtractorRejectsGarbage(t *testing.T) {
	_, err := NewPDFExtractor().Extract(bytes.NewReader([]byte("not a pdf")))
	assert.Error(t, err)

	_, err = PageTexts([]byte("%PDF-1.4\nbroken"))
	assert.Error(t, err)
}
