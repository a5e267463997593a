// Package stamp builds the overlay document for a capture: one Letter-sized
// page per content page, each carrying the source URL, the fetch timestamp,
// a separator rule, and a page number. The output is a minimal uncompressed
// PDF meant to be fused page-by-page onto rendered content by pdfcpu.
package stamp

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
)

// Letter page geometry in PDF points (1 inch = 72 points).
const (
	pageWidth  = 612
	pageHeight = 792
)

// Stamp layout, matching the capture header/footer contract: URL half an
// inch below the top edge, timestamp just under it, a thin rule separating
// both from the content area, and the page number an inch from the right
// edge near the bottom margin.
const (
	fontSize     = 8
	leftX        = 36  // 0.5in
	urlY         = 756 // pageHeight - 0.5in
	fetchedY     = 745.2
	ruleY        = 741.6
	ruleRightX   = 576 // pageWidth - 0.5in
	ruleWidth    = 0.5
	footerX      = 540 // pageWidth - 1.0in
	footerY      = 36  // 0.5in
	maxURLDrawLen = 110 // keep the header line inside the page
)

// ErrNoPages is returned when a stamp document for zero pages is requested.
var ErrNoPages = errors.New("stamp: page count must be positive")

// Record is the per-invocation metadata stamped onto every page.
type Record struct {
	URL       string
	FetchedAt string // already formatted wall-clock text
	PageCount int
}

// HeaderURLLine returns the exact first header line for the record.
func (r Record) HeaderURLLine() string {
	return "URL: " + r.URL
}

// HeaderFetchedLine returns the exact second header line for the record.
func (r Record) HeaderFetchedLine() string {
	return "Fetched: " + r.FetchedAt
}

// FooterLine returns the exact footer text for 1-based page i.
func (r Record) FooterLine(i int) string {
	return fmt.Sprintf("Page %d of %d", i, r.PageCount)
}

// Build renders the overlay document: Record.PageCount pages, page i
// carrying the record's header lines and "Page i of N" footer.
func Build(rec Record) ([]byte, error) {
	if rec.PageCount < 1 {
		return nil, ErrNoPages
	}

	var buf bytes.Buffer
	buf.WriteString("%PDF-1.4\n")

	// Object layout: 1 catalog, 2 page tree, 3 font, then one page object
	// and one content stream per page.
	totalObjs := 3 + 2*rec.PageCount
	offsets := make([]int, totalObjs+1)

	offsets[1] = buf.Len()
	buf.WriteString("1 0 obj\n<< /Type /Catalog /Pages 2 0 R >>\nendobj\n")

	var kids []string
	for i := 1; i <= rec.PageCount; i++ {
		kids = append(kids, fmt.Sprintf("%d 0 R", pageObjNum(i)))
	}
	offsets[2] = buf.Len()
	fmt.Fprintf(&buf, "2 0 obj\n<< /Type /Pages /Kids [%s] /Count %d >>\nendobj\n",
		strings.Join(kids, " "), rec.PageCount)

	offsets[3] = buf.Len()
	buf.WriteString("3 0 obj\n<< /Type /Font /Subtype /Type1 /BaseFont /Helvetica >>\nendobj\n")

	for i := 1; i <= rec.PageCount; i++ {
		page := pageObjNum(i)
		content := page + 1

		offsets[page] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Type /Page /Parent 2 0 R /MediaBox [0 0 %d %d] "+
			"/Contents %d 0 R /Resources << /Font << /F1 3 0 R >> >> >>\nendobj\n",
			page, pageWidth, pageHeight, content)

		stream := contentStream(rec, i)
		offsets[content] = buf.Len()
		fmt.Fprintf(&buf, "%d 0 obj\n<< /Length %d >>\nstream\n%s\nendstream\nendobj\n",
			content, len(stream), stream)
	}

	xrefOffset := buf.Len()
	fmt.Fprintf(&buf, "xref\n0 %d\n", totalObjs+1)
	buf.WriteString("0000000000 65535 f \n")
	for i := 1; i <= totalObjs; i++ {
		fmt.Fprintf(&buf, "%010d 00000 n \n", offsets[i])
	}
	fmt.Fprintf(&buf, "trailer\n<< /Size %d /Root 1 0 R >>\nstartxref\n%d\n%%%%EOF\n",
		totalObjs+1, xrefOffset)

	return buf.Bytes(), nil
}

// pageObjNum returns the object number of 1-based page i.
func pageObjNum(i int) int {
	return 4 + 2*(i-1)
}

// contentStream draws one stamp page: separator rule, the two header text
// lines, and the footer page number.
func contentStream(rec Record, page int) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%.1f w\n%d %.1f m %d %.1f l S\n",
		ruleWidth, leftX, ruleY, ruleRightX, ruleY)

	writeText(&sb, leftX, urlY, truncateLine(rec.HeaderURLLine()))
	writeText(&sb, leftX, fetchedY, rec.HeaderFetchedLine())
	writeText(&sb, footerX, footerY, rec.FooterLine(page))

	return strings.TrimSuffix(sb.String(), "\n")
}

// writeText emits a single text-showing block at (x, y).
func writeText(sb *strings.Builder, x, y float64, text string) {
	fmt.Fprintf(sb, "BT /F1 %d Tf %.1f %.1f Td (%s) Tj ET\n",
		fontSize, x, y, escapeText(text))
}

// escapeText escapes the characters with special meaning inside a PDF
// string literal.
func escapeText(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, "(", `\(`)
	s = strings.ReplaceAll(s, ")", `\)`)
	return s
}

// truncateLine keeps very long URLs from running off the right page edge.
func truncateLine(s string) string {
	if len(s) <= maxURLDrawLen {
		return s
	}
	return s[:maxURLDrawLen-3] + "..."
}
