package stamp

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func testRecord(pages int) Record {
	return Record{
		URL:       "https://example.com/some/article",
		FetchedAt: "2026-08-28 15:30:45",
		PageCount: pages,
	}
}

func TestRecordLines(t *testing.T) {
	rec := testRecord(3)

	if got := rec.HeaderURLLine(); got != "URL: https://example.com/some/article" {
		t.Errorf("HeaderURLLine() = %q", got)
	}
	if got := rec.HeaderFetchedLine(); got != "Fetched: 2026-08-28 15:30:45" {
		t.Errorf("HeaderFetchedLine() = %q", got)
	}
	if got := rec.FooterLine(2); got != "Page 2 of 3" {
		t.Errorf("FooterLine(2) = %q", got)
	}
}

func TestBuildRejectsZeroPages(t *testing.T) {
	if _, err := Build(testRecord(0)); !errors.Is(err, ErrNoPages) {
		t.Errorf("Build() error = %v, want ErrNoPages", err)
	}
	if _, err := Build(testRecord(-1)); !errors.Is(err, ErrNoPages) {
		t.Errorf("Build() error = %v, want ErrNoPages", err)
	}
}

func TestBuildStructure(t *testing.T) {
	pdf, err := Build(testRecord(3))
	if err != nil {
		t.Fatalf("Build() unexpected error: %v", err)
	}

	if !bytes.HasPrefix(pdf, []byte("%PDF-1.4")) {
		t.Error("output does not start with a PDF header")
	}
	if !bytes.HasSuffix(pdf, []byte("%%EOF\n")) {
		t.Error("output is missing the EOF marker")
	}

	text := string(pdf)
	// Identical header on every page, distinct footer per page.
	if got := strings.Count(text, "(URL: https://example.com/some/article)"); got != 3 {
		t.Errorf("URL line appears %d times, want 3", got)
	}
	if got := strings.Count(text, "(Fetched: 2026-08-28 15:30:45)"); got != 3 {
		t.Errorf("Fetched line appears %d times, want 3", got)
	}
	for _, footer := range []string{"(Page 1 of 3)", "(Page 2 of 3)", "(Page 3 of 3)"} {
		if !strings.Contains(text, footer) {
			t.Errorf("output missing footer %s", footer)
		}
	}
	if !strings.Contains(text, "/Count 3") {
		t.Error("page tree count is not 3")
	}
	if !strings.Contains(text, "/BaseFont /Helvetica") {
		t.Error("output does not declare Helvetica")
	}
}

// The overlay must survive a real PDF processor, not just look plausible.
func TestBuildParsesWithPdfcpu(t *testing.T) {
	for _, pages := range []int{1, 2, 5} {
		pdf, err := Build(testRecord(pages))
		if err != nil {
			t.Fatalf("Build(%d pages) unexpected error: %v", pages, err)
		}

		path := filepath.Join(t.TempDir(), "stamp.pdf")
		if err := os.WriteFile(path, pdf, 0o644); err != nil {
			t.Fatalf("writing stamp file: %v", err)
		}

		got, err := api.PageCountFile(path)
		if err != nil {
			t.Fatalf("pdfcpu rejected %d-page stamp: %v", pages, err)
		}
		if got != pages {
			t.Errorf("PageCountFile() = %d, want %d", got, pages)
		}
	}
}

func TestEscapeText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`plain`, `plain`},
		{`a(b)c`, `a\(b\)c`},
		{`back\slash`, `back\\slash`},
	}

	for _, tt := range tests {
		if got := escapeText(tt.in); got != tt.want {
			t.Errorf("escapeText(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestTruncateLine(t *testing.T) {
	short := "URL: https://example.com"
	if got := truncateLine(short); got != short {
		t.Errorf("short line was modified: %q", got)
	}

	long := "URL: https://example.com/" + strings.Repeat("x", 200)
	got := truncateLine(long)
	if len(got) != maxURLDrawLen {
		t.Errorf("truncated length = %d, want %d", len(got), maxURLDrawLen)
	}
	if !strings.HasSuffix(got, "...") {
		t.Errorf("truncated line missing ellipsis: %q", got)
	}
}
