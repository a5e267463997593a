package web2pdf

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Mock implementations for testing.

type mockFetcher struct {
	called bool
	url    string
	width  int
	height int
	output string
	err    error
}

func (m *mockFetcher) Fetch(ctx context.Context, url string, w, h int) (string, error) {
	m.called = true
	m.url = url
	m.width = w
	m.height = h
	if m.err != nil {
		return "", m.err
	}
	if m.output != "" {
		return m.output, nil
	}
	return "<html><head><title>t</title></head><body>content</body></html>", nil
}

type mockRenderer struct {
	calls   []renderSpec
	reports []filterReport
	err     error
	closed  bool
}

func (m *mockRenderer) Render(ctx context.Context, filePath string, spec renderSpec) ([]byte, filterReport, error) {
	idx := len(m.calls)
	m.calls = append(m.calls, spec)
	var rep filterReport
	if idx < len(m.reports) {
		rep = m.reports[idx]
	}
	if m.err != nil {
		return nil, rep, m.err
	}
	return []byte("%PDF-1.4 mock render"), rep, nil
}

func (m *mockRenderer) Close() error {
	m.closed = true
	return nil
}

type mockMerger struct {
	called    bool
	firstPath string
	restPath  string
	outPath   string
	pages     int
	err       error
}

func (m *mockMerger) Merge(firstPath, restPath, outPath string, ws *workspace) (int, error) {
	m.called = true
	m.firstPath = firstPath
	m.restPath = restPath
	m.outPath = outPath
	if m.err != nil {
		return 0, m.err
	}
	// Emulate pdfcpu writing the merged document.
	if m.pages > 0 {
		if err := os.WriteFile(outPath, []byte("%PDF-1.4 merged"), 0o600); err != nil {
			return 0, err
		}
	}
	return m.pages, nil
}

type mockStamper struct {
	called  bool
	inPath  string
	outPath string
	rec     overlayRecord
	err     error
}

func (m *mockStamper) Stamp(inPath, outPath string, rec overlayRecord, ws *workspace) error {
	m.called = true
	m.inPath = inPath
	m.outPath = outPath
	m.rec = rec
	if m.err != nil {
		return m.err
	}
	return os.WriteFile(outPath, []byte("%PDF-1.4 stamped"), 0o600)
}

// Test options for dependency injection (not exported).

func withFetcher(f contentFetcher) Option {
	return func(s *Service) {
		s.fetcher = f
	}
}

func withRenderer(r surfaceRenderer) Option {
	return func(s *Service) {
		s.renderer = r
	}
}

func withMerger(m documentMerger) Option {
	return func(s *Service) {
		s.merger = m
	}
}

func withStamper(st overlayStamper) Option {
	return func(s *Service) {
		s.stamper = st
	}
}

func newTestService(f *mockFetcher, r *mockRenderer, m *mockMerger, st *mockStamper) *Service {
	return New(withFetcher(f), withRenderer(r), withMerger(m), withStamper(st))
}

func TestCapture_Success(t *testing.T) {
	fetcher := &mockFetcher{}
	renderer := &mockRenderer{}
	merger := &mockMerger{pages: 4}
	stamper := &mockStamper{}

	svc := newTestService(fetcher, renderer, merger, stamper)
	defer svc.Close()

	outPath := filepath.Join(t.TempDir(), "out.pdf")
	before := time.Now()
	result, err := svc.Capture(context.Background(), Request{URL: "https://example.com/a"}, outPath)
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}

	if !fetcher.called {
		t.Fatal("fetcher was not called")
	}
	if fetcher.url != "https://example.com/a" {
		t.Errorf("fetcher url = %q", fetcher.url)
	}
	if fetcher.width != DefaultViewportWidth || fetcher.height != DefaultViewportHeight {
		t.Errorf("fetcher viewport = %dx%d, want defaults", fetcher.width, fetcher.height)
	}

	if len(renderer.calls) != 2 {
		t.Fatalf("renderer called %d times, want 2", len(renderer.calls))
	}
	if !renderer.calls[0].ShowHeader {
		t.Error("first render must show the header")
	}
	if renderer.calls[1].ShowHeader {
		t.Error("second render must hide the header")
	}
	if renderer.calls[0].Scale != 1.0 {
		t.Errorf("render scale = %v, want 1.0", renderer.calls[0].Scale)
	}

	if !merger.called {
		t.Fatal("merger was not called")
	}
	if merger.firstPath == merger.restPath {
		t.Error("merger received the same path for both renders")
	}

	if !stamper.called {
		t.Fatal("stamper was not called")
	}
	if stamper.inPath != merger.outPath {
		t.Errorf("stamper input %q != merger output %q", stamper.inPath, merger.outPath)
	}
	if stamper.outPath != outPath {
		t.Errorf("stamper outPath = %q, want %q", stamper.outPath, outPath)
	}
	if stamper.rec.pages != 4 {
		t.Errorf("stamper pages = %d, want 4", stamper.rec.pages)
	}
	if stamper.rec.url != "https://example.com/a" {
		t.Errorf("stamper url = %q", stamper.rec.url)
	}

	if result.OutputPath != outPath {
		t.Errorf("result.OutputPath = %q, want %q", result.OutputPath, outPath)
	}
	if result.Pages != 4 {
		t.Errorf("result.Pages = %d, want 4", result.Pages)
	}
	// The stamped timestamp and the reported one must be the same sample.
	if !result.FetchedAt.Equal(stamper.rec.fetchedAt) {
		t.Error("result and overlay disagree on the fetch timestamp")
	}
	if result.FetchedAt.Before(before) {
		t.Error("fetch timestamp predates the capture")
	}
}

func TestCapture_ScaledViewport(t *testing.T) {
	fetcher := &mockFetcher{}
	renderer := &mockRenderer{}
	svc := newTestService(fetcher, renderer, &mockMerger{pages: 1}, &mockStamper{})
	defer svc.Close()

	req := Request{URL: "https://example.com", ScalePercent: 10}
	_, err := svc.Capture(context.Background(), req, filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}

	if fetcher.width != 128 || fetcher.height != 80 {
		t.Errorf("fetch viewport = %dx%d, want 128x80", fetcher.width, fetcher.height)
	}
	if renderer.calls[0].ViewportWidth != 128 || renderer.calls[0].ViewportHeight != 80 {
		t.Errorf("render viewport = %dx%d, want 128x80",
			renderer.calls[0].ViewportWidth, renderer.calls[0].ViewportHeight)
	}
	if renderer.calls[0].Scale != 0.1 {
		t.Errorf("render scale = %v, want 0.1", renderer.calls[0].Scale)
	}
}

func TestCapture_ValidationError(t *testing.T) {
	svc := newTestService(&mockFetcher{}, &mockRenderer{}, &mockMerger{}, &mockStamper{})
	defer svc.Close()

	_, err := svc.Capture(context.Background(), Request{URL: "https://example.com", ScalePercent: 5}, "out.pdf")
	if !errors.Is(err, ErrInvalidScale) {
		t.Errorf("Capture() error = %v, want ErrInvalidScale", err)
	}
}

func TestCapture_FetchError(t *testing.T) {
	fetchErr := errors.New("dns exploded")
	renderer := &mockRenderer{}
	svc := newTestService(&mockFetcher{err: fetchErr}, renderer, &mockMerger{}, &mockStamper{})
	defer svc.Close()

	_, err := svc.Capture(context.Background(), Request{URL: "https://example.com"}, "out.pdf")
	if !errors.Is(err, fetchErr) {
		t.Errorf("Capture() error = %v, want wrapped %v", err, fetchErr)
	}
	if len(renderer.calls) != 0 {
		t.Error("renderer must not run after a failed fetch")
	}
}

func TestCapture_RenderError(t *testing.T) {
	renderErr := errors.New("chrome crashed")
	merger := &mockMerger{}
	svc := newTestService(&mockFetcher{}, &mockRenderer{err: renderErr}, merger, &mockStamper{})
	defer svc.Close()

	_, err := svc.Capture(context.Background(), Request{URL: "https://example.com"}, "out.pdf")
	if !errors.Is(err, renderErr) {
		t.Errorf("Capture() error = %v, want wrapped %v", err, renderErr)
	}
	if merger.called {
		t.Error("merger must not run after a failed render")
	}
}

func TestCapture_StampError(t *testing.T) {
	stampErr := fmt.Errorf("%w: disk full", ErrOutput)
	svc := newTestService(&mockFetcher{}, &mockRenderer{}, &mockMerger{pages: 2}, &mockStamper{err: stampErr})
	defer svc.Close()

	_, err := svc.Capture(context.Background(), Request{URL: "https://example.com"}, filepath.Join(t.TempDir(), "out.pdf"))
	if !errors.Is(err, ErrOutput) {
		t.Errorf("Capture() error = %v, want wrapped ErrOutput", err)
	}
}

func TestCapture_ZeroPages(t *testing.T) {
	stamper := &mockStamper{}
	svc := newTestService(&mockFetcher{}, &mockRenderer{}, &mockMerger{pages: 0}, stamper)
	defer svc.Close()

	outPath := filepath.Join(t.TempDir(), "out.pdf")
	result, err := svc.Capture(context.Background(), Request{URL: "https://example.com"}, outPath)
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}

	if stamper.called {
		t.Error("stamper must not run for a zero-page document")
	}
	if result.Pages != 0 || result.OutputPath != "" {
		t.Errorf("result = %+v, want zero pages and no output", result)
	}
	if _, err := os.Stat(outPath); !os.IsNotExist(err) {
		t.Error("output file written for a zero-page document")
	}
	if len(result.Warnings) == 0 {
		t.Error("zero-page capture should carry a warning")
	}
}

func TestCapture_FilterWarnings(t *testing.T) {
	renderer := &mockRenderer{reports: []filterReport{
		{AdsRemoved: 2, Warnings: []string{"popup removal: boom"}},
		{AdsRemoved: 2},
	}}
	svc := newTestService(&mockFetcher{}, renderer, &mockMerger{pages: 1}, &mockStamper{})
	defer svc.Close()

	result, err := svc.Capture(context.Background(), Request{URL: "https://example.com"}, filepath.Join(t.TempDir(), "out.pdf"))
	if err != nil {
		t.Fatalf("Capture() unexpected error: %v", err)
	}

	if len(result.Warnings) != 1 {
		t.Fatalf("warnings = %v, want 1", result.Warnings)
	}
	if result.Warnings[0].Phase != "filter" || result.Warnings[0].Detail != "popup removal: boom" {
		t.Errorf("warning = %+v", result.Warnings[0])
	}
}

func TestServiceClose(t *testing.T) {
	renderer := &mockRenderer{}
	svc := newTestService(&mockFetcher{}, renderer, &mockMerger{}, &mockStamper{})

	if err := svc.Close(); err != nil {
		t.Fatalf("Close() unexpected error: %v", err)
	}
	if !renderer.closed {
		t.Error("Close() did not reach the renderer")
	}
}
