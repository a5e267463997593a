package web2pdf

import (
	"context"
	"fmt"
	"os"
	"time"
)

// documentMerger composes the final page sequence from the two rendered
// documents.
type documentMerger interface {
	Merge(firstPath, restPath, outPath string, ws *workspace) (int, error)
}

// overlayStamper burns the metadata header and footer into every page.
type overlayStamper interface {
	Stamp(inPath, outPath string, rec overlayRecord, ws *workspace) error
}

// Compile-time interface checks
var (
	_ documentMerger = (*pdfcpuMerger)(nil)
	_ overlayStamper = (*pdfcpuStamper)(nil)
)

// Service orchestrates the capture pipeline: fetch, dual render, merge,
// overlay.
type Service struct {
	cfg      serviceConfig
	fetcher  contentFetcher
	renderer surfaceRenderer
	merger   documentMerger
	stamper  overlayStamper
}

// New creates a Service with default configuration.
// Use options to customize behavior (e.g., WithNavTimeout).
func New(opts ...Option) *Service {
	s := &Service{
		cfg: serviceConfig{
			navTimeout:  defaultNavTimeout,
			settleDelay: defaultSettleDelay,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	// Create backends if not injected (e.g., by tests)
	if s.fetcher == nil || s.renderer == nil {
		b := newRodBrowser(s.cfg)
		if s.fetcher == nil {
			s.fetcher = b
		}
		if s.renderer == nil {
			s.renderer = b
		}
	}
	if s.merger == nil {
		s.merger = newPdfcpuMerger()
	}
	if s.stamper == nil {
		s.stamper = newPdfcpuStamper()
	}

	return s
}

// Capture fetches the URL, renders it twice, merges the page sequence
// and stamps the metadata overlay, writing the final PDF to outPath.
// The context is used for cancellation and timeout.
func (s *Service) Capture(ctx context.Context, req Request, outPath string) (Result, error) {
	req = req.withDefaults()
	if err := req.Validate(); err != nil {
		return Result{}, err
	}

	ws, err := newWorkspace()
	if err != nil {
		return Result{}, err
	}
	defer func() {
		if cerr := ws.Cleanup(); cerr != nil {
			s.cfg.logger.Warn().Err(cerr).Msg("workspace cleanup incomplete")
		}
	}()

	// One timestamp for the whole document: every page's header shows the
	// same fetch time regardless of how long rendering takes.
	fetchedAt := time.Now()

	vw, vh := req.scaledViewport()
	raw, err := s.fetcher.Fetch(ctx, req.URL, vw, vh)
	if err != nil {
		return Result{}, fmt.Errorf("fetching %s: %w", req.URL, err)
	}

	snap, err := buildSnapshot(raw, req.URL)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	snapPath := ws.Path("snapshot", "html")
	if err := os.WriteFile(snapPath, []byte("<!DOCTYPE html>\n"+snap.HTML), 0o600); err != nil {
		return Result{}, fmt.Errorf("%w: writing snapshot: %v", ErrWorkspace, err)
	}
	if stats, err := snap.stats(); err == nil {
		s.cfg.logger.Debug().
			Int("images", stats.Images).
			Int("iframes", stats.Iframes).
			Msg("snapshot captured")
	}

	result := Result{FetchedAt: fetchedAt}

	spec := renderSpec{
		ViewportWidth:  vw,
		ViewportHeight: vh,
		Scale:          req.renderScale(),
		ShowHeader:     true,
	}
	firstPath, err := s.renderSurface(ctx, ws, "first", snapPath, spec, &result)
	if err != nil {
		return Result{}, err
	}
	spec.ShowHeader = false
	restPath, err := s.renderSurface(ctx, ws, "rest", snapPath, spec, &result)
	if err != nil {
		return Result{}, err
	}

	mergedPath := ws.Path("merged", "pdf")
	// Backends wrap their own sentinels; keep them visible to errors.Is.
	pages, err := s.merger.Merge(firstPath, restPath, mergedPath, ws)
	if err != nil {
		return Result{}, fmt.Errorf("merging renders: %w", err)
	}
	result.Pages = pages
	if pages == 0 {
		result.Warnings = append(result.Warnings, Warning{
			Phase:  "merge",
			Detail: "rendered document has no pages, no output written",
		})
		return result, nil
	}

	rec := overlayRecord{url: req.URL, fetchedAt: fetchedAt, pages: pages}
	if err := s.stamper.Stamp(mergedPath, outPath, rec, ws); err != nil {
		return Result{}, fmt.Errorf("stamping document: %w", err)
	}
	result.OutputPath = outPath

	s.cfg.logger.Info().
		Str("url", req.URL).
		Str("output", outPath).
		Int("pages", pages).
		Msg("capture complete")
	return result, nil
}

// renderSurface renders one surface of the snapshot to a workspace file
// and folds its filter report into the result warnings.
func (s *Service) renderSurface(ctx context.Context, ws *workspace, label, snapPath string, spec renderSpec, result *Result) (string, error) {
	buf, report, err := s.renderer.Render(ctx, snapPath, spec)
	for _, w := range report.Warnings {
		result.Warnings = append(result.Warnings, Warning{Phase: "filter", Detail: w})
	}
	if err != nil {
		return "", fmt.Errorf("rendering %s surface: %w", label, err)
	}

	s.cfg.logger.Debug().
		Str("surface", label).
		Int("ads", report.AdsRemoved).
		Int("popups", report.PopupsRemoved).
		Int("images", report.ImagesDownscaled).
		Int("headers", report.HeadersTagged).
		Msg("surface rendered")

	path := ws.Path(label, "pdf")
	if err := os.WriteFile(path, buf, 0o600); err != nil {
		return "", fmt.Errorf("%w: writing %s surface: %v", ErrWorkspace, label, err)
	}
	return path, nil
}

// Close releases resources (headless Chrome browser).
func (s *Service) Close() error {
	if s.renderer != nil {
		return s.renderer.Close()
	}
	return nil
}
