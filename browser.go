package web2pdf

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/go-rod/stealth"
	"github.com/rs/zerolog"
)

// contentFetcher loads a live URL and returns its serialised DOM.
type contentFetcher interface {
	Fetch(ctx context.Context, url string, viewportWidth, viewportHeight int) (string, error)
}

// surfaceRenderer renders a local HTML file to PDF bytes after running
// the content filter on it.
type surfaceRenderer interface {
	Render(ctx context.Context, filePath string, spec renderSpec) ([]byte, filterReport, error)
	Close() error
}

// Compile-time interface checks
var (
	_ contentFetcher  = (*rodBrowser)(nil)
	_ surfaceRenderer = (*rodBrowser)(nil)
)

// renderSpec parameterises one render surface.
type renderSpec struct {
	ViewportWidth  int
	ViewportHeight int
	Scale          float64
	ShowHeader     bool
}

// requestIdleSpan is the no-traffic window that counts as network idle
// after the load event.
const requestIdleSpan = 500 * time.Millisecond

// rodBrowser drives headless Chrome via go-rod for both the live fetch
// and the file-backed render surfaces.
// Rod automatically downloads Chromium on first run if not found.
type rodBrowser struct {
	browser     *rod.Browser
	bin         string
	navTimeout  time.Duration
	settleDelay time.Duration
	log         zerolog.Logger
}

func newRodBrowser(cfg serviceConfig) *rodBrowser {
	return &rodBrowser{
		bin:         cfg.browserBin,
		navTimeout:  cfg.navTimeout,
		settleDelay: cfg.settleDelay,
		log:         cfg.logger,
	}
}

// ensureBrowser lazily launches and connects to the browser.
func (b *rodBrowser) ensureBrowser() error {
	if b.browser != nil {
		return nil
	}

	l := launcher.New()
	if b.bin != "" {
		l = l.Bin(b.bin)
	}

	// NoSandbox required for CI and containerized environments
	if os.Getenv("CI") == "true" || b.bin != "" {
		l = l.NoSandbox(true)
	}
	u, err := l.Launch()
	if err != nil {
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}

	b.browser = rod.New().ControlURL(u)
	if err := b.browser.Connect(); err != nil {
		b.browser = nil
		return fmt.Errorf("%w: %v", ErrBrowserConnect, err)
	}
	return nil
}

// Close releases browser resources.
func (b *rodBrowser) Close() error {
	if b.browser != nil {
		err := b.browser.Close()
		b.browser = nil
		return err
	}
	return nil
}

// Fetch loads the URL in a stealth page and returns the fully loaded DOM.
// The markup is captured once; both render surfaces work from this copy so
// a dynamic page cannot diverge between them.
func (b *rodBrowser) Fetch(ctx context.Context, url string, viewportWidth, viewportHeight int) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := b.ensureBrowser(); err != nil {
		return "", err
	}

	page, err := stealth.Page(b.browser)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := setViewport(page, viewportWidth, viewportHeight); err != nil {
		return "", fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.Timeout(b.navTimeout).Navigate(url); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}
	if err := page.Timeout(b.navTimeout).WaitLoad(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrNavigation, err)
	}

	// Wait for in-flight XHR/fetch traffic to drain so async content lands
	// in the snapshot. Bounded by navTimeout; idleness is measured from
	// here, so requests started before the load event are not tracked.
	page.Timeout(b.navTimeout).WaitRequestIdle(requestIdleSpan, nil, nil, nil)()

	// Let late scripts and lazy content finish before snapshotting.
	if err := sleepCtx(ctx, b.settleDelay); err != nil {
		return "", err
	}

	raw, err := page.HTML()
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrSnapshot, err)
	}
	b.log.Debug().Str("url", url).Int("bytes", len(raw)).Msg("captured page markup")
	return raw, nil
}

// Render opens the snapshot file, runs the content filter with the given
// header visibility, waits for images, and prints the page to PDF.
// Filter failures degrade to report warnings; only page and print errors
// abort the render.
func (b *rodBrowser) Render(ctx context.Context, filePath string, spec renderSpec) ([]byte, filterReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, filterReport{}, err
	}
	if err := b.ensureBrowser(); err != nil {
		return nil, filterReport{}, err
	}

	page, err := b.browser.Page(proto.TargetCreateTarget{URL: "file://" + filePath})
	if err != nil {
		return nil, filterReport{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}
	defer page.Close()
	page = page.Context(ctx)

	if err := setViewport(page, spec.ViewportWidth, spec.ViewportHeight); err != nil {
		return nil, filterReport{}, fmt.Errorf("%w: %v", ErrPageCreate, err)
	}

	if err := page.Timeout(b.navTimeout).WaitLoad(); err != nil {
		return nil, filterReport{}, fmt.Errorf("%w: %v", ErrRender, err)
	}

	report := b.runFilter(page, spec)

	if err := sleepCtx(ctx, b.settleDelay); err != nil {
		return nil, report, err
	}

	reader, err := page.PDF(buildPrintOptions(spec.Scale))
	if err != nil {
		return nil, report, fmt.Errorf("%w: %v", ErrRender, err)
	}
	buf, err := io.ReadAll(reader)
	if err != nil {
		return nil, report, fmt.Errorf("%w: reading PDF stream: %v", ErrRender, err)
	}
	return buf, report, nil
}

// runFilter waits for images and applies the content filter. Nothing in
// here is allowed to fail the render: every error turns into a warning on
// the returned report.
func (b *rodBrowser) runFilter(page *rod.Page, spec renderSpec) filterReport {
	var report filterReport

	if _, err := page.Timeout(b.navTimeout).Eval(imageSettleScript); err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("image wait: %v", err))
	}

	opts, err := buildFilterOptions(spec.ViewportWidth, spec.ShowHeader)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("filter options: %v", err))
		return report
	}
	res, err := page.Timeout(b.navTimeout).Eval(filterScript, opts)
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("filter script: %v", err))
		return report
	}
	parsed, err := parseFilterReport(res.Value.Str())
	if err != nil {
		report.Warnings = append(report.Warnings, fmt.Sprintf("filter report: %v", err))
		return report
	}
	parsed.Warnings = append(report.Warnings, parsed.Warnings...)
	return parsed
}

// buildPrintOptions constructs Letter-format print settings with the
// render scale applied.
func buildPrintOptions(scale float64) *proto.PagePrintToPDF {
	return &proto.PagePrintToPDF{
		PaperWidth:      floatPtr(paperWidthInches),
		PaperHeight:     floatPtr(paperHeightInches),
		MarginTop:       floatPtr(marginInches),
		MarginBottom:    floatPtr(marginInches),
		MarginLeft:      floatPtr(marginInches),
		MarginRight:     floatPtr(marginInches),
		PrintBackground: true,
		Scale:           floatPtr(scale),
	}
}

func setViewport(page *rod.Page, width, height int) error {
	return page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             width,
		Height:            height,
		DeviceScaleFactor: 1,
		Mobile:            false,
	})
}

// floatPtr returns a pointer to a float64 value.
func floatPtr(v float64) *float64 {
	return &v
}

// sleepCtx sleeps for d unless the context ends first.
func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
