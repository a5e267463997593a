package web2pdf

import (
	"fmt"
	"math"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Viewport defaults in CSS pixels.
const (
	DefaultViewportWidth  = 1280
	DefaultViewportHeight = 800
)

// Scale percentage bounds. The scale linearly resizes both the viewport
// and the render scale passed to Chrome.
const (
	MinScalePercent     = 10
	MaxScalePercent     = 200
	DefaultScalePercent = 100
)

// Page geometry in inches (US Letter with uniform margins).
const (
	paperWidthInches  = 8.5
	paperHeightInches = 11
	marginInches      = 0.75
)

// timestampLayout is the wall-clock format stamped onto every page.
const timestampLayout = "2006-01-02 15:04:05"

// Request describes one capture: which page to fetch and how to size the
// rendering surfaces. A Request is immutable once validated.
type Request struct {
	URL            string
	ViewportWidth  int // CSS pixels, 0 = DefaultViewportWidth
	ViewportHeight int // CSS pixels, 0 = DefaultViewportHeight
	ScalePercent   int // 10-200, 0 = DefaultScalePercent
}

// withDefaults returns a copy with zero fields replaced by defaults.
func (r Request) withDefaults() Request {
	if r.ViewportWidth == 0 {
		r.ViewportWidth = DefaultViewportWidth
	}
	if r.ViewportHeight == 0 {
		r.ViewportHeight = DefaultViewportHeight
	}
	if r.ScalePercent == 0 {
		r.ScalePercent = DefaultScalePercent
	}
	return r
}

// Validate checks the request before any browser or network activity.
func (r Request) Validate() error {
	if strings.TrimSpace(r.URL) == "" {
		return ErrEmptyURL
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: unsupported scheme %q", ErrInvalidURL, u.Scheme)
	}
	if u.Host == "" {
		return fmt.Errorf("%w: missing host", ErrInvalidURL)
	}
	if r.ScalePercent != 0 && (r.ScalePercent < MinScalePercent || r.ScalePercent > MaxScalePercent) {
		return fmt.Errorf("%w: %d (must be between %d and %d)",
			ErrInvalidScale, r.ScalePercent, MinScalePercent, MaxScalePercent)
	}
	if r.ViewportWidth < 0 || r.ViewportHeight < 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidViewport, r.ViewportWidth, r.ViewportHeight)
	}
	return nil
}

// scaledViewport returns the viewport dimensions after applying the scale
// percentage. Each dimension is rounded independently with math.Round.
func (r Request) scaledViewport() (width, height int) {
	factor := float64(r.ScalePercent) / 100
	width = int(math.Round(float64(r.ViewportWidth) * factor))
	height = int(math.Round(float64(r.ViewportHeight) * factor))
	return width, height
}

// renderScale converts the scale percentage to Chrome's 0.1-2.0 range.
func (r Request) renderScale() float64 {
	return float64(r.ScalePercent) / 100
}

// Warning is a non-fatal problem recorded while a capture runs. Failed
// filter mutations land here instead of aborting the capture.
type Warning struct {
	Phase  string // "filter", "cleanup"
	Detail string
}

func (w Warning) String() string {
	return w.Phase + ": " + w.Detail
}

// Result reports the outcome of a capture.
type Result struct {
	OutputPath string
	Pages      int
	FetchedAt  time.Time
	Warnings   []Warning
}

// Option configures a Service.
type Option func(*Service)

// serviceConfig holds internal configuration for Service.
type serviceConfig struct {
	navTimeout  time.Duration
	settleDelay time.Duration
	browserBin  string
	logger      zerolog.Logger
}

// Default waits. Navigation gets a single timeout with no retry; the settle
// delay lets lazy-loaded content finish after the load event.
const (
	defaultNavTimeout  = 60 * time.Second
	defaultSettleDelay = 3 * time.Second
)

// WithNavTimeout sets the navigation timeout.
// Panics if d <= 0 (programmer error, similar to time.NewTicker).
func WithNavTimeout(d time.Duration) Option {
	if d <= 0 {
		panic("web2pdf: WithNavTimeout duration must be positive")
	}
	return func(s *Service) {
		s.cfg.navTimeout = d
	}
}

// WithSettleDelay sets the post-load settle delay applied before rendering.
func WithSettleDelay(d time.Duration) Option {
	if d < 0 {
		panic("web2pdf: WithSettleDelay duration must not be negative")
	}
	return func(s *Service) {
		s.cfg.settleDelay = d
	}
}

// WithBrowserBin points the launcher at a pre-installed Chrome binary
// instead of the rod-managed download.
func WithBrowserBin(path string) Option {
	return func(s *Service) {
		s.cfg.browserBin = path
	}
}

// WithLogger sets the logger used for per-phase progress reporting.
// The default logger discards everything.
func WithLogger(l zerolog.Logger) Option {
	return func(s *Service) {
		s.cfg.logger = l
	}
}
