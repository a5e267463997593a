package main

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	web2pdf "github.com/tobran/go-web2pdf"
	"github.com/tobran/go-web2pdf/internal/config"
	"github.com/tobran/go-web2pdf/internal/fileutil"
	"github.com/tobran/go-web2pdf/internal/history"
)

// Sentinel errors for CLI operations.
var (
	ErrNoInput            = errors.New("no URL specified")
	ErrOutputConflict     = errors.New("explicit output file requires exactly one URL")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrInvalidDuration    = errors.New("invalid duration")
)

// browserBinEnv names a pre-installed Chrome binary for containers.
const browserBinEnv = "WEB2PDF_BROWSER_BIN"

// Capturer is the interface for the capture service.
type Capturer interface {
	Capture(ctx context.Context, req web2pdf.Request, outPath string) (web2pdf.Result, error)
}

// Compile-time interface implementation check.
var _ Capturer = (*web2pdf.Service)(nil)

// Pool abstracts service pool operations for testability.
type Pool interface {
	Acquire() Capturer
	Release(Capturer)
	Size() int
}

// servicePool adapts web2pdf.ServicePool to the Capturer-based Pool.
type servicePool struct {
	inner *web2pdf.ServicePool
}

func (p servicePool) Acquire() Capturer    { return p.inner.Acquire() }
func (p servicePool) Release(svc Capturer) { p.inner.Release(svc.(*web2pdf.Service)) }
func (p servicePool) Size() int            { return p.inner.Size() }

// Target is a single URL to capture with its resolved output path.
type Target struct {
	URL        string
	OutputPath string
}

// CaptureResult holds the outcome of a single capture.
type CaptureResult struct {
	URL      string
	Result   web2pdf.Result
	Err      error
	Duration time.Duration
}

// runCapture orchestrates one CLI invocation end to end.
func runCapture(ctx context.Context, urls []string, flags *captureFlags, env *Environment, lg zerolog.Logger) error {
	if len(urls) == 0 {
		return ErrNoInput
	}
	if err := validateWorkers(flags.workers); err != nil {
		return err
	}

	cfg := config.DefaultConfig()
	var err error
	if flags.common.config != "" {
		cfg, err = config.LoadConfig(flags.common.config)
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}
	}
	mergeFlags(flags, cfg)

	// The initial logger is built before config loading; pick up a
	// config-declared log file unless the flag already set one.
	if flags.logFile == "" && cfg.Log.File != "" {
		lg = newLogger(flags.common.quiet, flags.common.verbose, cfg.Log.File)
	}

	opts, err := serviceOptions(cfg, flags, env, lg)
	if err != nil {
		return err
	}

	req := web2pdf.Request{
		ViewportWidth:  cfg.Capture.ViewportWidth,
		ViewportHeight: cfg.Capture.ViewportHeight,
		ScalePercent:   cfg.Capture.ScalePercent,
	}

	targets, err := resolveTargets(urls, flags.output, cfg, env.Now())
	if err != nil {
		return err
	}

	poolSize := web2pdf.ResolvePoolSize(flags.workers)
	lg.Debug().Int("poolSize", poolSize).Int("targets", len(targets)).Msg("starting capture")
	pool := web2pdf.NewServicePool(poolSize, opts...)
	defer pool.Close()

	results := captureBatch(ctx, servicePool{pool}, targets, req)

	if cfg.History.Enabled {
		if err := recordHistory(cfg, results, lg); err != nil {
			lg.Warn().Err(err).Msg("history recording failed")
		}
	}

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%d capture(s) failed", failed)
	}
	return nil
}

// mergeFlags merges CLI flags into config. CLI values override config values.
func mergeFlags(flags *captureFlags, cfg *config.Config) {
	if flags.viewport.width > 0 {
		cfg.Capture.ViewportWidth = flags.viewport.width
	}
	if flags.viewport.height > 0 {
		cfg.Capture.ViewportHeight = flags.viewport.height
	}
	if flags.viewport.scale > 0 {
		cfg.Capture.ScalePercent = flags.viewport.scale
	}
	if flags.browserBin != "" {
		cfg.Browser.Bin = flags.browserBin
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	if flags.history {
		cfg.History.Enabled = true
	}
	if flags.historyPath != "" {
		cfg.History.Path = flags.historyPath
		cfg.History.Enabled = true
	}
}

// serviceOptions translates config and flags into library options.
// Flag values override config values.
func serviceOptions(cfg *config.Config, flags *captureFlags, env *Environment, lg zerolog.Logger) ([]web2pdf.Option, error) {
	opts := []web2pdf.Option{web2pdf.WithLogger(lg)}

	navTimeout := time.Duration(cfg.Capture.TimeoutSeconds) * time.Second
	if flags.timeout != "" {
		d, err := time.ParseDuration(flags.timeout)
		if err != nil || d <= 0 {
			return nil, fmt.Errorf("%w: --timeout %q", ErrInvalidDuration, flags.timeout)
		}
		navTimeout = d
	}
	if navTimeout > 0 {
		opts = append(opts, web2pdf.WithNavTimeout(navTimeout))
	}

	settle := time.Duration(cfg.Capture.SettleSeconds) * time.Second
	if flags.settle != "" {
		d, err := time.ParseDuration(flags.settle)
		if err != nil || d < 0 {
			return nil, fmt.Errorf("%w: --settle %q", ErrInvalidDuration, flags.settle)
		}
		settle = d
	}
	if settle > 0 {
		opts = append(opts, web2pdf.WithSettleDelay(settle))
	}

	bin := cfg.Browser.Bin
	if bin == "" {
		bin = env.Getenv(browserBinEnv)
	}
	if bin != "" {
		opts = append(opts, web2pdf.WithBrowserBin(bin))
	}
	return opts, nil
}

// resolveTargets pairs every URL with an output path.
// An explicit .pdf output path is only valid for a single URL; otherwise
// the output flag (or config default dir) names a directory and each
// capture gets a host-plus-timestamp filename.
func resolveTargets(urls []string, flagOutput string, cfg *config.Config, now time.Time) ([]Target, error) {
	outDir := cfg.Output.DefaultDir
	outFile := ""
	if flagOutput != "" {
		if strings.HasSuffix(flagOutput, ".pdf") {
			if len(urls) > 1 {
				return nil, ErrOutputConflict
			}
			outFile = flagOutput
		} else {
			outDir = flagOutput
		}
	}

	targets := make([]Target, 0, len(urls))
	for _, raw := range urls {
		out := outFile
		if out == "" {
			out = filepath.Join(outDir, defaultOutputName(raw, now))
		}
		targets = append(targets, Target{URL: raw, OutputPath: out})
	}
	return targets, nil
}

// defaultOutputName derives "{host}_{timestamp}.pdf" from the URL.
func defaultOutputName(rawURL string, now time.Time) string {
	host := ""
	if u, err := url.Parse(rawURL); err == nil {
		host = u.Hostname()
	}
	return fileutil.DefaultName(host, now)
}

// validateWorkers checks that the worker count is within valid bounds.
func validateWorkers(n int) error {
	if n < 0 {
		return fmt.Errorf("%w: %d (must be >= 0, 0 means auto)", ErrInvalidWorkerCount, n)
	}
	if n > web2pdf.MaxPoolSize {
		return fmt.Errorf("%w: %d (maximum is %d)", ErrInvalidWorkerCount, n, web2pdf.MaxPoolSize)
	}
	return nil
}

// captureBatch processes targets concurrently using the service pool.
func captureBatch(ctx context.Context, pool Pool, targets []Target, req web2pdf.Request) []CaptureResult {
	if len(targets) == 0 {
		return nil
	}

	concurrency := pool.Size()
	if concurrency > len(targets) {
		concurrency = len(targets)
	}

	results := make([]CaptureResult, len(targets))
	var wg sync.WaitGroup
	jobs := make(chan int, len(targets))

	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			svc := pool.Acquire()
			defer pool.Release(svc)

			for idx := range jobs {
				if ctx.Err() != nil {
					results[idx] = CaptureResult{URL: targets[idx].URL, Err: ctx.Err()}
					continue
				}
				results[idx] = captureOne(ctx, svc, targets[idx], req)
			}
		}()
	}

	for i := range targets {
		jobs <- i
	}
	close(jobs)

	wg.Wait()
	return results
}

// captureOne processes a single target and returns the result.
func captureOne(ctx context.Context, svc Capturer, t Target, req web2pdf.Request) CaptureResult {
	start := time.Now()
	result := CaptureResult{URL: t.URL}

	if err := fileutil.EnsureParentDir(t.OutputPath); err != nil {
		result.Err = err
		result.Duration = time.Since(start)
		return result
	}

	req.URL = t.URL
	result.Result, result.Err = svc.Capture(ctx, req, t.OutputPath)
	result.Duration = time.Since(start)
	return result
}

// recordHistory writes successful captures to the history database.
func recordHistory(cfg *config.Config, results []CaptureResult, lg zerolog.Logger) error {
	path := cfg.History.Path
	if path == "" {
		var err error
		path, err = history.DefaultPath()
		if err != nil {
			return err
		}
	}

	store, err := history.Open(path)
	if err != nil {
		return err
	}
	defer store.Close()

	for _, r := range results {
		if r.Err != nil {
			continue
		}
		rec := history.Capture{
			URL:        r.URL,
			FetchedAt:  r.Result.FetchedAt,
			OutputPath: r.Result.OutputPath,
			Pages:      r.Result.Pages,
			DurationMs: r.Duration.Milliseconds(),
		}
		if err := store.Record(rec); err != nil {
			lg.Warn().Err(err).Str("url", r.URL).Msg("history record failed")
		}
	}
	return nil
}

// printResults outputs capture results using the environment writers.
func printResults(results []CaptureResult, quiet, verbose bool, env *Environment) int {
	var succeeded, failed int

	for _, r := range results {
		if r.Err != nil {
			failed++
			fmt.Fprintf(env.Stderr, "FAILED %s: %v\n", r.URL, r.Err)
			continue
		}

		succeeded++
		if quiet {
			continue
		}

		if r.Result.Pages == 0 {
			fmt.Fprintf(env.Stdout, "Skipped %s (no pages)\n", r.URL)
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%d pages, %v)\n",
				r.URL, r.Result.OutputPath, r.Result.Pages, r.Duration.Round(time.Millisecond))
			for _, w := range r.Result.Warnings {
				fmt.Fprintf(env.Stdout, "  warning [%s]: %s\n", w.Phase, w.Detail)
			}
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.Result.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		fmt.Fprintf(env.Stdout, "\n%d succeeded, %d failed\n", succeeded, failed)
	}

	return failed
}
