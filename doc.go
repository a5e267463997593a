// Package web2pdf captures web pages as PDF documents using headless
// Chrome.
//
// # Quick Start
//
// Create a service, capture a URL, and close when done:
//
//	svc := web2pdf.New()
//	defer svc.Close()
//
//	result, err := svc.Capture(ctx, web2pdf.Request{
//	    URL: "https://example.com/article",
//	}, "article.pdf")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("wrote %s (%d pages)\n", result.OutputPath, result.Pages)
//
// # Capture Pipeline
//
// The capture process follows these stages:
//
//  1. Fetch the live page with a stealth browser profile and snapshot
//     its DOM once it has settled.
//  2. Render the snapshot twice: once with the site header visible and
//     once with it hidden. A content filter removes ads and consent
//     popups and downscales oversized images on both surfaces.
//  3. Merge page 1 of the header-visible render with pages 2..N of the
//     header-hidden render, so navigation chrome appears only on the
//     first page.
//  4. Stamp every page with the source URL, the fetch timestamp, and a
//     "Page i of N" footer.
//
// # Configuration
//
// Use functional options to customize the service:
//
//	svc := web2pdf.New(
//	    web2pdf.WithNavTimeout(2 * time.Minute),
//	    web2pdf.WithBrowserBin("/usr/bin/chromium"),
//	)
//
// Per-capture options are passed via Request:
//
//	result, err := svc.Capture(ctx, web2pdf.Request{
//	    URL:            "https://example.com",
//	    ViewportWidth:  1440,
//	    ViewportHeight: 900,
//	    ScalePercent:   80,
//	}, "out.pdf")
//
// # Parallel Processing
//
// For batch capture, use ServicePool to manage multiple browser
// instances:
//
//	pool := web2pdf.NewServicePool(4)
//	defer pool.Close()
//
//	svc := pool.Acquire()
//	defer pool.Release(svc)
//	result, err := svc.Capture(ctx, req, outPath)
//
// # Browser Requirements
//
// Capturing requires Chrome/Chromium. The go-rod library automatically
// downloads a managed Chromium instance on first run
// (~/.cache/rod/browser/). Use WithBrowserBin (or the CLI's
// WEB2PDF_BROWSER_BIN) to point at a pre-installed binary in containers.
package web2pdf
