package web2pdf

import "errors"

// Sentinel errors for library operations.
var (
	// Request validation errors, reported before any network activity.
	ErrEmptyURL        = errors.New("url cannot be empty")
	ErrInvalidURL      = errors.New("invalid url")
	ErrInvalidScale    = errors.New("invalid scale percentage")
	ErrInvalidViewport = errors.New("invalid viewport dimensions")

	// Browser errors.
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrNavigation     = errors.New("navigation failed")
	ErrSnapshot       = errors.New("failed to capture content snapshot")

	// Pipeline errors.
	ErrRender  = errors.New("PDF render failed")
	ErrMerge   = errors.New("document merge failed")
	ErrOverlay = errors.New("metadata overlay failed")
	ErrOutput  = errors.New("failed to write output file")

	// Workspace errors.
	ErrWorkspace = errors.New("failed to create temporary workspace")
)
