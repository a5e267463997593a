package web2pdf

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// workspace is a caller-owned scratch directory holding every transient
// artifact of one capture: the HTML snapshot, the two renders, the merged
// document, and the overlay stamp. Artifact names carry a per-invocation
// UUID so concurrent captures never collide. Cleanup removes everything
// unconditionally; a failure on one artifact does not stop the others.
type workspace struct {
	dir       string
	id        string
	artifacts []string
}

// newWorkspace creates a scoped temporary directory for one capture.
func newWorkspace() (*workspace, error) {
	dir, err := os.MkdirTemp("", "web2pdf-*")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWorkspace, err)
	}
	return &workspace{dir: dir, id: uuid.NewString()}, nil
}

// Path reserves a uniquely named artifact inside the workspace.
// The label keeps the file recognisable when debugging a kept workspace.
func (w *workspace) Path(label, ext string) string {
	p := filepath.Join(w.dir, fmt.Sprintf("%s-%s.%s", label, w.id, ext))
	w.artifacts = append(w.artifacts, p)
	return p
}

// Cleanup removes all artifacts and the directory itself. Best effort:
// every artifact is attempted regardless of earlier failures, and the
// joined error must never replace a pipeline error (callers log it as a
// warning instead of returning it).
func (w *workspace) Cleanup() error {
	var errs []error
	for _, p := range w.artifacts {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			errs = append(errs, err)
		}
	}
	if err := os.Remove(w.dir); err != nil && !os.IsNotExist(err) {
		// Leftovers we did not create ourselves; sweep them too.
		if rmErr := os.RemoveAll(w.dir); rmErr != nil {
			errs = append(errs, rmErr)
		}
	}
	return errors.Join(errs...)
}
