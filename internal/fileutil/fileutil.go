// Package fileutil provides file and path utility functions.
package fileutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
	"unicode"
)

// DefaultName builds the fallback output filename for a capture:
// the sanitized host plus the fetch time, e.g. "example_com_20260828_153045.pdf".
func DefaultName(host string, t time.Time) string {
	if host == "" {
		host = "page"
	}
	return fmt.Sprintf("%s_%s.pdf", SanitizeHost(host), t.Format("20060102_150405"))
}

// SanitizeHost replaces every character that is unsafe in a filename
// with an underscore.
func SanitizeHost(host string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			return r
		}
		return '_'
	}, host)
}

// EnsureParentDir creates the parent directory of path if it does not
// exist.
func EnsureParentDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "" || dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating directory %s: %w", dir, err)
	}
	return nil
}

// FileExists returns true if the path exists and is a regular file.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// IsURL returns true if the string looks like a web URL.
func IsURL(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}
