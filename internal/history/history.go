// Package history records completed captures in a local SQLite database.
package history

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var ErrClosed = errors.New("history store is closed")

// Capture is one recorded capture run.
type Capture struct {
	ID         uint      `gorm:"primaryKey"`
	URL        string    `gorm:"index;not null"`
	FetchedAt  time.Time `gorm:"index;not null"`
	OutputPath string
	Pages      int
	DurationMs int64
}

// Store persists capture records.
type Store struct {
	db *gorm.DB
}

// DefaultPath returns the standard history database location,
// ~/.local/share/go-web2pdf/history.db on Linux.
func DefaultPath() (string, error) {
	dir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("resolving home directory: %w", err)
	}
	return filepath.Join(dir, ".local", "share", "go-web2pdf", "history.db"), nil
}

// Open opens or creates the history database at path and migrates the
// schema.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return nil, fmt.Errorf("creating history directory: %w", err)
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("opening history database: %w", err)
	}
	if err := db.AutoMigrate(&Capture{}); err != nil {
		return nil, fmt.Errorf("migrating history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one capture.
func (s *Store) Record(c Capture) error {
	if s.db == nil {
		return ErrClosed
	}
	if err := s.db.Create(&c).Error; err != nil {
		return fmt.Errorf("recording capture: %w", err)
	}
	return nil
}

// Recent returns the latest n captures, newest first.
func (s *Store) Recent(n int) ([]Capture, error) {
	if s.db == nil {
		return nil, ErrClosed
	}
	if n <= 0 {
		n = 10
	}
	var out []Capture
	if err := s.db.Order("fetched_at desc").Limit(n).Find(&out).Error; err != nil {
		return nil, fmt.Errorf("querying history: %w", err)
	}
	return out, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	sqlDB, err := s.db.DB()
	s.db = nil
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
