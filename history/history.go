// Package history persists the channel's posting record in a local sqlite
// database and derives per-hour and per-weekday performance profiles from it.
// The profile feeds the baseline view predictor, so a channel with enough
// history gets slot estimates grounded in its own audience instead of
// neutral defaults.
package history

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DefaultDBFile is used when no explicit database path is configured.
const DefaultDBFile = "songsched.sqlite3"

// ErrClosed is returned by operations on a nil or closed store.
var ErrClosed = errors.New("history: store is closed")

// PostedVideo is one published upload and the engagement it earned. Rows
// are keyed by the YouTube video ID so re-recording an upload after an
// analytics refresh updates the counts in place.
type PostedVideo struct {
	ID           string    `gorm:"primaryKey;type:varchar(36)"`
	VideoID      string    `gorm:"uniqueIndex:idx_history_video" json:"video_id"`
	SongName     string    `gorm:"index:idx_history_song" json:"song_name"`
	Artist       string    `json:"artist"`
	PostedAt     time.Time `gorm:"index:idx_history_posted" json:"posted_at"`
	ViewCount    float64   `json:"view_count"`
	LikeCount    float64   `json:"like_count"`
	CommentCount float64   `json:"comment_count"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Store wraps the sqlite posting history.
type Store struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// Open opens (creating if needed) the history database at path.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultDBFile
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("history: creating db dir: %w", err)
		}
	}

	db, err := gorm.Open(sqlite.Open(path+"?_foreign_keys=on"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("history: opening sqlite db: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("history: getting sql.DB from gorm: %w", err)
	}
	sqlDB.SetMaxOpenConns(25)
	sqlDB.SetMaxIdleConns(5)
	sqlDB.SetConnMaxLifetime(time.Hour)

	if err := db.AutoMigrate(&PostedVideo{}); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("history: auto migrate: %w", err)
	}

	return &Store{db: db, sqlDB: sqlDB}, nil
}

// Close releases the underlying database handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Record inserts or updates a posted video by its YouTube video ID and
// returns the row's primary key.
func (s *Store) Record(v PostedVideo) (string, error) {
	if s == nil || s.db == nil {
		return "", ErrClosed
	}
	if v.VideoID == "" {
		return "", errors.New("history: record requires a video ID")
	}

	var existing PostedVideo
	err := s.db.Where("video_id = ?", v.VideoID).First(&existing).Error
	if err == nil {
		updates := map[string]any{
			"view_count":    v.ViewCount,
			"like_count":    v.LikeCount,
			"comment_count": v.CommentCount,
		}
		if !v.PostedAt.IsZero() {
			updates["posted_at"] = v.PostedAt
		}
		if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
			return "", fmt.Errorf("history: updating %s: %w", v.VideoID, err)
		}
		return existing.ID, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return "", fmt.Errorf("history: querying %s: %w", v.VideoID, err)
	}

	if v.ID == "" {
		v.ID = uuid.NewString()
	}
	if err := s.db.Create(&v).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "constraint failed") {
			if fetchErr := s.db.Where("video_id = ?", v.VideoID).First(&existing).Error; fetchErr == nil {
				return existing.ID, nil
			}
		}
		return "", fmt.Errorf("history: creating %s: %w", v.VideoID, err)
	}
	return v.ID, nil
}

// Recent returns up to limit posts, newest first. A non-positive limit
// returns everything.
func (s *Store) Recent(limit int) ([]PostedVideo, error) {
	if s == nil || s.db == nil {
		return nil, ErrClosed
	}
	q := s.db.Order("posted_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var rows []PostedVideo
	if err := q.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("history: listing posts: %w", err)
	}
	return rows, nil
}
