package storage

import (
	"encoding/json"
	"errors"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"songsched/schedule"
)

const lockTimeout = 5 * time.Second

// RankingsStore reads and writes the rankings.json catalog. Every
// operation takes the catalog's file lock, so concurrent optimizer and
// enricher runs serialize instead of clobbering each other.
type RankingsStore struct {
	path string
}

// NewRankingsStore creates a store over the catalog at path.
func NewRankingsStore(path string) *RankingsStore {
	return &RankingsStore{path: path}
}

// Path returns the catalog location.
func (s *RankingsStore) Path() string { return s.path }

// Load reads the whole catalog.
func (s *RankingsStore) Load() (Rankings, error) {
	lock := NewFileLock(s.path)
	if err := lock.Lock(lockTimeout); err != nil {
		return nil, err
	}
	defer lock.Unlock()
	return s.load()
}

func (s *RankingsStore) load() (Rankings, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "read", Entity: "rankings", ID: s.path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "read", Entity: "rankings", ID: s.path, Err: err}
	}

	var rankings Rankings
	if err := json.Unmarshal(data, &rankings); err != nil {
		return nil, &StorageError{Op: "read", Entity: "rankings", ID: s.path, Err: ErrStorageCorrupt}
	}
	return rankings, nil
}

// Save writes the whole catalog back atomically.
func (s *RankingsStore) Save(rankings Rankings) error {
	lock := NewFileLock(s.path)
	if err := lock.Lock(lockTimeout); err != nil {
		return err
	}
	defer lock.Unlock()
	return s.save(rankings)
}

func (s *RankingsStore) save(rankings Rankings) error {
	data, err := json.MarshalIndent(rankings, "", "  ")
	if err != nil {
		return &StorageError{Op: "write", Entity: "rankings", ID: s.path, Err: err}
	}

	w, err := NewAtomicWriter(s.path)
	if err != nil {
		return &StorageError{Op: "write", Entity: "rankings", ID: s.path, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return &StorageError{Op: "write", Entity: "rankings", ID: s.path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return &StorageError{Op: "write", Entity: "rankings", ID: s.path, Err: err}
	}
	return nil
}

// Songs loads the canonical "overall" ranking as scheduler input.
func (s *RankingsStore) Songs() ([]schedule.Song, error) {
	rankings, err := s.Load()
	if err != nil {
		return nil, err
	}

	overall, ok := rankings[OverallRanking]
	if !ok {
		return nil, &StorageError{Op: "read", Entity: "rankings", ID: OverallRanking, Err: ErrNotFound}
	}

	songs := make([]schedule.Song, 0, len(overall))
	for _, item := range overall {
		if item == nil || item.SongName == "" {
			continue
		}
		songs = append(songs, item.Song())
	}
	return songs, nil
}

// ApplySchedule writes optimizer output into the ml_predictions block of
// every metric ranking, matched by song name, and saves the catalog. It
// returns the number of updated items.
func (s *RankingsStore) ApplySchedule(result *schedule.Result) (int, error) {
	if result == nil {
		return 0, &StorageError{Op: "update", Entity: "rankings", ID: s.path, Err: ErrInvalidInput}
	}

	lock := NewFileLock(s.path)
	if err := lock.Lock(lockTimeout); err != nil {
		return 0, err
	}
	defer lock.Unlock()

	rankings, err := s.load()
	if err != nil {
		return 0, err
	}

	byName := make(map[string]*schedule.Entry, len(result.Entries))
	for _, e := range result.Entries {
		byName[e.Name] = e
	}

	updated := 0
	for _, items := range rankings {
		for _, item := range items {
			if item == nil {
				continue
			}
			e, ok := byName[item.SongName]
			if !ok {
				continue
			}
			item.MLPredictions = &MLPredictions{
				OptimalPostingDatetime: e.PostAt.Format(time.RFC3339),
				PredictedViewCount:     e.PredictedViews,
				Confidence:             e.Confidence,
			}
			updated++
		}
	}

	if err := s.save(rankings); err != nil {
		return 0, err
	}
	log.Printf("storage: wrote predictions for %d ranking entries", updated)
	return updated, nil
}

// SaveRun persists one optimization run as a standalone JSON file.
func SaveRun(path string, result *schedule.Result) (*Run, error) {
	if result == nil {
		return nil, &StorageError{Op: "write", Entity: "schedule", ID: path, Err: ErrInvalidInput}
	}

	run := &Run{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		SongCount: len(result.Entries),
	}
	for _, e := range result.Entries {
		run.Entries = append(run.Entries, slotFromEntry(e))
	}
	for _, v := range result.Violations {
		run.Violations = append(run.Violations, v.String())
	}

	data, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return nil, &StorageError{Op: "write", Entity: "schedule", ID: path, Err: err}
	}

	w, err := NewAtomicWriter(path)
	if err != nil {
		return nil, &StorageError{Op: "write", Entity: "schedule", ID: path, Err: err}
	}
	if _, err := w.Write(data); err != nil {
		w.Abort()
		return nil, &StorageError{Op: "write", Entity: "schedule", ID: path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return nil, &StorageError{Op: "write", Entity: "schedule", ID: path, Err: err}
	}
	return run, nil
}

// LoadRun reads a saved optimization run.
func LoadRun(path string) (*Run, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &StorageError{Op: "read", Entity: "schedule", ID: path, Err: ErrNotFound}
		}
		return nil, &StorageError{Op: "read", Entity: "schedule", ID: path, Err: err}
	}

	run := &Run{}
	if err := json.Unmarshal(data, run); err != nil {
		return nil, &StorageError{Op: "read", Entity: "schedule", ID: path, Err: ErrStorageCorrupt}
	}
	return run, nil
}
