package storage

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"songsched/schedule"
)

func writeTestCatalog(t *testing.T, rankings Rankings) *RankingsStore {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rankings.json")
	data, err := json.Marshal(rankings)
	if err != nil {
		t.Fatalf("marshal catalog: %v", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return NewRankingsStore(path)
}

func testCatalog() Rankings {
	return Rankings{
		"overall": {
			{
				Rank:        1,
				SongName:    "Song A",
				ArtistName:  "Artist A",
				VideoID:     "vidA",
				ReleaseDate: "2026-03-05",
				Metrics:     Metrics{ViewCount: 120000, LikeCount: 4000, SupportRate: 3.3},
			},
			{
				Rank:     2,
				SongName: "Song B",
				VideoID:  "vidB",
				Metrics:  Metrics{ViewCount: 50000},
			},
		},
		"support_rate": {
			{Rank: 1, SongName: "Song A", VideoID: "vidA", Metrics: Metrics{SupportRate: 3.3}},
		},
	}
}

func TestSongsFromOverallRanking(t *testing.T) {
	store := writeTestCatalog(t, testCatalog())

	songs, err := store.Songs()
	if err != nil {
		t.Fatalf("Songs() error = %v", err)
	}
	if len(songs) != 2 {
		t.Fatalf("Songs() returned %d songs, want 2", len(songs))
	}
	if songs[0].Name != "Song A" || songs[0].ViewCount != 120000 {
		t.Errorf("songs[0] = %+v, want Song A with 120000 views", songs[0])
	}
	if songs[0].ReleaseDate != "2026-03-05" {
		t.Errorf("ReleaseDate = %q, want 2026-03-05", songs[0].ReleaseDate)
	}
}

func TestSongsMissingOverall(t *testing.T) {
	store := writeTestCatalog(t, Rankings{"support_rate": {}})

	_, err := store.Songs()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Songs() without overall = %v, want ErrNotFound", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	store := NewRankingsStore(filepath.Join(t.TempDir(), "missing.json"))
	_, err := store.Load()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() on missing file = %v, want ErrNotFound", err)
	}
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rankings.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := NewRankingsStore(path).Load()
	if !errors.Is(err, ErrStorageCorrupt) {
		t.Errorf("Load() on corrupt file = %v, want ErrStorageCorrupt", err)
	}

	var storErr *StorageError
	if !errors.As(err, &storErr) || storErr.Op != "read" {
		t.Errorf("error should carry read op context, got %v", err)
	}
}

func TestApplySchedule(t *testing.T) {
	store := writeTestCatalog(t, testCatalog())

	postAt := time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC)
	result := &schedule.Result{
		Entries: []*schedule.Entry{
			{
				Song:           schedule.Song{Name: "Song A", VideoID: "vidA"},
				Mode:           schedule.ModeDateFixed,
				PostAt:         postAt,
				PredictedViews: 98000,
				Confidence:     0.8,
			},
		},
	}

	updated, err := store.ApplySchedule(result)
	if err != nil {
		t.Fatalf("ApplySchedule() error = %v", err)
	}
	// Song A appears in both the overall and support_rate rankings.
	if updated != 2 {
		t.Errorf("ApplySchedule() updated %d items, want 2", updated)
	}

	rankings, err := store.Load()
	if err != nil {
		t.Fatalf("Load() after apply error = %v", err)
	}
	got := rankings["overall"][0].MLPredictions
	if got == nil {
		t.Fatal("overall Song A has no ml_predictions block")
	}
	if got.OptimalPostingDatetime != postAt.Format(time.RFC3339) {
		t.Errorf("optimal datetime = %q, want %q", got.OptimalPostingDatetime, postAt.Format(time.RFC3339))
	}
	if got.PredictedViewCount != 98000 {
		t.Errorf("predicted views = %v, want 98000", got.PredictedViewCount)
	}
	if rankings["overall"][1].MLPredictions != nil {
		t.Error("unscheduled Song B should keep no predictions block")
	}
	if rankings["support_rate"][0].MLPredictions == nil {
		t.Error("support_rate ranking should also carry the writeback")
	}
}

func TestSaveRunAndLoadRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.json")
	result := &schedule.Result{
		Entries: []*schedule.Entry{
			{
				Song:   schedule.Song{Name: "Song A", Artist: "Artist A"},
				Mode:   schedule.ModeFree,
				PostAt: time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC),
			},
		},
		Violations: []schedule.Violation{
			{Kind: schedule.ViolationInterval, Song: "Song A", Detail: "gap too short"},
		},
	}

	run, err := SaveRun(path, result)
	if err != nil {
		t.Fatalf("SaveRun() error = %v", err)
	}
	if run.ID == "" {
		t.Error("SaveRun() should assign a run ID")
	}

	loaded, err := LoadRun(path)
	if err != nil {
		t.Fatalf("LoadRun() error = %v", err)
	}
	if loaded.ID != run.ID || loaded.SongCount != 1 {
		t.Errorf("loaded run = %+v, want ID %q with 1 song", loaded, run.ID)
	}
	if len(loaded.Entries) != 1 || loaded.Entries[0].SongName != "Song A" {
		t.Errorf("loaded entries = %+v", loaded.Entries)
	}
	if len(loaded.Violations) != 1 {
		t.Errorf("loaded %d violations, want 1", len(loaded.Violations))
	}
}

func TestSaveIsAtomic(t *testing.T) {
	store := writeTestCatalog(t, testCatalog())

	if err := store.Save(testCatalog()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	// No temp files should survive a committed write.
	entries, err := os.ReadDir(filepath.Dir(store.Path()))
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range entries {
		if strings.HasPrefix(e.Name(), ".songsched-") {
			t.Errorf("leftover temp file %s", e.Name())
		}
	}
}
