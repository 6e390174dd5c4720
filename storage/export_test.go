package storage

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"
	"time"

	"songsched/schedule"
)

func TestExportScheduleCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schedule.csv")
	result := &schedule.Result{
		Entries: []*schedule.Entry{
			{
				Song:           schedule.Song{Name: "Song A", Artist: "Artist A", VideoID: "vidA"},
				Mode:           schedule.ModeDateFixed,
				PostAt:         time.Date(2026, 3, 5, 19, 0, 0, 0, time.UTC),
				PriorityScore:  812.5,
				PredictedViews: 98000,
				Confidence:     0.8,
			},
			{
				Song:             schedule.Song{Name: "Song B"},
				Mode:             schedule.ModeFree,
				PostAt:           time.Date(2026, 3, 6, 18, 0, 0, 0, time.UTC),
				IntervalAdjusted: true,
			},
		},
	}

	if err := ExportScheduleCSV(path, result); err != nil {
		t.Fatalf("ExportScheduleCSV() error = %v", err)
	}

	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading exported csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("exported %d rows, want header + 2", len(rows))
	}
	if rows[0][0] != "post_at" || rows[0][1] != "song_name" {
		t.Errorf("header = %v", rows[0])
	}
	if rows[1][1] != "Song A" || rows[1][4] != "date_fixed" {
		t.Errorf("row 1 = %v", rows[1])
	}
	if rows[1][0] != "2026-03-05 19:00" {
		t.Errorf("post_at = %q, want 2026-03-05 19:00", rows[1][0])
	}
	if rows[2][8] != "true" {
		t.Errorf("interval_adjusted = %q, want true", rows[2][8])
	}
}

func TestExportScheduleCSVNilResult(t *testing.T) {
	err := ExportScheduleCSV(filepath.Join(t.TempDir(), "schedule.csv"), nil)
	if err == nil {
		t.Error("ExportScheduleCSV(nil) should fail")
	}
}
