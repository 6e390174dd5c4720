package storage

import (
	"encoding/csv"
	"fmt"
	"strconv"

	"songsched/schedule"
)

// scheduleCSVHeader is the column layout of an exported schedule.
var scheduleCSVHeader = []string{
	"post_at",
	"song_name",
	"artist_name",
	"video_id",
	"mode",
	"priority_score",
	"predicted_views",
	"confidence",
	"interval_adjusted",
}

// ExportScheduleCSV writes the optimized schedule to a CSV file, one row
// per posting in chronological order. The write is atomic like every
// other catalog write.
func ExportScheduleCSV(path string, result *schedule.Result) error {
	if result == nil {
		return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: ErrInvalidInput}
	}

	w, err := NewAtomicWriter(path)
	if err != nil {
		return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: err}
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(scheduleCSVHeader); err != nil {
		w.Abort()
		return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: err}
	}

	for _, e := range result.Entries {
		row := []string{
			e.PostAt.Format("2006-01-02 15:04"),
			e.Name,
			e.Artist,
			e.VideoID,
			string(e.Mode),
			fmt.Sprintf("%.1f", e.PriorityScore),
			fmt.Sprintf("%.0f", e.PredictedViews),
			fmt.Sprintf("%.2f", e.Confidence),
			strconv.FormatBool(e.IntervalAdjusted),
		}
		if err := cw.Write(row); err != nil {
			w.Abort()
			return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: err}
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		w.Abort()
		return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: err}
	}
	if err := w.Commit(); err != nil {
		return &StorageError{Op: "export", Entity: "schedule", ID: path, Err: err}
	}
	return nil
}
