package storage

import (
	"time"

	"songsched/schedule"
)

// OverallRanking is the metric key whose song list feeds the optimizer.
const OverallRanking = "overall"

// Rankings is the catalog file layout: metric name to ranked song list.
// The "overall" list is the canonical catalog; the per-metric lists rank
// the same songs by a single signal.
type Rankings map[string][]*RankingItem

// RankingItem is one song inside a metric ranking.
type RankingItem struct {
	Rank          int            `json:"rank"`
	SongName      string         `json:"song_name"`
	ArtistName    string         `json:"artist_name,omitempty"`
	VideoTitle    string         `json:"video_title,omitempty"`
	VideoID       string         `json:"video_id"`
	ReleaseDate   string         `json:"release_date,omitempty"`
	Metrics       Metrics        `json:"metrics"`
	MLPredictions *MLPredictions `json:"ml_predictions,omitempty"`
}

// Metrics is the per-song statistics block.
type Metrics struct {
	ViewCount          float64 `json:"view_count"`
	LikeCount          float64 `json:"like_count"`
	CommentCount       float64 `json:"comment_count"`
	SupportRate        float64 `json:"support_rate"`
	GrowthRate         float64 `json:"growth_rate"`
	DaysSincePublished float64 `json:"days_since_published"`
}

// MLPredictions is the optimizer's writeback block on a ranking item.
type MLPredictions struct {
	OptimalPostingDatetime string  `json:"optimal_posting_datetime"`
	PredictedViewCount     float64 `json:"predicted_view_count"`
	Confidence             float64 `json:"confidence,omitempty"`
}

// Run is one optimization run saved alongside the catalog.
type Run struct {
	ID         string          `json:"run_id"`
	CreatedAt  time.Time       `json:"created_at"`
	SongCount  int             `json:"song_count"`
	Violations []string        `json:"violations,omitempty"`
	Entries    []ScheduledSlot `json:"entries"`
}

// ScheduledSlot is one scheduled posting inside a saved run.
type ScheduledSlot struct {
	SongName         string    `json:"song_name"`
	ArtistName       string    `json:"artist_name,omitempty"`
	VideoID          string    `json:"video_id,omitempty"`
	Mode             string    `json:"mode"`
	PostAt           time.Time `json:"post_at"`
	PriorityScore    float64   `json:"priority_score"`
	PredictedViews   float64   `json:"predicted_views"`
	Confidence       float64   `json:"confidence"`
	IntervalAdjusted bool      `json:"interval_adjusted,omitempty"`
}

// Song converts a catalog item into the scheduler's song form.
func (r *RankingItem) Song() schedule.Song {
	return schedule.Song{
		Name:         r.SongName,
		Artist:       r.ArtistName,
		VideoID:      r.VideoID,
		ReleaseDate:  r.ReleaseDate,
		ViewCount:    r.Metrics.ViewCount,
		LikeCount:    r.Metrics.LikeCount,
		CommentCount: r.Metrics.CommentCount,
		SupportRate:  r.Metrics.SupportRate,
		GrowthRate:   r.Metrics.GrowthRate,
	}
}

// slotFromEntry flattens a scheduled entry for persistence.
func slotFromEntry(e *schedule.Entry) ScheduledSlot {
	return ScheduledSlot{
		SongName:         e.Name,
		ArtistName:       e.Artist,
		VideoID:          e.VideoID,
		Mode:             string(e.Mode),
		PostAt:           e.PostAt,
		PriorityScore:    e.PriorityScore,
		PredictedViews:   e.PredictedViews,
		Confidence:       e.Confidence,
		IntervalAdjusted: e.IntervalAdjusted,
	}
}
