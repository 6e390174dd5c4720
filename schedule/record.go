// Package schedule implements the posting-schedule optimizer.
//
// Given a catalog of candidate songs it decides when (date and hour) each
// should be posted to maximize predicted audience reach, subject to
// release-date constraints, minimum-interval spacing, per-day posting caps,
// and a priority ordering driven by an injected view-count predictor.
//
// The pipeline runs in five sequential stages over an in-memory catalog:
// classification, ranking, per-song time-slot search, interval repair, and
// validation. Every song that enters the pipeline leaves it with a posting
// time assigned; constraint breaches are reported as violations rather than
// aborting the run.
package schedule

import (
	"context"
	"time"
)

// Mode describes how a song's posting date was chosen.
type Mode string

const (
	// ModeFree means the posting date is fully optimizer-chosen.
	ModeFree Mode = "free"
	// ModeDateFixed means the posting date is pinned to the song's
	// release date and only the hour is optimized.
	ModeDateFixed Mode = "date_fixed"
)

// Song holds the catalog facts for one scheduling candidate. The scheduler
// treats these fields as read-only; everything it assigns lives on Entry.
type Song struct {
	Name        string `json:"song_name"`
	Artist      string `json:"artist_name,omitempty"`
	VideoID     string `json:"video_id,omitempty"`
	ReleaseDate string `json:"release_date,omitempty"`

	// Historical metrics from the ranking export.
	ViewCount    float64 `json:"view_count"`
	LikeCount    float64 `json:"like_count"`
	CommentCount float64 `json:"comment_count"`
	SupportRate  float64 `json:"support_rate"`
	GrowthRate   float64 `json:"growth_rate"`

	// Signals borrowed from unrelated channels (comparative indicators).
	RelativeEngagementScore float64 `json:"relative_engagement_score,omitempty"`
	RelativeLikeRate        float64 `json:"relative_like_rate,omitempty"`

	// Signals measured on the song's own channel. These outrank the
	// borrowed relative signals when computing priority.
	AnalyticsLikeRate       float64 `json:"analytics_like_rate,omitempty"`
	AnalyticsRetentionRate  float64 `json:"analytics_retention_rate,omitempty"`
	AnalyticsEngagementRate float64 `json:"analytics_engagement_rate,omitempty"`
	AnalyticsCTR            float64 `json:"analytics_ctr,omitempty"`
	AnalyticsNetSubscribers float64 `json:"analytics_net_subscribers,omitempty"`
	ChannelOrganicRatio     float64 `json:"channel_organic_ratio,omitempty"`
}

// Entry is a Song annotated with scheduler-assigned fields. An Entry moves
// through the states unscheduled -> classified -> ranked -> time-assigned ->
// interval-repaired -> validated; it is never dropped partway.
type Entry struct {
	Song

	PriorityScore float64 `json:"priority_score"`
	Mode          Mode    `json:"scheduling_mode"`

	// FixedDate is the required posting date (midnight, local) when
	// Mode == ModeDateFixed. Zero otherwise.
	FixedDate time.Time `json:"-"`

	// PostAt is the chosen posting time. Always set once the pipeline
	// has run.
	PostAt time.Time `json:"optimal_posting_datetime"`

	// PredictedViews holds the predictor's estimate for the chosen slot.
	// It may be pre-seeded from a prior optimization pass, in which case
	// the ranker reads it before the searcher overwrites it.
	PredictedViews float64 `json:"predicted_view_count"`

	// Confidence is the predictor's confidence in [0,1], or a fixed low
	// value when the heuristic fallback slot was used.
	Confidence float64 `json:"confidence_score"`

	// IntervalAdjusted reports whether interval repair moved this entry
	// from the slot the searcher picked.
	IntervalAdjusted bool `json:"interval_adjusted"`
}

// Result is the outcome of a full optimization run: every catalog entry with
// a posting time assigned, sorted by posting time, plus any residual
// constraint violations for operator review.
type Result struct {
	Entries    []*Entry
	Violations []Violation
}

// Predictor estimates audience reach for a single (song, candidate-slot)
// feature vector. Implementations must be deterministic for fixed inputs and
// must return views >= 0 and confidence in [0,1]; the searcher treats any
// error or out-of-range output as a zero-scoring candidate and continues.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (views, confidence float64, err error)
}

// FeatureBuilder produces the feature vector for a (song, date, hour)
// candidate slot. It must be deterministic and side-effect-free; the
// scheduler treats the vector as opaque.
type FeatureBuilder func(song Song, date time.Time, hour int) []float64
