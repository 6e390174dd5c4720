package schedule

import (
	"math"
	"sort"
	"time"
)

// Priority weights. Tunable, but the relative ordering matters: deadline
// urgency dominates, own-channel analytics outrank borrowed relative
// signals, and channel-level context is only a nudge.
const (
	urgencyCeiling     = 1000.0 // score for a release due today
	urgencyDecayPerDay = 10.0   // linear decay per day of slack
	viralityWeight     = 50.0   // multiplies log1p(predicted views)
	ctrWeight          = 20.0   // own-channel click-through rate
	relEngagementWt    = 10.0   // borrowed engagement score
	relLikeRateWt      = 5.0    // borrowed like rate
	analyticsLikeWt    = 5.0    // own-channel like rate
	supportRateWt      = 3.0
	retentionWt        = 2.0
	organicRatioWt     = 1.0
	netSubscribersWt   = 0.5
)

// Rank assigns a priority score to every entry and sorts the slice
// descending by score. The sort is stable, so entries with equal scores keep
// their catalog input order and runs are reproducible.
//
// Entries must already be classified; the urgency term reads FixedDate.
func Rank(entries []*Entry, today time.Time) {
	for _, e := range entries {
		e.PriorityScore = priorityScore(e, today)
	}
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PriorityScore > entries[j].PriorityScore
	})
}

// priorityScore combines deadline urgency, predicted virality, and quality
// signals into a single scalar. Signals absent from the catalog contribute
// zero rather than penalizing the song.
func priorityScore(e *Entry, today time.Time) float64 {
	var score float64

	// Deadline urgency: date-fixed songs with a non-negative horizon score
	// higher the closer the release date is.
	if e.Mode == ModeDateFixed {
		days := daysBetween(today, e.FixedDate)
		if days >= 0 {
			score += math.Max(0, urgencyCeiling-float64(days)*urgencyDecayPerDay)
		}
	}

	// Virality: log-scaled so a 10x view gap does not drown out everything
	// else. Uses the estimate from a prior pass when one is present.
	if e.PredictedViews > 0 {
		score += math.Log1p(e.PredictedViews) * viralityWeight
	}

	// Borrowed comparative signals.
	if e.RelativeEngagementScore > 0 {
		score += e.RelativeEngagementScore * relEngagementWt
	}
	if e.RelativeLikeRate > 0 {
		score += e.RelativeLikeRate * relLikeRateWt
	}
	if e.SupportRate > 0 {
		score += e.SupportRate * supportRateWt
	}

	// Own-channel analytics: measured on this channel, so trusted more.
	if e.AnalyticsLikeRate > 0 {
		score += e.AnalyticsLikeRate * analyticsLikeWt
	}
	if e.AnalyticsRetentionRate > 0 {
		score += e.AnalyticsRetentionRate * retentionWt
	}
	if e.AnalyticsCTR > 0 {
		score += e.AnalyticsCTR * ctrWeight
	}
	if e.AnalyticsNetSubscribers > 0 {
		score += e.AnalyticsNetSubscribers * netSubscribersWt
	}
	if e.ChannelOrganicRatio > 0 {
		score += e.ChannelOrganicRatio * organicRatioWt
	}

	return score
}

// daysBetween returns the whole calendar days from a's day to b's day,
// ignoring clock time and location offsets.
func daysBetween(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	au := time.Date(ay, am, ad, 0, 0, 0, 0, time.UTC)
	bu := time.Date(by, bm, bd, 0, 0, 0, 0, time.UTC)
	return int(bu.Sub(au).Hours() / 24)
}
