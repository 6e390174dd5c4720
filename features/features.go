// Package features builds the feature vectors consumed by view-count
// predictors.
//
// The layout is fixed and indexed by the Idx constants below; predictors and
// the scheduler agree on it but treat the vector as opaque otherwise. Build
// is deterministic and side-effect-free, so callers may cache vectors for
// identical (song, date, hour) inputs.
package features

import (
	"math"
	"time"

	"songsched/schedule"
)

// Vector layout. Temporal features first, then the release-date relation,
// then the song's historical engagement signals.
const (
	IdxHour = iota
	IdxWeekday
	IdxMonth
	IdxDayOfMonth
	IdxHourSin
	IdxHourCos
	IdxWeekdaySin
	IdxWeekdayCos
	IdxMonthSin
	IdxMonthCos
	IdxIsWeekend
	IdxIsMorning
	IdxIsAfternoon
	IdxIsEvening
	IdxIsNight
	IdxIsPeakHour
	IdxSeason
	IdxDaysSinceRelease
	IdxIsReleaseDay
	IdxLogViewCount
	IdxLogLikeCount
	IdxLogCommentCount
	IdxSupportRate
	IdxGrowthRate
	IdxEngagementRate
	IdxLikeRate
	IdxRetentionRate
	IdxCTR

	// Count is the vector length.
	Count
)

// Build produces the feature vector for posting the given song on the given
// calendar day at the given hour.
func Build(song schedule.Song, date time.Time, hour int) []float64 {
	v := make([]float64, Count)

	weekday := mondayWeekday(date)
	month := int(date.Month())

	v[IdxHour] = float64(hour)
	v[IdxWeekday] = float64(weekday)
	v[IdxMonth] = float64(month)
	v[IdxDayOfMonth] = float64(date.Day())

	// Cyclic encodings so hour 23 sits next to hour 0, December next to
	// January.
	v[IdxHourSin] = math.Sin(2 * math.Pi * float64(hour) / 24)
	v[IdxHourCos] = math.Cos(2 * math.Pi * float64(hour) / 24)
	v[IdxWeekdaySin] = math.Sin(2 * math.Pi * float64(weekday) / 7)
	v[IdxWeekdayCos] = math.Cos(2 * math.Pi * float64(weekday) / 7)
	v[IdxMonthSin] = math.Sin(2 * math.Pi * float64(month) / 12)
	v[IdxMonthCos] = math.Cos(2 * math.Pi * float64(month) / 12)

	if weekday >= 5 {
		v[IdxIsWeekend] = 1
	}
	switch {
	case hour < 6:
		v[IdxIsNight] = 1
	case hour < 12:
		v[IdxIsMorning] = 1
	case hour < 18:
		v[IdxIsAfternoon] = 1
	default:
		v[IdxIsEvening] = 1
	}
	if hour >= 18 && hour <= 21 {
		v[IdxIsPeakHour] = 1
	}
	v[IdxSeason] = float64((month % 12) / 3)

	if song.ReleaseDate != "" {
		if rd, err := schedule.ParseReleaseDate(song.ReleaseDate); err == nil {
			days := int(truncDay(date).Sub(rd).Hours() / 24)
			v[IdxDaysSinceRelease] = float64(days)
			if days == 0 {
				v[IdxIsReleaseDay] = 1
			}
		}
	}

	v[IdxLogViewCount] = math.Log1p(song.ViewCount)
	v[IdxLogLikeCount] = math.Log1p(song.LikeCount)
	v[IdxLogCommentCount] = math.Log1p(song.CommentCount)
	v[IdxSupportRate] = song.SupportRate
	v[IdxGrowthRate] = song.GrowthRate
	v[IdxEngagementRate] = song.AnalyticsEngagementRate
	v[IdxLikeRate] = song.AnalyticsLikeRate
	v[IdxRetentionRate] = song.AnalyticsRetentionRate
	v[IdxCTR] = song.AnalyticsCTR

	return v
}

// mondayWeekday maps time.Weekday (Sunday=0) to a Monday=0 index, matching
// the convention the historical training data used.
func mondayWeekday(t time.Time) int {
	return (int(t.Weekday()) + 6) % 7
}

// truncDay reduces t to midnight UTC of its calendar day so day arithmetic
// ignores clock time and location offsets.
func truncDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
