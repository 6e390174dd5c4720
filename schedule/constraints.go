package schedule

import (
	"fmt"
	"time"
)

// Constraints configures the scheduling constraint system. All fields have
// defaults; see DefaultConstraints.
type Constraints struct {
	// MinIntervalHours is the minimum gap between two consecutive posts.
	MinIntervalHours int `json:"min_interval_hours"`
	// MaxPostsPerDay caps how many posts may land on one calendar day.
	MaxPostsPerDay int `json:"max_posts_per_day"`
	// MaxDaysAhead bounds the free-mode search horizon in days.
	MaxDaysAhead int `json:"max_days_ahead"`
	// PreferredHours break ties between equally-scoring candidate hours.
	PreferredHours []int `json:"preferred_hours"`
	// AvoidHours are excluded from the candidate hour set entirely.
	AvoidHours []int `json:"avoid_hours"`
	// PreferredWeekdays filters which weekdays free-mode search considers.
	// Empty means all seven days are allowed.
	PreferredWeekdays []time.Weekday `json:"preferred_weekdays"`
	// FallbackHour is used when a song must be day-shifted by repair or
	// when no candidate slot scores positive.
	FallbackHour int `json:"fallback_hour"`
	// SearchParallelism bounds the worker pool for date-fixed slot
	// searches. Free-mode search is inherently sequential and ignores it.
	SearchParallelism int `json:"search_parallelism"`
}

// DefaultConstraints returns the standard constraint set.
func DefaultConstraints() Constraints {
	return Constraints{
		MinIntervalHours:  6,
		MaxPostsPerDay:    2,
		MaxDaysAhead:      90,
		PreferredHours:    []int{18, 19, 20, 21},
		AvoidHours:        []int{0, 1, 2, 3, 4, 5},
		PreferredWeekdays: nil, // all days allowed
		FallbackHour:      18,
		SearchParallelism: 4,
	}
}

// Validate checks the constraint set for internally consistent values.
func (c Constraints) Validate() error {
	if c.MinIntervalHours < 0 {
		return fmt.Errorf("schedule: min_interval_hours must be non-negative")
	}
	if c.MaxPostsPerDay < 1 {
		return fmt.Errorf("schedule: max_posts_per_day must be at least 1")
	}
	if c.MaxDaysAhead < 1 {
		return fmt.Errorf("schedule: max_days_ahead must be at least 1")
	}
	if c.FallbackHour < 0 || c.FallbackHour > 23 {
		return fmt.Errorf("schedule: fallback_hour must be in [0,23]")
	}
	for _, h := range c.PreferredHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("schedule: preferred hour %d out of range", h)
		}
	}
	for _, h := range c.AvoidHours {
		if h < 0 || h > 23 {
			return fmt.Errorf("schedule: avoid hour %d out of range", h)
		}
	}
	if len(c.AvoidHours) >= 24 {
		return fmt.Errorf("schedule: avoid_hours excludes every candidate hour")
	}
	return nil
}

// CandidateHours returns the hours eligible for slot search, in ascending
// order: all 24 hours minus the avoid set.
func (c Constraints) CandidateHours() []int {
	avoid := make(map[int]bool, len(c.AvoidHours))
	for _, h := range c.AvoidHours {
		avoid[h] = true
	}
	hours := make([]int, 0, 24-len(avoid))
	for h := 0; h < 24; h++ {
		if !avoid[h] {
			hours = append(hours, h)
		}
	}
	return hours
}

// allowsWeekday reports whether the given date passes the weekday filter.
func (c Constraints) allowsWeekday(d time.Time) bool {
	if len(c.PreferredWeekdays) == 0 {
		return true
	}
	for _, wd := range c.PreferredWeekdays {
		if d.Weekday() == wd {
			return true
		}
	}
	return false
}

// isPreferredHour reports whether h is in the preferred tie-break set.
func (c Constraints) isPreferredHour(h int) bool {
	for _, p := range c.PreferredHours {
		if p == h {
			return true
		}
	}
	return false
}
