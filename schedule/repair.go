package schedule

import (
	"sort"
	"time"
)

// RepairIntervals enforces minimum spacing and the per-day posting cap over
// a tentative schedule with a single forward sweep in posting-time order.
//
// Two repairs are applied, in order, per entry:
//
//  1. If the gap to the previous (already finalized) post is below the
//     minimum interval, the entry is pushed forward to exactly
//     previous + MinIntervalHours.
//  2. If the entry's day already holds MaxPostsPerDay posts, a free entry is
//     moved to the next day at the fallback hour. Date-fixed entries are
//     exempt from day-shifting: moving them would break the release-date
//     contract, so the overflow is left in place for the validator to
//     report instead.
//
// Each finalized time is >= the previous one, so the sweep stays monotonic
// and never retroactively violates an earlier decision. Entries that moved
// are marked IntervalAdjusted.
func RepairIntervals(entries []*Entry, c Constraints) {
	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].PostAt.Before(entries[j].PostAt)
	})

	minGap := time.Duration(c.MinIntervalHours) * time.Hour
	dayCounts := make(map[string]int)
	var prev time.Time

	for i, e := range entries {
		t := e.PostAt
		adjusted := false

		// Minimum spacing from the previous finalized post. This can
		// cross midnight; for a date-fixed entry the resulting date
		// drift is surfaced by the validator.
		if i > 0 && t.Sub(prev) < minGap {
			t = prev.Add(minGap)
			adjusted = true
		}

		// Day cap. Free entries roll forward day by day until a day
		// with room is found, always re-checking the spacing rule.
		if e.Mode != ModeDateFixed {
			for dayCounts[dayKey(t)] >= c.MaxPostsPerDay {
				t = at(midnight(t).AddDate(0, 0, 1), c.FallbackHour)
				if i > 0 && t.Sub(prev) < minGap {
					t = prev.Add(minGap)
				}
				adjusted = true
			}
		}

		if adjusted {
			e.PostAt = t
			e.IntervalAdjusted = true
		}
		dayCounts[dayKey(t)]++
		prev = t
	}
}

// dayKey identifies a calendar day for counting.
func dayKey(t time.Time) string {
	return t.Format("2006-01-02")
}
