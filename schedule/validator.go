package schedule

import (
	"fmt"
	"sort"
	"time"
)

// ViolationKind classifies a reported constraint breach.
type ViolationKind string

const (
	// ViolationInterval reports a gap below the minimum posting interval.
	ViolationInterval ViolationKind = "interval"
	// ViolationDayCap reports a calendar day holding more posts than the
	// per-day cap allows.
	ViolationDayCap ViolationKind = "day_cap"
	// ViolationReleaseDateDrift reports a date-fixed song whose final
	// posting date no longer matches its required release date. This is
	// the one severe condition in the scheduler: it breaks an explicit
	// external promise.
	ViolationReleaseDateDrift ViolationKind = "release_date_drift"
)

// Violation is a reported, non-fatal breach of a scheduling constraint,
// surfaced for operator review rather than blocking the run.
type Violation struct {
	Kind   ViolationKind `json:"kind"`
	Song   string        `json:"song_name"`
	Detail string        `json:"detail"`
	// Severe marks violations that break an external contract and must
	// be reviewed before the schedule is acted on.
	Severe bool `json:"severe"`
}

func (v Violation) String() string {
	sev := ""
	if v.Severe {
		sev = " [severe]"
	}
	return fmt.Sprintf("%s%s: %s: %s", v.Kind, sev, v.Song, v.Detail)
}

// Validate makes a read-only pass over the finalized schedule and collects
// residual constraint violations. It never mutates entries, so running it
// twice on the same schedule yields identical results.
func Validate(entries []*Entry, c Constraints) []Violation {
	sorted := make([]*Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PostAt.Before(sorted[j].PostAt)
	})

	var violations []Violation
	minGap := time.Duration(c.MinIntervalHours) * time.Hour
	dayCounts := make(map[string]int)
	dayOrder := make([]string, 0, len(sorted))

	var prev *Entry
	for _, e := range sorted {
		if prev != nil {
			if gap := e.PostAt.Sub(prev.PostAt); gap < minGap {
				violations = append(violations, Violation{
					Kind: ViolationInterval,
					Song: e.Name,
					Detail: fmt.Sprintf("gap of %.1fh after %q is below the %dh minimum",
						gap.Hours(), prev.Name, c.MinIntervalHours),
				})
			}
		}

		key := dayKey(e.PostAt)
		if dayCounts[key] == 0 {
			dayOrder = append(dayOrder, key)
		}
		dayCounts[key]++

		// Release-date fidelity: the date component of a date-fixed
		// entry must equal its required release date.
		if e.Mode == ModeDateFixed && !sameDay(e.PostAt, e.FixedDate) {
			violations = append(violations, Violation{
				Kind: ViolationReleaseDateDrift,
				Song: e.Name,
				Detail: fmt.Sprintf("scheduled %s but release date requires %s",
					e.PostAt.Format("2006-01-02 15:04"), e.FixedDate.Format("2006-01-02")),
				Severe: true,
			})
		}

		prev = e
	}

	for _, day := range dayOrder {
		if n := dayCounts[day]; n > c.MaxPostsPerDay {
			violations = append(violations, Violation{
				Kind:   ViolationDayCap,
				Song:   firstSongOnDay(sorted, day),
				Detail: fmt.Sprintf("%d posts on %s exceed the cap of %d", n, day, c.MaxPostsPerDay),
			})
		}
	}

	return violations
}

// firstSongOnDay returns the earliest-scheduled song name on the given day.
func firstSongOnDay(sorted []*Entry, day string) string {
	for _, e := range sorted {
		if dayKey(e.PostAt) == day {
			return e.Name
		}
	}
	return ""
}
