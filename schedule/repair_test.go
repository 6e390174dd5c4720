package schedule

import (
	"testing"
	"time"
)

func day(offset, hour int) time.Time {
	return at(midnight(testToday).AddDate(0, 0, offset), hour)
}

func freeAt(name string, t time.Time) *Entry {
	return &Entry{Song: Song{Name: name}, Mode: ModeFree, PostAt: t}
}

func TestRepairPushesShortGapForward(t *testing.T) {
	a := freeAt("a", day(0, 20))
	b := freeAt("b", day(0, 22)) // only 2h after a
	c := DefaultConstraints()

	RepairIntervals([]*Entry{a, b}, c)

	if a.IntervalAdjusted {
		t.Error("first entry should not be adjusted")
	}
	if !b.IntervalAdjusted {
		t.Error("second entry should be marked adjusted")
	}
	want := a.PostAt.Add(6 * time.Hour)
	if !b.PostAt.Equal(want) {
		t.Errorf("b.PostAt = %v, want exactly previous + 6h = %v", b.PostAt, want)
	}
}

func TestRepairSameSlotCollision(t *testing.T) {
	// Both songs naturally pick the same day and hour.
	a := freeAt("a", day(0, 20))
	b := freeAt("b", day(0, 20))
	c := DefaultConstraints()

	RepairIntervals([]*Entry{a, b}, c)

	if got := b.PostAt.Sub(a.PostAt); got < 6*time.Hour {
		t.Errorf("gap = %v, want >= 6h", got)
	}
}

func TestRepairDayCapSpreadsAcrossConsecutiveDays(t *testing.T) {
	// Three free songs all scoring best on the same day with a cap of 1
	// must spread across three consecutive days.
	entries := []*Entry{
		freeAt("a", day(0, 18)),
		freeAt("b", day(0, 19)),
		freeAt("c", day(0, 20)),
	}
	c := DefaultConstraints()
	c.MaxPostsPerDay = 1

	RepairIntervals(entries, c)

	for i := 0; i < 3; i++ {
		want := midnight(testToday).AddDate(0, 0, i)
		if !sameDay(entries[i].PostAt, want) {
			t.Errorf("entries[%d].PostAt = %v, want day %v", i, entries[i].PostAt, want)
		}
	}
	if entries[0].IntervalAdjusted {
		t.Error("first entry should be unadjusted")
	}
	for i := 1; i < 3; i++ {
		if !entries[i].IntervalAdjusted {
			t.Errorf("entries[%d] should be marked adjusted", i)
		}
	}
}

func TestRepairDayShiftUsesFallbackHour(t *testing.T) {
	entries := []*Entry{
		freeAt("a", day(0, 6)),
		freeAt("b", day(0, 12)),
		freeAt("c", day(0, 20)),
	}
	c := DefaultConstraints() // cap 2

	RepairIntervals(entries, c)

	if !sameDay(entries[2].PostAt, midnight(testToday).AddDate(0, 0, 1)) {
		t.Fatalf("third entry not moved to next day: %v", entries[2].PostAt)
	}
	if got := entries[2].PostAt.Hour(); got != c.FallbackHour {
		t.Errorf("day-shifted hour = %d, want fallback hour %d", got, c.FallbackHour)
	}
}

func TestRepairDateFixedExemptFromDayShift(t *testing.T) {
	fixedDay := midnight(testToday).AddDate(0, 0, 3)
	a := freeAt("a", at(fixedDay, 8))
	b := freeAt("b", at(fixedDay, 15))
	fixed := &Entry{
		Song:      Song{Name: "pinned"},
		Mode:      ModeDateFixed,
		FixedDate: fixedDay,
		PostAt:    at(fixedDay, 21),
	}
	c := DefaultConstraints() // cap 2

	RepairIntervals([]*Entry{a, b, fixed}, c)

	// The day is over cap, but the pinned entry must keep its date; the
	// validator reports the overflow instead.
	if !sameDay(fixed.PostAt, fixedDay) {
		t.Errorf("date-fixed entry day-shifted to %v, want kept on %v", fixed.PostAt, fixedDay)
	}
}

func TestRepairSweepStaysMonotonic(t *testing.T) {
	entries := []*Entry{
		freeAt("a", day(0, 20)),
		freeAt("b", day(0, 21)),
		freeAt("c", day(0, 22)),
		freeAt("d", day(1, 7)),
	}
	c := DefaultConstraints()
	c.MaxPostsPerDay = 5

	RepairIntervals(entries, c)

	for i := 1; i < len(entries); i++ {
		gap := entries[i].PostAt.Sub(entries[i-1].PostAt)
		if gap < 6*time.Hour {
			t.Errorf("gap between %q and %q = %v, want >= 6h",
				entries[i-1].Name, entries[i].Name, gap)
		}
	}
}

func TestRepairEmptyAndSingle(t *testing.T) {
	c := DefaultConstraints()
	RepairIntervals(nil, c)

	solo := freeAt("solo", day(0, 18))
	RepairIntervals([]*Entry{solo}, c)
	if solo.IntervalAdjusted {
		t.Error("single entry should never need adjustment")
	}
}
