package schedule

import (
	"log"
	"time"
)

// releaseDateLayouts are the date formats accepted for Song.ReleaseDate.
// The ranking export writes slash dates; ISO dates appear in older files.
var releaseDateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	time.RFC3339,
}

// Classify partitions the catalog into free and date-fixed entries based on
// each song's release date relative to today. An absent, unparseable, or
// past release date yields ModeFree; a release date on or after today pins
// the entry to that date (ModeDateFixed) with only the hour left to search.
//
// Parse failures never abort classification: over-constraining would block
// the whole pipeline, so a bad date falls open to ModeFree with a warning.
func Classify(entries []*Entry, today time.Time) {
	for _, e := range entries {
		e.Mode = ModeFree
		e.FixedDate = time.Time{}

		if e.ReleaseDate == "" {
			continue
		}
		rd, err := ParseReleaseDate(e.ReleaseDate)
		if err != nil {
			log.Printf("schedule: unparseable release date %q for %q, treating as free", e.ReleaseDate, e.Name)
			continue
		}
		if beforeDay(rd, today) {
			continue
		}
		e.Mode = ModeDateFixed
		e.FixedDate = rd
	}
}

// ParseReleaseDate parses a release date in any accepted layout, returning
// the date truncated to midnight in the date's location.
func ParseReleaseDate(s string) (time.Time, error) {
	var firstErr error
	for _, layout := range releaseDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return midnight(t), nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return time.Time{}, firstErr
}

// midnight truncates t to the start of its calendar day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// sameDay reports whether a and b fall on the same calendar day.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// beforeDay reports whether a's calendar day is strictly before b's,
// ignoring clock time and location offsets.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
