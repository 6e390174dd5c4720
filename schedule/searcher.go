package schedule

import (
	"context"
	"log"
	"time"
)

// fallbackConfidence is reported when the heuristic fallback slot was used
// instead of a predictor-chosen one.
const fallbackConfidence = 0.1

// Searcher scans candidate (date, hour) slots for a single song and picks
// the one the predictor scores highest. It holds only read-only config and
// the predictor, so distinct songs may be searched concurrently.
type Searcher struct {
	Predictor   Predictor
	Features    FeatureBuilder
	Constraints Constraints
}

// slot is one scored (date, hour) candidate.
type slot struct {
	date       time.Time
	hour       int
	views      float64
	confidence float64
}

// SearchFixed finds the best posting hour on a pinned date and annotates the
// entry. The date component never changes; only the hour is searched. When
// no candidate hour scores positive the heuristic fallback hour is used.
func (s *Searcher) SearchFixed(ctx context.Context, e *Entry) {
	best, ok := s.bestHour(ctx, e.Song, e.FixedDate)
	if !ok {
		h := s.heuristicHour(e.FixedDate)
		log.Printf("schedule: no positive prediction for %q on %s, using heuristic hour %d",
			e.Name, e.FixedDate.Format("2006-01-02"), h)
		e.PostAt = at(e.FixedDate, h)
		e.PredictedViews = 0
		e.Confidence = fallbackConfidence
		return
	}
	e.PostAt = at(e.FixedDate, best.hour)
	e.PredictedViews = best.views
	e.Confidence = best.confidence
}

// SearchFree scans a bounded horizon of consecutive days starting at start,
// annotates the entry with the best (date, hour) found, and returns the
// advanced cursor: the day after the chosen date. Subsequent free songs
// start their scan there so they do not stack on the same day by default;
// the hard stacking limits are interval repair's job.
func (s *Searcher) SearchFree(ctx context.Context, e *Entry, start time.Time) time.Time {
	startDay := midnight(start)
	var best slot
	found := false

	for off := 0; off < s.Constraints.MaxDaysAhead; off++ {
		day := startDay.AddDate(0, 0, off)
		if !s.Constraints.allowsWeekday(day) {
			continue
		}
		cand, ok := s.bestHour(ctx, e.Song, day)
		if !ok {
			continue
		}
		if !found || cand.views > best.views {
			best = cand
			found = true
		}
	}

	if !found {
		day := s.earliestAllowedDay(startDay)
		h := s.heuristicHour(day)
		log.Printf("schedule: search horizon exhausted for %q, using fallback slot %s %02d:00",
			e.Name, day.Format("2006-01-02"), h)
		e.PostAt = at(day, h)
		e.PredictedViews = 0
		e.Confidence = fallbackConfidence
		return day.AddDate(0, 0, 1)
	}

	e.PostAt = at(best.date, best.hour)
	e.PredictedViews = best.views
	e.Confidence = best.confidence
	return best.date.AddDate(0, 0, 1)
}

// bestHour scores every candidate hour on the given date and returns the
// highest-scoring slot. Ties prefer hours in the configured preferred set,
// then the lowest hour. A prediction failure or out-of-range output scores
// the candidate zero and the scan continues; ok is false when nothing
// scored positive.
func (s *Searcher) bestHour(ctx context.Context, song Song, date time.Time) (slot, bool) {
	best := slot{date: date}
	found := false

	for _, h := range s.Constraints.CandidateHours() {
		views, conf := s.predictSlot(ctx, song, date, h)
		if views <= 0 {
			continue
		}
		if !found || views > best.views || (views == best.views && s.betterTie(h, best.hour)) {
			best.hour = h
			best.views = views
			best.confidence = conf
			found = true
		}
	}
	return best, found
}

// predictSlot queries the predictor for one candidate, degrading any failure
// to a zero score per the predictor contract.
func (s *Searcher) predictSlot(ctx context.Context, song Song, date time.Time, hour int) (views, confidence float64) {
	features := s.Features(song, date, hour)
	v, c, err := s.Predictor.Predict(ctx, features)
	if err != nil {
		return 0, 0
	}
	if v < 0 || c < 0 || c > 1 {
		return 0, 0
	}
	return v, c
}

// betterTie reports whether candidate hour h should win a score tie against
// the current best hour: preferred hours beat non-preferred, then lower
// hours beat higher ones.
func (s *Searcher) betterTie(h, current int) bool {
	hp := s.Constraints.isPreferredHour(h)
	cp := s.Constraints.isPreferredHour(current)
	if hp != cp {
		return hp
	}
	return h < current
}

// heuristicHour is the statistical fallback when no prediction succeeds:
// evenings perform best, weekends slightly later.
func (s *Searcher) heuristicHour(date time.Time) int {
	if wd := date.Weekday(); wd == time.Saturday || wd == time.Sunday {
		return 20
	}
	return s.Constraints.FallbackHour
}

// earliestAllowedDay returns the first day at or after start passing the
// weekday filter within the horizon, or start itself if none does.
func (s *Searcher) earliestAllowedDay(start time.Time) time.Time {
	for off := 0; off < s.Constraints.MaxDaysAhead; off++ {
		day := start.AddDate(0, 0, off)
		if s.Constraints.allowsWeekday(day) {
			return day
		}
	}
	return start
}

// at combines a calendar day with an hour-of-day.
func at(day time.Time, hour int) time.Time {
	y, m, d := day.Date()
	return time.Date(y, m, d, hour, 0, 0, 0, day.Location())
}
