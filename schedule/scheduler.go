package schedule

import (
	"context"
	"log"
	"sync"
	"time"
)

// Scheduler runs the full optimization pipeline: classify, rank, search,
// repair, validate. It is safe for reuse across runs; a single run is
// synchronous apart from the bounded fan-out of date-fixed slot searches.
type Scheduler struct {
	Predictor   Predictor
	Features    FeatureBuilder
	Constraints Constraints

	// Now is injectable for testability. Defaults to time.Now.
	Now func() time.Time
}

// NewScheduler builds a Scheduler with the given predictor and feature
// builder and default constraints.
func NewScheduler(p Predictor, fb FeatureBuilder) *Scheduler {
	return &Scheduler{
		Predictor:   p,
		Features:    fb,
		Constraints: DefaultConstraints(),
	}
}

// Optimize schedules the whole catalog and returns the time-sorted result.
// Every input song appears in the output exactly once with a posting time
// assigned; residual constraint breaches are returned as violations, never
// as an error. The only error condition is an invalid constraint set.
func (s *Scheduler) Optimize(ctx context.Context, songs []Song) (*Result, error) {
	if err := s.Constraints.Validate(); err != nil {
		return nil, err
	}

	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	today := now()

	entries := make([]*Entry, len(songs))
	for i, song := range songs {
		entries[i] = &Entry{Song: song}
	}

	Classify(entries, today)
	Rank(entries, today)

	searcher := &Searcher{
		Predictor:   s.Predictor,
		Features:    s.Features,
		Constraints: s.Constraints,
	}
	s.assignSlots(ctx, searcher, entries, today)

	RepairIntervals(entries, s.Constraints)
	violations := Validate(entries, s.Constraints)

	if len(violations) > 0 {
		log.Printf("schedule: optimization finished with %d residual violation(s)", len(violations))
	}

	return &Result{Entries: entries, Violations: violations}, nil
}

// assignSlots gives every entry a first-pass posting time. Date-fixed
// searches are independent of each other and fan out over a bounded worker
// pool; results land in each entry's own record so priority order is
// preserved for the downstream sweep. Free-mode search stays sequential in
// priority order because consecutive songs share the advancing start-date
// cursor.
func (s *Scheduler) assignSlots(ctx context.Context, searcher *Searcher, entries []*Entry, today time.Time) {
	workers := s.Constraints.SearchParallelism
	if workers < 1 {
		workers = 1
	}

	fixed := make(chan *Entry)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for e := range fixed {
				searcher.SearchFixed(ctx, e)
			}
		}()
	}
	for _, e := range entries {
		if e.Mode == ModeDateFixed {
			fixed <- e
		}
	}
	close(fixed)
	wg.Wait()

	cursor := midnight(today)
	for _, e := range entries {
		if e.Mode == ModeFree {
			cursor = searcher.SearchFree(ctx, e, cursor)
		}
	}
}
