package history

import (
	"time"

	"songsched/predict"
)

// Profile summarizes how past uploads performed by posting hour and
// weekday, relative to the channel's overall mean views.
type Profile struct {
	// BaseViews is the mean view count across all recorded posts.
	BaseViews float64
	// HourMult holds per-hour view multipliers against BaseViews. Hours
	// with no samples stay at the neutral 1.0.
	HourMult [24]float64
	// WeekdayMult holds per-weekday multipliers, Monday = 0.
	WeekdayMult [7]float64
	// Samples is the number of posts behind the profile.
	Samples int
}

// Baseline converts the profile into a ready-to-use baseline predictor.
func (p *Profile) Baseline() *predict.Baseline {
	b := predict.NewBaseline(p.BaseViews)
	b.HourMult = p.HourMult
	b.WeekdayMult = p.WeekdayMult
	b.Samples = p.Samples
	return b
}

// BuildProfile aggregates the whole posting history into a performance
// profile. An empty history yields a zero-sample profile whose baseline
// reports ErrNotReady, which keeps the searcher on its heuristic path.
func (s *Store) BuildProfile() (*Profile, error) {
	posts, err := s.Recent(0)
	if err != nil {
		return nil, err
	}
	return profileFromPosts(posts), nil
}

func profileFromPosts(posts []PostedVideo) *Profile {
	p := &Profile{}
	for i := range p.HourMult {
		p.HourMult[i] = 1
	}
	for i := range p.WeekdayMult {
		p.WeekdayMult[i] = 1
	}
	if len(posts) == 0 {
		return p
	}

	var total float64
	hourSum := [24]float64{}
	hourN := [24]int{}
	daySum := [7]float64{}
	dayN := [7]int{}
	for _, post := range posts {
		total += post.ViewCount
		h := post.PostedAt.Hour()
		hourSum[h] += post.ViewCount
		hourN[h]++
		d := mondayIndex(post.PostedAt.Weekday())
		daySum[d] += post.ViewCount
		dayN[d]++
	}

	p.Samples = len(posts)
	p.BaseViews = total / float64(len(posts))
	if p.BaseViews <= 0 {
		return p
	}
	for h := 0; h < 24; h++ {
		if hourN[h] > 0 {
			p.HourMult[h] = hourSum[h] / float64(hourN[h]) / p.BaseViews
		}
	}
	for d := 0; d < 7; d++ {
		if dayN[d] > 0 {
			p.WeekdayMult[d] = daySum[d] / float64(dayN[d]) / p.BaseViews
		}
	}
	return p
}

// mondayIndex maps time.Weekday (Sunday = 0) onto the Monday = 0 scale the
// predictor's weekday multipliers use.
func mondayIndex(w time.Weekday) int {
	return (int(w) + 6) % 7
}
