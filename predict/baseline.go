package predict

import (
	"context"
	"math"

	"songsched/features"
)

// Baseline is a rule-based view-count estimator: the channel's historical
// mean views, scaled by hour-of-day and weekday performance multipliers and
// by the song's own engagement baseline. It stands in for a trained model
// whenever one is unavailable and doubles as the deterministic reference
// implementation of the predictor contract.
type Baseline struct {
	// BaseViews is the channel's mean views per post.
	BaseViews float64
	// HourMult scales BaseViews per posting hour. A zero entry means the
	// hour has no historical sample and is treated as neutral (1.0).
	HourMult [24]float64
	// WeekdayMult scales BaseViews per weekday, Monday = 0.
	WeekdayMult [7]float64
	// Samples is the number of historical posts behind the profile;
	// confidence grows with it.
	Samples int
}

// NewBaseline returns a neutral baseline around the given mean views. All
// multipliers start at 1.0.
func NewBaseline(baseViews float64) *Baseline {
	b := &Baseline{BaseViews: baseViews}
	for i := range b.HourMult {
		b.HourMult[i] = 1
	}
	for i := range b.WeekdayMult {
		b.WeekdayMult[i] = 1
	}
	return b
}

// Predict implements the Predictor contract. It never fails once the
// baseline has a positive mean; with no data it returns ErrNotReady so the
// searcher falls through to its heuristic slot.
func (b *Baseline) Predict(_ context.Context, vec []float64) (float64, float64, error) {
	if b.BaseViews <= 0 {
		return 0, 0, ErrNotReady
	}
	if len(vec) < features.Count {
		return 0, 0, ErrNotReady
	}

	views := b.BaseViews
	if h := int(vec[features.IdxHour]); h >= 0 && h < 24 && b.HourMult[h] > 0 {
		views *= b.HourMult[h]
	}
	if d := int(vec[features.IdxWeekday]); d >= 0 && d < 7 && b.WeekdayMult[d] > 0 {
		views *= b.WeekdayMult[d]
	}

	// Songs that historically outperform the channel mean keep doing so;
	// dampened to a square root so one viral outlier does not dominate.
	if logViews := vec[features.IdxLogViewCount]; logViews > 0 {
		songViews := math.Expm1(logViews)
		views *= math.Sqrt((songViews + 1) / (b.BaseViews + 1))
	}

	// Mild engagement bonus: support rate is on a 0-100 scale.
	if sr := vec[features.IdxSupportRate]; sr > 0 {
		views *= 1 + sr/1000
	}

	return views, b.confidence(), nil
}

// confidence maps the historical sample count to [0.2, 0.9]; more history
// means more trust, saturating around 100 posts.
func (b *Baseline) confidence() float64 {
	c := 0.2 + 0.7*float64(b.Samples)/100
	return math.Min(c, 0.9)
}
