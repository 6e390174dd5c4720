package predict

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"songsched/features"
	"songsched/schedule"
)

var testDate = time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a Monday

func vec(song schedule.Song, hour int) []float64 {
	return features.Build(song, testDate, hour)
}

func TestWithTimeoutCutsOffSlowPredictor(t *testing.T) {
	slow := Func(func(ctx context.Context, _ []float64) (float64, float64, error) {
		select {
		case <-time.After(5 * time.Second):
			return 100, 0.9, nil
		case <-ctx.Done():
			return 0, 0, ctx.Err()
		}
	})

	p := WithTimeout(slow, 20*time.Millisecond)
	_, _, err := p.Predict(context.Background(), vec(schedule.Song{}, 18))

	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("error = %v, want deadline exceeded", err)
	}
}

func TestWithTimeoutPassesThroughFastPredictor(t *testing.T) {
	fast := Func(func(_ context.Context, _ []float64) (float64, float64, error) {
		return 42, 0.5, nil
	})

	v, c, err := WithTimeout(fast, time.Second).Predict(context.Background(), vec(schedule.Song{}, 18))
	if err != nil {
		t.Fatalf("Predict() error = %v", err)
	}
	if v != 42 || c != 0.5 {
		t.Errorf("Predict() = (%v, %v), want (42, 0.5)", v, c)
	}
}

func TestWithTimeoutGuardsModelIgnoringContext(t *testing.T) {
	stubborn := Func(func(_ context.Context, _ []float64) (float64, float64, error) {
		time.Sleep(2 * time.Second) // ignores cancellation entirely
		return 1, 1, nil
	})

	start := time.Now()
	_, _, err := WithTimeout(stubborn, 20*time.Millisecond).Predict(context.Background(), vec(schedule.Song{}, 18))

	if err == nil {
		t.Fatal("expected an error from the timed-out call")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("call blocked for %v despite the budget", elapsed)
	}
}

func TestBaselineNotReadyWithoutData(t *testing.T) {
	b := &Baseline{}
	_, _, err := b.Predict(context.Background(), vec(schedule.Song{}, 18))
	if !errors.Is(err, ErrNotReady) {
		t.Errorf("error = %v, want ErrNotReady", err)
	}
}

func TestBaselineOutputsWithinContract(t *testing.T) {
	b := NewBaseline(50_000)
	b.Samples = 40

	song := schedule.Song{Name: "x", ViewCount: 80_000, SupportRate: 90}
	for hour := 0; hour < 24; hour++ {
		v, c, err := b.Predict(context.Background(), vec(song, hour))
		if err != nil {
			t.Fatalf("hour %d: Predict() error = %v", hour, err)
		}
		if v < 0 {
			t.Errorf("hour %d: views = %v, want >= 0", hour, v)
		}
		if c < 0 || c > 1 {
			t.Errorf("hour %d: confidence = %v, want in [0,1]", hour, c)
		}
	}
}

func TestBaselineHourMultiplierShiftsPrediction(t *testing.T) {
	b := NewBaseline(10_000)
	b.HourMult[20] = 2.0
	b.HourMult[9] = 0.5

	song := schedule.Song{Name: "x"}
	evening, _, _ := b.Predict(context.Background(), vec(song, 20))
	morning, _, _ := b.Predict(context.Background(), vec(song, 9))

	if evening <= morning {
		t.Errorf("evening = %v should exceed morning = %v", evening, morning)
	}
	if ratio := evening / morning; math.Abs(ratio-4) > 1e-9 {
		t.Errorf("evening/morning ratio = %v, want 4", ratio)
	}
}

func TestBaselineDeterministic(t *testing.T) {
	b := NewBaseline(25_000)
	b.Samples = 10
	song := schedule.Song{Name: "x", ViewCount: 30_000}

	v1, c1, _ := b.Predict(context.Background(), vec(song, 19))
	v2, c2, _ := b.Predict(context.Background(), vec(song, 19))

	if v1 != v2 || c1 != c2 {
		t.Error("Baseline predictions differ across identical calls")
	}
}

func TestBaselineConfidenceGrowsWithSamples(t *testing.T) {
	few := NewBaseline(1000)
	few.Samples = 3
	many := NewBaseline(1000)
	many.Samples = 80

	if few.confidence() >= many.confidence() {
		t.Errorf("confidence(3 samples)=%v should be below confidence(80 samples)=%v",
			few.confidence(), many.confidence())
	}
	if many.confidence() > 0.9 {
		t.Errorf("confidence = %v, want capped at 0.9", many.confidence())
	}
}
