// Package predict provides view-count predictors satisfying the scheduler's
// contract: deterministic estimates with a confidence score, degrading
// gracefully on failure.
//
// The scheduler is model-agnostic; anything implementing Predict can drive
// it. This package ships a rule-based Baseline built from the channel's own
// posting history, and WithTimeout for wrapping heavyweight models with a
// per-call time budget.
package predict

import (
	"context"
	"errors"
	"time"
)

// ErrNotReady indicates a predictor was asked for an estimate before it had
// any data to estimate from.
var ErrNotReady = errors.New("predict: predictor has no training data")

// Predictor estimates views and confidence for one candidate-slot feature
// vector. Implementations must be deterministic for fixed inputs, return
// views >= 0 and confidence in [0,1], and report failures as errors rather
// than panicking; callers score failed candidates zero and continue.
type Predictor interface {
	Predict(ctx context.Context, features []float64) (views, confidence float64, err error)
}

// Func adapts a plain function to the Predictor interface.
type Func func(ctx context.Context, features []float64) (float64, float64, error)

// Predict calls f.
func (f Func) Predict(ctx context.Context, features []float64) (float64, float64, error) {
	return f(ctx, features)
}

// WithTimeout wraps p with a per-call time budget. A call exceeding the
// budget returns context.DeadlineExceeded, which callers treat as an
// ordinary prediction failure. The wrapped call runs in its own goroutine
// so a model that ignores its context cannot stall the slot search.
func WithTimeout(p Predictor, budget time.Duration) Predictor {
	return &timeoutPredictor{inner: p, budget: budget}
}

type timeoutPredictor struct {
	inner  Predictor
	budget time.Duration
}

type prediction struct {
	views float64
	conf  float64
	err   error
}

func (t *timeoutPredictor) Predict(ctx context.Context, features []float64) (float64, float64, error) {
	ctx, cancel := context.WithTimeout(ctx, t.budget)
	defer cancel()

	done := make(chan prediction, 1)
	go func() {
		v, c, err := t.inner.Predict(ctx, features)
		done <- prediction{v, c, err}
	}()

	select {
	case res := <-done:
		return res.views, res.conf, res.err
	case <-ctx.Done():
		return 0, 0, ctx.Err()
	}
}
