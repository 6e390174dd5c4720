package transport

import (
	"errors"
	"testing"
	"time"
)

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	for i := 0; i < 2; i++ {
		if err := b.Allow("api.example.com"); err != nil {
			t.Fatalf("Allow() before threshold = %v, want nil", err)
		}
		b.RecordFailure("api.example.com")
	}
	if got := b.State("api.example.com"); got != StateClosed {
		t.Errorf("State() after 2 failures = %v, want closed", got)
	}

	b.RecordFailure("api.example.com")
	if got := b.State("api.example.com"); got != StateOpen {
		t.Errorf("State() after 3 failures = %v, want open", got)
	}
	if err := b.Allow("api.example.com"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() on open circuit = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerSuccessResetsCount(t *testing.T) {
	b := NewBreaker(3, time.Minute)

	b.RecordFailure("api.example.com")
	b.RecordFailure("api.example.com")
	b.RecordSuccess("api.example.com")
	b.RecordFailure("api.example.com")
	b.RecordFailure("api.example.com")

	if got := b.State("api.example.com"); got != StateClosed {
		t.Errorf("State() = %v, want closed after success reset the count", got)
	}
}

func TestBreakerHalfOpenProbe(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.RecordFailure("api.example.com")
	if got := b.State("api.example.com"); got != StateOpen {
		t.Fatalf("State() = %v, want open", got)
	}

	time.Sleep(20 * time.Millisecond)

	// First request after the recovery timeout is the probe.
	if err := b.Allow("api.example.com"); err != nil {
		t.Fatalf("Allow() probe = %v, want nil", err)
	}
	if got := b.State("api.example.com"); got != StateHalfOpen {
		t.Fatalf("State() = %v, want half-open", got)
	}

	// A second request while the probe is in flight is rejected.
	if err := b.Allow("api.example.com"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() during probe = %v, want ErrCircuitOpen", err)
	}

	b.RecordSuccess("api.example.com")
	if got := b.State("api.example.com"); got != StateClosed {
		t.Errorf("State() after probe success = %v, want closed", got)
	}
}

func TestBreakerProbeFailureReopens(t *testing.T) {
	b := NewBreaker(1, 10*time.Millisecond)

	b.RecordFailure("api.example.com")
	time.Sleep(20 * time.Millisecond)

	if err := b.Allow("api.example.com"); err != nil {
		t.Fatalf("Allow() probe = %v, want nil", err)
	}
	b.RecordFailure("api.example.com")

	if got := b.State("api.example.com"); got != StateOpen {
		t.Errorf("State() after probe failure = %v, want open", got)
	}
	if err := b.Allow("api.example.com"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow() after probe failure = %v, want ErrCircuitOpen", err)
	}
}

func TestBreakerHostsAreIndependent(t *testing.T) {
	b := NewBreaker(1, time.Minute)

	b.RecordFailure("down.example.com")
	if err := b.Allow("down.example.com"); !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Allow(down) = %v, want ErrCircuitOpen", err)
	}
	if err := b.Allow("up.example.com"); err != nil {
		t.Errorf("Allow(up) = %v, want nil", err)
	}
}

func TestBreakerStateString(t *testing.T) {
	tests := []struct {
		state BreakerState
		want  string
	}{
		{StateClosed, "closed"},
		{StateOpen, "open"},
		{StateHalfOpen, "half-open"},
		{BreakerState(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.state.String(); got != tt.want {
			t.Errorf("String(%d) = %q, want %q", int(tt.state), got, tt.want)
		}
	}
}

func TestNilBreakerIsNoop(t *testing.T) {
	var b *Breaker

	if err := b.Allow("api.example.com"); err != nil {
		t.Errorf("nil Allow() = %v, want nil", err)
	}
	b.RecordSuccess("api.example.com")
	b.RecordFailure("api.example.com")
	if got := b.State("api.example.com"); got != StateClosed {
		t.Errorf("nil State() = %v, want closed", got)
	}
}
