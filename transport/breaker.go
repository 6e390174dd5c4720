package transport

import (
	"errors"
	"sync"
	"time"
)

// BreakerState is the state of a per-host circuit.
type BreakerState int

const (
	// StateClosed allows requests through.
	StateClosed BreakerState = iota
	// StateOpen fails requests fast.
	StateOpen
	// StateHalfOpen lets a single probe request through.
	StateHalfOpen
)

func (s BreakerState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

const (
	// DefaultFailureThreshold is the consecutive failure count that opens a circuit.
	DefaultFailureThreshold = 5
	// DefaultRecoveryTimeout is how long an open circuit waits before probing.
	DefaultRecoveryTimeout = 30 * time.Second
)

// ErrCircuitOpen is returned when a host's circuit is open and the
// recovery timeout has not elapsed yet.
var ErrCircuitOpen = errors.New("transport: circuit open")

type circuit struct {
	state             BreakerState
	consecutiveErrors int
	lastStateChange   time.Time
	probeInFlight     bool
}

// Breaker tracks consecutive failures per host and fails fast once a
// host has proven unhealthy. After RecoveryTimeout a single probe
// request is allowed; its outcome decides whether the circuit closes
// again or stays open.
type Breaker struct {
	mu               sync.Mutex
	circuits         map[string]*circuit
	failureThreshold int
	recoveryTimeout  time.Duration
}

// NewBreaker creates a breaker with the given threshold and recovery
// timeout. Non-positive values fall back to the defaults.
func NewBreaker(threshold int, recovery time.Duration) *Breaker {
	if threshold <= 0 {
		threshold = DefaultFailureThreshold
	}
	if recovery <= 0 {
		recovery = DefaultRecoveryTimeout
	}
	return &Breaker{
		circuits:         make(map[string]*circuit),
		failureThreshold: threshold,
		recoveryTimeout:  recovery,
	}
}

// Allow reports whether a request to host may proceed. It returns
// ErrCircuitOpen when the circuit is open and not yet due for a probe.
func (b *Breaker) Allow(host string) error {
	if b == nil {
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	switch c.state {
	case StateClosed:
		return nil
	case StateOpen:
		if time.Since(c.lastStateChange) >= b.recoveryTimeout {
			c.state = StateHalfOpen
			c.lastStateChange = time.Now()
			c.probeInFlight = true
			return nil
		}
		return ErrCircuitOpen
	case StateHalfOpen:
		if !c.probeInFlight {
			c.probeInFlight = true
			return nil
		}
		return ErrCircuitOpen
	default:
		return nil
	}
}

// RecordSuccess resets the failure count for host. A success in
// half-open state closes the circuit.
func (b *Breaker) RecordSuccess(host string) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	switch c.state {
	case StateHalfOpen:
		c.state = StateClosed
		c.lastStateChange = time.Now()
		c.consecutiveErrors = 0
		c.probeInFlight = false
	case StateClosed:
		c.consecutiveErrors = 0
	}
}

// RecordFailure counts a failed request against host. Reaching the
// threshold, or failing the half-open probe, opens the circuit.
func (b *Breaker) RecordFailure(host string) {
	if b == nil {
		return
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	c := b.circuit(host)
	switch c.state {
	case StateClosed:
		c.consecutiveErrors++
		if c.consecutiveErrors >= b.failureThreshold {
			c.state = StateOpen
			c.lastStateChange = time.Now()
		}
	case StateHalfOpen:
		c.state = StateOpen
		c.lastStateChange = time.Now()
		c.probeInFlight = false
	}
}

// State returns the current state of host's circuit.
func (b *Breaker) State(host string) BreakerState {
	if b == nil {
		return StateClosed
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	return b.circuit(host).state
}

func (b *Breaker) circuit(host string) *circuit {
	c, ok := b.circuits[host]
	if !ok {
		c = &circuit{state: StateClosed, lastStateChange: time.Now()}
		b.circuits[host] = c
	}
	return c
}
