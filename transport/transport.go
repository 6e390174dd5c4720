// Package transport provides a rate-limited, circuit-breaking
// http.RoundTripper for outbound API traffic. Requests are paced per
// host with a token bucket, hosts that keep failing are cut off until
// they recover, and 429 responses shrink the bucket so a struggling
// host is not hammered further.
package transport

import (
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const (
	// DefaultRPS is the per-host request rate when no override is set.
	// The YouTube Data API meters by quota units rather than raw
	// request rate, so one request per second is comfortably inside
	// its limits.
	DefaultRPS = 1.0
	// minRPSFactor bounds how far a host's rate can be reduced.
	minRPSFactor = 0.25
)

// Config controls the transport's pacing and fault tolerance.
type Config struct {
	// RPS is the default requests per second per host.
	RPS float64
	// HostRPS overrides the rate for specific hosts.
	HostRPS map[string]float64
	// FailureThreshold is the consecutive failure count that opens a
	// host's circuit. Zero means DefaultFailureThreshold.
	FailureThreshold int
	// RecoveryTimeout is how long an open circuit waits before
	// probing. Zero means DefaultRecoveryTimeout.
	RecoveryTimeout time.Duration
	// Base is the underlying round tripper. Nil means
	// http.DefaultTransport.
	Base http.RoundTripper
}

// DefaultConfig returns the configuration used when none is supplied.
func DefaultConfig() Config {
	return Config{RPS: DefaultRPS}
}

type hostLimit struct {
	limiter      *rate.Limiter
	originalRPS  float64
	reducedRPS   float64
	lastThrottle time.Time
}

// Transport paces and guards outbound requests. It implements
// http.RoundTripper so it can back any *http.Client.
type Transport struct {
	cfg     Config
	base    http.RoundTripper
	breaker *Breaker

	mu     sync.Mutex
	limits map[string]*hostLimit
}

// New creates a Transport from cfg.
func New(cfg Config) *Transport {
	if cfg.RPS <= 0 {
		cfg.RPS = DefaultRPS
	}
	base := cfg.Base
	if base == nil {
		base = http.DefaultTransport
	}
	return &Transport{
		cfg:     cfg,
		base:    base,
		breaker: NewBreaker(cfg.FailureThreshold, cfg.RecoveryTimeout),
		limits:  make(map[string]*hostLimit),
	}
}

// RoundTrip waits for the host's token bucket, checks the circuit,
// and forwards the request. Server errors and timeouts count against
// the circuit; 429 responses additionally reduce the host's rate.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	host := req.URL.Hostname()

	if err := t.breaker.Allow(host); err != nil {
		return nil, fmt.Errorf("transport: %s: %w", host, err)
	}

	limit := t.hostLimit(host)
	if err := limit.limiter.Wait(req.Context()); err != nil {
		return nil, err
	}

	resp, err := t.base.RoundTrip(req)
	if err != nil {
		t.breaker.RecordFailure(host)
		return nil, err
	}

	switch {
	case resp.StatusCode == http.StatusTooManyRequests:
		t.breaker.RecordFailure(host)
		t.throttle(host)
	case resp.StatusCode >= 500:
		t.breaker.RecordFailure(host)
	default:
		t.breaker.RecordSuccess(host)
		t.recover(host)
	}

	return resp, nil
}

// hostLimit returns the limiter for host, creating one at the
// configured rate on first use.
func (t *Transport) hostLimit(host string) *hostLimit {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limits[host]; ok {
		return l
	}

	rps := t.cfg.RPS
	if override, ok := t.cfg.HostRPS[host]; ok && override > 0 {
		rps = override
	}
	l := &hostLimit{
		limiter:     rate.NewLimiter(rate.Limit(rps), 1),
		originalRPS: rps,
	}
	t.limits[host] = l
	return l
}

// throttle halves the host's rate after a 429, down to a floor.
func (t *Transport) throttle(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limits[host]
	if !ok {
		return
	}

	current := l.reducedRPS
	if current == 0 {
		current = l.originalRPS
	}
	reduced := current / 2
	if floor := l.originalRPS * minRPSFactor; reduced < floor {
		reduced = floor
	}
	l.reducedRPS = reduced
	l.lastThrottle = time.Now()
	l.limiter.SetLimit(rate.Limit(reduced))
	log.Printf("transport: %s rate limited, reducing to %.2f req/s", host, reduced)
}

// recover restores the host's original rate once it has gone a minute
// without being throttled.
func (t *Transport) recover(host string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	l, ok := t.limits[host]
	if !ok || l.reducedRPS == 0 {
		return
	}
	if time.Since(l.lastThrottle) < time.Minute {
		return
	}
	l.reducedRPS = 0
	l.limiter.SetLimit(rate.Limit(l.originalRPS))
	log.Printf("transport: %s recovered, restoring %.2f req/s", host, l.originalRPS)
}

// Rate reports the current request rate for host. Hosts that have not
// been used yet report the configured rate.
func (t *Transport) Rate(host string) float64 {
	t.mu.Lock()
	defer t.mu.Unlock()

	if l, ok := t.limits[host]; ok {
		if l.reducedRPS > 0 {
			return l.reducedRPS
		}
		return l.originalRPS
	}
	if override, ok := t.cfg.HostRPS[host]; ok && override > 0 {
		return override
	}
	return t.cfg.RPS
}

// Client returns an *http.Client backed by t.
func (t *Transport) Client() *http.Client {
	return &http.Client{Transport: t}
}
