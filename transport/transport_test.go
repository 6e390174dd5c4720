package transport

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRoundTripForwardsRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	client := New(Config{RPS: 100}).Client()
	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("StatusCode = %d, want 200", resp.StatusCode)
	}
}

func TestRoundTripPacesRequests(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	// 20 req/s: three requests need at least two token refills,
	// roughly 100ms.
	client := New(Config{RPS: 20}).Client()

	start := time.Now()
	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
	}
	if elapsed := time.Since(start); elapsed < 80*time.Millisecond {
		t.Errorf("3 requests took %v, want at least ~100ms of pacing", elapsed)
	}
}

func TestRoundTripOpensCircuitOnServerErrors(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	tr := New(Config{RPS: 1000, FailureThreshold: 3, RecoveryTimeout: time.Minute})
	client := tr.Client()

	for i := 0; i < 3; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("Get() #%d error = %v", i, err)
		}
		resp.Body.Close()
	}

	_, err := client.Get(srv.URL)
	if err == nil {
		t.Fatal("Get() after circuit opened = nil error, want ErrCircuitOpen")
	}
	if !errors.Is(err, ErrCircuitOpen) {
		t.Errorf("Get() error = %v, want ErrCircuitOpen", err)
	}
}

func TestRoundTripThrottlesOn429(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	tr := New(Config{RPS: 8, FailureThreshold: 100})
	client := tr.Client()

	resp, err := client.Get(srv.URL)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	resp.Body.Close()

	host := resp.Request.URL.Hostname()
	if got := tr.Rate(host); got != 4 {
		t.Errorf("Rate() after one 429 = %v, want 4", got)
	}

	// Repeated throttling bottoms out at 25% of the original rate.
	for i := 0; i < 5; i++ {
		resp, err := client.Get(srv.URL)
		if err != nil {
			t.Fatalf("Get() error = %v", err)
		}
		resp.Body.Close()
	}
	if got := tr.Rate(host); got != 2 {
		t.Errorf("Rate() after repeated 429s = %v, want floor of 2", got)
	}
}

func TestRateForUnseenHost(t *testing.T) {
	tr := New(Config{
		RPS:     2,
		HostRPS: map[string]float64{"www.googleapis.com": 5},
	})

	if got := tr.Rate("www.googleapis.com"); got != 5 {
		t.Errorf("Rate(googleapis) = %v, want override 5", got)
	}
	if got := tr.Rate("other.example.com"); got != 2 {
		t.Errorf("Rate(other) = %v, want default 2", got)
	}
}

func TestNewAppliesDefaults(t *testing.T) {
	tr := New(Config{})

	if tr.cfg.RPS != DefaultRPS {
		t.Errorf("RPS = %v, want %v", tr.cfg.RPS, DefaultRPS)
	}
	if tr.base != http.DefaultTransport {
		t.Error("base transport not defaulted to http.DefaultTransport")
	}
}
