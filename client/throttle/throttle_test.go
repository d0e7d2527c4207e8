package throttle_test

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adamwoolhether/profilehttp/client/throttle"
)

func TestNewRoundTripper_Validation(t *testing.T) {
	tests := map[string]struct {
		rps    int
		burst  int
		expErr error
	}{
		"zeroRPS":       {rps: 0, burst: 10, expErr: throttle.ErrMustNotBeZero},
		"negativeRPS":   {rps: -5, burst: 10, expErr: throttle.ErrMustNotBeZero},
		"zeroBurst":     {rps: 10, burst: 0, expErr: throttle.ErrMustNotBeZero},
		"negativeBurst": {rps: 10, burst: -5, expErr: throttle.ErrMustNotBeZero},
		"valid":         {rps: 10, burst: 20},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rt, err := throttle.NewRoundTripper(tc.rps, tc.burst, func() *slog.Logger { return nil }, http.DefaultTransport)

			if tc.expErr != nil {
				if !errors.Is(err, tc.expErr) {
					t.Errorf("exp err %v; got: %v", tc.expErr, err)
				}
				return
			}
			if err != nil {
				t.Errorf("exp nil err, got: %v", err)
			}
			if rt == nil {
				t.Error("exp non-nil RoundTripper")
			}
		})
	}
}

func TestRoundTrip_BurstPassesThrough(t *testing.T) {
	var hits atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rt, err := throttle.NewRoundTripper(1, 3, nil, http.DefaultTransport)
	if err != nil {
		t.Fatalf("creating round tripper: %v", err)
	}
	hc := &http.Client{Transport: rt}

	start := time.Now()
	for range 3 {
		req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL, nil)
		resp, err := hc.Do(req)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		resp.Body.Close()
	}

	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Errorf("burst requests should not wait, took %s", elapsed)
	}
	if hits.Load() != 3 {
		t.Errorf("expected 3 hits, got %d", hits.Load())
	}
}

func TestRoundTrip_DeadlineTooClose(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	rt, err := throttle.NewRoundTripper(1, 1, nil, http.DefaultTransport)
	if err != nil {
		t.Fatalf("creating round tripper: %v", err)
	}
	hc := &http.Client{Transport: rt}

	// Drain the single token.
	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL, nil)
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithTimeout(t.Context(), 50*time.Millisecond)
	defer cancel()

	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	_, err = hc.Do(req)
	if !errors.Is(err, throttle.ErrWaitingFailed) {
		t.Fatalf("expected ErrWaitingFailed, got %v", err)
	}
}

func TestRoundTrip_CanceledWhileWaiting(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer ts.Close()

	var logged atomic.Bool
	logFn := func() *slog.Logger {
		logged.Store(true)
		return slog.New(slog.DiscardHandler)
	}

	rt, err := throttle.NewRoundTripper(1, 1, logFn, http.DefaultTransport)
	if err != nil {
		t.Fatalf("creating round tripper: %v", err)
	}
	hc := &http.Client{Transport: rt}

	req, _ := http.NewRequestWithContext(t.Context(), http.MethodGet, ts.URL, nil)
	resp, err := hc.Do(req)
	if err != nil {
		t.Fatalf("first request failed: %v", err)
	}
	resp.Body.Close()

	ctx, cancel := context.WithCancel(t.Context())
	time.AfterFunc(20*time.Millisecond, cancel)

	req, _ = http.NewRequestWithContext(ctx, http.MethodGet, ts.URL, nil)
	_, err = hc.Do(req)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if !logged.Load() {
		t.Error("expected the wait to be logged")
	}
}
