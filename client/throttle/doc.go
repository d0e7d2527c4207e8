// Package throttle provides an [http.RoundTripper] that bounds the rate
// of outbound attempts using a token bucket from [golang.org/x/time/rate].
//
// Retries go through the same bucket as first attempts, so a burst of
// failing requests cannot multiply the load a client puts on its backend:
//
//	rt, err := throttle.NewRoundTripper(
//		10, // attempts per second
//		5,  // burst capacity
//		func() *slog.Logger { return slog.Default() },
//		http.DefaultTransport,
//	)
//
// A blocked attempt waits for a token or for its context to end. When
// the context's deadline is too close for a token to arrive, the attempt
// fails immediately with [ErrWaitingFailed].
package throttle
