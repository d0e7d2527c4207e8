// Package client provides the profile-bound HTTP client built on [net/http].
//
// # Building a Client
//
// A [Client] is bound to a [profile.Config] at [Build] time and is
// immutable afterwards:
//
//	c, err := client.Build(cfg,
//		client.WithUserAgent("myapp/1.0"),
//		client.WithNotifier(slot),
//	)
//
// # Making Requests
//
// Describe the call with a [Descriptor] and run it with [Client.Do] or one
// of the verb helpers. Per-request options are merged over the profile's:
//
//	res, err := c.Get(ctx, client.Descriptor{
//		URL:    "/users",
//		Params: map[string]any{"page": 2},
//	}, client.WithDestination(&users))
//
// [Fetch] decodes the unwrapped body into a type parameter:
//
//	user, err := client.Fetch[User](ctx, c, client.Descriptor{Method: http.MethodGet, URL: "/users/1"})
//
// # Pipeline
//
// Each logical request passes through beforeRequest (URL, params and body
// rewriting), the request interceptor (headers, token and the interface's
// header setter), the transport, the response interceptor and finally the
// envelope unwrap. Failures are classified into a [ClassifiedError].
//
// # Retries
//
// Only [KindTimeout] and [KindNetworkUnreachable] failures are retried, up to
// the profile's RetryMaxCount, with the delays of the [RetryPolicy]. Once the
// caller's context is done no further attempt starts and the failure hook is
// not called.
package client
