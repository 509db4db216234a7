// Package jemput provides a stateful HTTP fetch coordinator and call-cadence utilities:
//
//   - Fetcher – per-instance fetch lifecycle (data / error / loading) with manual Refetch,
//     abort-and-supersede semantics and no state writes after Close
//   - Typed JSON decoding of response bodies with a pluggable Decoder
//   - Debounce – collapses bursts of calls into one trailing invocation with the latest argument
//   - Throttle – leading + trailing execution, at most once per window
//   - Middleware chain for cross-cutting concerns (auth, logging, tracing, etc.)
//   - Prometheus metrics and lightweight structured debug logging
//
// Design goals:
//   - Small surface area – functional options configure everything
//   - A superseded or torn-down request is never observable in exposed state
//   - Safe concurrent use of a single *Fetcher instance
//   - Deterministic time via an injectable clock (clockz)
//
// Typical usage:
//
//	f := jemput.New[User]("https://api.example.com/users/1",
//	    jemput.WithHeader("Authorization", "Bearer "+token),
//	    jemput.WithMetrics(),
//	)
//	defer f.Close()
//
//	// later, on demand
//	f.Refetch()
//	s := f.State() // s.Data, s.Err, s.Loading
//
// Failures (network, non-2xx status, decode) surface through State().Err and are never
// retried implicitly; aborted cycles are swallowed entirely. The library avoids opinionated
// logging: provide a Logger (e.g. via WithSimpleLogger) + enable debug flags selectively
// (WithDebug / WithDebugConfig) for insight without noise.
package jemput
