// Package ratelimit provides rate limiting for outbound requests.
//
// The scraper talks to two external parties, the forum API and arbitrary
// image hosts, and both are throttled through one shared limiter so the
// process as a whole never issues calls closer together than the configured
// minimum interval.
//
// Interface:
//
// All rate limiters implement the Limiter interface:
//   - Allow() bool - Check if a request is allowed
//   - Wait() - Block until a request is allowed
//   - Reset() - Reset the limiter state
//
// Usage:
//
//	// space calls at least five seconds apart
//	limiter := ratelimit.NewInterval(5 * time.Second)
//
//	limiter.Wait() // first call returns immediately
//	limiter.Wait() // blocks for the remainder of the interval
package ratelimit
