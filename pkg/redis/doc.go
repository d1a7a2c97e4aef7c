// Package redis provides connection helpers for a Redis server.
//
// Connect retries the connection using the supplied Config, whose fields are
// populated from environment variables via github.com/caarlos0/env. Healthcheck
// returns a probe compatible with HTTP liveness and readiness endpoints.
//
// Sentinel errors (e.g. ErrRedisNotReady) wrap the underlying go-redis errors
// using errors.Join so callers can match them with errors.Is.
package redis
