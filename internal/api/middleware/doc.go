// Package middleware provides gin middleware for cross-origin access,
// per-client rate limiting and request body limits.
package middleware
