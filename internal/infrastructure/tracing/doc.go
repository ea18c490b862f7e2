/*
Package tracing tags every HTTP request with a trace id and logs it when the
request completes.

The id travels in the X-Request-ID header and in the request context, so
handlers can attach it to their own log lines with tracing.Field(ctx).
Failed requests log at Error, requests slower than the configured threshold
at Warn, and everything else at Debug.

# Usage

	tracer := tracing.New(logger, 500*time.Millisecond)
	router.Use(tracing.HTTPMiddleware(tracer))
*/
package tracing
