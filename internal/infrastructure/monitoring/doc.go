/*
Package monitoring provides Prometheus metrics for the dashboard backend.

# Overview

Each Metrics value owns a private registry carrying HTTP request metrics,
dashboard gauges (widgets, presets), orchestration counters (activations,
focus transitions, feed entries), persistence timings and failures, and
broadcast counters (events, drops, connected displays).

# Usage

	metrics := monitoring.NewMetrics()
	router.Use(monitoring.Middleware(metrics))
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	timer := monitoring.NewTimer(metrics, "widgets")
	err := store.Write(ctx, "widgets", doc)
	timer.Stop(err)
*/
package monitoring
