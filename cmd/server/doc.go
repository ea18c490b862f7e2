// Package main is the entry point for the Ari dashboard backend.
//
// The server holds the widgets shown on a TV display, the presets that
// describe whole layouts, and the assistant status and activity feed.
// Displays render the layout over REST and stay in sync through a
// websocket broadcast.
//
// Configuration:
//   - Environment variables (12-factor)
//   - CLI flags (override env vars)
//   - Defaults for development
//
// Usage:
//
//	# Production mode
//	./server -port 3000 -data /var/lib/ari -presets /etc/ari/presets
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
