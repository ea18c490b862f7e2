// Package storage persists the dashboard's durable documents (widgets.json,
// presets.json). FileStore writes each document atomically; MemoryStore is
// an in-process equivalent with injectable write failures.
package storage
