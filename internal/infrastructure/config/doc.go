// Package config loads server configuration from environment variables via
// envconfig. Every field has a default, so an empty environment yields a
// runnable local setup identical to Default().
package config
