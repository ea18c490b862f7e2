// Package preset stores named dashboard layouts and loads preset definition
// files (JSON, YAML, TOML) from disk at startup.
package preset
