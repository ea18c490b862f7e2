// Package types defines the dashboard's data model: widgets and their
// type-specific payloads, preset templates, the agent status record, feed
// entries, and the broadcast event vocabulary.
//
// JSON field names follow the display client's wire contract (camelCase).
// Widget payloads are a closed union keyed by WidgetType; decoding a payload
// that does not fit its type's shape fails with a validation error.
package types
