// Package widget owns the live set of dashboard widgets and its durable
// copy. The store validates and sanitizes content, merges partial updates,
// and seeds an empty dashboard with a home widget. It does not publish
// events; callers decide what to broadcast.
package widget
