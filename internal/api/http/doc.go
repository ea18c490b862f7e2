// Package http exposes the dashboard service over a REST API built on gin.
//
// Errors are written as {"error": message, "code": code}. Validation and
// missing-backup errors map to 400, unknown resources to 404 and failed
// writes to 500.
package http
