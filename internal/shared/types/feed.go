package types

import (
	"strings"
	"time"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

// FeedType classifies an activity feed entry.
type FeedType string

const (
	FeedInfo          FeedType = "info"
	FeedSuccess       FeedType = "success"
	FeedWarning       FeedType = "warning"
	FeedError         FeedType = "error"
	FeedTaskStarted   FeedType = "task_started"
	FeedTaskCompleted FeedType = "task_completed"
)

// FeedTypes lists every valid feed entry type.
var FeedTypes = []FeedType{FeedInfo, FeedSuccess, FeedWarning, FeedError, FeedTaskStarted, FeedTaskCompleted}

// Valid reports whether t is one of FeedTypes.
func (t FeedType) Valid() bool {
	for _, v := range FeedTypes {
		if t == v {
			return true
		}
	}
	return false
}

// FeedEntry is an immutable activity log record.
type FeedEntry struct {
	ID        string    `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Type      FeedType  `json:"type"`
	Message   string    `json:"message"`
	Details   string    `json:"details,omitempty"`
}

// FeedEntryRequest is the input of a feed post.
type FeedEntryRequest struct {
	Type    FeedType `json:"type"`
	Message string   `json:"message"`
	Details string   `json:"details,omitempty"`
}

// Validate checks required fields and the type enumeration.
func (r *FeedEntryRequest) Validate() error {
	if r.Type == "" || r.Message == "" {
		return apperrors.Validation("Missing required fields: type, message")
	}
	if !r.Type.Valid() {
		names := make([]string, len(FeedTypes))
		for i, t := range FeedTypes {
			names[i] = string(t)
		}
		return apperrors.Validation("Invalid feed type. Must be one of: %s", strings.Join(names, ", "))
	}
	return nil
}
