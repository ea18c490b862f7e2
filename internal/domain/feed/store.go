// Package feed keeps the bounded, newest-first activity log shown in the
// display sidebar. Entries live in memory only.
package feed

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/shared/clock"
	"github.com/ari-dashboard/backend/internal/shared/id"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// Capacity is the maximum number of retained entries.
const Capacity = 100

const previewLen = 50

// Store holds feed entries, newest first.
type Store struct {
	mu      sync.RWMutex
	entries []*types.FeedEntry // Protected by mu
	clock   clock.Clock
	ids     *id.Generator
	logger  *logging.Logger
}

// NewStore creates an empty feed.
func NewStore(c clock.Clock, logger *logging.Logger) *Store {
	return &Store{
		clock:  c,
		ids:    id.Default(),
		logger: logger.Named("feed"),
	}
}

// Add validates req and prepends a new entry, evicting the oldest once the
// feed is over capacity.
func (s *Store) Add(req types.FeedEntryRequest) (*types.FeedEntry, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	entry := &types.FeedEntry{
		ID:        s.ids.GenerateWithPrefix(id.FeedPrefix),
		Timestamp: s.clock.Now(),
		Type:      req.Type,
		Message:   req.Message,
		Details:   req.Details,
	}

	s.mu.Lock()
	s.entries = append([]*types.FeedEntry{entry}, s.entries...)
	if len(s.entries) > Capacity {
		s.entries = s.entries[:Capacity]
	}
	s.mu.Unlock()

	preview := entry.Message
	if r := []rune(preview); len(r) > previewLen {
		preview = string(r[:previewLen]) + "..."
	}
	s.logger.Debug("Feed entry added",
		zap.String("type", string(entry.Type)),
		zap.String("message", preview),
	)

	c := *entry
	return &c, nil
}

// Entries returns up to limit entries sorted newest first. A limit of zero
// or less returns every entry.
func (s *Store) Entries(limit int) []*types.FeedEntry {
	s.mu.RLock()
	out := make([]*types.FeedEntry, 0, len(s.entries))
	for _, e := range s.entries {
		c := *e
		out = append(out, &c)
	}
	s.mu.RUnlock()

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	if limit > 0 && limit < len(out) {
		out = out[:limit]
	}
	return out
}

// Count returns the number of retained entries.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
