package widget

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/monitoring"
	"github.com/ari-dashboard/backend/internal/infrastructure/storage"
	"github.com/ari-dashboard/backend/internal/shared/clock"
	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
	"github.com/ari-dashboard/backend/internal/shared/id"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// DocumentKey is the blob key of the persisted widget set.
const DocumentKey = "widgets"

// SeedID is the id of the home widget created for an empty dashboard.
const SeedID = "home-default"

type document struct {
	Widgets []*types.Widget `json:"widgets"`
}

// storedDocument defers widget decoding so one bad entry does not hide the
// rest.
type storedDocument struct {
	Widgets []json.RawMessage `json:"widgets"`
}

// Store holds the live widget set. Every mutation is persisted before it
// becomes visible; a failed write leaves the in-memory set untouched.
type Store struct {
	mu      sync.RWMutex
	widgets map[string]*types.Widget // Protected by mu
	order   []string                 // Protected by mu; insertion order

	blobs     storage.BlobStore
	clock     clock.Clock
	ids       *id.Generator
	sanitizer *Sanitizer
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// NewStore creates an empty store backed by blobs. Call Load before use.
func NewStore(blobs storage.BlobStore, logger *logging.Logger) *Store {
	return &Store{
		widgets:   make(map[string]*types.Widget),
		blobs:     blobs,
		clock:     clock.Real(),
		ids:       id.Default(),
		sanitizer: NewSanitizer(),
		logger:    logger.Named("widgets"),
	}
}

// WithClock replaces the time source.
func (s *Store) WithClock(c clock.Clock) *Store {
	s.clock = c
	return s
}

// WithIDs replaces the id generator.
func (s *Store) WithIDs(g *id.Generator) *Store {
	s.ids = g
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Load reads the persisted widget set. An absent or empty document seeds
// the dashboard with the home widget. Entries that cannot be decoded are
// skipped; a document none of whose entries decode is an error, never a
// reason to seed over it.
func (s *Store) Load(ctx context.Context) error {
	var doc storedDocument
	found, err := s.blobs.Read(ctx, DocumentKey, &doc)
	if err != nil {
		return apperrors.Persistence(DocumentKey, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !found || len(doc.Widgets) == 0 {
		seed := s.seedWidget()
		widgets := map[string]*types.Widget{seed.ID: seed}
		order := []string{seed.ID}
		if err := s.persist(ctx, widgets, order); err != nil {
			return err
		}
		s.widgets, s.order = widgets, order
		s.logger.Info("Seeded dashboard with home widget", zap.String("widget_id", seed.ID))
		s.updateGauge()
		return nil
	}

	widgets := make(map[string]*types.Widget, len(doc.Widgets))
	order := make([]string, 0, len(doc.Widgets))
	for i, raw := range doc.Widgets {
		w, err := types.DecodeStoredWidget(raw)
		if err != nil {
			s.logger.Warn("Skipping unreadable stored widget",
				zap.Int("index", i),
				zap.ByteString("entry", raw),
				zap.Error(err),
			)
			continue
		}
		if _, dup := widgets[w.ID]; dup {
			s.logger.Warn("Skipping duplicate widget id", zap.String("widget_id", w.ID))
			continue
		}
		widgets[w.ID] = w
		order = append(order, w.ID)
	}
	if len(order) == 0 {
		return apperrors.Persistence(DocumentKey,
			fmt.Errorf("none of %d stored widgets could be decoded", len(doc.Widgets)))
	}

	s.widgets, s.order = widgets, order
	if skipped := len(doc.Widgets) - len(order); skipped > 0 {
		s.logger.Warn("Loaded widgets with skipped entries",
			zap.Int("count", len(order)),
			zap.Int("skipped", skipped),
		)
	} else {
		s.logger.Info("Loaded widgets", zap.Int("count", len(order)))
	}
	s.updateGauge()
	return nil
}

func (s *Store) seedWidget() *types.Widget {
	now := s.clock.Now()
	return &types.Widget{
		ID:    SeedID,
		Type:  types.WidgetHome,
		Title: "Welcome to Ari Dashboard",
		Data: &types.HomeData{
			Greeting:    "Hello! I am Ari, your AI assistant.",
			Status:      "idle",
			CurrentTask: "Waiting for instructions",
			InfoItems: []types.InfoItem{
				{Icon: "🤖", Label: "Status", Value: "Ready"},
				{Icon: "📊", Label: "Widgets", Value: "1"},
			},
		},
		Position:  types.Position{X: 0, Y: 0, W: 6, H: 4},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// List returns copies of all widgets in insertion order.
func (s *Store) List() []*types.Widget {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Widget, 0, len(s.order))
	for _, wid := range s.order {
		out = append(out, s.widgets[wid].Clone())
	}
	return out
}

// Snapshot returns the content of every widget as templates, in insertion
// order. Restoring a snapshot through Create yields fresh ids.
func (s *Store) Snapshot() []types.WidgetTemplate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]types.WidgetTemplate, 0, len(s.order))
	for _, wid := range s.order {
		out = append(out, s.widgets[wid].Template())
	}
	return out
}

// Get retrieves a widget by id.
func (s *Store) Get(widgetID string) (*types.Widget, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	w, ok := s.widgets[widgetID]
	if !ok {
		return nil, false
	}
	return w.Clone(), true
}

// Count returns the number of widgets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.widgets)
}

// Create validates tpl and adds a new widget with a fresh id.
func (s *Store) Create(ctx context.Context, tpl types.WidgetTemplate) (*types.Widget, error) {
	if err := tpl.Validate(); err != nil {
		return nil, err
	}

	now := s.clock.Now()
	w := &types.Widget{
		ID:        s.ids.GenerateWithPrefix(id.WidgetPrefix),
		Type:      tpl.Type,
		Title:     tpl.Title,
		Data:      s.sanitizer.Data(tpl.Data),
		Position:  types.DefaultPosition,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if tpl.Position != nil {
		w.Position = *tpl.Position
	}
	if tpl.Scrollable != nil {
		sc := *tpl.Scrollable
		w.Scrollable = &sc
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	widgets := s.copyMap()
	widgets[w.ID] = w
	order := append(append(make([]string, 0, len(s.order)+1), s.order...), w.ID)
	if err := s.persist(ctx, widgets, order); err != nil {
		return nil, err
	}
	s.widgets, s.order = widgets, order

	s.logger.Info("Widget created",
		zap.String("widget_id", w.ID),
		zap.String("type", string(w.Type)),
	)
	s.updateGauge()
	return w.Clone(), nil
}

// Update merges patch into the widget: the title is replaced when present,
// data and position are merged key-wise. The type never changes.
func (s *Store) Update(ctx context.Context, widgetID string, patch types.WidgetPatch) (*types.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.widgets[widgetID]
	if !ok {
		return nil, apperrors.NotFound("Widget", widgetID)
	}

	next := current.Clone()
	if patch.Title != nil {
		if *patch.Title == "" {
			return nil, apperrors.Validation("title cannot be empty")
		}
		next.Title = *patch.Title
	}
	if patch.Data != nil {
		data, err := types.MergeData(current.Type, current.Data, patch.Data)
		if err != nil {
			return nil, err
		}
		next.Data = s.sanitizer.Data(data)
	}
	if patch.Position != nil {
		next.Position = patch.Position.Apply(current.Position)
	}
	next.UpdatedAt = s.clock.Now()

	widgets := s.copyMap()
	widgets[widgetID] = next
	if err := s.persist(ctx, widgets, s.order); err != nil {
		return nil, err
	}
	s.widgets = widgets

	s.logger.Debug("Widget updated", zap.String("widget_id", widgetID))
	return next.Clone(), nil
}

// Delete removes a widget.
func (s *Store) Delete(ctx context.Context, widgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.widgets[widgetID]; !ok {
		return apperrors.NotFound("Widget", widgetID)
	}

	widgets := s.copyMap()
	delete(widgets, widgetID)
	order := make([]string, 0, len(s.order))
	for _, wid := range s.order {
		if wid != widgetID {
			order = append(order, wid)
		}
	}
	if err := s.persist(ctx, widgets, order); err != nil {
		return err
	}
	s.widgets, s.order = widgets, order

	s.logger.Info("Widget deleted", zap.String("widget_id", widgetID))
	s.updateGauge()
	return nil
}

// copyMap returns a shallow copy of the widget map. Stored widgets are
// never mutated in place, so sharing the pointers is safe.
func (s *Store) copyMap() map[string]*types.Widget {
	out := make(map[string]*types.Widget, len(s.widgets)+1)
	for k, v := range s.widgets {
		out[k] = v
	}
	return out
}

// persist writes the candidate set. Caller holds mu.
func (s *Store) persist(ctx context.Context, widgets map[string]*types.Widget, order []string) error {
	doc := document{Widgets: make([]*types.Widget, 0, len(order))}
	for _, wid := range order {
		doc.Widgets = append(doc.Widgets, widgets[wid])
	}

	timer := monitoring.NewTimer(s.metrics, DocumentKey)
	err := s.blobs.Write(ctx, DocumentKey, doc)
	timer.Stop(err)
	if err != nil {
		s.logger.Error("Failed to persist widgets", zap.Error(err))
		return apperrors.Persistence(DocumentKey, err)
	}
	return nil
}

func (s *Store) updateGauge() {
	if s.metrics != nil {
		s.metrics.SetWidgets(len(s.widgets))
	}
}
