package dashboard

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ari-dashboard/backend/internal/domain/feed"
	"github.com/ari-dashboard/backend/internal/domain/preset"
	"github.com/ari-dashboard/backend/internal/domain/status"
	"github.com/ari-dashboard/backend/internal/domain/widget"
	"github.com/ari-dashboard/backend/internal/infrastructure/logging"
	"github.com/ari-dashboard/backend/internal/infrastructure/monitoring"
	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
	"github.com/ari-dashboard/backend/internal/shared/types"
)

// Publisher delivers events to connected displays. Publish must not block
// on slow subscribers.
type Publisher interface {
	Publish(event types.Event)
}

type nopPublisher struct{}

func (nopPublisher) Publish(types.Event) {}

// Service is the single entry point for dashboard mutations. It serializes
// every change to the widget set, owns the focus backup, and publishes an
// event for each change after it has been persisted.
type Service struct {
	// mu serializes widget-set mutations so activations and focus
	// transitions never interleave their delete and create phases.
	mu     sync.Mutex
	backup []types.WidgetTemplate // Protected by mu; nil when not focused

	widgets   *widget.Store
	presets   *preset.Store
	status    *status.Store
	feed      *feed.Store
	publisher Publisher
	logger    *logging.Logger
	metrics   *monitoring.Metrics
}

// Stores groups the stores the service orchestrates.
type Stores struct {
	Widgets *widget.Store
	Presets *preset.Store
	Status  *status.Store
	Feed    *feed.Store
}

// NewService creates a service over stores. A nil publisher discards
// events.
func NewService(stores Stores, publisher Publisher, logger *logging.Logger) *Service {
	if publisher == nil {
		publisher = nopPublisher{}
	}
	return &Service{
		widgets:   stores.Widgets,
		presets:   stores.Presets,
		status:    stores.Status,
		feed:      stores.Feed,
		publisher: publisher,
		logger:    logger.Named("dashboard"),
	}
}

// WithMetrics adds metrics tracking to the service
func (s *Service) WithMetrics(metrics *monitoring.Metrics) *Service {
	s.metrics = metrics
	return s
}

// ListWidgets returns every widget.
func (s *Service) ListWidgets() []*types.Widget {
	return s.widgets.List()
}

// GetWidget returns one widget.
func (s *Service) GetWidget(widgetID string) (*types.Widget, error) {
	w, ok := s.widgets.Get(widgetID)
	if !ok {
		return nil, apperrors.NotFound("Widget", widgetID)
	}
	return w, nil
}

// WidgetCount returns the number of widgets.
func (s *Service) WidgetCount() int {
	return s.widgets.Count()
}

// CreateWidget adds a widget and announces it.
func (s *Service) CreateWidget(ctx context.Context, tpl types.WidgetTemplate) (*types.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.widgets.Create(ctx, tpl)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(types.WidgetCreatedEvent(w))
	return w, nil
}

// UpdateWidget applies patch and announces the result.
func (s *Service) UpdateWidget(ctx context.Context, widgetID string, patch types.WidgetPatch) (*types.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	w, err := s.widgets.Update(ctx, widgetID, patch)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(types.WidgetUpdatedEvent(w))
	return w, nil
}

// DeleteWidget removes a widget and announces it.
func (s *Service) DeleteWidget(ctx context.Context, widgetID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.widgets.Delete(ctx, widgetID); err != nil {
		return err
	}
	s.publisher.Publish(types.WidgetDeletedEvent(widgetID))
	return nil
}

// clearWidgets deletes every widget except keep, announcing each deletion
// as it happens. Caller holds mu.
func (s *Service) clearWidgets(ctx context.Context, keep string) error {
	for _, w := range s.widgets.List() {
		if w.ID == keep {
			continue
		}
		if err := s.widgets.Delete(ctx, w.ID); err != nil {
			return err
		}
		s.publisher.Publish(types.WidgetDeletedEvent(w.ID))
	}
	return nil
}

// createAll creates a widget per template in order, announcing each
// creation as it happens. Caller holds mu.
func (s *Service) createAll(ctx context.Context, templates []types.WidgetTemplate) ([]*types.Widget, error) {
	created := make([]*types.Widget, 0, len(templates))
	for _, tpl := range templates {
		w, err := s.widgets.Create(ctx, tpl)
		if err != nil {
			return created, err
		}
		s.publisher.Publish(types.WidgetCreatedEvent(w))
		created = append(created, w)
	}
	return created, nil
}

// ActivatePreset replaces the whole widget set with fresh widgets built
// from the named preset. Every old widget is deleted before the first new
// one is created; a single preset:activated event closes the sequence.
func (s *Service) ActivatePreset(ctx context.Context, name string) (*types.ActivatedPreset, error) {
	p, ok := s.presets.Get(name)
	if !ok {
		return nil, apperrors.NotFound("Preset", name)
	}
	return s.activate(ctx, p)
}

// ActivateDefaultPreset activates the preset flagged as default.
func (s *Service) ActivateDefaultPreset(ctx context.Context) (*types.ActivatedPreset, error) {
	p, ok := s.presets.GetDefault()
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "No default preset found")
	}
	return s.activate(ctx, p)
}

func (s *Service) activate(ctx context.Context, p *types.Preset) (*types.ActivatedPreset, error) {
	for i := range p.Widgets {
		if err := p.Widgets[i].Validate(); err != nil {
			return nil, apperrors.Wrap(err, apperrors.CodeValidation,
				fmt.Sprintf("preset %q widget %d: %s", p.Name, i, apperrors.Message(err)))
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	removed := s.widgets.Count()
	if err := s.clearWidgets(ctx, ""); err != nil {
		s.logger.Error("Preset activation aborted while clearing widgets",
			zap.String("preset", p.Name), zap.Error(err))
		return nil, err
	}

	created, err := s.createAll(ctx, p.Widgets)
	if err != nil {
		s.logger.Error("Preset activation aborted while creating widgets",
			zap.String("preset", p.Name),
			zap.Int("count", len(created)),
			zap.Error(err))
		return nil, err
	}

	s.publisher.Publish(types.Event{
		Type: types.EventPresetActivated,
		Data: types.PresetActivated{
			PresetName:        p.Name,
			PresetDisplayName: p.DisplayName,
			WidgetCount:       len(created),
		},
	})
	if s.metrics != nil {
		s.metrics.IncActivations(p.Name)
	}
	s.logger.Info("Preset activated",
		zap.String("preset", p.Name),
		zap.Int("removed", removed),
		zap.Int("count", len(created)),
	)

	return &types.ActivatedPreset{
		ID:          p.ID,
		Name:        p.Name,
		DisplayName: p.DisplayName,
		Widgets:     created,
		IsDefault:   p.IsDefault,
		CreatedAt:   p.CreatedAt,
		UpdatedAt:   p.UpdatedAt,
	}, nil
}

// Focus shows one widget full screen. The current layout is kept as a
// content snapshot, replacing any earlier one, so Unfocus can restore it.
func (s *Service) Focus(ctx context.Context, widgetID string) (*types.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.widgets.Get(widgetID); !ok {
		return nil, apperrors.NotFound("Widget", widgetID)
	}

	s.backup = s.widgets.Snapshot()

	if err := s.clearWidgets(ctx, widgetID); err != nil {
		return nil, err
	}
	w, err := s.widgets.Update(ctx, widgetID, types.WidgetPatch{
		Position: types.PatchFrom(types.FullscreenPosition),
	})
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(types.WidgetUpdatedEvent(w))

	if s.metrics != nil {
		s.metrics.IncFocus("in")
	}
	s.logger.Info("Widget focused",
		zap.String("widget_id", widgetID),
		zap.Int("count", len(s.backup)),
	)
	return w, nil
}

// Unfocus restores the layout captured by the last Focus. Restored widgets
// get new ids.
func (s *Service) Unfocus(ctx context.Context) ([]*types.Widget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.backup == nil {
		return nil, apperrors.NoBackup()
	}

	if err := s.clearWidgets(ctx, ""); err != nil {
		return nil, err
	}
	restored, err := s.createAll(ctx, s.backup)
	if err != nil {
		return nil, err
	}
	s.backup = nil

	if s.metrics != nil {
		s.metrics.IncFocus("out")
	}
	s.logger.Info("Focus mode ended", zap.Int("count", len(restored)))
	return restored, nil
}

// Focused reports whether a focus backup is pending.
func (s *Service) Focused() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.backup != nil
}

// ListPresets returns every saved preset.
func (s *Service) ListPresets() []*types.Preset {
	return s.presets.List()
}

// GetPreset returns one preset by name.
func (s *Service) GetPreset(name string) (*types.Preset, error) {
	p, ok := s.presets.Get(name)
	if !ok {
		return nil, apperrors.NotFound("Preset", name)
	}
	return p, nil
}

// GetDefaultPreset returns the default preset.
func (s *Service) GetDefaultPreset() (*types.Preset, error) {
	p, ok := s.presets.GetDefault()
	if !ok {
		return nil, apperrors.New(apperrors.CodeNotFound, "No default preset found")
	}
	return p, nil
}

// SavePreset creates or replaces a preset.
func (s *Service) SavePreset(ctx context.Context, req types.SavePresetRequest) (*types.Preset, error) {
	return s.presets.Save(ctx, req)
}

// DeletePreset removes a preset.
func (s *Service) DeletePreset(ctx context.Context, name string) error {
	return s.presets.Delete(ctx, name)
}

// Status returns the agent status.
func (s *Service) Status() *types.AriStatus {
	return s.status.Get()
}

// UpdateStatus merges patch into the agent status and announces it.
func (s *Service) UpdateStatus(patch types.StatusPatch) (*types.AriStatus, error) {
	st, err := s.status.Update(patch)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(types.StatusUpdatedEvent(st))
	return st, nil
}

// FeedEntries returns up to limit feed entries, newest first.
func (s *Service) FeedEntries(limit int) []*types.FeedEntry {
	return s.feed.Entries(limit)
}

// AddFeedEntry records an activity entry and announces it.
func (s *Service) AddFeedEntry(req types.FeedEntryRequest) (*types.FeedEntry, error) {
	e, err := s.feed.Add(req)
	if err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.IncFeedEntries()
	}
	s.publisher.Publish(types.FeedNewEvent(e))
	return e, nil
}
