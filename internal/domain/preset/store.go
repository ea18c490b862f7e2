package preset

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

// DocumentKey is the blob key of the persisted preset collection.
const DocumentKey = "presets"

type document struct {
	Presets []*types.Preset `json:"presets"`
}

// storedDocument defers preset decoding so one bad entry does not hide the
// rest.
type storedDocument struct {
	Presets []json.RawMessage `json:"presets"`
}

// Store holds saved presets keyed by name. At most one preset is the
// default at any time.
type Store struct {
	mu      sync.RWMutex
	presets map[string]*types.Preset // Protected by mu
	order   []string                 // Protected by mu; insertion order

	blobs   storage.BlobStore
	clock   clock.Clock
	ids     *id.Generator
	logger  *logging.Logger
	metrics *monitoring.Metrics
}

// NewStore creates an empty store backed by blobs. Call Load before use.
func NewStore(blobs storage.BlobStore, logger *logging.Logger) *Store {
	return &Store{
		presets: make(map[string]*types.Preset),
		blobs:   blobs,
		clock:   clock.Real(),
		ids:     id.Default(),
		logger:  logger.Named("presets"),
	}
}

// WithClock replaces the time source.
func (s *Store) WithClock(c clock.Clock) *Store {
	s.clock = c
	return s
}

// WithMetrics adds metrics tracking to the store
func (s *Store) WithMetrics(metrics *monitoring.Metrics) *Store {
	s.metrics = metrics
	return s
}

// Load reads the persisted presets. An absent document leaves the store
// empty. Entries that cannot be decoded are skipped; a document none of
// whose entries decode is an error.
func (s *Store) Load(ctx context.Context) error {
	var doc storedDocument
	found, err := s.blobs.Read(ctx, DocumentKey, &doc)
	if err != nil {
		return apperrors.Persistence(DocumentKey, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !found {
		s.presets, s.order = make(map[string]*types.Preset), nil
		s.logger.Info("No presets found, starting with empty store")
		s.updateGauge()
		return nil
	}

	presets := make(map[string]*types.Preset, len(doc.Presets))
	order := make([]string, 0, len(doc.Presets))
	seenDefault := false
	for i, raw := range doc.Presets {
		p, err := types.DecodeStoredPreset(raw)
		if err != nil {
			s.logger.Warn("Skipping unreadable stored preset",
				zap.Int("index", i),
				zap.ByteString("entry", raw),
				zap.Error(err),
			)
			continue
		}
		if _, dup := presets[p.Name]; dup {
			s.logger.Warn("Skipping duplicate preset name", zap.String("preset", p.Name))
			continue
		}
		if p.IsDefault {
			if seenDefault {
				p.IsDefault = false
			}
			seenDefault = true
		}
		presets[p.Name] = p
		order = append(order, p.Name)
	}
	if len(doc.Presets) > 0 && len(order) == 0 {
		return apperrors.Persistence(DocumentKey,
			fmt.Errorf("none of %d stored presets could be decoded", len(doc.Presets)))
	}

	s.presets, s.order = presets, order
	if skipped := len(doc.Presets) - len(order); skipped > 0 {
		s.logger.Warn("Loaded presets with skipped entries",
			zap.Int("count", len(order)),
			zap.Int("skipped", skipped),
		)
	} else {
		s.logger.Info("Loaded presets", zap.Int("count", len(order)))
	}
	s.updateGauge()
	return nil
}

// List returns copies of all presets in insertion order.
func (s *Store) List() []*types.Preset {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*types.Preset, 0, len(s.order))
	for _, name := range s.order {
		out = append(out, s.presets[name].Clone())
	}
	return out
}

// Get retrieves a preset by name.
func (s *Store) Get(name string) (*types.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.presets[name]
	if !ok {
		return nil, false
	}
	return p.Clone(), true
}

// GetDefault returns the preset flagged as default, if any.
func (s *Store) GetDefault() (*types.Preset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, name := range s.order {
		if p := s.presets[name]; p.IsDefault {
			return p.Clone(), true
		}
	}
	return nil, false
}

// Count returns the number of presets.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.presets)
}

// Save creates or replaces the preset named req.Name. Replacing keeps the
// original id and creation time. Saving a default clears the flag on every
// other preset.
func (s *Store) Save(ctx context.Context, req types.SavePresetRequest) (*types.Preset, error) {
	if err := validate(req); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	p := &types.Preset{
		ID:          s.ids.GenerateWithPrefix(id.PresetPrefix),
		Name:        req.Name,
		DisplayName: req.DisplayName,
		Widgets:     append([]types.WidgetTemplate(nil), req.Widgets...),
		IsDefault:   req.IsDefault,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	existing, replacing := s.presets[req.Name]
	if replacing {
		p.ID = existing.ID
		p.CreatedAt = existing.CreatedAt
	}

	presets := make(map[string]*types.Preset, len(s.presets)+1)
	for name, other := range s.presets {
		if p.IsDefault && other.IsDefault && name != p.Name {
			cleared := other.Clone()
			cleared.IsDefault = false
			other = cleared
		}
		presets[name] = other
	}
	presets[p.Name] = p

	order := s.order
	if !replacing {
		order = append(append(make([]string, 0, len(s.order)+1), s.order...), p.Name)
	}
	if err := s.persist(ctx, presets, order); err != nil {
		return nil, err
	}
	s.presets, s.order = presets, order

	s.logger.Info("Preset saved",
		zap.String("preset", p.Name),
		zap.String("display_name", p.DisplayName),
		zap.Int("count", len(p.Widgets)),
		zap.Bool("default", p.IsDefault),
	)
	s.updateGauge()
	return p.Clone(), nil
}

// Delete removes the preset named name.
func (s *Store) Delete(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.presets[name]; !ok {
		return apperrors.NotFound("Preset", name)
	}

	presets := make(map[string]*types.Preset, len(s.presets))
	for k, v := range s.presets {
		if k != name {
			presets[k] = v
		}
	}
	order := make([]string, 0, len(s.order))
	for _, k := range s.order {
		if k != name {
			order = append(order, k)
		}
	}
	if err := s.persist(ctx, presets, order); err != nil {
		return err
	}
	s.presets, s.order = presets, order

	s.logger.Info("Preset deleted", zap.String("preset", name))
	s.updateGauge()
	return nil
}

func validate(req types.SavePresetRequest) error {
	if req.Name == "" || req.DisplayName == "" || req.Widgets == nil {
		return apperrors.Validation("Missing required fields: name, displayName, widgets")
	}
	for i := range req.Widgets {
		if err := req.Widgets[i].Validate(); err != nil {
			return apperrors.Wrap(err, apperrors.CodeValidation,
				fmt.Sprintf("widget %d: %s", i, apperrors.Message(err))).
				WithDetail("index", i)
		}
	}
	return nil
}

// persist writes the candidate collection. Caller holds mu.
func (s *Store) persist(ctx context.Context, presets map[string]*types.Preset, order []string) error {
	doc := document{Presets: make([]*types.Preset, 0, len(order))}
	for _, name := range order {
		doc.Presets = append(doc.Presets, presets[name])
	}

	timer := monitoring.NewTimer(s.metrics, DocumentKey)
	err := s.blobs.Write(ctx, DocumentKey, doc)
	timer.Stop(err)
	if err != nil {
		s.logger.Error("Failed to persist presets", zap.Error(err))
		return apperrors.Persistence(DocumentKey, err)
	}
	return nil
}

func (s *Store) updateGauge() {
	if s.metrics != nil {
		s.metrics.SetPresets(len(s.presets))
	}
}
