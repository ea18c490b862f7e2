package types

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/bytedance/sonic"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

// Preset is a named, reusable layout of widget templates.
type Preset struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Widgets     []WidgetTemplate `json:"widgets"`
	IsDefault   bool             `json:"isDefault"`
	CreatedAt   time.Time        `json:"createdAt"`
	UpdatedAt   time.Time        `json:"updatedAt"`
}

// Clone returns a copy of p with its own widget slice.
func (p *Preset) Clone() *Preset {
	c := *p
	c.Widgets = make([]WidgetTemplate, len(p.Widgets))
	copy(c.Widgets, p.Widgets)
	return &c
}

// DecodeStoredPreset decodes a preset read back from the data directory.
// Templates are resolved with DecodeStoredTemplate; one that cannot be
// resolved fails the whole preset.
func DecodeStoredPreset(b []byte) (*Preset, error) {
	var raw struct {
		ID          string            `json:"id"`
		Name        string            `json:"name"`
		DisplayName string            `json:"displayName"`
		Widgets     []json.RawMessage `json:"widgets"`
		IsDefault   bool              `json:"isDefault"`
		CreatedAt   time.Time         `json:"createdAt"`
		UpdatedAt   time.Time         `json:"updatedAt"`
	}
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	if raw.Name == "" {
		return nil, apperrors.Validation("stored preset is missing its name")
	}

	p := &Preset{
		ID:          raw.ID,
		Name:        raw.Name,
		DisplayName: raw.DisplayName,
		Widgets:     make([]WidgetTemplate, 0, len(raw.Widgets)),
		IsDefault:   raw.IsDefault,
		CreatedAt:   raw.CreatedAt,
		UpdatedAt:   raw.UpdatedAt,
	}
	for i, w := range raw.Widgets {
		t, err := DecodeStoredTemplate(w)
		if err != nil {
			return nil, fmt.Errorf("widget %d: %w", i, err)
		}
		p.Widgets = append(p.Widgets, t)
	}
	return p, nil
}

// SavePresetRequest is the input of a preset save.
type SavePresetRequest struct {
	Name        string           `json:"name"`
	DisplayName string           `json:"displayName"`
	Widgets     []WidgetTemplate `json:"widgets"`
	IsDefault   bool             `json:"isDefault"`
}

// ActivatedPreset is a preset whose widgets are the live widgets created by
// activating it, carrying their real ids.
type ActivatedPreset struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DisplayName string    `json:"displayName"`
	Widgets     []*Widget `json:"widgets"`
	IsDefault   bool      `json:"isDefault"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
