package types

import (
	"strings"
	"time"

	"github.com/bytedance/sonic"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

// WidgetType is the closed set of tile kinds the display can render.
type WidgetType string

const (
	WidgetHome    WidgetType = "home"
	WidgetText    WidgetType = "text"
	WidgetFile    WidgetType = "file"
	WidgetHTML    WidgetType = "html"
	WidgetWeather WidgetType = "weather"
	WidgetNews    WidgetType = "news"
)

// WidgetTypes lists every valid widget type in display order.
var WidgetTypes = []WidgetType{WidgetHome, WidgetText, WidgetFile, WidgetHTML, WidgetWeather, WidgetNews}

// Valid reports whether t is one of WidgetTypes.
func (t WidgetType) Valid() bool {
	for _, v := range WidgetTypes {
		if t == v {
			return true
		}
	}
	return false
}

// Position places a widget on the 12-column grid.
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// DefaultPosition is applied when a widget is created without one.
var DefaultPosition = Position{X: 0, Y: 0, W: 4, H: 3}

// FullscreenPosition fills the grid; used by focus mode.
var FullscreenPosition = Position{X: 0, Y: 0, W: 12, H: 4}

// PositionPatch carries a partial position update.
type PositionPatch struct {
	X *int `json:"x,omitempty"`
	Y *int `json:"y,omitempty"`
	W *int `json:"w,omitempty"`
	H *int `json:"h,omitempty"`
}

// Apply merges the present fields of p over pos.
func (p PositionPatch) Apply(pos Position) Position {
	if p.X != nil {
		pos.X = *p.X
	}
	if p.Y != nil {
		pos.Y = *p.Y
	}
	if p.W != nil {
		pos.W = *p.W
	}
	if p.H != nil {
		pos.H = *p.H
	}
	return pos
}

// PatchFrom builds a patch that sets every field of pos.
func PatchFrom(pos Position) *PositionPatch {
	return &PositionPatch{X: &pos.X, Y: &pos.Y, W: &pos.W, H: &pos.H}
}

// Widget is a positioned, typed content tile.
type Widget struct {
	ID         string     `json:"id"`
	Type       WidgetType `json:"type"`
	Title      string     `json:"title"`
	Data       WidgetData `json:"data"`
	Position   Position   `json:"position"`
	Scrollable *bool      `json:"scrollable,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

// Clone returns a copy of w that shares no mutable state with it.
// WidgetData values are never mutated after construction, so they are shared.
func (w *Widget) Clone() *Widget {
	c := *w
	if w.Scrollable != nil {
		s := *w.Scrollable
		c.Scrollable = &s
	}
	return &c
}

// Template returns the content of w as a template, dropping identity and
// timestamps.
func (w *Widget) Template() WidgetTemplate {
	t := WidgetTemplate{
		Type:  w.Type,
		Title: w.Title,
		Data:  w.Data,
	}
	pos := w.Position
	t.Position = &pos
	if w.Scrollable != nil {
		s := *w.Scrollable
		t.Scrollable = &s
	}
	return t
}

// dataDecoder resolves a raw data object for a widget type.
type dataDecoder func(WidgetType, map[string]interface{}) (WidgetData, error)

// UnmarshalJSON decodes a widget, resolving data into the concrete struct
// for its type.
func (w *Widget) UnmarshalJSON(b []byte) error {
	return w.decode(b, DecodeData)
}

// DecodeStoredWidget decodes a widget read back from the data directory.
// Data is resolved with DecodeStoredData.
func DecodeStoredWidget(b []byte) (*Widget, error) {
	w := &Widget{}
	if err := w.decode(b, DecodeStoredData); err != nil {
		return nil, err
	}
	if w.ID == "" {
		return nil, apperrors.Validation("stored widget is missing its id")
	}
	return w, nil
}

func (w *Widget) decode(b []byte, decodeData dataDecoder) error {
	var raw struct {
		ID         string                 `json:"id"`
		Type       WidgetType             `json:"type"`
		Title      string                 `json:"title"`
		Data       map[string]interface{} `json:"data"`
		Position   Position               `json:"position"`
		Scrollable *bool                  `json:"scrollable"`
		CreatedAt  time.Time              `json:"createdAt"`
		UpdatedAt  time.Time              `json:"updatedAt"`
	}
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	data, err := decodeData(raw.Type, raw.Data)
	if err != nil {
		return err
	}
	*w = Widget{
		ID:         raw.ID,
		Type:       raw.Type,
		Title:      raw.Title,
		Data:       data,
		Position:   raw.Position,
		Scrollable: raw.Scrollable,
		CreatedAt:  raw.CreatedAt,
		UpdatedAt:  raw.UpdatedAt,
	}
	return nil
}

// WidgetTemplate is the content of a widget without identity: what a preset
// stores and what create consumes.
type WidgetTemplate struct {
	Type       WidgetType `json:"type"`
	Title      string     `json:"title"`
	Data       WidgetData `json:"data"`
	Position   *Position  `json:"position,omitempty"`
	Scrollable *bool      `json:"scrollable,omitempty"`
}

// UnmarshalJSON decodes a template; fields a full Widget carries (id,
// timestamps) are ignored.
func (t *WidgetTemplate) UnmarshalJSON(b []byte) error {
	return t.decode(b, DecodeData)
}

// DecodeStoredTemplate decodes a preset template read back from the data
// directory.
func DecodeStoredTemplate(b []byte) (WidgetTemplate, error) {
	var t WidgetTemplate
	err := t.decode(b, DecodeStoredData)
	return t, err
}

func (t *WidgetTemplate) decode(b []byte, decodeData dataDecoder) error {
	var raw struct {
		Type       WidgetType             `json:"type"`
		Title      string                 `json:"title"`
		Data       map[string]interface{} `json:"data"`
		Position   *Position              `json:"position"`
		Scrollable *bool                  `json:"scrollable"`
	}
	if err := sonic.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Type == "" {
		return apperrors.Validation("widget template is missing its type")
	}
	if !raw.Type.Valid() {
		return invalidType(raw.Type)
	}
	var data WidgetData
	if raw.Data != nil {
		d, err := decodeData(raw.Type, raw.Data)
		if err != nil {
			return err
		}
		data = d
	}
	*t = WidgetTemplate{
		Type:       raw.Type,
		Title:      raw.Title,
		Data:       data,
		Position:   raw.Position,
		Scrollable: raw.Scrollable,
	}
	return nil
}

// Validate checks the fields create requires.
func (t *WidgetTemplate) Validate() error {
	if t.Type == "" || t.Title == "" || t.Data == nil {
		return apperrors.Validation("Missing required fields: type, title, data")
	}
	if !t.Type.Valid() {
		return invalidType(t.Type)
	}
	if t.Data.WidgetType() != t.Type {
		return apperrors.Validation("data shape %q does not match widget type %q", t.Data.WidgetType(), t.Type)
	}
	return nil
}

// CreateWidgetRequest is the raw create input before the data payload is
// resolved against the widget type.
type CreateWidgetRequest struct {
	Type       WidgetType             `json:"type"`
	Title      string                 `json:"title"`
	Data       map[string]interface{} `json:"data"`
	Position   *Position              `json:"position,omitempty"`
	Scrollable *bool                  `json:"scrollable,omitempty"`
}

// Template validates the request and resolves it into a template. Checks run
// in order: required fields, type enumeration, data shape.
func (r *CreateWidgetRequest) Template() (WidgetTemplate, error) {
	if r.Type == "" || r.Title == "" || r.Data == nil {
		return WidgetTemplate{}, apperrors.Validation("Missing required fields: type, title, data")
	}
	if !r.Type.Valid() {
		return WidgetTemplate{}, invalidType(r.Type)
	}
	data, err := DecodeData(r.Type, r.Data)
	if err != nil {
		return WidgetTemplate{}, err
	}
	return WidgetTemplate{
		Type:       r.Type,
		Title:      r.Title,
		Data:       data,
		Position:   r.Position,
		Scrollable: r.Scrollable,
	}, nil
}

// WidgetPatch is a partial widget update. Data holds raw keys that are
// merged key-wise over the existing data.
type WidgetPatch struct {
	Title    *string                `json:"title,omitempty"`
	Data     map[string]interface{} `json:"data,omitempty"`
	Position *PositionPatch         `json:"position,omitempty"`
}

func invalidType(t WidgetType) error {
	names := make([]string, len(WidgetTypes))
	for i, v := range WidgetTypes {
		names[i] = string(v)
	}
	return apperrors.Validation("Invalid widget type %q. Must be one of: %s", t, strings.Join(names, ", ")).
		WithDetail("type", string(t))
}
