package types

import (
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/mitchellh/mapstructure"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

// WidgetData is the type-specific payload of a widget. Each widget type has
// exactly one concrete shape; values are treated as immutable once built.
type WidgetData interface {
	WidgetType() WidgetType
	validate() error
}

// InfoItem is one labelled value on the home tile.
type InfoItem struct {
	Icon  string `json:"icon,omitempty"`
	Label string `json:"label"`
	Value string `json:"value"`
}

// HomeData is the payload of a home widget.
type HomeData struct {
	Greeting    string     `json:"greeting,omitempty"`
	Status      string     `json:"status"`
	CurrentTask string     `json:"currentTask,omitempty"`
	InfoItems   []InfoItem `json:"infoItems,omitempty"`
}

// TextData is the payload of a text/markdown widget.
type TextData struct {
	Content  string `json:"content"`
	Variant  string `json:"variant,omitempty"`
	FontSize string `json:"fontSize,omitempty"`
}

// PreviewData is a tabular preview of a spreadsheet or CSV file.
type PreviewData struct {
	Headers []string   `json:"headers"`
	Rows    [][]string `json:"rows"`
}

// FileData is the payload of a file viewer widget.
type FileData struct {
	FileType    string       `json:"fileType"`
	FileName    string       `json:"fileName"`
	FileURL     string       `json:"fileUrl"`
	Alt         string       `json:"alt,omitempty"`
	PreviewData *PreviewData `json:"previewData,omitempty"`
}

// HTMLData is the payload of an HTML/SVG renderer widget.
type HTMLData struct {
	HTML       string `json:"html"`
	Sandbox    *bool  `json:"sandbox,omitempty"`
	SVGContent string `json:"svgContent,omitempty"`
}

// WeatherData is the payload of a weather widget.
type WeatherData struct {
	Location string `json:"location"`
	ZipCode  string `json:"zipCode"`
	APIKey   string `json:"apiKey,omitempty"`
	Units    string `json:"units,omitempty"`
}

// NewsItem is one headline on the news widget.
type NewsItem struct {
	Category string `json:"category,omitempty"`
	Headline string `json:"headline"`
	Time     string `json:"time,omitempty"`
	URL      string `json:"url,omitempty"`
}

// NewsData is the payload of a news ticker widget.
type NewsData struct {
	Items  []NewsItem `json:"items"`
	Ticker *bool      `json:"ticker,omitempty"`
}

func (*HomeData) WidgetType() WidgetType    { return WidgetHome }
func (*TextData) WidgetType() WidgetType    { return WidgetText }
func (*FileData) WidgetType() WidgetType    { return WidgetFile }
func (*HTMLData) WidgetType() WidgetType    { return WidgetHTML }
func (*WeatherData) WidgetType() WidgetType { return WidgetWeather }
func (*NewsData) WidgetType() WidgetType    { return WidgetNews }

func (d *HomeData) validate() error {
	return oneOf("status", d.Status, "", "idle", "working", "meeting")
}

func (d *TextData) validate() error {
	if err := oneOf("variant", d.Variant, "", "default", "info", "warning", "success", "error"); err != nil {
		return err
	}
	return oneOf("fontSize", d.FontSize, "", "sm", "md", "lg", "xl")
}

func (d *FileData) validate() error {
	return oneOf("fileType", d.FileType, "", "pdf", "image", "excel", "csv", "other")
}

func (d *HTMLData) validate() error { return nil }

func (d *WeatherData) validate() error {
	return oneOf("units", d.Units, "", "metric", "imperial")
}

func (d *NewsData) validate() error { return nil }

// NewData returns an empty payload of the concrete shape for t.
func NewData(t WidgetType) (WidgetData, error) {
	switch t {
	case WidgetHome:
		return &HomeData{}, nil
	case WidgetText:
		return &TextData{}, nil
	case WidgetFile:
		return &FileData{}, nil
	case WidgetHTML:
		return &HTMLData{}, nil
	case WidgetWeather:
		return &WeatherData{}, nil
	case WidgetNews:
		return &NewsData{}, nil
	default:
		return nil, invalidType(t)
	}
}

// DecodeData resolves a raw JSON object into the concrete payload for t.
// Keys the shape does not define are rejected.
func DecodeData(t WidgetType, raw map[string]interface{}) (WidgetData, error) {
	data, err := NewData(t)
	if err != nil {
		return nil, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      data,
		TagName:     "json",
		ErrorUnused: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create data decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation,
			fmt.Sprintf("data does not match the %s widget shape", t)).
			WithDetail("type", string(t))
	}
	if err := data.validate(); err != nil {
		return nil, err
	}
	return data, nil
}

// DecodeStoredData resolves persisted data into the concrete payload for t.
// Scalars are converted to the field type and unknown keys are dropped, so
// documents written by older builds still load.
func DecodeStoredData(t WidgetType, raw map[string]interface{}) (WidgetData, error) {
	data, err := NewData(t)
	if err != nil {
		return nil, err
	}

	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           data,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create data decoder: %w", err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeValidation,
			fmt.Sprintf("stored data does not fit the %s widget shape", t)).
			WithDetail("type", string(t))
	}
	return data, nil
}

// DataToMap returns the JSON object form of d.
func DataToMap(d WidgetData) (map[string]interface{}, error) {
	out := map[string]interface{}{}
	if d == nil {
		return out, nil
	}
	b, err := sonic.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("failed to encode widget data: %w", err)
	}
	if err := sonic.Unmarshal(b, &out); err != nil {
		return nil, fmt.Errorf("failed to decode widget data: %w", err)
	}
	return out, nil
}

// MergeData merges patch key-wise over current: keys in patch replace keys in
// current, keys absent from patch are preserved. The result is re-validated
// against the shape of t.
func MergeData(t WidgetType, current WidgetData, patch map[string]interface{}) (WidgetData, error) {
	base, err := DataToMap(current)
	if err != nil {
		return nil, err
	}
	for k, v := range patch {
		base[k] = v
	}
	return DecodeData(t, base)
}

func oneOf(field, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return apperrors.Validation("invalid %s %q", field, value).WithDetail("field", field)
}
