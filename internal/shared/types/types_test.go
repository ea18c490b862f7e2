package types

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/ari-dashboard/backend/internal/shared/errors"
)

func TestCreateWidgetRequestTemplate(t *testing.T) {
	tests := []struct {
		name    string
		req     CreateWidgetRequest
		message string
	}{
		{
			name:    "missing data",
			req:     CreateWidgetRequest{Type: WidgetText, Title: "Notes"},
			message: "Missing required fields: type, title, data",
		},
		{
			name:    "missing fields take precedence over bad type",
			req:     CreateWidgetRequest{Type: "clock", Data: map[string]interface{}{}},
			message: "Missing required fields: type, title, data",
		},
		{
			name:    "unknown type",
			req:     CreateWidgetRequest{Type: "clock", Title: "Clock", Data: map[string]interface{}{}},
			message: `Invalid widget type "clock". Must be one of: home, text, file, html, weather, news`,
		},
		{
			name:    "bad enum value",
			req:     CreateWidgetRequest{Type: WidgetText, Title: "Notes", Data: map[string]interface{}{"variant": "loud"}},
			message: "variant",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.req.Template()
			require.Error(t, err)
			assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
			assert.Contains(t, apperrors.Message(err), tt.message)
		})
	}
}

func TestCreateWidgetRequestResolvesData(t *testing.T) {
	req := CreateWidgetRequest{
		Type:  WidgetNews,
		Title: "Headlines",
		Data: map[string]interface{}{
			"items": []interface{}{
				map[string]interface{}{"headline": "Markets open", "category": "business"},
			},
		},
	}
	tpl, err := req.Template()
	require.NoError(t, err)

	news, ok := tpl.Data.(*NewsData)
	require.True(t, ok)
	require.Len(t, news.Items, 1)
	assert.Equal(t, "Markets open", news.Items[0].Headline)
	assert.NoError(t, tpl.Validate())
}

func TestDecodeDataRejectsUnknownKeys(t *testing.T) {
	_, err := DecodeData(WidgetWeather, map[string]interface{}{
		"location":    "Austin",
		"temperature": 31,
	})
	require.Error(t, err)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestMergeDataKeepsAbsentKeys(t *testing.T) {
	current := &WeatherData{Location: "Austin", ZipCode: "78701", Units: "imperial"}

	merged, err := MergeData(WidgetWeather, current, map[string]interface{}{"units": "metric"})
	require.NoError(t, err)

	w, ok := merged.(*WeatherData)
	require.True(t, ok)
	assert.Equal(t, "Austin", w.Location)
	assert.Equal(t, "78701", w.ZipCode)
	assert.Equal(t, "metric", w.Units)

	// The original value is untouched
	assert.Equal(t, "imperial", current.Units)
}

func TestMergeDataRevalidates(t *testing.T) {
	_, err := MergeData(WidgetText, &TextData{Content: "x"}, map[string]interface{}{"fontSize": "huge"})
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestWidgetTemplateUnmarshal(t *testing.T) {
	var tpl WidgetTemplate
	require.NoError(t, json.Unmarshal([]byte(`{"type":"text","title":"Notes","data":{"content":"hi"},"id":"ignored"}`), &tpl))
	assert.Equal(t, WidgetText, tpl.Type)
	assert.Equal(t, &TextData{Content: "hi"}, tpl.Data)
	assert.Nil(t, tpl.Position)

	err := json.Unmarshal([]byte(`{"title":"Notes","data":{}}`), &tpl)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))

	err = json.Unmarshal([]byte(`{"type":"clock","title":"Clock","data":{}}`), &tpl)
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestWidgetTemplateValidateShapeMismatch(t *testing.T) {
	tpl := WidgetTemplate{Type: WidgetWeather, Title: "Weather", Data: &TextData{Content: "x"}}
	err := tpl.Validate()
	assert.True(t, apperrors.Is(err, apperrors.CodeValidation))
}

func TestWidgetJSONRoundTrip(t *testing.T) {
	scrollable := true
	now := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	w := &Widget{
		ID:         "wgt_test",
		Type:       WidgetHTML,
		Title:      "Chart",
		Data:       &HTMLData{HTML: "<p>hi</p>", SVGContent: "<svg></svg>"},
		Position:   Position{X: 1, Y: 2, W: 3, H: 4},
		Scrollable: &scrollable,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	b, err := sonic.Marshal(w)
	require.NoError(t, err)

	var decoded Widget
	require.NoError(t, sonic.Unmarshal(b, &decoded))
	assert.Equal(t, w, &decoded)
}

func TestPositionPatchApply(t *testing.T) {
	w := 8
	got := PositionPatch{W: &w}.Apply(DefaultPosition)
	assert.Equal(t, Position{X: 0, Y: 0, W: 8, H: 3}, got)
	assert.Equal(t, FullscreenPosition, PatchFrom(FullscreenPosition).Apply(DefaultPosition))
}

func TestWidgetCloneAndTemplate(t *testing.T) {
	scrollable := false
	w := &Widget{ID: "a", Type: WidgetText, Title: "T", Data: &TextData{Content: "x"}, Scrollable: &scrollable}

	c := w.Clone()
	*c.Scrollable = true
	assert.False(t, *w.Scrollable)

	tpl := w.Template()
	require.NotNil(t, tpl.Position)
	assert.Equal(t, w.Position, *tpl.Position)
	assert.NoError(t, tpl.Validate())
}

func TestStatusPatchValidate(t *testing.T) {
	bad := AriState("asleep")
	assert.Error(t, (&StatusPatch{State: &bad}).Validate())

	ok := StateAgents
	assert.NoError(t, (&StatusPatch{State: &ok}).Validate())

	err := (&StatusPatch{ActiveTasks: []AriTask{{ID: "t1", Name: "Scan", Status: "paused"}}}).Validate()
	assert.Error(t, err)
}

func TestFeedEntryRequestValidate(t *testing.T) {
	err := (&FeedEntryRequest{Type: FeedInfo}).Validate()
	assert.Equal(t, "Missing required fields: type, message", apperrors.Message(err))

	err = (&FeedEntryRequest{Type: "gossip", Message: "x"}).Validate()
	assert.Contains(t, apperrors.Message(err), "Invalid feed type")

	assert.NoError(t, (&FeedEntryRequest{Type: FeedTaskCompleted, Message: "Done"}).Validate())
}

func TestEventWireFormat(t *testing.T) {
	b, err := sonic.Marshal(WidgetDeletedEvent("wgt_1"))
	require.NoError(t, err)
	assert.JSONEq(t, `{"event":"widget:deleted","data":{"id":"wgt_1"}}`, string(b))
}

func TestDecodeStoredDataIsLooserThanDecodeData(t *testing.T) {
	raw := map[string]interface{}{"location": "Berlin", "zipCode": float64(10115), "refresh": float64(30)}

	_, err := DecodeData(WidgetWeather, raw)
	require.Error(t, err)

	data, err := DecodeStoredData(WidgetWeather, raw)
	require.NoError(t, err)
	assert.Equal(t, &WeatherData{Location: "Berlin", ZipCode: "10115"}, data)

	_, err = DecodeStoredData(WidgetType("clock"), map[string]interface{}{})
	assert.Error(t, err)
}

func TestDecodeStoredWidgetRequiresID(t *testing.T) {
	_, err := DecodeStoredWidget([]byte(`{"type":"text","title":"Notes","data":{"content":"x"}}`))
	require.Error(t, err)

	w, err := DecodeStoredWidget([]byte(`{"id":"wgt_1","type":"text","title":"Notes","data":{"content":"x","variant":"loud"}}`))
	require.NoError(t, err)
	assert.Equal(t, &TextData{Content: "x", Variant: "loud"}, w.Data)
}
