package types

// EventType names a broadcast event.
type EventType string

const (
	EventWidgetCreated   EventType = "widget:created"
	EventWidgetUpdated   EventType = "widget:updated"
	EventWidgetDeleted   EventType = "widget:deleted"
	EventPresetActivated EventType = "preset:activated"
	EventStatusUpdated   EventType = "status:updated"
	EventFeedNew         EventType = "feed:new"
)

// Event is one state change delivered to every connected display.
type Event struct {
	Type EventType   `json:"event"`
	Data interface{} `json:"data"`
}

// WidgetDeleted is the payload of widget:deleted.
type WidgetDeleted struct {
	ID string `json:"id"`
}

// PresetActivated is the payload of preset:activated.
type PresetActivated struct {
	PresetName        string `json:"presetName"`
	PresetDisplayName string `json:"presetDisplayName"`
	WidgetCount       int    `json:"widgetCount"`
}

func WidgetCreatedEvent(w *Widget) Event { return Event{Type: EventWidgetCreated, Data: w} }
func WidgetUpdatedEvent(w *Widget) Event { return Event{Type: EventWidgetUpdated, Data: w} }
func WidgetDeletedEvent(id string) Event {
	return Event{Type: EventWidgetDeleted, Data: WidgetDeleted{ID: id}}
}
func StatusUpdatedEvent(s *AriStatus) Event { return Event{Type: EventStatusUpdated, Data: s} }
func FeedNewEvent(e *FeedEntry) Event       { return Event{Type: EventFeedNew, Data: e} }
