/*
Package dashboard orchestrates the dashboard stores.

Stores only mutate and persist; the Service decides what to announce. Every
operation that changes the widget set (create, update, delete, preset
activation, focus, unfocus) runs under one mutex, and events are published
in the order the changes were made:

	activate:  widget:deleted x N, widget:created x M, preset:activated
	focus:     widget:deleted for every other widget, widget:updated
	unfocus:   widget:deleted x N, widget:created per restored widget

An event is published only after the change it describes has been
persisted. If a write fails partway through a multi-step operation, the
steps already completed stay applied and announced, and the error is
returned.
*/
package dashboard
