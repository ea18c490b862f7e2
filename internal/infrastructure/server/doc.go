// Package server is the composition root. It loads the persisted stores,
// seeds presets, wires the dashboard service to the broadcast hub and
// mounts the REST, websocket and metrics routes on one gin router.
package server
