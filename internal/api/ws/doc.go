// Package ws is the realtime broadcast channel to dashboard displays.
//
// Displays connect with a websocket and receive one JSON text frame per
// state change:
//
//	{"event": "widget:created", "data": {...}}
//
// Delivery is fire-and-forget. Each client has a bounded queue; a client
// that falls behind misses events and is expected to re-fetch state over
// HTTP. A client may send {"event":"ping"} and receives {"event":"pong"}.
package ws
