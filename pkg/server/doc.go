// Package server delivers the toast stack to browsers.
//
// GET / renders the page with the current stack and the thin client script.
// The script opens a WebSocket at /ws; each connection becomes a Session
// with its own container and renderer.
//
// # Session
//
// A session runs two goroutines:
//   - readLoop: decodes JSON frames, queues events, applies resize and
//     clipboard results
//   - eventLoop: runs handlers by hydration ID, re-renders on container
//     changes, sends heartbeat pings
//
// Handlers only ever run on the event loop, so the handler registry of the
// session's renderer needs no lock.
//
// # Frames
//
//	server -> client  {"type":"render","html":"..."}
//	                  {"type":"clipboard","id":"...","text":"..."}
//	client -> server  {"type":"event","hid":"h3","event":"keydown","payload":{...}}
//	                  {"type":"resize","width":390}
//	                  {"type":"clipboard-result","id":"...","ok":true}
//
// # REST API
//
//	GET    /api/toasts             list active toasts
//	POST   /api/toasts             show a toast (422 on validation errors)
//	DELETE /api/toasts             clear all
//	DELETE /api/toasts/{id}        dismiss one
//	POST   /api/toasts/{id}/pause  pause its countdown
//	POST   /api/toasts/{id}/resume resume its countdown
//
// GET /metrics serves Prometheus metrics and GET /healthz a JSON status.
package server
