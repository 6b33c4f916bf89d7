// Package server exposes conversion runs over HTTP.
//
// # Routing
//
// [BasicRouter] implements [Router] on top of [http.ServeMux] using method-qualified patterns,
// so POST and DELETE on /api/conversions share a path and any other method gets a 405.
// [Middleware] wraps handlers in reverse order (last added executes first).
//
// # API
//
// [API] registers the JSON endpoints: starting and canceling a run, reading the live
// conversion state, and recovering persisted results. Errors are always
// {"error": "..."} bodies.
//
// # Events
//
// [EventHub] implements [Handler] for GET /api/events and is also the converter's emitter.
// Each websocket subscriber receives every event as JSON. Sends never block; a
// subscriber that falls behind is disconnected.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
