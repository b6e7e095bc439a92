// Package server provides HTTP routing, middleware and the import progress stream.
//
// # Router Infrastructure
//
// The [Router] interface defines HTTP routing with middleware support.
//
// [Middleware] wraps handlers in reverse order (last added executes first), following the standard Go pattern.
//
// The [BasicRouter] implementation uses [http.ServeMux] internally with method filtering.
// [NewRouter] wires the scanarr routes:
//
//	GET  /        → embedded index page (internal/web)
//	POST /submit  → run one import and stream its progress
//	GET  /check   → Lidarr configuration report as JSON
//	GET  /health  → liveness
//
// # Progress Stream
//
// [ImportHandler] rejects a missing barcode with 400 and the plain-text body
// "error: No barcode provided" before anything is streamed. Otherwise it returns
// text/event-stream and [StreamWriter] writes each event as
//
//	{"status": "...", "progress": 15}
//
// followed by a blank line, flushing after every frame. The stream ends after the
// first frame at progress 100. The import runs on a context detached from the request,
// so it keeps going when the client disconnects.
//
// # Handler Interface
//
// Custom handlers implement the [Handler] interface, which wraps the stdlib handler interface and adds routes,
// allowing handlers to register multiple routes to encapsulate route definitions within the implementation.
package server
