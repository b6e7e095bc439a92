package server

import (
	"net/http"
	"slices"
	"strings"
)

// BasicRouter is a simple HTTP router implementing the [Router] interface.
//
// Uses [http.ServeMux] internally for routing, so paths may use its wildcard patterns.
// Several methods may share a path. Requests with an unregistered method get 405 with
// an Allow header listing the registered ones; GET routes also answer HEAD.
type BasicRouter struct {
	mux         *http.ServeMux
	middlewares []Middleware
	routes      map[string]*methodTable
}

// methodTable dispatches one path by request method.
type methodTable struct {
	handlers map[string]http.Handler
}

func (t *methodTable) allow() string {
	methods := make([]string, 0, len(t.handlers)+1)
	for m := range t.handlers {
		methods = append(methods, m)
	}
	if _, ok := t.handlers[http.MethodGet]; ok {
		if _, ok := t.handlers[http.MethodHead]; !ok {
			methods = append(methods, http.MethodHead)
		}
	}
	slices.Sort(methods)
	return strings.Join(methods, ", ")
}

func (t *methodTable) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	h, ok := t.handlers[req.Method]
	if !ok && req.Method == http.MethodHead {
		h, ok = t.handlers[http.MethodGet]
	}
	if !ok {
		w.Header().Set("Allow", t.allow())
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	h.ServeHTTP(w, req)
}

// NewBasicRouter creates a new [BasicRouter] instance.
func NewBasicRouter() *BasicRouter {
	return &BasicRouter{
		mux:         http.NewServeMux(),
		middlewares: []Middleware{},
		routes:      make(map[string]*methodTable),
	}
}

// Use adds [Middleware] to the [Router] instance's middleware stack, applied in the order it's added.
//
// Only routes registered after the call are wrapped.
func (r *BasicRouter) Use(middleware ...Middleware) {
	r.middlewares = append(r.middlewares, middleware...)
}

// Handle registers a handler for the specified HTTP method and path.
//
// The handler is wrapped with all registered middleware. Registering the same
// method and path twice replaces the earlier handler.
func (r *BasicRouter) Handle(method, path string, handler http.Handler) {
	table, ok := r.routes[path]
	if !ok {
		table = &methodTable{handlers: make(map[string]http.Handler)}
		r.routes[path] = table
		r.mux.Handle(path, table)
	}
	table.handlers[strings.ToUpper(method)] = r.Apply(handler)
}

// Handler registers a custom Handler implementation for every method.
//
// All routes returned by [Handler.Routes] are registered with this handler.
func (r *BasicRouter) Handler(handler Handler) {
	wrapped := r.Apply(handler)

	for _, route := range handler.Routes() {
		r.mux.Handle(route, wrapped)
	}
}

// ServeHTTP implements [http.Handler] for the entire router.
func (r *BasicRouter) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// Apply wraps a handler with all registered middleware.
//
// Middleware is applied in reverse order (last added wraps first).
func (r *BasicRouter) Apply(handler http.Handler) http.Handler {
	wrapped := handler

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		wrapped = r.middlewares[i](wrapped)
	}

	return wrapped
}
