package modalframe

import (
	"fmt"
	"net/http"
	"sync"

	"go.inout.gg/foundations/debug"

	modal "github.com/onlime/momentum-modal"
	"github.com/onlime/momentum-modal/internal/routepattern"
)

var (
	_ NamedMux     = (*Router)(nil)
	_ modal.Router = (*Router)(nil)
)

// Router is an http.ServeMux with named routes.
//
// It resolves modal base routes by name and matches the mirrored requests
// of modals, so it can be passed to modal.WithRouter.
type Router struct {
	mux *http.ServeMux

	mu     sync.RWMutex
	routes map[string]string // name -> pattern
}

// NewRouter creates an empty Router.
func NewRouter() *Router {
	return &Router{
		mux:    http.NewServeMux(),
		routes: make(map[string]string),
	}
}

// Handle registers h for pattern, see http.ServeMux.
func (rt *Router) Handle(pattern string, h http.Handler) {
	rt.mux.Handle(pattern, h)
}

// HandleFunc registers h for pattern, see http.ServeMux.
func (rt *Router) HandleFunc(pattern string, h func(http.ResponseWriter, *http.Request)) {
	rt.mux.HandleFunc(pattern, h)
}

// HandleNamed registers h for pattern under name.
//
// Names must be unique; registering a name again replaces its pattern.
func (rt *Router) HandleNamed(name, pattern string, h http.Handler) {
	debug.Assert(name != "", "route name must not be empty")

	rt.mux.Handle(pattern, h)

	rt.mu.Lock()
	defer rt.mu.Unlock()

	_, exists := rt.routes[name]
	debug.Assert(!exists, "route name must be unique")

	rt.routes[name] = pattern
}

// ServeHTTP dispatches the request to the matching handler.
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	rt.mux.ServeHTTP(w, r)
}

// URL returns the path of the route registered under name with params
// substituted. Params absent from the pattern become query parameters.
func (rt *Router) URL(name string, params map[string]string) (string, error) {
	rt.mu.RLock()
	pattern, ok := rt.routes[name]
	rt.mu.RUnlock()

	if !ok {
		return "", fmt.Errorf("%w: %q", modal.ErrRouteNotFound, name)
	}

	u, err := routepattern.Expand(pattern, params)
	if err != nil {
		return "", fmt.Errorf("%w: %w", modal.ErrRouteResolution, err)
	}

	return u, nil
}

// Match reports whether a route is registered for r and returns the
// router itself as the handler, so the ServeMux binds the path values of
// the matched pattern when it serves the request.
func (rt *Router) Match(r *http.Request) (http.Handler, *http.Request, error) {
	_, pattern := rt.mux.Handler(r)
	if pattern == "" {
		return nil, nil, fmt.Errorf("%w: %s %s", modal.ErrNoMatchingRoute, r.Method, r.URL.Path)
	}

	d("matched %s to pattern %q", r.URL.Path, pattern)

	return rt.mux, r, nil
}
