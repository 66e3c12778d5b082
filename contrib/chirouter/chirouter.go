// Package chirouter adapts github.com/go-chi/chi/v5 to modal.Router.
//
// chi has no named routes, so names are registered next to the chi routes
// with Router.Name, or with Router.Get, which does both.
package chirouter

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"go.inout.gg/foundations/debug"

	modal "github.com/onlime/momentum-modal"
	"github.com/onlime/momentum-modal/internal/routepattern"
)

var d = debug.Debuglog("modal/chirouter") //nolint:gochecknoglobals

var _ modal.Router = (*Router)(nil)

// Router resolves and matches modal routes with a *chi.Mux.
type Router struct {
	mux *chi.Mux

	mu     sync.RWMutex
	routes map[string]string // name -> pattern
}

// New creates a Router backed by m.
func New(m *chi.Mux) *Router {
	debug.Assert(m != nil, "mux must not be nil")

	return &Router{mux: m, routes: make(map[string]string)}
}

// Name registers pattern under name. The pattern is the full path of the
// route, including the prefixes of the routers it is mounted on.
func (rt *Router) Name(name, pattern string) {
	debug.Assert(name != "", "route name must not be empty")

	rt.mu.Lock()
	defer rt.mu.Unlock()

	rt.routes[name] = pattern
}

// Get registers a GET route on the mux and names it.
func (rt *Router) Get(name, pattern string, h http.HandlerFunc) {
	rt.mux.Get(pattern, h)
	rt.Name(name, pattern)
}

// URL substitutes params into the pattern named name. Params the pattern
// does not use become query parameters.
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

// Match reports the mux as the handler of r if one of its routes matches.
//
// The returned request carries a fresh chi routing context, so the mux
// routes it from scratch, binding the URL params of the matched route,
// instead of reusing the context of the request it was mirrored from.
func (rt *Router) Match(r *http.Request) (http.Handler, *http.Request, error) {
	if !rt.mux.Match(chi.NewRouteContext(), r.Method, r.URL.Path) {
		return nil, nil, fmt.Errorf("%w: %s %s", modal.ErrNoMatchingRoute, r.Method, r.URL.Path)
	}

	d("matched %s", r.URL.Path)

	r = r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, chi.NewRouteContext()))

	return rt.mux, r, nil
}
