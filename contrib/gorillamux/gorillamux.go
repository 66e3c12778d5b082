// Package gorillamux adapts github.com/gorilla/mux to modal.Router.
//
// Named routes of the mux serve as modal base routes, and mirrored requests
// are matched against the mux with route variables bound via mux.SetURLVars.
package gorillamux

import (
	"errors"
	"fmt"
	"maps"
	"net/http"
	"slices"

	"github.com/gorilla/mux"
	"go.inout.gg/foundations/debug"

	modal "github.com/onlime/momentum-modal"
)

var d = debug.Debuglog("modal/gorillamux") //nolint:gochecknoglobals

var _ modal.Router = (*Router)(nil)

// Router resolves and matches modal routes with a *mux.Router.
type Router struct {
	mux *mux.Router
}

// New creates a Router backed by m.
func New(m *mux.Router) *Router {
	debug.Assert(m != nil, "mux must not be nil")

	return &Router{mux: m}
}

// URL builds the URL of the route named name.
//
// Params not used by the route's variables are added as query parameters.
func (rt *Router) URL(name string, params map[string]string) (string, error) {
	route := rt.mux.Get(name)
	if route == nil {
		return "", fmt.Errorf("%w: %q", modal.ErrRouteNotFound, name)
	}

	vars, err := route.GetVarNames()
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", modal.ErrRouteResolution, name, err)
	}

	pairs := make([]string, 0, 2*len(params))
	extra := make(map[string]string)

	for _, k := range slices.Sorted(maps.Keys(params)) {
		if slices.Contains(vars, k) {
			pairs = append(pairs, k, params[k])
		} else {
			extra[k] = params[k]
		}
	}

	u, err := route.URL(pairs...)
	if err != nil {
		return "", fmt.Errorf("%w: %q: %w", modal.ErrRouteResolution, name, err)
	}

	if len(extra) > 0 {
		q := u.Query()
		for k, v := range extra {
			q.Set(k, v)
		}

		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

// Match matches r against the mux. The returned handler includes the
// middleware registered with mux.Router.Use, and the returned request
// carries the route variables.
func (rt *Router) Match(r *http.Request) (http.Handler, *http.Request, error) {
	var match mux.RouteMatch

	if !rt.mux.Match(r, &match) || match.MatchErr != nil {
		err := match.MatchErr
		if err == nil {
			err = mux.ErrNotFound
		}

		if errors.Is(err, mux.ErrMethodMismatch) {
			d("route %s matched with another method", r.URL.Path)
		}

		return nil, nil, fmt.Errorf("%w: %s %s: %w", modal.ErrNoMatchingRoute, r.Method, r.URL.Path, err)
	}

	d("matched %s to route %q", r.URL.Path, match.Route.GetName())

	return match.Handler, mux.SetURLVars(r, match.Vars), nil
}
