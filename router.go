package modal

import (
	"errors"
	"net/http"
)

var (
	// ErrRouteNotFound is returned when a named base route is unknown.
	ErrRouteNotFound = errors.New("modal: route not found")

	// ErrRouteResolution is returned when a named base route cannot be
	// turned into a URL, typically because of a missing parameter.
	ErrRouteResolution = errors.New("modal: failed to resolve route")

	// ErrNoMatchingRoute is returned when no route matches a mirrored request.
	ErrNoMatchingRoute = errors.New("modal: no route matches request")

	// ErrBaseURLNotSet is returned when a modal renders without a base.
	ErrBaseURLNotSet = errors.New("modal: base URL is not set")

	// ErrMirrorDepthExceeded is returned when modals keep mirroring into
	// other modals beyond MiddlewareConfig.MaxMirrorDepth.
	ErrMirrorDepthExceeded = errors.New("modal: mirrored request depth exceeded")

	// ErrRouterNotConfigured is returned when a modal needs a router and
	// the middleware has none.
	ErrRouterNotConfigured = errors.New("modal: router is not configured")

	// ErrRendererNotFound is returned when the middleware is missing.
	ErrRendererNotFound = errors.New(
		"modal: renderer not found in request context - did you forget to use the middleware?",
	)
)

// URLResolver turns a named route into a URL.
type URLResolver interface {
	// URL returns the URL of the route name with params substituted.
	//
	// It returns an error wrapping ErrRouteNotFound if the route is unknown
	// and ErrRouteResolution if params do not satisfy the route.
	URL(name string, params map[string]string) (string, error)
}

// RouteMatcher finds the route handling a request.
type RouteMatcher interface {
	// Match returns the handler of the route matching r, together with
	// the request to serve it with. Route parameters are bound either on
	// the returned request or by the returned handler itself.
	//
	// It returns an error wrapping ErrNoMatchingRoute if nothing matches.
	Match(r *http.Request) (http.Handler, *http.Request, error)
}

//go:generate mockgen -destination router_mock_test.go -package modal . Router

// Router is the routing table modals rely on. Adapters for net/http.ServeMux,
// gorilla/mux and chi live in modalframe, contrib/gorillamux and
// contrib/chirouter.
type Router interface {
	URLResolver
	RouteMatcher
}
