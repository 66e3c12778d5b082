package modal

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.inout.gg/foundations/debug"
)

var _ http.Handler = (*Modal)(nil)

// baseRoute is a named route a modal is displayed over.
type baseRoute struct {
	params   map[string]string
	name     string
	absolute bool
}

// Modal is a response rendering component as a modal over a background page.
//
// A Modal is configured with chained calls and rendered once with Render
// (or used as an http.Handler). It must not be shared between requests.
type Modal struct {
	props     Proper
	route     *baseRoute
	component string
	baseURL   string
}

// New creates a modal rendering the front-end component with props.
// A nil props sends an empty props object.
//
// The base page must be set with BaseURL or BaseRoute before rendering.
func New(component string, props Proper) *Modal {
	debug.Assert(component != "", "component must not be empty")

	//nolint:exhaustruct
	return &Modal{
		component: component,
		props:     props,
	}
}

// Component returns the front-end component of the modal.
func (m *Modal) Component() string { return m.component }

// BaseRoute displays the modal over the page of the named route.
//
// The route is resolved through the router of the middleware when the
// modal renders; an unknown route or missing params make Render fail.
// With absolute set, a resolved path is prefixed with the scheme and host
// of the current request.
func (m *Modal) BaseRoute(name string, params map[string]string, absolute bool) *Modal {
	m.route = &baseRoute{name: name, params: params, absolute: absolute}
	m.baseURL = ""

	return m
}

// BasePageRoute is an alias of BaseRoute.
func (m *Modal) BasePageRoute(name string, params map[string]string, absolute bool) *Modal {
	return m.BaseRoute(name, params, absolute)
}

// BaseURL displays the modal over the page at url.
func (m *Modal) BaseURL(url string) *Modal {
	m.baseURL = url
	m.route = nil

	return m
}

// With replaces the modal props.
func (m *Modal) With(props Proper) *Modal {
	m.props = props
	return m
}

// RedirectURL returns the URL the modal navigates to when closed for r.
//
// A modal with a base URL needs nothing but r. A modal with a base route
// is resolved through the router of the middleware.
func (m *Modal) RedirectURL(r *http.Request) (string, error) {
	var h *host
	if m.route != nil {
		var ok bool
		if h, ok = hostFromContext(r.Context()); !ok {
			return "", ErrRendererNotFound
		}
	}

	base, err := m.resolveBaseURL(r, h)
	if err != nil {
		return "", err
	}

	u, _ := redirectURL(r, base)

	return u, nil
}

// Render writes the modal response.
//
// The modal payload is shared with r under the "modal" prop. If the client
// asks for a partial reload of a component, only that component is rendered.
// Otherwise the request is mirrored to the redirect URL and the matching
// route renders the background page, which receives the modal payload.
//
// Routing errors are returned as they are, wrapping ErrRouteNotFound,
// ErrRouteResolution or ErrNoMatchingRoute.
func (m *Modal) Render(w http.ResponseWriter, r *http.Request) error {
	h, ok := hostFromContext(r.Context())
	if !ok {
		return ErrRendererNotFound
	}

	base, err := m.resolveBaseURL(r, h)
	if err != nil {
		return err
	}

	dec := decide(r, base)

	props, err := h.renderer.ResolveProps(r.Context(), m.props)
	if err != nil {
		return fmt.Errorf("modal: failed to resolve props of %s: %w", m.component, err)
	}

	// A modal rendered as the background of another modal keeps the
	// payload of the modal the client navigated to.
	if _, shared := SharedProps(r.Context()).Get(PropKey); !shared || MirrorDepth(r.Context()) == 0 {
		payload := newPayload(r, m.component, base, dec.redirectURL, props)
		r = Share(r, NewAlways(PropKey, payload))
	}

	d("Rendering modal %s (%s), redirect URL %s from %s", m.component, dec.intent, dec.redirectURL, dec.source)

	if dec.intent == intentPartialComponent {
		//nolint:exhaustruct
		return h.renderer.Render(w, r, dec.component, RenderContext{})
	}

	return renderBackground(w, r, h, dec.redirectURL)
}

// Write implements modalframe.RawResponseWriter.
func (m *Modal) Write(w http.ResponseWriter, r *http.Request) error {
	return m.Render(w, r)
}

// ServeHTTP renders the modal. Routing errors become 404 Not Found,
// other errors 500 Internal Server Error.
func (m *Modal) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	err := m.Render(w, r)
	if err == nil {
		return
	}

	d("Failed to render modal %s: %v", m.component, err)

	if errors.Is(err, ErrNoMatchingRoute) || errors.Is(err, ErrRouteNotFound) {
		http.NotFound(w, r)
		return
	}

	http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
}

func (m *Modal) resolveBaseURL(r *http.Request, h *host) (string, error) {
	if m.route == nil {
		if m.baseURL == "" {
			return "", ErrBaseURLNotSet
		}

		return m.baseURL, nil
	}

	if h.router == nil {
		return "", ErrRouterNotConfigured
	}

	u, err := h.router.URL(m.route.name, m.route.params)
	if err != nil {
		return "", fmt.Errorf("modal: failed to resolve base route %q: %w", m.route.name, err)
	}

	if m.route.absolute && strings.HasPrefix(u, "/") && !strings.HasPrefix(u, "//") {
		u = currentOrigin(r) + u
	}

	return u, nil
}

// renderBackground mirrors r to target and serves it with the matching route.
func renderBackground(w http.ResponseWriter, r *http.Request, h *host, target string) error {
	if h.router == nil {
		return ErrRouterNotConfigured
	}

	mirrored, err := mirrorRequest(r, target, h.maxMirrorDepth)
	if err != nil {
		return err
	}

	handler, mirrored, err := h.router.Match(mirrored)
	if err != nil {
		return fmt.Errorf("modal: failed to match background page %s: %w", target, err)
	}

	d("Serving background page %s (depth %d)", mirrored.RequestURI, MirrorDepth(mirrored.Context()))

	handler.ServeHTTP(w, mirrored)

	return nil
}
