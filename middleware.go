package modal

import (
	"context"
	"net/http"
	"slices"

	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"github.com/onlime/momentum-modal/internal/inertiaheader"
)

// DefaultMaxMirrorDepth is the default number of nested mirrored requests
// a modal may trigger, e.g. a modal whose base URL renders another modal.
const DefaultMaxMirrorDepth = 8

type ctxKey struct{}

//nolint:gochecknoglobals
var kCtxKey = ctxKey{}

// https://inertiajs.com/redirects#303-response-code
//
//nolint:gochecknoglobals
var seeOtherMethods = []string{http.MethodPatch, http.MethodPut, http.MethodDelete}

//nolint:gochecknoglobals
var DefaultEmptyResponseHandler = func(w http.ResponseWriter, _ *http.Request) {
	http.Error(w, "Empty response", http.StatusNoContent)
}

//nolint:gochecknoglobals
var DefaultVersionMismatchHandler = func(w http.ResponseWriter, r *http.Request) {
	Location(w, r, r.RequestURI)
}

// MiddlewareConfig configures the middleware.
type MiddlewareConfig struct {
	// Router resolves named base routes and matches mirrored requests.
	//
	// Modals fail with ErrRouterNotConfigured if it is nil.
	Router Router

	// EmptyResponseHandler is called when a handler produces no response body.
	//
	// Defaults to HTTP 204 No Content.
	EmptyResponseHandler http.HandlerFunc

	// VersionMismatchHandler is called when the client's asset version
	// differs from the renderer's.
	//
	// Defaults to reloading the current URL.
	VersionMismatchHandler http.HandlerFunc

	// MaxMirrorDepth caps nested mirrored requests.
	//
	// Defaults to DefaultMaxMirrorDepth.
	MaxMirrorDepth int
}

func (m *MiddlewareConfig) defaults() {
	if m.EmptyResponseHandler == nil {
		m.EmptyResponseHandler = DefaultEmptyResponseHandler
	}

	if m.VersionMismatchHandler == nil {
		m.VersionMismatchHandler = DefaultVersionMismatchHandler
	}

	if m.MaxMirrorDepth <= 0 {
		m.MaxMirrorDepth = DefaultMaxMirrorDepth
	}

	debug.Assert(m.EmptyResponseHandler != nil, "EmptyResponseHandler must be set")
	debug.Assert(m.VersionMismatchHandler != nil, "VersionMismatchHandler must be set")
}

// WithRouter sets the router modals resolve base routes and mirrored requests with.
func WithRouter(router Router) func(*MiddlewareConfig) {
	return func(c *MiddlewareConfig) { c.Router = router }
}

// WithMaxMirrorDepth sets MiddlewareConfig.MaxMirrorDepth.
func WithMaxMirrorDepth(depth int) func(*MiddlewareConfig) {
	return func(c *MiddlewareConfig) { c.MaxMirrorDepth = depth }
}

// host is what the middleware makes available to Render and Modal through
// the request context.
type host struct {
	renderer       *Renderer
	router         Router
	maxMirrorDepth int
}

func hostFromContext(ctx context.Context) (*host, bool) {
	h, ok := ctx.Value(kCtxKey).(*host)
	return h, ok && h != nil
}

// NewMiddleware creates the middleware handling the Inertia.js protocol.
//
// It makes the renderer and the router available to Render and Modal,
// validates the client asset version, converts 302 redirects of
// PUT/PATCH/DELETE requests to 303, and reports empty Inertia responses.
func NewMiddleware(renderer *Renderer, opts ...func(*MiddlewareConfig)) func(http.Handler) http.Handler {
	debug.Assert(renderer != nil, "renderer must be set")

	//nolint:exhaustruct
	config := MiddlewareConfig{}
	for _, opt := range opts {
		opt(&config)
	}

	config.defaults()

	state := &host{
		renderer:       renderer,
		router:         config.Router,
		maxMirrorDepth: config.MaxMirrorDepth,
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), kCtxKey, state))

			w.Header().Set(inertiaheader.HeaderVary, inertiaheader.HeaderXInertia)

			if !isInertiaRequest(r) {
				next.ServeHTTP(w, r)
				return
			}

			if r.Method == http.MethodGet &&
				r.Header.Get(inertiaheader.HeaderXInertiaVersion) != renderer.Version() {
				d("Asset version mismatch for %s", r.RequestURI)

				config.VersionMismatchHandler(w, r)

				return
			}

			rww := newResponseWriter(w)
			next.ServeHTTP(rww, r)

			if rww.statusCode == http.StatusFound && slices.Contains(seeOtherMethods, r.Method) {
				rww.WriteHeader(http.StatusSeeOther)
			}

			if rww.Empty() {
				config.EmptyResponseHandler(w, r)
				return
			}

			rww.flush()
		})
	}
}

// RenderContext configures a single page response.
type RenderContext struct {
	// T is custom data passed to the HTML template.
	T any

	// Props are the properties sent to the page component.
	Props []Prop

	// ErrorBag scopes validation errors to a form of the page.
	ErrorBag string

	// ValidationErrorer contains validation errors sent under the "errors" prop.
	ValidationErrorer []ValidationErrorer

	// EncryptHistory instructs the client to encrypt the history state.
	EncryptHistory bool

	// ClearHistory instructs the client to clear the history stack.
	ClearHistory bool

	// Concurrency caps concurrent prop resolution for this page.
	// Zero uses the renderer's default.
	Concurrency int
}

// NewRenderContext creates a RenderContext configured with opts.
func NewRenderContext(opts ...Option) RenderContext {
	//nolint:exhaustruct
	ctx := RenderContext{}
	for _, opt := range opts {
		opt(&ctx)
	}

	return ctx
}

// AddValidationErrorer appends validation errors to the context.
func (ctx *RenderContext) AddValidationErrorer(err ValidationErrorer) {
	ctx.ValidationErrorer = append(ctx.ValidationErrorer, err)
}

// Option configures a RenderContext.
type Option func(*RenderContext)

// WithClearHistory instructs the client to clear its history stack.
func WithClearHistory() Option {
	return func(opt *RenderContext) { opt.ClearHistory = true }
}

// WithEncryptHistory instructs the client to encrypt the history state.
func WithEncryptHistory() Option {
	return func(opt *RenderContext) { opt.EncryptHistory = true }
}

// WithProps adds props to the page component.
func WithProps(props Proper) Option {
	return func(renderCtx *RenderContext) {
		if props == nil {
			return
		}

		renderCtx.Props = append(renderCtx.Props, props.Props()...)
	}
}

// WithValidationErrors adds validation errors scoped to errorBag.
func WithValidationErrors(errorer ValidationErrorer, errorBag string) Option {
	return func(renderCtx *RenderContext) {
		if errorer == nil {
			return
		}

		renderCtx.AddValidationErrorer(errorer)
		renderCtx.ErrorBag = errorBag
	}
}

// WithConcurrency caps concurrent prop resolution for this page.
func WithConcurrency(concurrency int) Option {
	return func(renderCtx *RenderContext) {
		renderCtx.Concurrency = concurrency
	}
}

// Render writes the page of componentName with the renderer installed by
// the middleware. It fails with ErrRendererNotFound without the middleware.
func Render(w http.ResponseWriter, r *http.Request, componentName string, rCtx RenderContext) error {
	h, ok := hostFromContext(r.Context())
	if !ok {
		return ErrRendererNotFound
	}

	return h.renderer.Render(w, r, componentName, rCtx)
}

// MustRender is like Render, but panics if an error occurs.
func MustRender(w http.ResponseWriter, req *http.Request, name string, r RenderContext) {
	must.Must1(Render(w, req, name, r))
}
