// Package modalframe implements an opinionated framework around net/http and
// the modal package, abstracting out protocol-level details and providing a
// simple message-based API.
//
// Endpoints receive decoded messages and answer with a Response: a page, a
// modal over a background page, or a redirect.
package modalframe

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"

	"github.com/go-json-experiment/json"
	"github.com/go-playground/form/v4"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/http/httperror"
	"go.inout.gg/foundations/http/httpmiddleware"
	"go.inout.gg/foundations/must"

	modal "github.com/onlime/momentum-modal"
	"github.com/onlime/momentum-modal/internal/inertiaheader"
	"github.com/onlime/momentum-modal/internal/inertiaredirect"
)

var d = debug.Debuglog("modalframe") //nolint:gochecknoglobals

var DefaultFormDecoder = form.NewDecoder() //nolint:gochecknoglobals

var ErrEmptyResponse = errors.New("modalframe: empty response")

var (
	_ RawResponseWriter = (*redirectMessage)(nil)
	_ RawResponseWriter = (*redirectBackMessage)(nil)
	_ RawResponseWriter = (*externalRedirectMessage)(nil)
	_ RawResponseWriter = (*modal.Modal)(nil)
)

// RedirectBack redirects the user back to the page of the Referer header,
// or to "/" without one.
func RedirectBack(w http.ResponseWriter, r *http.Request) {
	referer := cmp.Or(r.Header.Get(inertiaheader.HeaderReferer), "/")

	d("redirecting back to %s", referer)

	inertiaredirect.Redirect(w, r, referer)
}

// DefaultValidationErrorHandler flashes validation errors and redirects back
// to the previous page. The errors are sent with the next page the client
// gets, including the background page of a modal.
func DefaultValidationErrorHandler(w http.ResponseWriter, r *http.Request, errorer modal.ValidationErrorer) {
	must.Must1(saveFlash(w, errorer, modal.ErrorBagFromRequest(r)))

	RedirectBack(w, r)
}

// DefaultErrorHandler sends validation errors back to the previous page and
// answers routing failures of modals with 404 Not Found.
//
//nolint:gochecknoglobals
var DefaultErrorHandler httperror.ErrorHandler = httperror.ErrorHandlerFunc(
	func(w http.ResponseWriter, r *http.Request, err error) {
		var errorer modal.ValidationErrorer
		if errors.As(err, &errorer) {
			DefaultValidationErrorHandler(w, r, errorer)
			return
		}

		if errors.Is(err, modal.ErrNoMatchingRoute) || errors.Is(err, modal.ErrRouteNotFound) {
			http.NotFound(w, r)
			return
		}

		httperror.DefaultErrorHandler(w, r, err)
	},
)

const (
	mediaTypeJSON      = "application/json"
	mediaTypeForm      = "application/x-www-form-urlencoded"
	mediaTypeMultipart = "multipart/form-data"
)

// Request is a request sent by a client.
type Request[M any] struct {
	// Message is a decoded message sent by a client.
	//
	// Message can implement RawRequestExtractor to intercept request data extraction.
	Message *M

	// HTTP is the underlying request. Modal responses resolve their base
	// route and background page from it.
	HTTP *http.Request
}

func newRequest[M any](m M, r *http.Request) *Request[M] {
	return &Request[M]{Message: &m, HTTP: r}
}

// Response is a response sent by a server to a client.
//
// Use NewResponse to create a new response.
type Response struct {
	m              Message
	clearHistory   bool
	encryptHistory bool
	concurrency    int
}

// ResponseConfig is a configuration for a page response.
type ResponseConfig struct {
	// ClearHistory determines whether the history should be cleared by
	// the client.
	ClearHistory bool

	// EncryptHistory determines whether the history should be encrypted by
	// the client.
	EncryptHistory bool

	// Concurrency determines the maximum number of concurrent resolutions of lazy
	// props that can be made during response resolution.
	Concurrency int
}

// NewResponse creates a new page response.
//
// The msg can be a struct with props tagged with `inertia:"key"`,
// a set of props, or a struct implementing RawResponseWriter for
// custom response handling.
//
// An optional config can be passed to customize the response behavior.
// If config is nil, default values will be used.
func NewResponse(msg Message, config *ResponseConfig) *Response {
	if config == nil {
		config = &ResponseConfig{
			ClearHistory:   false,
			EncryptHistory: false,
			Concurrency:    modal.DefaultConcurrency,
		}
	}

	return &Response{
		m:              msg,
		clearHistory:   config.ClearHistory,
		encryptHistory: config.EncryptHistory,
		concurrency:    config.Concurrency,
	}
}

// NewModalResponse creates a response rendering m over its base page.
//
// The background page is served by the route matching the modal's redirect
// URL, so the router given to the modal middleware must know it.
func NewModalResponse(m *modal.Modal) *Response {
	debug.Assert(m != nil, "modal must not be nil")

	return &Response{
		m:              m,
		clearHistory:   false,
		encryptHistory: false,
		concurrency:    modal.DefaultConcurrency,
	}
}

type externalRedirectMessage struct{ url string }

func (m *externalRedirectMessage) Component() string { return "" }

func (m *externalRedirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	modal.Location(w, r, m.url)
	return nil
}

// NewExternalRedirectResponse creates a new response that redirects the client to an
// external URL.
//
// External URL is any URL that is not powered by Inertia.js.
func NewExternalRedirectResponse(url string) *Response {
	return &Response{
		m:              &externalRedirectMessage{url: url},
		clearHistory:   false,
		encryptHistory: false,
		concurrency:    modal.DefaultConcurrency,
	}
}

type redirectBackMessage struct{}

func (m *redirectBackMessage) Component() string { return "" }

func (m *redirectBackMessage) Write(w http.ResponseWriter, r *http.Request) error {
	RedirectBack(w, r)
	return nil
}

// NewRedirectBackResponse creates a new response that redirects the client
// back to the previous page.
func NewRedirectBackResponse() *Response {
	return &Response{
		m:              &redirectBackMessage{},
		clearHistory:   false,
		encryptHistory: false,
		concurrency:    modal.DefaultConcurrency,
	}
}

type redirectMessage struct{ url string }

func (m *redirectMessage) Component() string { return "" }

func (m *redirectMessage) Write(w http.ResponseWriter, r *http.Request) error {
	inertiaredirect.Redirect(w, r, m.url)
	return nil
}

// NewRedirectResponse creates a new response that redirects the client to the
// specified URL.
func NewRedirectResponse(url string) *Response {
	return &Response{
		m:              &redirectMessage{url: url},
		clearHistory:   false,
		encryptHistory: false,
		concurrency:    modal.DefaultConcurrency,
	}
}

// Message is used to send a message to the client. It can be
// used to guide the client to render a component or redirect to a
// specific URL.
//
// If the Message implements a RawResponseWriter, the default
// behavior is prevented and the writer is used instead to
// write the response data.
//
// The Component() method must return a non-empty string.
type Message interface {
	// Component returns the component name to be rendered.
	//
	// Executor panics if Component returns an empty string,
	// unless the message implements RawResponseWriter.
	Component() string
}

// RawRequestExtractor allows to extract data from the raw http.Request.
// If a request message implements RawRequestExtractor, the default
// behavior is prevented and the extractor is used instead to
// extract the request data.
type RawRequestExtractor interface {
	// Extract extracts data from the raw http.Request.
	Extract(*http.Request) error
}

// RawResponseWriter allows to write data to the http.ResponseWriter.
// If a response message implements RawResponseWriter, the default
// behavior is prevented and the writer is used instead to
// write the response data.
//
// *modal.Modal is a RawResponseWriter.
type RawResponseWriter interface {
	Write(http.ResponseWriter, *http.Request) error
}

// Meta is the metadata of an endpoint.
type Meta struct {
	// HTTP method of the endpoint.
	Method string

	// HTTP path of the endpoint. It supports the same path pattern as
	// the http.ServeMux.
	Path string

	// Name of the route. Named endpoints can be used as modal base routes
	// when mounted on a NamedMux, such as Router.
	Name string
}

// Validator validates decoded messages.
type Validator interface {
	Validate(any) error
}

type Endpoint[R any] interface {
	// Execute executes the endpoint for the given request.
	//
	// If the returned error can automatically be converted to an Inertia
	// error, it will be converted and passed down to the client.
	Execute(context.Context, *Request[R]) (*Response, error)

	// Meta returns the metadata of the endpoint. It is used to configure
	// the endpoint's behavior when mounted on a given Mux.
	Meta() *Meta
}

// Mux is a universal interface for routing HTTP requests.
type Mux interface {
	// Handle handles the given HTTP request at the specified path.
	//
	// The pattern is a string following the http.ServeMux format:
	// "<http-method> <path>".
	Handle(pattern string, h http.Handler)
}

// NamedMux is a Mux that can register named routes.
type NamedMux interface {
	Mux

	// HandleNamed is like Handle, but registers the route under name.
	HandleNamed(name, pattern string, h http.Handler)
}

type MountOpts struct {
	Middleware           httpmiddleware.Middleware
	Validator            Validator
	ErrorHandler         httperror.ErrorHandler
	FormDecoder          *form.Decoder
	JSONUnmarshalOptions []json.Options
}

// Mount mounts the executor on the given mux.
//
// Endpoint must specify the HTTP method and path via Endpoint.Meta().
// Named endpoints require a NamedMux.
// The mounted endpoint automatically handles requests with JSON and form
// data.
//
// The message M is validated using the validator specified in the MountOpts.
// Validation errors are automatically handled and passed to the client
// according to Inertia protocol.
func Mount[M any](mux Mux, e Endpoint[M], opts *MountOpts) {
	if opts == nil {
		//nolint:exhaustruct
		opts = &MountOpts{}
	}

	opts.ErrorHandler = cmp.Or(opts.ErrorHandler, DefaultErrorHandler)
	opts.FormDecoder = cmp.Or(opts.FormDecoder, DefaultFormDecoder)

	debug.Assert(e != nil, "Executor must not be nil")
	debug.Assert(opts.ErrorHandler != nil, "Executor must specify the error handler")

	m := e.Meta()

	debug.Assert(m.Method != "", "Executor must specify the HTTP method")
	debug.Assert(m.Path != "", "Executor must specify the HTTP path")

	pattern := fmt.Sprintf("%s %s", m.Method, m.Path)

	d("Mounting executor on pattern: %s", pattern)

	h := newHandler(e, opts.ErrorHandler, opts.Validator, opts.FormDecoder, opts.JSONUnmarshalOptions)
	if opts.Middleware != nil {
		h = opts.Middleware.Middleware(h)
	}

	if m.Name == "" {
		mux.Handle(pattern, h)
		return
	}

	named, ok := mux.(NamedMux)
	debug.Assert(ok, "Named endpoints must be mounted on a NamedMux")

	if !ok {
		mux.Handle(pattern, h)
		return
	}

	named.HandleNamed(m.Name, pattern, h)
}

// newHandler creates a new http.Handler for the given endpoint.
func newHandler[M any](
	endpoint Endpoint[M],
	errorHandler httperror.ErrorHandler,
	validator Validator,
	formDecoder *form.Decoder,
	jsonUnmarshalOptions []json.Options,
) http.Handler {
	handleError := httperror.WithErrorHandler(errorHandler)

	return handleError(httperror.HandlerFunc(func(w http.ResponseWriter, r *http.Request) error {
		var (
			msg       M
			renderCtx modal.RenderContext
		)

		if r.Method == http.MethodGet {
			r = takeFlash(w, r)
		}

		ctx := r.Context()

		if extract, ok := any(&msg).(RawRequestExtractor); ok {
			if err := extract.Extract(r); err != nil {
				return fmt.Errorf("modalframe: failed to extract request data: %w", err)
			}
		} else if r.Method != http.MethodGet {
			if err := decodeMessage(r, &msg, formDecoder, jsonUnmarshalOptions); err != nil {
				return err
			}
		}

		if validator != nil {
			if err := validator.Validate(&msg); err != nil {
				d("failed to validate request")

				return fmt.Errorf("modalframe: failed to validate request: %w", err)
			}
		}

		resp, err := endpoint.Execute(ctx, newRequest(msg, r))
		if err != nil {
			return fmt.Errorf("modalframe: failed to execute: %w", err)
		}

		if resp == nil {
			d("received empty response")

			return ErrEmptyResponse
		}

		if writer, ok := resp.m.(RawResponseWriter); ok {
			if err := writer.Write(w, r); err != nil {
				return fmt.Errorf("modalframe: failed to write response: %w", err)
			}

			return nil
		}

		renderCtx.ClearHistory = resp.clearHistory
		renderCtx.EncryptHistory = resp.encryptHistory
		renderCtx.Concurrency = resp.concurrency

		props, err := extractProps(resp.m)
		if err != nil {
			return fmt.Errorf("modalframe: failed to extract props: %w", err)
		}

		renderCtx.Props = props

		componentName := resp.m.Component()
		debug.Assert(componentName != "", "component must not be empty, when using non RawResponseWriter")

		if err := modal.Render(w, r, componentName, renderCtx); err != nil {
			return fmt.Errorf("modalframe: failed to render: %w", err)
		}

		return nil
	}))
}

// decodeMessage decodes the body of r into msg according to its Content-Type.
func decodeMessage(r *http.Request, msg any, formDecoder *form.Decoder, opts []json.Options) error {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get(inertiaheader.HeaderContentType))
	if err != nil {
		return fmt.Errorf("modalframe: failed to parse Content-Type header: %w", err)
	}

	// Inertia sends either JSON or form data.
	switch mediaType {
	case mediaTypeJSON:
		d("received JSON request")

		if err := json.UnmarshalRead(r.Body, msg, opts...); err != nil {
			return fmt.Errorf("modalframe: failed to decode request: %w", err)
		}
	case mediaTypeForm, mediaTypeMultipart:
		d("received form request")

		if mediaType == mediaTypeMultipart {
			if err := r.ParseMultipartForm(defaultMaxMemory); err != nil {
				return fmt.Errorf("modalframe: failed to parse multipart form: %w", err)
			}
		} else if err := r.ParseForm(); err != nil {
			return fmt.Errorf("modalframe: failed to parse form data: %w", err)
		}

		if err := formDecoder.Decode(msg, r.Form); err != nil {
			return fmt.Errorf("modalframe: failed to decode form data: %w", err)
		}
	}

	return nil
}

// defaultMaxMemory matches net/http's limit for ParseMultipartForm.
const defaultMaxMemory = 32 << 20

// extractProps extracts props from the given message.
//
// If the message implements the modal.Proper interface,
// it returns the props from the message.
// Otherwise, it attempts to parse the message as a struct and
// returns the props from the struct.
func extractProps(msg any) (modal.Props, error) {
	proper, ok := msg.(modal.Proper)
	if ok {
		return proper.Props(), nil
	}

	props, err := modal.ParseStruct(msg)
	if err != nil {
		return nil, fmt.Errorf("modalframe: failed to parse props: %w", err)
	}

	return props, nil
}
