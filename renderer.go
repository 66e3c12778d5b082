package modal

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"runtime"
	"slices"
	"strings"

	"github.com/alitto/pond/v2"
	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"
	"go.inout.gg/foundations/must"

	"github.com/onlime/momentum-modal/internal/inertiabase"
	"github.com/onlime/momentum-modal/internal/inertiaheader"
	"github.com/onlime/momentum-modal/internal/inertiaredirect"
)

const (
	// DefaultRootViewID is the default root HTML element ID to which
	// the Inertia.js app is mounted.
	DefaultRootViewID = "app"
)

// DefaultConcurrency is the default number of concurrent props resolved at once.
var DefaultConcurrency = runtime.GOMAXPROCS(0) //nolint:gochecknoglobals

// Page represents an Inertia.js page that is sent to the client.
type Page = inertiabase.Page

// Config configures the Renderer.
type Config struct {
	// SSRClient enables server-side rendering of first visits.
	//
	// If nil, or if the SSR service fails, the page is rendered
	// client-side.
	SSRClient SSRClient

	// RootViewAttrs are HTML attributes applied to the root element.
	RootViewAttrs map[string]string

	// Version identifies the current asset version.
	Version string

	// RootViewID is the HTML element ID where the Inertia app mounts.
	//
	// Defaults to "app".
	RootViewID string

	// JSONMarshalOptions configures JSON serialization of pages.
	JSONMarshalOptions []json.Options

	// Concurrency is the default number of concurrent props resolved at once.
	//
	// Defaults to runtime.GOMAXPROCS(0).
	Concurrency int
}

func (c *Config) defaults() {
	c.RootViewID = cmp.Or(c.RootViewID, DefaultRootViewID)
	c.Concurrency = cmp.Or(c.Concurrency, DefaultConcurrency)

	debug.Assert(c.RootViewID != "", "RootViewID must be non-empty string")
}

// Renderer writes Inertia.js page responses: JSON for Inertia visits and
// HTML for first visits. Modals render their background page through it.
//
// Create a Renderer using NewRenderer or FromFS.
type Renderer struct {
	ssrClient          SSRClient
	t                  *template.Template
	rootViewID         string
	version            string
	jsonMarshalOptions []json.Options
	rootViewAttrs      []pair[[]byte, []byte]
	concurrency        int
}

// NewRenderer creates a Renderer with the provided HTML template and configuration.
// A nil config uses the defaults.
func NewRenderer(t *template.Template, config *Config) *Renderer {
	if config == nil {
		//nolint:exhaustruct
		config = &Config{}
	}

	config.defaults()

	attrs := make([]pair[[]byte, []byte], 0, len(config.RootViewAttrs))
	for key, value := range config.RootViewAttrs {
		attrs = append(attrs, pair[[]byte, []byte]{[]byte(key), []byte(value)})
	}

	// Map iteration order is random; keep the markup stable.
	slices.SortFunc(attrs, func(a, b pair[[]byte, []byte]) int { return bytes.Compare(a.key, b.key) })

	r := &Renderer{
		t:                  t,
		ssrClient:          config.SSRClient,
		jsonMarshalOptions: config.JSONMarshalOptions,
		version:            config.Version,
		rootViewID:         config.RootViewID,
		rootViewAttrs:      attrs,
		concurrency:        config.Concurrency,
	}

	debug.Assert(r.t != nil, "expected t to be defined")

	return r
}

// FromFS creates a Renderer by loading an HTML template from a file system.
func FromFS(fsys fs.FS, path string, config *Config) (*Renderer, error) {
	debug.Assert(fsys != nil, "expected fsys to be defined")
	debug.Assert(path != "", "expected path to be defined")

	t, err := template.New("modal").ParseFS(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("modal: failed to parse templates: %w", err)
	}

	return NewRenderer(t, config), nil
}

// MustFromFS is like FromFS, but panics if an error occurs.
func MustFromFS(fsys fs.FS, path string, config *Config) *Renderer {
	return must.Must(FromFS(fsys, path, config))
}

// Version returns the current asset version.
func (r *Renderer) Version() string { return r.version }

// Render writes the page of component name.
//
// Props shared with the request (see Share) are sent along with
// the props of renderCtx.
func (r *Renderer) Render(w http.ResponseWriter, req *http.Request, name string, renderCtx RenderContext) error {
	renderCtx.Concurrency = max(cmp.Or(renderCtx.Concurrency, r.concurrency), 0)

	page, err := r.newPage(req, name, renderCtx)
	if err != nil {
		return err
	}

	if isInertiaRequest(req) {
		d("Received inertia request, sending JSON response: %s", page.URL)

		w.Header().Set(inertiaheader.HeaderXInertia, "true")
		w.Header().Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)
		w.WriteHeader(http.StatusOK)

		if err := json.MarshalWrite(w, page, r.jsonMarshalOptions...); err != nil {
			return fmt.Errorf("modal: failed to encode JSON response: %w", err)
		}

		return nil
	}

	data := TemplateData{T: renderCtx.T, InertiaHead: "", InertiaBody: ""}

	var ssrData *SSRTemplateData
	if r.ssrClient != nil {
		ssrData, err = r.ssrClient.Render(req.Context(), page)
		if err != nil {
			// The client renders the page when SSR is down.
			d("SSR failed for %s, falling back to client-side rendering: %v", page.URL, err)

			ssrData = nil
		}
	}

	if ssrData != nil {
		data.InertiaHead = template.HTML(ssrData.Head) //nolint:gosec
		data.InertiaBody = template.HTML(ssrData.Body) //nolint:gosec
	} else {
		body, err := r.makeRootView(page)
		if err != nil {
			return fmt.Errorf("modal: failed to create an HTML container: %w", err)
		}

		data.InertiaBody = body
	}

	w.Header().Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeHTML)
	w.WriteHeader(http.StatusOK)

	if err := r.t.Execute(w, &data); err != nil {
		return fmt.Errorf("modal: failed to execute HTML template: %w", err)
	}

	return nil
}

// ResolveProps resolves every prop of props, lazy ones included, into a map.
// Concurrent props are resolved in parallel.
//
// Modal props are resolved this way: the modal component receives all of
// its props at once.
func (r *Renderer) ResolveProps(ctx context.Context, props Proper) (map[string]any, error) {
	if props == nil {
		return map[string]any{}, nil
	}

	return r.resolveProps(ctx, props.Props(), nil, nil, r.concurrency)
}

func (r *Renderer) newPage(req *http.Request, componentName string, renderCtx RenderContext) (*Page, error) {
	errorers, errorBag := validationErrors(req, renderCtx)
	rawProps := mergeProps(
		SharedProps(req.Context()),
		renderCtx.Props,
		Props{r.makeValidationErrors(errorers, errorBag)},
	)

	props, err := r.makeProps(req, componentName, rawProps, renderCtx.Concurrency)
	if err != nil {
		return nil, err
	}

	deferredProps := r.makeDeferredProps(req, componentName, rawProps)
	mergeable := r.makeMergeProps(
		rawProps,
		extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaReset)),
	)

	return &Page{
		Component:      componentName,
		Props:          props,
		DeferredProps:  deferredProps,
		MergeProps:     mergeable,
		URL:            pageURL(req),
		Version:        r.version,
		ClearHistory:   renderCtx.ClearHistory,
		EncryptHistory: renderCtx.EncryptHistory,
	}, nil
}

// mergeProps concatenates prop lists; a later prop replaces an earlier one
// with the same key, keeping the position of the earlier one.
func mergeProps(lists ...[]Prop) []Prop {
	n := 0
	for _, l := range lists {
		n += len(l)
	}

	merged := make([]Prop, 0, n)
	index := make(map[string]int, n)

	for _, l := range lists {
		for _, p := range l {
			if i, ok := index[p.key]; ok {
				merged[i] = p
				continue
			}

			index[p.key] = len(merged)
			merged = append(merged, p)
		}
	}

	return merged
}

// makeRootView creates a root view element with the given page data.
func (r *Renderer) makeRootView(page *Page) (template.HTML, error) {
	var w strings.Builder

	_ = must.Must(w.WriteString(`<div id="`))
	template.HTMLEscape(&w, []byte(r.rootViewID))
	_ = must.Must(w.WriteString(`" data-page="`))

	pageBytes, err := json.Marshal(page, r.jsonMarshalOptions...)
	if err != nil {
		return "", fmt.Errorf("modal: an error occurred while rendering page: %w", err)
	}

	template.HTMLEscape(&w, pageBytes)
	_ = must.Must(w.WriteRune('"'))

	for _, kv := range r.rootViewAttrs {
		// data-page is owned by the renderer.
		if bytes.Equal(kv.key, []byte("data-page")) {
			continue
		}

		_ = must.Must(w.WriteRune(' '))
		_ = must.Must(w.Write(kv.key))
		_ = must.Must(w.WriteString(`="`))
		template.HTMLEscape(&w, kv.value)
		_ = must.Must(w.WriteRune('"'))
	}

	_ = must.Must(w.WriteString(`></div>`))

	//nolint:gosec
	return template.HTML(w.String()), nil
}

func (r *Renderer) makeProps(
	req *http.Request,
	componentName string,
	props []Prop,
	concurrency int,
) (map[string]any, error) {
	ctx := req.Context()

	if isPartialComponentRequest(req, componentName) {
		whitelist := extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaPartialData))
		blacklist := extractHeaderValueList(req.Header.Get(inertiaheader.HeaderXInertiaPartialExcept))

		return r.resolveProps(ctx, props, whitelist, blacklist, concurrency)
	}

	// Lazy (optional, deferred) props are skipped on the first render.
	eager := slices.DeleteFunc(slices.Clone(props), func(p Prop) bool { return p.lazy })

	return r.resolveProps(ctx, eager, nil, nil, concurrency)
}

// resolveProps resolves props into a map. Ignorable props are filtered by
// whitelist and blacklist; concurrent props go through a pond result pool.
func (r *Renderer) resolveProps(
	ctx context.Context,
	props []Prop,
	whitelist, blacklist []string,
	concurrency int,
) (map[string]any, error) {
	m := make(map[string]any, len(props))
	concurrentProps := make([]Prop, 0, len(props))

	for _, prop := range props {
		if prop.ignorable {
			// Prop lists are small, a linear scan is fine.
			if len(whitelist) > 0 && !slices.Contains(whitelist, prop.key) ||
				len(blacklist) > 0 && slices.Contains(blacklist, prop.key) {
				continue
			}
		}

		if prop.concurrent {
			concurrentProps = append(concurrentProps, prop)
			continue
		}

		val, err := prop.value(ctx)
		if err != nil {
			return nil, fmt.Errorf("modal: failed to resolve prop %s: %w", prop.key, err)
		}

		m[prop.key] = val
	}

	if len(concurrentProps) == 0 {
		return m, nil
	}

	pool := pond.NewResultPool[any](max(concurrency, 0))
	defer pool.StopAndWait()

	group := pool.NewGroupContext(ctx)

	for _, prop := range concurrentProps {
		group.SubmitErr(func() (any, error) {
			val, err := prop.value(ctx)
			if err != nil {
				return nil, fmt.Errorf("modal: failed to resolve prop %s: %w", prop.key, err)
			}

			return val, nil
		})
	}

	result, err := group.Wait()
	if err != nil {
		return nil, fmt.Errorf("modal: failed to resolve concurrent props: %w", err)
	}

	for i, prop := range concurrentProps {
		m[prop.key] = result[i]
	}

	return m, nil
}

// makeDeferredProps lists the deferred props the client should load
// after the first render, by group.
func (r *Renderer) makeDeferredProps(req *http.Request, componentName string, props []Prop) map[string][]string {
	// A partial reload means the client already knows about deferred props.
	if isPartialComponentRequest(req, componentName) {
		return nil
	}

	m := make(map[string][]string)

	for _, prop := range props {
		if prop.deferred {
			m[prop.group] = append(m[prop.group], prop.key)
		}
	}

	return m
}

// makeMergeProps lists the props the client should merge instead of replace.
func (r *Renderer) makeMergeProps(props []Prop, reset []string) []string {
	keys := make([]string, 0, len(props))

	for _, p := range props {
		if !p.mergeable || slices.Contains(reset, p.key) {
			continue
		}

		keys = append(keys, p.key)
	}

	return keys
}

func (r *Renderer) makeValidationErrors(errorers []ValidationErrorer, errorBag string) Prop {
	m := make(map[string]string)

	for _, errorer := range errorers {
		for _, err := range errorer.ValidationErrors() {
			m[err.Field()] = err.Error()
		}
	}

	if errorBag != DefaultErrorBag {
		return NewAlways("errors", map[string]map[string]string{errorBag: m})
	}

	return NewAlways("errors", m)
}

// TemplateData is the data passed to the HTML template.
type TemplateData struct {
	// T is custom application data available to the template.
	T any

	// InertiaHead contains SSR-generated head elements.
	InertiaHead template.HTML

	// InertiaBody contains the root element with the page.
	InertiaBody template.HTML
}

// Location redirects to a URL outside of the Inertia app.
//
// Inertia requests get 409 Conflict with X-Inertia-Location,
// other requests a regular redirect.
func Location(w http.ResponseWriter, r *http.Request, url string) {
	if isInertiaRequest(r) {
		h := w.Header()

		h.Del(inertiaheader.HeaderVary)
		h.Del(inertiaheader.HeaderXInertia)
		h.Set(inertiaheader.HeaderXInertiaLocation, url)
		w.WriteHeader(http.StatusConflict)

		return
	}

	inertiaredirect.Redirect(w, r, url)
}

// Redirect redirects to a page of the Inertia app.
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	inertiaredirect.Redirect(w, r, url)
}

// ErrorBagFromRequest returns the error bag of X-Inertia-Error-Bag, or
// DefaultErrorBag if the header is absent.
func ErrorBagFromRequest(r *http.Request) string {
	return cmp.Or(r.Header.Get(inertiaheader.HeaderXInertiaErrorBag), DefaultErrorBag)
}

// isInertiaRequest reports whether the request is an Inertia.js visit.
func isInertiaRequest(req *http.Request) bool {
	return req.Header.Get(inertiaheader.HeaderXInertia) == "true"
}

// isPartialComponentRequest reports whether the request is a partial reload
// of componentName.
func isPartialComponentRequest(req *http.Request, componentName string) bool {
	return req.Header.Get(inertiaheader.HeaderXInertiaPartialComponent) == componentName
}

// extractHeaderValueList splits a comma-separated header value.
func extractHeaderValueList(h string) []string {
	if h == "" {
		return nil
	}

	fields := strings.Split(h, ",")
	for i, f := range fields {
		fields[i] = strings.TrimSpace(f)
	}

	return fields
}

// pair is a key-value pair.
type pair[K any, V any] struct {
	key   K
	value V
}
