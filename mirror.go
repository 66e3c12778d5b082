package modal

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"maps"
	"net/http"
)

type mirrorCtxKey struct{}

//nolint:gochecknoglobals
var kMirrorCtxKey = mirrorCtxKey{}

// mirrorState travels with mirrored requests.
type mirrorState struct {
	// originURI is the request URI of the outermost request, the page
	// the browser is actually on.
	originURI string
	depth     int
}

func mirrorStateFromContext(ctx context.Context) mirrorState {
	s, _ := ctx.Value(kMirrorCtxKey).(mirrorState)
	return s
}

// MirrorDepth returns how many times the request behind ctx was mirrored.
// It is zero for a request coming from the client.
func MirrorDepth(ctx context.Context) int { return mirrorStateFromContext(ctx).depth }

// pageURL is the URL reported in the page object: the URL of the request
// the client made, even when rendering a mirrored request.
func pageURL(r *http.Request) string {
	if s := mirrorStateFromContext(r.Context()); s.originURI != "" {
		return s.originURI
	}

	return r.RequestURI
}

// mirrorRequest builds the GET request for target that renders the page
// under a modal.
//
// The mirrored request shares the context (user, session, shared props),
// headers and cookies, uploaded files and body of r. Query parameters of r
// take precedence over those of target. The body of r stays readable.
// Path values bound for r are not carried over; the router binds the
// values of the mirrored route.
func mirrorRequest(r *http.Request, target string, maxDepth int) (*http.Request, error) {
	state := mirrorStateFromContext(r.Context())
	if state.depth >= maxDepth {
		return nil, fmt.Errorf("%w: %d", ErrMirrorDepthExceeded, maxDepth)
	}

	u, err := r.URL.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("modal: failed to parse mirrored URL %q: %w", target, err)
	}

	if state.originURI == "" {
		state.originURI = r.RequestURI
	}

	state.depth++

	body, err := copyBody(r)
	if err != nil {
		return nil, err
	}

	query := u.Query()
	for k, v := range r.URL.Query() {
		query[k] = v
	}

	u.RawQuery = query.Encode()

	ctx := context.WithValue(r.Context(), kMirrorCtxKey, state)

	m, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("modal: failed to create mirrored request: %w", err)
	}

	m.Host = cmp.Or(u.Host, r.Host)
	m.URL.Scheme, m.URL.Host = "", ""
	m.RequestURI = m.URL.RequestURI()

	m.Proto, m.ProtoMajor, m.ProtoMinor = r.Proto, r.ProtoMajor, r.ProtoMinor
	m.Header = r.Header.Clone()
	m.Trailer = r.Trailer.Clone()
	m.RemoteAddr = r.RemoteAddr
	m.TLS = r.TLS

	// Form is derived from the URL and parsed again on demand;
	// uploaded files and the posted form are carried over.
	m.PostForm = maps.Clone(r.PostForm)
	m.MultipartForm = r.MultipartForm

	return m, nil
}

// copyBody reads the body of r and replaces it with an unread copy.
func copyBody(r *http.Request) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, fmt.Errorf("modal: failed to read request body: %w", err)
	}

	_ = r.Body.Close()
	r.Body = io.NopCloser(bytes.NewReader(body))

	return body, nil
}
