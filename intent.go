package modal

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/onlime/momentum-modal/internal/inertiaheader"
)

// intent is what a modal response does for a request.
type intent int

const (
	// intentFullPage renders the background page by mirroring the request.
	intentFullPage intent = iota

	// intentPartialComponent re-renders only the component the client
	// asked for; the client already has the background page.
	intentPartialComponent
)

func (i intent) String() string {
	switch i {
	case intentFullPage:
		return "full page"
	case intentPartialComponent:
		return "partial component"
	default:
		return "unknown"
	}
}

// redirectSource tells where the redirect URL of a decision comes from.
type redirectSource int

const (
	redirectFromBase redirectSource = iota
	redirectFromHeader
	redirectFromReferer
)

func (s redirectSource) String() string {
	switch s {
	case redirectFromBase:
		return "base URL"
	case redirectFromHeader:
		return "redirect header"
	case redirectFromReferer:
		return "referer"
	default:
		return "unknown"
	}
}

// decision is computed once per render from the request headers.
type decision struct {
	// component is the partially reloaded component, if any.
	component   string
	redirectURL string
	intent      intent
	source      redirectSource
}

func decide(r *http.Request, baseURL string) decision {
	//nolint:exhaustruct
	dec := decision{intent: intentFullPage}
	dec.redirectURL, dec.source = redirectURL(r, baseURL)

	if partial := r.Header.Get(inertiaheader.HeaderXInertiaPartialComponent); partial != "" && isInertiaRequest(r) {
		dec.intent = intentPartialComponent
		dec.component = partial
	}

	return dec
}

// redirectURL returns where the modal goes when closed:
// the X-Inertia-Modal-Redirect header, then the referer of an Inertia visit
// coming from another page, then the base URL.
func redirectURL(r *http.Request, baseURL string) (string, redirectSource) {
	if u := r.Header.Get(inertiaheader.HeaderXInertiaModalRedirect); u != "" {
		return u, redirectFromHeader
	}

	referer := r.Header.Get(inertiaheader.HeaderReferer)
	if isInertiaRequest(r) && referer != "" && !isCurrentPage(r, referer) {
		return referer, redirectFromReferer
	}

	return baseURL, redirectFromBase
}

// isCurrentPage reports whether ref points at the page r is for.
// A relative ref is compared by path only.
//
// The query string of ref is ignored, so a referer that differs from the
// current page only by its query counts as the current page and the modal
// falls back to its base URL. Comparing against the URL without its query
// instead would treat such a referer as another page and redirect to it.
func isCurrentPage(r *http.Request, ref string) bool {
	u, err := url.Parse(ref)
	if err != nil {
		return false
	}

	if u.Host != "" && !strings.EqualFold(u.Host, r.Host) {
		return false
	}

	return cleanPath(u.Path) == cleanPath(r.URL.Path)
}

func cleanPath(p string) string {
	if p == "" {
		return "/"
	}

	return p
}

// currentOrigin returns the scheme and host r was sent to.
func currentOrigin(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}

	return scheme + "://" + r.Host
}
