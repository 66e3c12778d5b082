package inertiatest

import (
	"cmp"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/onlime/momentum-modal/internal/inertiaheader"
)

// RequestConfig describes the Inertia and modal headers of a test request.
type RequestConfig struct {
	Version          string
	PartialComponent string
	Referer          string
	ModalKey         string
	ModalRedirect    string
	Whitelist        []string
	Blacklist        []string
	ResetProps       []string
	Inertia          bool
}

// NewRequest creates a new request with an empty body.
func NewRequest(
	method string,
	target string,
	config *RequestConfig,
) (*http.Request, *httptest.ResponseRecorder) {
	r := httptest.NewRequest(method, target, nil)

	//nolint:exhaustruct
	config = cmp.Or(config, &RequestConfig{})

	Apply(r, config)

	return r, httptest.NewRecorder()
}

// Apply sets the headers described by config on r.
func Apply(r *http.Request, config *RequestConfig) {
	h := r.Header

	if config.Inertia {
		h.Set(inertiaheader.HeaderXInertia, "true")
	}

	set := func(key, value string) {
		if value != "" {
			h.Set(key, value)
		}
	}

	set(inertiaheader.HeaderXInertiaVersion, config.Version)
	set(inertiaheader.HeaderXInertiaPartialComponent, config.PartialComponent)
	set(inertiaheader.HeaderReferer, config.Referer)
	set(inertiaheader.HeaderXInertiaModalKey, config.ModalKey)
	set(inertiaheader.HeaderXInertiaModalRedirect, config.ModalRedirect)
	set(inertiaheader.HeaderXInertiaPartialData, strings.Join(config.Whitelist, ","))
	set(inertiaheader.HeaderXInertiaPartialExcept, strings.Join(config.Blacklist, ","))
	set(inertiaheader.HeaderXInertiaReset, strings.Join(config.ResetProps, ","))
}
