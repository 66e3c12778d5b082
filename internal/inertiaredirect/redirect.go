package inertiaredirect

import (
	"net/http"

	"go.inout.gg/foundations/debug"
)

//nolint:gochecknoglobals
var d = debug.Debuglog("modal/redirect")

// Redirect redirects the client to the specified URL.
//
// GET requests are redirected with 302 Found, everything else with
// 303 See Other so the client follows up with a GET, as described in
// https://inertiajs.com/redirects
func Redirect(w http.ResponseWriter, r *http.Request, url string) {
	statusCode := http.StatusSeeOther
	if r.Method == http.MethodGet {
		statusCode = http.StatusFound
	}

	d("Redirecting to %s with status code %d", url, statusCode)

	http.Redirect(w, r, url, statusCode)
}
