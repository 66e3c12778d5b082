// Package modal renders Inertia.js modals on top of a background page.
//
// A route handler responds with a Modal instead of a page. The modal payload
// is shared with the page under the "modal" prop, and the page underneath is
// obtained by mirroring the current request to the modal's base URL and
// running the route that matches it:
//
//	func editUser(w http.ResponseWriter, r *http.Request) {
//		err := modal.New("Users/Edit", modalprops.Map{"user": user}).
//			BaseRoute("users.index", nil, false).
//			Render(w, r)
//		...
//	}
//
// The package also carries the Inertia.js protocol pieces the modal renders
// through: a Renderer, a Middleware, and page props.
//
// For the protocol documentation, visit https://inertiajs.com/the-protocol
package modal

import "go.inout.gg/foundations/debug"

//nolint:gochecknoglobals
var d = debug.Debuglog("modal")
