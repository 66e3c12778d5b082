package modal

import (
	"context"
	"net/http"
	"slices"
)

type sharedCtxKey struct{}

//nolint:gochecknoglobals
var kSharedCtxKey = sharedCtxKey{}

// Share returns a copy of r carrying props in addition to the props already
// shared with it. Every page rendered for the returned request, including a
// page rendered for a mirrored request, receives the shared props.
//
// A prop given to Render with the same key takes precedence over a shared one.
// Sharing a key twice keeps the latest value.
func Share(r *http.Request, props Proper) *http.Request {
	if props == nil || props.Len() == 0 {
		return r
	}

	return r.WithContext(ShareContext(r.Context(), props))
}

// ShareContext is like Share, but operates on a context.
func ShareContext(ctx context.Context, props Proper) context.Context {
	prev := SharedProps(ctx)
	next := slices.Grow(slices.Clip(prev), props.Len())
	next = append(next, props.Props()...)

	return context.WithValue(ctx, kSharedCtxKey, next)
}

// SharedProps returns the props shared with ctx.
func SharedProps(ctx context.Context) Props {
	props, _ := ctx.Value(kSharedCtxKey).(Props)
	return props
}

// Get returns the last prop with key.
func (p Props) Get(key string) (Prop, bool) {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i].key == key {
			return p[i], true
		}
	}

	return Prop{}, false //nolint:exhaustruct
}

type sharedErrorsCtxKey struct{}

//nolint:gochecknoglobals
var kSharedErrorsCtxKey = sharedErrorsCtxKey{}

type sharedErrors struct {
	errorer  ValidationErrorer
	errorBag string
}

// ShareValidationErrors returns a copy of r carrying validation errors of
// errorBag. A page rendered for the returned request, or for a request
// mirrored from it, sends them under the "errors" prop unless its
// RenderContext has validation errors of its own.
func ShareValidationErrors(r *http.Request, errorer ValidationErrorer, errorBag string) *http.Request {
	if errorer == nil || errorer.Len() == 0 {
		return r
	}

	se := sharedErrors{errorer: errorer, errorBag: errorBag}

	return r.WithContext(context.WithValue(r.Context(), kSharedErrorsCtxKey, se))
}

// validationErrors returns the validation errors and error bag a page of
// req is rendered with.
func validationErrors(req *http.Request, renderCtx RenderContext) ([]ValidationErrorer, string) {
	if len(renderCtx.ValidationErrorer) > 0 {
		return renderCtx.ValidationErrorer, renderCtx.ErrorBag
	}

	if se, ok := req.Context().Value(kSharedErrorsCtxKey).(sharedErrors); ok {
		return []ValidationErrorer{se.errorer}, se.errorBag
	}

	return nil, renderCtx.ErrorBag
}
