package modalframe

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/http/httpcookie"

	modal "github.com/onlime/momentum-modal"
)

const (
	FlashCookieName = "_modalframe_flash"
	FlashCookiePath = "/"
)

type flashCtxKey struct{}

var kFlashCtxKey = flashCtxKey{} //nolint:gochecknoglobals

// flash carries the validation errors of a failed submission to the page
// the client is redirected to.
type flash struct {
	Errors   modal.ValidationErrorMap `json:"errors"`
	ErrorBag string                   `json:"bag,omitempty"`
}

// saveFlash sets the flash cookie with the errors of errorer.
func saveFlash(w http.ResponseWriter, errorer modal.ValidationErrorer, errorBag string) error {
	f := flash{Errors: make(modal.ValidationErrorMap, errorer.Len()), ErrorBag: errorBag}
	for _, err := range errorer.ValidationErrors() {
		f.Errors[err.Field()] = err.Error()
	}

	b, err := json.Marshal(&f)
	if err != nil {
		return fmt.Errorf("modalframe: failed to encode flash: %w", err)
	}

	//nolint:exhaustruct
	http.SetCookie(w, &http.Cookie{
		Name:     FlashCookieName,
		Value:    base64.RawURLEncoding.EncodeToString(b),
		Path:     FlashCookiePath,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	return nil
}

// takeFlash returns r with the flash of the client request behind it
// shared with every page rendered for it.
//
// The cookie is read and deleted once per client request. Requests a
// modal mirrors to render its background page inherit the context of r,
// so they get the same flash and leave the cookie alone.
func takeFlash(w http.ResponseWriter, r *http.Request) *http.Request {
	if _, ok := r.Context().Value(kFlashCtxKey).(*flash); ok {
		return r
	}

	f := readFlash(r)
	if f != nil {
		httpcookie.Delete(w, r, FlashCookieName)
		r = modal.ShareValidationErrors(r, f.Errors, f.ErrorBag)
	}

	return r.WithContext(context.WithValue(r.Context(), kFlashCtxKey, f))
}

func readFlash(r *http.Request) *flash {
	val := httpcookie.Get(r, FlashCookieName)
	if val == "" {
		return nil
	}

	b, err := base64.RawURLEncoding.DecodeString(val)
	if err != nil {
		d("ignoring malformed flash cookie: %v", err)
		return nil
	}

	var f flash
	if err := json.Unmarshal(b, &f); err != nil {
		d("ignoring malformed flash cookie: %v", err)
		return nil
	}

	if len(f.Errors) == 0 {
		return nil
	}

	return &f
}
