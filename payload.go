package modal

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/onlime/momentum-modal/internal/inertiaheader"
)

// PropKey is the prop the modal payload is shared under.
const PropKey = "modal"

const (
	// HeaderModalKey carries the key of the modal the client shows.
	HeaderModalKey = inertiaheader.HeaderXInertiaModalKey

	// HeaderModalRedirect overrides where the modal navigates when closed.
	HeaderModalRedirect = inertiaheader.HeaderXInertiaModalRedirect
)

// Payload is the modal data sent to the client under the "modal" prop.
type Payload struct {
	Props       map[string]any `json:"props"`
	Component   string         `json:"component"`
	BaseURL     string         `json:"baseURL"`
	RedirectURL string         `json:"redirectURL"`

	// Key identifies the modal instance across client-side visits.
	// It echoes X-Inertia-Modal-Key, or is freshly generated.
	Key string `json:"key"`

	// Nonce is unique to every render and forces the client to remount.
	Nonce string `json:"nonce"`
}

func newPayload(r *http.Request, component, baseURL, redirectURL string, props map[string]any) *Payload {
	key := r.Header.Get(inertiaheader.HeaderXInertiaModalKey)
	if key == "" {
		key = uuid.NewString()
	}

	if props == nil {
		props = map[string]any{}
	}

	return &Payload{
		Component:   component,
		BaseURL:     baseURL,
		RedirectURL: redirectURL,
		Props:       props,
		Key:         key,
		Nonce:       uuid.NewString(),
	}
}
