package modal

import (
	"net/http"

	"github.com/onlime/momentum-modal/internal/inertiassr"
)

type (
	// SSRClient pre-renders pages with a server-side rendering service.
	SSRClient = inertiassr.SSRClient

	// SSRTemplateData is the head and body markup returned by SSR rendering.
	SSRTemplateData = inertiassr.SSRTemplateData
)

// NewHTTPSsrClient creates an SSR client sending pages to url.
// If client is nil, http.DefaultClient is used.
func NewHTTPSsrClient(url string, client *http.Client) SSRClient {
	return inertiassr.NewHTTPSsrClient(url, client)
}
