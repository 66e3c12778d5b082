package inertiassr

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-json-experiment/json"
	"go.inout.gg/foundations/debug"

	"github.com/onlime/momentum-modal/internal/inertiabase"
	"github.com/onlime/momentum-modal/internal/inertiaheader"
)

var _ SSRClient = (*ssr)(nil)

// ErrUnavailable is returned when the SSR service cannot render a page.
var ErrUnavailable = errors.New("modal: SSR service unavailable")

// SSRTemplateData is the pre-rendered markup returned by the SSR service.
type SSRTemplateData struct {
	Head string `json:"head"`
	Body string `json:"body"`
}

//go:generate mockgen -destination ssr_mock.go -package inertiassr . SSRClient
type SSRClient interface {
	// Render makes a request to the server-side rendering service with the given page data.
	Render(context.Context, *inertiabase.Page) (*SSRTemplateData, error)
}

// ssr is an HTTP client that makes requests to a server-side rendering service.
type ssr struct {
	client *http.Client
	url    string
}

// NewHTTPSsrClient creates an SSR client posting pages to url.
// A nil client falls back to http.DefaultClient.
func NewHTTPSsrClient(url string, client *http.Client) SSRClient {
	debug.Assert(url != "", "url must be provided")

	if client == nil {
		client = http.DefaultClient
	}

	return &ssr{client, url}
}

// Render posts the page to the SSR service. Failures to reach the service
// or non-200 answers wrap ErrUnavailable.
func (s *ssr) Render(ctx context.Context, p *inertiabase.Page) (*SSRTemplateData, error) {
	debug.Assert(p != nil, "page must be set")

	b, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("modal: failed to marshal page: %w", err)
	}

	r, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(b))
	if err != nil {
		return nil, fmt.Errorf("modal: failed to create SSR request: %w", err)
	}

	r.Header.Set(inertiaheader.HeaderContentType, inertiaheader.ContentTypeJSON)

	resp, err := s.client.Do(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var data SSRTemplateData
	if err := json.UnmarshalRead(resp.Body, &data); err != nil {
		return nil, fmt.Errorf("modal: failed to decode SSR response: %w", err)
	}

	return &data, nil
}
