package modal

import (
	"html/template"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/onlime/momentum-modal/internal/inertiatest"
)

//nolint:gochecknoglobals
var tpl = template.Must(template.New("<inertia-test>").Parse(`<!doctype html>
<html>
<head>{{ .InertiaHead }}</head>
<body>{{ .InertiaBody }}</body>
</html>
`))

func newMiddleware(h http.Handler, renderer *Renderer) http.Handler {
	if renderer == nil {
		renderer = NewRenderer(tpl, nil)
	}

	mux := http.NewServeMux()
	middleware := NewMiddleware(renderer)(mux)

	mux.HandleFunc("/inertia", h.ServeHTTP)

	return middleware
}

func TestMiddleware_RedirectToSeeOther(t *testing.T) {
	t.Parallel()

	redirectHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/somewhere", http.StatusFound)
	})

	testCases := []struct {
		name           string
		method         string
		expectedStatus int
	}{
		{"PATCH should redirect with 303", http.MethodPatch, http.StatusSeeOther},
		{"PUT should redirect with 303", http.MethodPut, http.StatusSeeOther},
		{"DELETE should redirect with 303", http.MethodDelete, http.StatusSeeOther},
		{"GET should redirect with 302", http.MethodGet, http.StatusFound},
		{"POST should redirect with 302", http.MethodPost, http.StatusFound},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			r, w := inertiatest.NewRequest(tc.method, "/inertia", &inertiatest.RequestConfig{
				Inertia: true,
			})

			middleware := newMiddleware(redirectHandler, nil)
			middleware.ServeHTTP(w, r)

			if w.Code != tc.expectedStatus {
				t.Errorf("expected status code %d, got %d", tc.expectedStatus, w.Code)
			}

			location := w.Header().Get("Location")
			if location != "/somewhere" {
				t.Errorf("expected Location header to be '/somewhere', got %q", location)
			}
		})
	}
}

func TestMiddleware_VersionMismatch(t *testing.T) {
	t.Parallel()

	renderer := NewRenderer(tpl, &Config{Version: "2"})
	h := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		MustRender(w, r, "Dashboard", NewRenderContext())
	})

	t.Run("GET with stale version gets a location response", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "1",
		})

		newMiddleware(h, renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, "/inertia", w.Header().Get("X-Inertia-Location"))
	})

	t.Run("matching version renders", func(t *testing.T) {
		t.Parallel()

		r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{
			Inertia: true,
			Version: "2",
		})

		newMiddleware(h, renderer).ServeHTTP(w, r)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "true", w.Header().Get("X-Inertia"))
		assert.Contains(t, w.Body.String(), `"component":"Dashboard"`)
	})
}

func TestMiddleware_EmptyResponse(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", &inertiatest.RequestConfig{Inertia: true})

	newMiddleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}), nil).ServeHTTP(w, r)

	assert.Equal(t, http.StatusNoContent, w.Code)
}

func TestMiddleware_SetsVary(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/inertia", nil)

	newMiddleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	}), nil).ServeHTTP(w, r)

	assert.Equal(t, "X-Inertia", w.Header().Get("Vary"))
}

func TestRender_WithoutMiddleware(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/", nil)

	err := Render(w, r, "Dashboard", NewRenderContext())
	assert.ErrorIs(t, err, ErrRendererNotFound)
}
