package modalframe

import (
	"context"
	"encoding/json"
	"html/template"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	modal "github.com/onlime/momentum-modal"
	"github.com/onlime/momentum-modal/internal/inertiatest"
	"github.com/onlime/momentum-modal/modalprops"
)

//nolint:gochecknoglobals
var tpl = template.Must(template.New("<modalframe-test>").Parse(`<!doctype html>
<html>
<head>{{ .InertiaHead }}</head>
<body>{{ .InertiaBody }}</body>
</html>
`))

type userPage struct {
	ID   string `inertia:"id"`
	Name string `inertia:"name,omitempty"`
}

func (*userPage) Component() string { return "Users/Show" }

type showUserEndpoint struct{}

func (*showUserEndpoint) Meta() *Meta {
	return &Meta{Method: http.MethodGet, Path: "/users/{user}", Name: "users.show"}
}

func (*showUserEndpoint) Execute(_ context.Context, req *Request[struct{}]) (*Response, error) {
	return NewResponse(&userPage{ID: req.HTTP.PathValue("user")}, nil), nil
}

type editUserEndpoint struct{}

func (*editUserEndpoint) Meta() *Meta {
	return &Meta{Method: http.MethodGet, Path: "/users/{user}/edit", Name: "users.edit"}
}

func (*editUserEndpoint) Execute(_ context.Context, req *Request[struct{}]) (*Response, error) {
	id := req.HTTP.PathValue("user")
	m := modal.New("Users/Edit", modalprops.Map{"id": id}).
		BaseRoute("users.show", map[string]string{"user": id}, false)

	return NewModalResponse(m), nil
}

type createTeamEndpoint struct{}

func (*createTeamEndpoint) Meta() *Meta {
	return &Meta{Method: http.MethodGet, Path: "/teams/create"}
}

func (*createTeamEndpoint) Execute(context.Context, *Request[struct{}]) (*Response, error) {
	return NewModalResponse(modal.New("Teams/Create", nil).BaseRoute("teams.index", nil, false)), nil
}

type updateUser struct {
	Name string `form:"name" json:"name"`
}

type updateUserEndpoint struct{}

func (*updateUserEndpoint) Meta() *Meta {
	return &Meta{Method: http.MethodPost, Path: "/users/{user}"}
}

func (*updateUserEndpoint) Execute(_ context.Context, req *Request[updateUser]) (*Response, error) {
	return NewRedirectResponse("/users/" + req.HTTP.PathValue("user") + "?name=" + req.Message.Name), nil
}

type validatorFunc func(any) error

func (f validatorFunc) Validate(v any) error { return f(v) }

func requireName(v any) error {
	if msg, ok := v.(*updateUser); ok && msg.Name == "" {
		return modal.ValidationErrorMap{"name": "The name is required."}
	}

	return nil
}

func newApp(t *testing.T) http.Handler {
	t.Helper()

	router := NewRouter()
	opts := &MountOpts{Validator: validatorFunc(requireName)}

	Mount(router, &showUserEndpoint{}, opts)
	Mount(router, &editUserEndpoint{}, opts)
	Mount(router, &updateUserEndpoint{}, opts)

	return modal.NewMiddleware(modal.NewRenderer(tpl, nil), modal.WithRouter(router))(router)
}

type testPage struct {
	Props     map[string]json.RawMessage `json:"props"`
	Component string                     `json:"component"`
	URL       string                     `json:"url"`
}

func decodePage(t *testing.T, w *httptest.ResponseRecorder) testPage {
	t.Helper()

	var page testPage
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page), w.Body.String())

	return page
}

func TestMount_Page(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/users/5", &inertiatest.RequestConfig{Inertia: true})
	newApp(t).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	page := decodePage(t, w)
	assert.Equal(t, "Users/Show", page.Component)
	assert.JSONEq(t, `"5"`, string(page.Props["id"]))
	assert.NotContains(t, page.Props, "name")
	assert.NotContains(t, page.Props, modal.PropKey)
}

func TestMount_ModalResponse(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/users/5/edit", &inertiatest.RequestConfig{Inertia: true})
	newApp(t).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	page := decodePage(t, w)
	assert.Equal(t, "Users/Show", page.Component)
	assert.Equal(t, "/users/5/edit", page.URL)
	assert.JSONEq(t, `"5"`, string(page.Props["id"]))

	var payload modal.Payload
	require.NoError(t, json.Unmarshal(page.Props[modal.PropKey], &payload))

	assert.Equal(t, "Users/Edit", payload.Component)
	assert.Equal(t, "/users/5", payload.BaseURL)
	assert.Equal(t, "/users/5", payload.RedirectURL)
	assert.Equal(t, map[string]any{"id": "5"}, payload.Props)
}

func TestMount_ModalResponse_FirstVisit(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/users/5/edit", nil)
	newApp(t).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, w.Body.String(), "Users/Edit")
	assert.Contains(t, w.Body.String(), "Users/Show")
}

func TestMount_FormSubmission(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/users/5", strings.NewReader("name=Jane"))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	inertiatest.Apply(r, &inertiatest.RequestConfig{Inertia: true})

	w := httptest.NewRecorder()
	newApp(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users/5?name=Jane", w.Header().Get("Location"))
}

func TestMount_JSONSubmission(t *testing.T) {
	t.Parallel()

	r := httptest.NewRequest(http.MethodPost, "/users/5", strings.NewReader(`{"name":"Jane"}`))
	r.Header.Set("Content-Type", "application/json")
	inertiatest.Apply(r, &inertiatest.RequestConfig{Inertia: true})

	w := httptest.NewRecorder()
	newApp(t).ServeHTTP(w, r)

	assert.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users/5?name=Jane", w.Header().Get("Location"))
}

func TestMount_ValidationErrorsAreFlashed(t *testing.T) {
	t.Parallel()

	app := newApp(t)

	r := httptest.NewRequest(http.MethodPost, "/users/5", strings.NewReader("name="))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	inertiatest.Apply(r, &inertiatest.RequestConfig{Inertia: true, Referer: "/users/5/edit"})

	w := httptest.NewRecorder()
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusSeeOther, w.Code)
	assert.Equal(t, "/users/5/edit", w.Header().Get("Location"))

	flash := flashCookie(w)
	require.NotNil(t, flash, "validation errors must be flashed")

	// The client follows the redirect back to the modal; the errors reach
	// the background page rendered for the mirrored request.
	r, w = inertiatest.NewRequest(http.MethodGet, "/users/5/edit", &inertiatest.RequestConfig{Inertia: true})
	r.AddCookie(flash)
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	page := decodePage(t, w)
	assert.Equal(t, "Users/Show", page.Component)
	assert.JSONEq(t, `{"name":"The name is required."}`, string(page.Props["errors"]))
	assert.Len(t, flashHeaders(w), 1, "the flash cookie is deleted once per client request")
}

// flashCookie returns the flash cookie set on w.
func flashCookie(w *httptest.ResponseRecorder) *http.Cookie {
	for _, c := range w.Result().Cookies() {
		if c.Name == FlashCookieName {
			return c
		}
	}

	return nil
}

func flashHeaders(w *httptest.ResponseRecorder) []string {
	var headers []string

	for _, h := range w.Header().Values("Set-Cookie") {
		if strings.HasPrefix(h, FlashCookieName+"=") {
			headers = append(headers, h)
		}
	}

	return headers
}

func TestMount_FlashReachesPlainBackgroundPage(t *testing.T) {
	t.Parallel()

	router := NewRouter()
	router.HandleNamed("teams.index", "GET /teams", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, modal.Render(w, r, "Teams/Index", modal.NewRenderContext()))
	}))
	Mount(router, &createTeamEndpoint{}, nil)

	app := modal.NewMiddleware(modal.NewRenderer(tpl, nil), modal.WithRouter(router))(router)

	fw := httptest.NewRecorder()
	require.NoError(t, saveFlash(fw, modal.ValidationErrorMap{"name": "Taken."}, "createTeam"))

	r, w := inertiatest.NewRequest(http.MethodGet, "/teams/create", &inertiatest.RequestConfig{Inertia: true})
	r.AddCookie(flashCookie(fw))
	app.ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)

	page := decodePage(t, w)
	assert.Equal(t, "Teams/Index", page.Component)
	assert.JSONEq(t, `{"createTeam":{"name":"Taken."}}`, string(page.Props["errors"]))
	assert.Contains(t, page.Props, modal.PropKey)
}

func TestMount_MalformedFlashIsIgnored(t *testing.T) {
	t.Parallel()

	r, w := inertiatest.NewRequest(http.MethodGet, "/users/5", &inertiatest.RequestConfig{Inertia: true})
	r.AddCookie(&http.Cookie{Name: FlashCookieName, Value: "%%%"})
	newApp(t).ServeHTTP(w, r)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{}`, string(decodePage(t, w).Props["errors"]))
}

func TestRedirectBack(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		method  string
		referer string
		want    string
		status  int
	}{
		{name: "referer", method: http.MethodPost, referer: "/users", want: "/users", status: http.StatusSeeOther},
		{name: "no referer", method: http.MethodPost, want: "/", status: http.StatusSeeOther},
		{name: "get", method: http.MethodGet, referer: "/users", want: "/users", status: http.StatusFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			r, w := inertiatest.NewRequest(tt.method, "/users/5", &inertiatest.RequestConfig{Referer: tt.referer})
			RedirectBack(w, r)

			assert.Equal(t, tt.status, w.Code)
			assert.Equal(t, tt.want, w.Header().Get("Location"))
		})
	}
}

func TestNewExternalRedirectResponse(t *testing.T) {
	t.Parallel()

	resp := NewExternalRedirectResponse("https://example.com")

	writer, ok := resp.m.(RawResponseWriter)
	require.True(t, ok)

	r, w := inertiatest.NewRequest(http.MethodGet, "/", &inertiatest.RequestConfig{Inertia: true})
	require.NoError(t, writer.Write(w, r))

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, "https://example.com", w.Header().Get("X-Inertia-Location"))
}
