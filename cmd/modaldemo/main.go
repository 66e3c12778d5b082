// Command modaldemo serves a small user directory whose edit form opens as
// a modal over the user list.
//
// Configuration is read from the environment, or from a .env file:
//
//	MODALDEMO_ADDR        listen address, defaults to :8080
//	MODALDEMO_VERSION     asset version sent to the client
//	MODALDEMO_SSR_URL     optional server-side rendering endpoint
//	MODALDEMO_SESSION_KEY session cookie key, at least 32 bytes
//	MODALDEMO_VITE_DIR    directory of the Vite production build; when
//	                      unset, assets come from the Vite dev server
//	MODALDEMO_VITE_URL    address of the Vite dev server
package main

import (
	"cmp"
	"embed"
	"errors"
	"log"
	"net/http"
	"os"
	"slices"
	"sync"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/gorilla/sessions"
	_ "github.com/joho/godotenv/autoload"

	modal "github.com/onlime/momentum-modal"
	"github.com/onlime/momentum-modal/contrib/gorillamux"
	"github.com/onlime/momentum-modal/contrib/vite"
	"github.com/onlime/momentum-modal/modalprops"
)

//go:embed templates
var templates embed.FS

const sessionName = "modaldemo"

type user struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

type userStore struct {
	mu    sync.RWMutex
	users []user
}

func (s *userStore) all() []user {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return slices.Clone(s.users)
}

func (s *userStore) find(id string) (user, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := slices.IndexFunc(s.users, func(u user) bool { return u.ID == id })
	if i < 0 {
		return user{}, false
	}

	return s.users[i], true
}

func (s *userStore) update(u user) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i := range s.users {
		if s.users[i].ID == u.ID {
			s.users[i] = u
		}
	}
}

type app struct {
	users *userStore
	store sessions.Store
}

// flash pops the flash message of the session.
func (a *app) flash(w http.ResponseWriter, r *http.Request) string {
	sess, err := a.store.Get(r, sessionName)
	if err != nil {
		return ""
	}

	flashes := sess.Flashes()
	if len(flashes) == 0 {
		return ""
	}

	_ = sess.Save(r, w)

	msg, _ := flashes[0].(string)

	return msg
}

func (a *app) listUsers(w http.ResponseWriter, r *http.Request) {
	ctx := modal.NewRenderContext(modal.WithProps(modalprops.Map{
		"users": a.users.all(),
		"flash": a.flash(w, r),
	}))

	if err := modal.Render(w, r, "Users/Index", ctx); err != nil {
		log.Printf("failed to render users: %v", err)
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
	}
}

func (a *app) editUser(w http.ResponseWriter, r *http.Request) {
	u, ok := a.users.find(mux.Vars(r)["user"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	modal.New("Users/Edit", modalprops.Map{"user": u}).
		BaseRoute("users.index", nil, false).
		ServeHTTP(w, r)
}

func (a *app) updateUser(w http.ResponseWriter, r *http.Request) {
	u, ok := a.users.find(mux.Vars(r)["user"])
	if !ok {
		http.NotFound(w, r)
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	u.Name = cmp.Or(r.PostForm.Get("name"), u.Name)
	u.Email = cmp.Or(r.PostForm.Get("email"), u.Email)
	a.users.update(u)

	if sess, err := a.store.Get(r, sessionName); err == nil {
		sess.AddFlash("Saved " + u.Name)
		_ = sess.Save(r, w)
	}

	modal.Redirect(w, r, "/users")
}

func main() {
	addr := cmp.Or(os.Getenv("MODALDEMO_ADDR"), ":8080")
	key := cmp.Or(os.Getenv("MODALDEMO_SESSION_KEY"), "insecure-development-session-key")

	var ssrClient modal.SSRClient
	if u := os.Getenv("MODALDEMO_SSR_URL"); u != "" {
		ssrClient = modal.NewHTTPSsrClient(u, &http.Client{Timeout: 5 * time.Second})
	}

	//nolint:exhaustruct
	viteConfig := &vite.Config{ViteAddress: os.Getenv("MODALDEMO_VITE_URL")}

	buildDir := os.Getenv("MODALDEMO_VITE_DIR")
	if buildDir != "" {
		m, err := vite.ParseManifestFromFS(os.DirFS(buildDir), ".vite/manifest.json")
		if err != nil {
			log.Fatal(err)
		}

		m.Base = "/build/"
		viteConfig.Manifest = m
	}

	tpl, err := vite.FromFS(templates, "templates/app.html", viteConfig)
	if err != nil {
		log.Fatal(err)
	}

	renderer := modal.NewRenderer(tpl, &modal.Config{
		Version:   os.Getenv("MODALDEMO_VERSION"),
		SSRClient: ssrClient,
	})

	a := &app{
		users: &userStore{users: []user{
			{ID: "1", Name: "Ada Lovelace", Email: "ada@example.com"},
			{ID: "2", Name: "Grace Hopper", Email: "grace@example.com"},
		}},
		store: sessions.NewCookieStore([]byte(key)),
	}

	r := mux.NewRouter()
	r.Handle("/", http.RedirectHandler("/users", http.StatusFound))

	if buildDir != "" {
		r.PathPrefix("/build/").Handler(http.StripPrefix("/build/", http.FileServer(http.Dir(buildDir))))
	}

	r.HandleFunc("/users", a.listUsers).Methods(http.MethodGet).Name("users.index")
	r.HandleFunc("/users/{user}/edit", a.editUser).Methods(http.MethodGet).Name("users.edit")
	r.HandleFunc("/users/{user}", a.updateUser).Methods(http.MethodPut, http.MethodPost).Name("users.update")

	h := modal.NewMiddleware(renderer, modal.WithRouter(gorillamux.New(r)))(r)
	h = handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(h)
	h = handlers.LoggingHandler(os.Stdout, h)

	log.Printf("listening on %s", addr)

	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
