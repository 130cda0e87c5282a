// Package web serves the embedded browser pages. The app shell is
// routine data-entry plumbing; all real behavior lives behind the API.
package web

import (
	"embed"
	"io/fs"
	"net/http"

	"github.com/go-chi/chi/v5"

	"todo-tracker/internal/middleware"
)

//go:embed static
var staticFS embed.FS

// RegisterRoutes mounts the login page, the gated app shell, and the
// remaining static assets.
func RegisterRoutes(r chi.Router, sessions middleware.SessionVerifier) {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err) // embed layout is fixed at build time
	}
	fileServer := http.FileServer(http.FS(assets))

	r.Get("/login", func(w http.ResponseWriter, req *http.Request) {
		if _, ok := sessions.UserFromRequest(req); ok {
			http.Redirect(w, req, "/", http.StatusFound)
			return
		}
		serveFile(w, req, assets, "login.html")
	})

	gate := middleware.PageSessionGate(sessions, "/login")
	r.Group(func(r chi.Router) {
		r.Use(gate)
		r.Get("/", func(w http.ResponseWriter, req *http.Request) {
			serveFile(w, req, assets, "index.html")
		})
		r.Get("/index.html", func(w http.ResponseWriter, req *http.Request) {
			serveFile(w, req, assets, "index.html")
		})
		r.Get("/app.js", func(w http.ResponseWriter, req *http.Request) {
			serveFile(w, req, assets, "app.js")
		})
	})

	// Remaining assets (login.js, styles.css) are open like the login
	// page itself.
	r.Get("/login.js", fileServer.ServeHTTP)
	r.Get("/styles.css", fileServer.ServeHTTP)
}

func serveFile(w http.ResponseWriter, r *http.Request, assets fs.FS, name string) {
	http.ServeFileFS(w, r, assets, name)
}
