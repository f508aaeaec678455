package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all gallery routes on the provided mux.
// The page is served at / and static assets at /static/*; live change
// notifications stream from /events.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	mux.HandleFunc("GET /{$}", h.Gallery)
	mux.HandleFunc("GET /events", h.Events)
}
