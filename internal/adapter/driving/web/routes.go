package web

import (
	"io/fs"
	"net/http"
)

// RegisterRoutes registers all web GUI routes on the provided mux.
// Static assets are served from the embedded filesystem at /static/*.
func RegisterRoutes(mux *http.ServeMux, h *Handler) {
	// Static assets (embedded via go:embed).
	staticFS, _ := fs.Sub(StaticFS, "static")
	mux.Handle("GET /static/", http.StripPrefix("/static/", http.FileServerFS(staticFS)))

	// Page routes.
	mux.HandleFunc("GET /{$}", h.Panel)
	mux.HandleFunc("POST /slots/{slot}/create", h.CreateCredential)
	mux.HandleFunc("POST /slots/{slot}/encrypt", h.Encrypt)
	mux.HandleFunc("POST /slots/{slot}/export", h.Export)
	mux.HandleFunc("POST /import", h.Import)
	mux.HandleFunc("POST /sanitize", h.Sanitize)
}
