package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/config"
	"github.com/wadjakorntonsri/go-bookmarks/pkg/logger"
)

// NewRouter creates and configures the main application router
func NewRouter(cfg *config.Config, commands Commands, log logger.Logger) http.Handler {
	h := NewHTTPHandler(commands)
	mw := NewMiddleware(cfg)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(AccessLog(log))

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{"message": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		if mw.Enabled() {
			r.Use(mw.AuthMiddleware)
		}

		r.Get("/bookmarks", h.List)
		r.Post("/bookmarks", h.Create)
		r.Get("/bookmarks/search", h.Search)
		r.Get("/bookmarks/{id}", h.Get)
		r.Patch("/bookmarks/{id}", h.Update)
		r.Delete("/bookmarks/{id}", h.Delete)
		r.Post("/bookmarks/{id}/open", h.Open)

		r.Get("/tags", h.ListTags)
		r.Put("/tags/{name}", h.RenameTag)
		r.Delete("/tags/{name}", h.DeleteTag)
	})

	return r
}
