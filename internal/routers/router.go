package routers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"docsync/internal/api"
	"docsync/internal/identity"
	"docsync/internal/metrics"
)

func New(h *api.Handlers, verifier *identity.Verifier) http.Handler {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: false,
	}))
	r.Use(metrics.Middleware)

	r.Get("/api/v1/healthz", h.Health)
	r.Method(http.MethodGet, "/metrics", metrics.Handler())

	r.Route("/api/v1/documents", func(r chi.Router) {
		r.Use(verifier.Middleware)
		r.Post("/", h.CreateDocument)
		r.Get("/", h.ListDocuments)
		r.Get("/{id}", h.GetDocument)
		r.Put("/{id}", h.SaveDocument)
		r.Delete("/{id}", h.DeleteDocument)
		r.Get("/{id}/versions", h.ListVersions)
		r.Get("/{id}/presence", h.GetPresence)
		r.Post("/{id}/revert", h.RevertDocument)
		r.Post("/{id}/invite", h.InviteCollaborator)
	})

	r.Get("/ws", h.CollabWS)

	return r
}
