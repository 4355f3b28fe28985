package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/starford/quire/internal/noteservice"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// sseHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(svc *noteservice.Service, authEnabled bool, token string, sseHandler http.Handler) chi.Router {
	h := NewHandler(svc)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	r.Route("/notes", func(r chi.Router) {
		r.Get("/", h.ListNotes)
		r.Post("/", h.CreateNote)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.GetNote)
			r.Put("/", h.UpdateNote)
			r.Delete("/", h.DeleteNote)
			r.Post("/pin", h.PinNote)
			r.Post("/duplicate", h.DuplicateNote)

			r.Post("/encrypt", h.EncryptNote)
			r.Post("/decrypt", h.DecryptNote)
			r.Post("/reveal", h.RevealNote)
			r.Delete("/encryption", h.RemoveEncryption)

			r.Post("/insights", h.Insights)
			r.Post("/grammar", h.Grammar)
		})
	})

	r.Get("/categories", h.Categories)
	r.Get("/stats", h.Stats)
	r.Get("/export", h.Export)
	r.Post("/import", h.Import)
	r.Post("/seed", h.Seed)
	r.Post("/passphrase/check", h.CheckPassphrase)

	if sseHandler != nil {
		r.Get("/events", sseHandler.ServeHTTP)
	}

	return r
}
