package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/starford/quire/internal/noteservice"
)

// Export handles GET /api/export and returns the collection as a download.
//
//	@Summary		Download all notes as JSON
//	@Tags			transfer
//	@Produce		json
//	@Success		200	{array}	models.Note
//	@Security		BearerAuth
//	@Router			/export [get]
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", h.svc.ExportFileName()))
	if err := h.svc.Export(r.Context(), w); err != nil {
		slog.Error("export failed", slog.String("error", err.Error()))
	}
}

// Import handles POST /api/import. The body is an exported JSON array.
//
//	@Summary		Merge notes from an export file
//	@Tags			transfer
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	noteservice.ImportResult
//	@Failure		400	{object}	noteservice.ImportResult
//	@Security		BearerAuth
//	@Router			/import [post]
func (h *Handler) Import(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	res := h.svc.Import(r.Context(), r.Body)
	status := http.StatusOK
	if !res.Success && res.Imported == 0 {
		status = http.StatusBadRequest
	}
	writeJSON(w, status, res)
}

// Seed handles POST /api/seed and loads the demo notes into an empty
// collection.
func (h *Handler) Seed(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.Seed(r.Context())
	if err != nil {
		writeError(w, "seed", "", err)
		return
	}
	writeJSON(w, http.StatusCreated, noteservice.ImportResult{Success: true, Imported: n})
}
